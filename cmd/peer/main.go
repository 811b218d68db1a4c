/*
File Name:  main.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

peer is the reference CLI driver: it loads a node from a config file, starts a
wschannel.Server if configured, optionally connects to a bootstrap target given
on the command line, and ticks the node every 200ms until interrupted.
*/

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	core "github.com/legio-mesh/legio"
	"github.com/legio-mesh/legio/wschannel"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: built-in)")
	flag.Parse()

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "peer: loading config: %v\n", err)
		os.Exit(1)
	}

	node, err := core.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "peer: constructing node: %v\n", err)
		os.Exit(1)
	}

	node.SetDialer(wschannel.Dialer{})

	var server *wschannel.Server
	if cfg.Port != 0 {
		addr := fmt.Sprintf(":%d", cfg.Port)
		server = wschannel.NewServer(addr, node.AcceptChannel)
		go func() {
			var err error
			if cfg.TLSPemCertificate != "" && cfg.TLSPemKey != "" {
				err = server.ListenAndServeTLS(cfg.TLSPemCertificate, cfg.TLSPemKey)
			} else {
				err = server.ListenAndServe()
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "peer: server: %v\n", err)
			}
		}()
	}

	for _, seed := range cfg.SeedList {
		for _, addr := range seed.Address {
			if err := node.Connect(addr); err != nil {
				fmt.Fprintf(os.Stderr, "peer: connecting to seed %s: %v\n", addr, err)
			}
		}
	}

	if flag.NArg() > 0 {
		if err := node.Connect(flag.Arg(0)); err != nil {
			fmt.Fprintf(os.Stderr, "peer: connecting to %s: %v\n", flag.Arg(0), err)
		}
	}

	node.OnMessage(func(remoteID core.Identifier, message []byte) {
		fmt.Printf("message from %s: %s\n", remoteID.String(), string(message))
	})

	fmt.Printf("peer %s listening\n", node.ID().String())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			node.Update()
		case <-sigCh:
			if server != nil {
				server.Close()
			}
			os.Exit(0)
		}
	}
}
