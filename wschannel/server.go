/*
File Name:  server.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Server is the single plain listening server the design notes settle on in
place of the reference implementation's combined TURN + WebSocket signaling
server: one HTTP endpoint, upgraded to a binary WebSocket connection per
inbound peer. Every accepted connection is handed to onChannel, typically
core.Routing.AddChannel; the remote Identifier is not known at accept time and
is learned from the first Hello received on the channel.
*/

package wschannel

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	core "github.com/legio-mesh/legio"
)

// Server accepts inbound wschannel connections on a single HTTP endpoint.
type Server struct {
	httpServer *http.Server
	upgrader   websocket.Upgrader
	onChannel  func(core.Channel)
}

// NewServer constructs a Server listening on addr (host:port). onChannel is
// called once per accepted connection.
func NewServer(addr string, onChannel func(core.Channel)) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		onChannel: onChannel,
	}

	router := mux.NewRouter()
	router.HandleFunc("/peer", s.handleUpgrade)

	s.httpServer = &http.Server{Addr: addr, Handler: router}
	return s
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.onChannel(newChannel(conn))
}

// ListenAndServe blocks, serving inbound connections until Close is called.
func (s *Server) ListenAndServe() error {
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// ListenAndServeTLS blocks like ListenAndServe, serving wss:// with the given
// PEM certificate and key files.
func (s *Server) ListenAndServeTLS(certFile, keyFile string) error {
	err := s.httpServer.ListenAndServeTLS(certFile, keyFile)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close shuts the server down.
func (s *Server) Close() error {
	return s.httpServer.Shutdown(context.Background())
}
