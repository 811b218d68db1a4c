/*
File Name:  log.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Error logging writes through the standard log package, redirected to the
configured log file plus any subscribers registered via Node.SubscribeLog, and
fans out to Filters.LogError for programmatic interception.
*/

package core

import (
	"log"
	"os"
)

func (n *Node) initLog() {
	n.logWriters = newMultiWriter()

	if n.Config.LogFile != "" {
		file, err := os.OpenFile(n.Config.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Printf("initLog: error creating log file '%s': %v\n", n.Config.LogFile, err)
		} else {
			n.logWriters.Subscribe(file)
		}
	}

	n.logger = log.New(n.logWriters, "", log.LstdFlags)
}

// logError records an internal error: written to the log sink and forwarded to
// Filters.LogError.
func (n *Node) logError(function, format string, v ...interface{}) {
	n.logger.Printf("["+function+"] "+format, v...)
	n.Filters.LogError(function, format, v...)
}
