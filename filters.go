/*
File Name:  filters.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Filters allow the caller to intercept events. The filter functions must not
modify any data.
*/

package core

import (
	"io"
	"sync"

	"github.com/google/uuid"
)

// Filters contains all functions to install hooks. Use nil for unused.
// The functions are called sequentially and block execution; if a filter takes
// a long time it should start a goroutine.
type Filters struct {
	// NewNeighbor is called whenever Routing binds a new Identifier to a channel.
	NewNeighbor func(id Identifier, channel Channel)

	// LostNeighbor is called whenever a neighbor binding is torn down.
	LostNeighbor func(id Identifier)

	// NewVertex is called the first time Graph learns of a remote node's State.
	NewVertex func(id Identifier)

	// LogError is called for any internal error.
	LogError func(function, format string, v ...interface{})
}

func (n *Node) initFilters() {
	if n.Filters.NewNeighbor == nil {
		n.Filters.NewNeighbor = func(id Identifier, channel Channel) {}
	}
	if n.Filters.LostNeighbor == nil {
		n.Filters.LostNeighbor = func(id Identifier) {}
	}
	if n.Filters.NewVertex == nil {
		n.Filters.NewVertex = func(id Identifier) {}
	}
	if n.Filters.LogError == nil {
		n.Filters.LogError = func(function, format string, v ...interface{}) {}
	}
}

// multiWriter duplicates writes to every currently subscribed writer.
type multiWriter struct {
	mutex   sync.Mutex
	writers map[uuid.UUID]io.Writer
}

func newMultiWriter() *multiWriter {
	return &multiWriter{writers: make(map[uuid.UUID]io.Writer)}
}

// Subscribe adds writer to the fan-out set, returning a handle for Unsubscribe.
func (m *multiWriter) Subscribe(writer io.Writer) uuid.UUID {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	id := uuid.New()
	m.writers[id] = writer
	return id
}

// Unsubscribe removes a previously subscribed writer.
func (m *multiWriter) Unsubscribe(id uuid.UUID) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.writers, id)
}

// Write fans p out to every subscribed writer. It never returns an error: a
// misbehaving subscriber must not stop logging for the rest of the node.
func (m *multiWriter) Write(p []byte) (n int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, w := range m.writers {
		w.Write(p)
	}
	return len(p), nil
}
