/*
File Name:  provisioning.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Provisioning periodically solicits and caches short-lived relay credentials from
peers that advertise the HasTurn capability (component g). Wire protocol is a
literal sequence of zero-terminated strings, grounded on the original reference
implementation's pack_strings/unpack_strings helpers: a 1-string request
{"turn"} and a 4-string response {type, host, username, password}.
*/

package core

import (
	"bytes"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/legio-mesh/legio/protocol"
)

// provisioningFreshWindow is how recently an entry must have been refreshed to
// count toward the "fresh" target in update().
const provisioningFreshWindow = 10 * time.Minute

// provisioningEntryTTL is the age at which a Provisioning entry is evicted.
const provisioningEntryTTL = 30 * time.Minute

// provisioningFreshTarget is the minimum count of fresh entries update() tries
// to maintain.
const provisioningFreshTarget = 4

// ProvisioningEntry is a cached relay credential tuple.
type ProvisioningEntry struct {
	Source   Identifier
	Host     string
	Username string
	Password string
	Time     time.Time
}

// url renders the entry as a turn: URL.
func (e ProvisioningEntry) url() string {
	return fmt.Sprintf("turn:%s@%s:%s", e.Username, e.Password, e.Host)
}

func (e ProvisioningEntry) age() time.Duration {
	d := time.Since(e.Time)
	if d < 0 {
		return 0
	}
	return d
}

// Provisioning is the relay-credential cache described in spec §4.5 (component g).
type Provisioning struct {
	node      *Node
	transport *Transport

	mutex   sync.Mutex
	entries map[Identifier]ProvisioningEntry
}

func newProvisioning(node *Node) *Provisioning {
	p := &Provisioning{node: node, entries: make(map[Identifier]ProvisioningEntry)}
	p.transport = newTransport(node, protocol.TypeProvisioning, p.receive)
	return p
}

func (p *Provisioning) update() {
	p.transport.update()

	p.mutex.Lock()
	fresh := 0
	for id, entry := range p.entries {
		if entry.age() >= provisioningEntryTTL {
			delete(p.entries, id)
			continue
		}
		if entry.age() < provisioningFreshWindow {
			fresh++
		}
	}
	needMore := fresh < provisioningFreshTarget
	p.mutex.Unlock()

	if !needMore {
		return
	}

	candidates := p.node.graph.nodes(ProvisionHasTurn)
	rand.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	p.mutex.Lock()
	defer p.mutex.Unlock()
	for _, id := range candidates {
		if _, exists := p.entries[id]; !exists {
			if err := p.transport.Send(id, packStrings("turn")); err != nil {
				p.node.logError("Provisioning.update", "request send failed: %v", err)
			}
			break
		}
	}
}

func (p *Provisioning) notify(event Event) {
	p.transport.notify(event)
}

// insert records a fresh provisioning entry, keyed by source.
func (p *Provisioning) insert(entry ProvisioningEntry) {
	p.mutex.Lock()
	p.entries[entry.Source] = entry
	p.mutex.Unlock()
}

// pick returns up to count random entries without replacement.
func (p *Provisioning) pick(count int) []ProvisioningEntry {
	p.mutex.Lock()
	all := make([]ProvisioningEntry, 0, len(p.entries))
	for _, entry := range p.entries {
		all = append(all, entry)
	}
	p.mutex.Unlock()

	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if count > len(all) {
		count = len(all)
	}
	return all[:count]
}

func (p *Provisioning) receive(remoteID Identifier, payload []byte) {
	fields, err := unpackStrings(payload, 4)
	if err != nil || fields[0] != "turn" {
		return
	}

	p.insert(ProvisioningEntry{
		Source:   remoteID,
		Host:     fields[1],
		Username: fields[2],
		Password: fields[3],
		Time:     time.Now(),
	})
}

// packStrings encodes a sequence of strings as zero-terminated fields.
func packStrings(fields ...string) []byte {
	var buf bytes.Buffer
	for _, f := range fields {
		buf.WriteString(f)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// unpackStrings decodes exactly count zero-terminated fields from payload.
func unpackStrings(payload []byte, count int) ([]string, error) {
	fields := bytes.SplitN(payload, []byte{0}, count+1)
	if len(fields) < count {
		return nil, ErrMalformed
	}
	out := make([]string, count)
	for i := 0; i < count; i++ {
		out[i] = string(fields[i])
	}
	return out, nil
}
