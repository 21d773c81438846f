// Package netslot implements the networking-slot abstraction of spec.md
// §4.1: a tree of named endpoints, each receiving an ordered stream of
// Joined/Disconnected/ReceivedPacket messages, supporting non-blocking
// receive, targeted send, broadcast, child-slot creation, and atomic
// client transfer between slots.
//
// Per spec.md §1's Non-goal on wire-format specifics, a Packet here is
// already a decoded logical message — only the packet *boundaries* matter.
// internal/wire supplies an optional byte-level codec and WSServeHTTP
// in this package bridges a slot to a real gorilla/websocket connection
// for callers that do want bytes on a socket.
package netslot

import (
	"fmt"
	"sync"

	"github.com/lab1702/ironclad-sim/internal/idgen"
)

// Packet is any decoded message value flowing across a slot.
type Packet interface{}

// MessageKind tags the three shapes an inbound Message can take.
type MessageKind uint8

const (
	Joined MessageKind = iota
	Disconnected
	ReceivedPacket
)

// Message is one item in a slot's inbound queue.
type Message struct {
	Kind     MessageKind
	ClientID idgen.ClientId
	Packet   Packet
}

// Slot is a named endpoint in the slot tree. Each slot owns its own
// buffered inbound queue; clients are routed to exactly one slot at a
// time, tracked centrally by the root slot's registry so TransferClient
// can move a client's future delivery atomically.
type Slot struct {
	id   string
	root *registry

	mu     sync.Mutex
	queue  []Message
	outbox map[idgen.ClientId]chan<- Packet // per-client send sink, registered by the transport layer
}

// registry is shared by every slot in a tree: it maps a connected client
// to the slot currently responsible for delivering its messages.
type registry struct {
	mu      sync.Mutex
	owner   map[idgen.ClientId]*Slot
	slots   map[string]*Slot
}

// NewRootSlot creates the root of a new slot tree, named id.
func NewRootSlot(id string) *Slot {
	r := &registry{
		owner: make(map[idgen.ClientId]*Slot),
		slots: make(map[string]*Slot),
	}
	s := &Slot{id: id, root: r, outbox: make(map[idgen.ClientId]chan<- Packet)}
	r.slots[id] = s
	return s
}

// CreateSlot spawns a named child endpoint sharing this slot's registry.
func (s *Slot) CreateSlot(id string) *Slot {
	child := &Slot{id: id, root: s.root, outbox: make(map[idgen.ClientId]chan<- Packet)}
	s.root.mu.Lock()
	s.root.slots[id] = child
	s.root.mu.Unlock()
	return child
}

// ID returns this slot's name.
func (s *Slot) ID() string { return s.id }

// Connect registers a new client as owned by this slot and enqueues a
// Joined message. sink receives packets the server Sends directly to this
// client (as opposed to broadcasts, which every connected client also
// receives via the same sink).
func (s *Slot) Connect(clientID idgen.ClientId, sink chan<- Packet) {
	s.root.mu.Lock()
	s.root.owner[clientID] = s
	s.root.mu.Unlock()

	s.mu.Lock()
	s.outbox[clientID] = sink
	s.queue = append(s.queue, Message{Kind: Joined, ClientID: clientID})
	s.mu.Unlock()
}

// Disconnect removes a client from the registry and enqueues a
// Disconnected message on its current owning slot.
func (s *Slot) Disconnect(clientID idgen.ClientId) {
	s.root.mu.Lock()
	owner, ok := s.root.owner[clientID]
	delete(s.root.owner, clientID)
	s.root.mu.Unlock()
	if !ok {
		return
	}

	owner.mu.Lock()
	delete(owner.outbox, clientID)
	owner.queue = append(owner.queue, Message{Kind: Disconnected, ClientID: clientID})
	owner.mu.Unlock()
}

// Deliver enqueues an inbound packet from clientID onto that client's
// current owning slot — not necessarily s — matching real routing where a
// transport layer (e.g. WSServeHTTP) hands packets to whichever slot currently
// owns the connection.
func (s *Slot) Deliver(clientID idgen.ClientId, p Packet) {
	s.root.mu.Lock()
	owner, ok := s.root.owner[clientID]
	s.root.mu.Unlock()
	if !ok {
		return
	}
	owner.mu.Lock()
	owner.queue = append(owner.queue, Message{Kind: ReceivedPacket, ClientID: clientID, Packet: p})
	owner.mu.Unlock()
}

// TryReceive is a non-blocking pop of the oldest queued message for this
// slot, or (Message{}, false) if empty.
func (s *Slot) TryReceive() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return Message{}, false
	}
	msg := s.queue[0]
	s.queue = s.queue[1:]
	return msg, true
}

// Send delivers a packet directly to one client, wherever it is currently
// connected within this slot, via its registered sink channel.
func (s *Slot) Send(clientID idgen.ClientId, p Packet) error {
	s.mu.Lock()
	sink, ok := s.outbox[clientID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("netslot: client %s not connected to slot %q", clientID, s.id)
	}
	sink <- p
	return nil
}

// SendAnywhere sends a packet to clientID wherever in the slot tree it is
// currently owned, for callers (the star map orchestrator) that route
// messages to clients they do not themselves own a slot for.
func (s *Slot) SendAnywhere(clientID idgen.ClientId, p Packet) error {
	s.root.mu.Lock()
	owner, ok := s.root.owner[clientID]
	s.root.mu.Unlock()
	if !ok {
		return fmt.Errorf("netslot: client %s not connected to any slot", clientID)
	}
	return owner.Send(clientID, p)
}

// Broadcast sends a packet to every client currently connected to this
// slot.
func (s *Slot) Broadcast(p Packet) {
	s.mu.Lock()
	sinks := make([]chan<- Packet, 0, len(s.outbox))
	for _, sink := range s.outbox {
		sinks = append(sinks, sink)
	}
	s.mu.Unlock()
	for _, sink := range sinks {
		sink <- p
	}
}

// TransferClient atomically reroutes a connected client to dest, wherever
// in the slot tree it is currently owned: the registry's ownership map
// flips in one locked step, so the next message Deliver()ed for that
// client lands in dest's queue, and the old owner's queue will never again
// receive one for it (spec.md §4.1, §5). Any slot sharing dest's registry
// may initiate a transfer — not only the current owner — since the star
// map orchestrator routes jumps/logins on clients it does not itself own.
func (s *Slot) TransferClient(clientID idgen.ClientId, dest *Slot) error {
	s.root.mu.Lock()
	current, ok := s.root.owner[clientID]
	if !ok {
		s.root.mu.Unlock()
		return fmt.Errorf("netslot: client %s not connected to any slot", clientID)
	}
	s.root.owner[clientID] = dest
	s.root.mu.Unlock()

	current.mu.Lock()
	sink := current.outbox[clientID]
	delete(current.outbox, clientID)
	current.mu.Unlock()

	if sink != nil {
		dest.mu.Lock()
		dest.outbox[clientID] = sink
		dest.mu.Unlock()
	}
	return nil
}
