// Package chat implements the single ChatServer goroutine of spec.md §5
// ("Chat fans out via a single ChatServer thread that forwards to one
// sender per sector"), grounded on the teacher's
// server/communication_handlers.go broadcast/team/private message
// handling.
package chat

import (
	"github.com/lab1702/ironclad-sim/internal/idgen"
)

// Scope tags who a chat message is addressed to.
type Scope uint8

const (
	ScopeBroadcast Scope = iota
	ScopeTeam
	ScopePrivate
)

// Message is one chat envelope, as routed by spec.md §4.5 step 5.
type Message struct {
	From    idgen.ClientId
	Author  string
	Scope   Scope
	Team    int
	To      idgen.ClientId // recipient for ScopePrivate; Run does not read it
	Content string
}

// Sink is a per-sector forwarding target: something that can deliver a
// chat message to every client currently connected to it.
type Sink interface {
	BroadcastChat(author, content string)
}

// Server is the single chat-fanout goroutine. It owns one Sink per sector
// and a single inbound channel every sector worker forwards local chat
// messages into.
type Server struct {
	inbox chan Message
	sinks map[string]Sink
}

// NewServer creates a chat server with no registered sinks yet.
func NewServer() *Server {
	return &Server{inbox: make(chan Message, 256), sinks: make(map[string]Sink)}
}

// Register attaches a sector's broadcast sink under id, so chat fanned out
// by this server reaches that sector's connected clients.
func (s *Server) Register(id string, sink Sink) { s.sinks[id] = sink }

// Inbox returns the channel sector workers post local chat messages into.
func (s *Server) Inbox() chan<- Message { return s.inbox }

// Run drains the inbox and fans each message out to every registered
// sink, blocking until the inbox channel is closed. Scope, Team and To are
// not consulted: team and private messages reach every sink like broadcasts.
func (s *Server) Run() {
	for msg := range s.inbox {
		for _, sink := range s.sinks {
			sink.BroadcastChat(msg.Author, msg.Content)
		}
	}
}
