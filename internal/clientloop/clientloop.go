// Package clientloop implements the headless client-side turn-phase state
// machine of spec.md §4.9: no rendering (an explicit Non-goal), only the
// phase sequence a connected client walks through each turn —
// NewShipsPre -> SimResults -> NewShipsPost -> Tick — plus plan
// submission and chat routing. It is grounded on the teacher's
// server/websocket.go client message loop and its MsgType* protocol,
// restructured around spec.md's explicit phase packets rather than the
// teacher's continuous per-frame update stream.
package clientloop

import (
	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/logging"
	"github.com/lab1702/ironclad-sim/internal/plan"
	"github.com/lab1702/ironclad-sim/internal/wire"
)

// Phase tags which packet the client is currently waiting for.
type Phase uint8

const (
	PhaseWaitTick Phase = iota
	PhaseNewShipsPre
	PhaseSimResults
	PhaseNewShipsPost
)

// Handlers lets an embedding UI layer react to each phase transition
// without clientloop depending on any rendering package — the Non-goal
// spec.md §1 states explicitly. Every field is optional.
type Handlers struct {
	OnNewShipsPre  func(added, removed []idgen.ShipId)
	OnSimResults   func(results []wire.ShipResult)
	OnNewShipsPost func(added, removed []idgen.ShipId)
	OnTick         func(final bool)
	OnChat         func(author, content string)
	OnFinalTick    func() // fired once, on the last tick of a FinalTick(n) countdown (n counts that packet's tick)
}

// Client drives one connected player's phase sequence. It is deliberately
// I/O-agnostic: Feed is called by whatever transport decodes packets
// (websocket, in-process netslot sink) and SubmitPlan/SubmitChat/Logout
// return packets ready to send, rather than owning a connection.
type Client struct {
	log   logging.Logger
	phase Phase

	finalTicksRemaining int
	sawFinalTick        bool
	handlers            Handlers
}

// New creates a client state machine starting in PhaseWaitTick.
func New(log logging.Logger, handlers Handlers) *Client {
	return &Client{log: log, phase: PhaseWaitTick, handlers: handlers}
}

// Phase reports the client's current wait state, chiefly for tests.
func (c *Client) Phase() Phase { return c.phase }

// Feed advances the state machine on receipt of one server->client packet,
// per spec.md §4.9's phase sequence.
func (c *Client) Feed(pkt *wire.ClientBattlePacket) {
	switch pkt.Kind {
	case wire.PacketNewShipsPre:
		c.phase = PhaseNewShipsPre
		if c.handlers.OnNewShipsPre != nil {
			c.handlers.OnNewShipsPre(pkt.ShipsAdded, pkt.ShipsRemoved)
		}

	case wire.PacketSimResults:
		c.phase = PhaseSimResults
		if c.handlers.OnSimResults != nil {
			c.handlers.OnSimResults(pkt.Results)
		}

	case wire.PacketNewShipsPost:
		c.phase = PhaseNewShipsPost
		if c.handlers.OnNewShipsPost != nil {
			c.handlers.OnNewShipsPost(pkt.ShipsAdded, pkt.ShipsRemoved)
		}

	case wire.PacketTick:
		c.phase = PhaseWaitTick
		if pkt.FinalTick != nil {
			c.finalTicksRemaining = int(*pkt.FinalTick)
		}
		final := false
		if c.finalTicksRemaining > 0 {
			c.finalTicksRemaining--
			final = c.finalTicksRemaining == 0
		}
		if final {
			c.sawFinalTick = true
		}
		if c.handlers.OnTick != nil {
			c.handlers.OnTick(final)
		}
		if final && c.handlers.OnFinalTick != nil {
			c.handlers.OnFinalTick()
		}

	case wire.PacketChat:
		if c.handlers.OnChat != nil {
			c.handlers.OnChat(pkt.ChatAuthor, pkt.ChatContent)
		}
	}
}

// Done reports whether the sector session has ended (a final tick was
// delivered after a jump/logout), per spec.md §4.5 steps l/m.
func (c *Client) Done() bool { return c.sawFinalTick }

// SubmitPlan builds the outbound packet for this turn's plan, valid only
// during PhaseWaitTick (the 2.5s planning window spec.md §4.5 describes);
// callers submitting from any other phase still get a well-formed packet,
// since the server is the authority on deadline enforcement.
func SubmitPlan(p plan.ShipPlans) *wire.ServerBattlePacket {
	return &wire.ServerBattlePacket{Plan: &p}
}

// SubmitChat builds the outbound chat packet.
func SubmitChat(content string) *wire.ServerBattlePacket {
	return &wire.ServerBattlePacket{Chat: &content}
}

// SubmitLogout builds the outbound logout packet.
func SubmitLogout() *wire.ServerBattlePacket {
	return &wire.ServerBattlePacket{Logout: true}
}
