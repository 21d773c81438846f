// Package starmap implements the orchestrator of spec.md §4.7: the sector
// registry, the join handshake between a newly-connected client and its
// target sector/station worker, and the 6-second jump delay queue. It is
// grounded on the teacher's server/websocket.go Server.Run select loop,
// generalized from multiplexing individual client connections to
// multiplexing whole sector/station workers, each with its own inbound
// channel.
package starmap

import (
	"time"

	"github.com/lab1702/ironclad-sim/internal/chat"
	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/logging"
	"github.com/lab1702/ironclad-sim/internal/login"
	"github.com/lab1702/ironclad-sim/internal/netslot"
	"github.com/lab1702/ironclad-sim/internal/plan"
	"github.com/lab1702/ironclad-sim/internal/ship"
	"github.com/lab1702/ironclad-sim/internal/wire"
	"github.com/lab1702/ironclad-sim/internal/xfer"
)

// JumpDelay is the wall-clock hold a jumping ship spends in transit before
// it is handed to its destination sector, per spec.md §4.7.
const JumpDelay = 6 * time.Second

// Destination is a registered worker's inbound channel and broadcast slot,
// common to both sector and station workers from the star map's point of
// view.
type Destination struct {
	Incoming chan<- xfer.Join
	Slot     *netslot.Slot
}

// pendingJump is a departed ship waiting out JumpDelay before admission to
// its destination.
type pendingJump struct {
	readyAt time.Time
	dep     xfer.Departure
	clientID idgen.ClientId
}

// Map is the star map: every registered sector/station destination, the
// shared departures inbox every worker sends into, and the delayed-jump
// queue.
type Map struct {
	log logging.Logger

	RootSlot *netslot.Slot
	Accounts *login.Manager
	Chat     *chat.Server

	destinations map[plan.SectorID]*Destination
	departures   chan xfer.Departure

	pending []pendingJump

	stop chan struct{}
}

// New creates a star map rooted at rootSlot.
func New(log logging.Logger, rootSlot *netslot.Slot, accounts *login.Manager, chatServer *chat.Server) *Map {
	return &Map{
		log:          log,
		RootSlot:     rootSlot,
		Accounts:     accounts,
		Chat:         chatServer,
		destinations: make(map[plan.SectorID]*Destination),
		departures:   make(chan xfer.Departure, 256),
		stop:         make(chan struct{}),
	}
}

// Departures exposes the shared inbox sector/station workers send into
// when a client leaves them.
func (m *Map) Departures() chan<- xfer.Departure { return m.departures }

// Register attaches a sector or station's destination under id.
func (m *Map) Register(id plan.SectorID, dest *Destination) {
	m.destinations[id] = dest
}

// Stop halts the star map's processing loop.
func (m *Map) Stop() { close(m.stop) }

// Run drains departures and advances the jump delay queue, meant to run on
// its own goroutine.
func (m *Map) Run() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case dep := <-m.departures:
			m.handleDeparture(dep)
		case <-ticker.C:
			m.releaseReadyJumps()
		}
	}
}

// handleDeparture implements spec.md §4.5 steps l/m's star-map side: a
// logout returns the account to the available pool immediately, while a
// jump is queued for JumpDelay before admission to its destination.
func (m *Map) handleDeparture(dep xfer.Departure) {
	if dep.Account != nil {
		dep.Account.Ship = &dep.Ship
	}

	switch dep.Reason {
	case xfer.ReasonLogout:
		if dep.Account != nil {
			m.Accounts.Logout(dep.Account)
		}
	case xfer.ReasonJump:
		var clientID idgen.ClientId
		if dep.Account != nil {
			clientID = dep.Account.ClientID
		}
		m.pending = append(m.pending, pendingJump{
			readyAt:  time.Now().Add(JumpDelay),
			dep:      dep,
			clientID: clientID,
		})
	}
}

// releaseReadyJumps admits every queued jump whose delay has elapsed.
func (m *Map) releaseReadyJumps() {
	now := time.Now()
	remaining := m.pending[:0]
	for _, pj := range m.pending {
		if now.Before(pj.readyAt) {
			remaining = append(remaining, pj)
			continue
		}
		m.admit(pj.dep, pj.clientID)
	}
	m.pending = remaining
}

// Join performs the join handshake of spec.md §4.7: resolve the
// destination, hand it the joining ship, wait for its acknowledgment, then
// atomically transfer the client's slot ownership.
func (m *Map) Join(clientID idgen.ClientId, acct *login.Account, sector plan.SectorID, mode xfer.JoinMode) {
	dest, ok := m.destinations[sector]
	if !ok {
		m.log.Warn("join requested unknown sector", logging.Str("sector", string(sector)))
		return
	}

	if acct != nil {
		acct.CurrentSector = sector
	}

	var stored ship.StoredShip
	if acct != nil && acct.Ship != nil {
		stored = *acct.Ship
	}

	ack := make(chan struct{}, 1)
	dest.Incoming <- xfer.Join{Account: acct, Ship: stored, ClientID: clientID, Mode: mode, Ack: ack}

	kind := wire.ActionJoinSector
	if mode == xfer.JoinStation {
		kind = wire.ActionJoinStation
	}
	m.RootSlot.SendAnywhere(clientID, &wire.ClientActionPacket{Kind: kind})

	<-ack
	m.RootSlot.TransferClient(clientID, dest.Slot)
}

// admit resumes a delayed jump once JumpDelay has elapsed.
func (m *Map) admit(dep xfer.Departure, clientID idgen.ClientId) {
	if dep.Account != nil {
		dep.Account.CurrentSector = dep.TargetSector
	}
	m.Join(clientID, dep.Account, dep.TargetSector, xfer.JoinSector)
}
