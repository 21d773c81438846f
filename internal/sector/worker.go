// Package sector implements the sector worker of spec.md §4.5: the
// single-threaded cooperative turn loop that collects plans, runs AI,
// simulates 100 deterministic ticks, and broadcasts results.
package sector

import (
	"math/rand"
	"time"

	"github.com/lab1702/ironclad-sim/internal/ai"
	"github.com/lab1702/ironclad-sim/internal/battle"
	"github.com/lab1702/ironclad-sim/internal/chat"
	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/logging"
	"github.com/lab1702/ironclad-sim/internal/netslot"
	"github.com/lab1702/ironclad-sim/internal/plan"
	"github.com/lab1702/ironclad-sim/internal/ship"
	"github.com/lab1702/ironclad-sim/internal/wire"
	"github.com/lab1702/ironclad-sim/internal/xfer"
)

// Worker owns one sector's BattleContext and runs its turn loop on its own
// goroutine, per spec.md §5 ("each sector ... runs on its own OS thread").
type Worker struct {
	ID  plan.SectorID
	log logging.Logger

	Slot       *netslot.Slot
	Incoming   <-chan xfer.Join
	Departures chan<- xfer.Departure
	ChatOut    chan<- chat.Message

	ctx *battle.Context
	ai  ai.Planner

	TurnLength   time.Duration
	PlanDeadline time.Duration // server-side deadline, §4.5 step 2 (3.5s)

	turnNumber    int
	turnStart     time.Time
	simulatedTurn bool

	clientsActive  map[idgen.ClientId]ship.Index
	clientsWaiting map[idgen.ClientId]ship.Index
	receivedPlans  map[idgen.ClientId]bool
	shipPlans      map[ship.Index]plan.ShipPlans

	shipsToAdd    []idgen.ShipId
	shipsToRemove []idgen.ShipId
	shipsToLogout []ship.Index

	pendingJumpTarget map[ship.Index]plan.SectorID

	accountsByClient map[idgen.ClientId]*accountBinding

	rngSeed int64
	stats   *Victory

	stop chan struct{}
}

type accountBinding struct {
	join xfer.Join
}

// NewWorker creates a sector worker bound to slot and the given
// cross-worker channels. rngSeed is mixed with the turn number each turn
// to derive the AI's PRNG, never from wall-clock time (spec.md §9).
func NewWorker(id plan.SectorID, log logging.Logger, slot *netslot.Slot, incoming <-chan xfer.Join, departures chan<- xfer.Departure, chatOut chan<- chat.Message, turnLength, planDeadline time.Duration, rngSeed int64) *Worker {
	return &Worker{
		ID:               id,
		log:              log.With(logging.Str("sector_id", string(id))),
		Slot:             slot,
		Incoming:         incoming,
		Departures:       departures,
		ChatOut:          chatOut,
		ctx:              battle.New(),
		ai:               ai.Planner{},
		TurnLength:       turnLength,
		PlanDeadline:     planDeadline,
		clientsActive:    make(map[idgen.ClientId]ship.Index),
		clientsWaiting:   make(map[idgen.ClientId]ship.Index),
		receivedPlans:    make(map[idgen.ClientId]bool),
		shipPlans:        make(map[ship.Index]plan.ShipPlans),
		pendingJumpTarget: make(map[ship.Index]plan.SectorID),
		accountsByClient: make(map[idgen.ClientId]*accountBinding),
		rngSeed:          rngSeed,
		stats:            NewVictory(),
		stop:             make(chan struct{}),
		turnStart:        time.Now(),
	}
}

// Context exposes the sector's battle context, chiefly for tests.
func (w *Worker) Context() *battle.Context { return w.ctx }

// Stop signals Run to exit at the next loop iteration.
func (w *Worker) Stop() { close(w.stop) }

// BroadcastChat implements chat.Sink.
func (w *Worker) BroadcastChat(author, content string) {
	w.Slot.Broadcast(&wire.ClientBattlePacket{
		Kind:        wire.PacketChat,
		ChatAuthor:  author,
		ChatContent: content,
	})
}

// Run is the worker's cooperative polling loop, spec.md §4.5 steps 1-6.
// It is meant to run on its own goroutine and returns when Stop is called.
func (w *Worker) Run() {
	pollInterval := w.TurnLength / 100
	if pollInterval <= 0 {
		pollInterval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.step()
		}
	}
}

// step executes one iteration of the turn loop, spec.md §4.5 steps 1-6.
func (w *Worker) step() {
	elapsed := time.Since(w.turnStart)

	if !w.simulatedTurn && elapsed >= w.PlanDeadline {
		w.simulateNextTurn()
		w.simulatedTurn = true
	}

	if elapsed >= w.TurnLength {
		w.simulatedTurn = false
		w.turnStart = time.Now()
		w.Slot.Broadcast(&wire.ClientBattlePacket{Kind: wire.PacketTick})
	}

	if msg, ok := w.Slot.TryReceive(); ok {
		w.handleSlotMessage(msg)
	}

	select {
	case joined := <-w.Incoming:
		w.handleIncoming(joined)
	default:
	}
}

func (w *Worker) handleSlotMessage(msg netslot.Message) {
	switch msg.Kind {
	case netslot.Joined:
		w.log.Info("client joined slot", logging.Str("client_id", msg.ClientID.String()))

	case netslot.Disconnected:
		// spec.md §7(d): a dropped connection is treated as a Logout.
		w.enqueueLogout(msg.ClientID)

	case netslot.ReceivedPacket:
		pkt, ok := msg.Packet.(*wire.ServerBattlePacket)
		if !ok {
			return
		}
		w.handlePlanPacket(msg.ClientID, pkt)
	}
}

func (w *Worker) handlePlanPacket(clientID idgen.ClientId, pkt *wire.ServerBattlePacket) {
	idx, ok := w.clientsActive[clientID]
	if !ok {
		idx, ok = w.clientsWaiting[clientID]
		if !ok {
			return
		}
	}
	sh := w.ctx.GetShipByIndex(idx)
	if sh == nil {
		return
	}

	if pkt.Chat != nil {
		w.ChatOut <- chat.Message{From: clientID, Author: sh.Name, Scope: chat.ScopeBroadcast, Content: *pkt.Chat}
	}

	if pkt.Logout {
		w.enqueueLogout(clientID)
		return
	}

	if pkt.Plan != nil {
		// spec.md §4.5 "Ordering and fairness": plans arriving after the
		// simulate-now deadline are ignored for this turn.
		if w.simulatedTurn {
			return
		}
		if sh.Exploding {
			return
		}
		w.shipPlans[idx] = *pkt.Plan
		w.receivedPlans[clientID] = true
	}
}

func (w *Worker) enqueueLogout(clientID idgen.ClientId) {
	idx, ok := w.clientsActive[clientID]
	if !ok {
		idx, ok = w.clientsWaiting[clientID]
		if !ok {
			return
		}
	}
	w.shipsToLogout = append(w.shipsToLogout, idx)
}

// handleIncoming implements spec.md §4.5 step 6: place the joining ship
// with a random offset, send the join packet, add it to the context, and
// acknowledge so the star map can complete the slot transfer.
func (w *Worker) handleIncoming(j xfer.Join) {
	sh := ship.FromStored(j.Ship, j.ClientID)

	rng := rand.New(rand.NewSource(w.rngSeed ^ int64(w.turnNumber) ^ int64(len(w.clientsActive))))
	sh.Position.X = float64(rng.Intn(4000) - 2000)
	sh.Position.Y = float64(rng.Intn(4000) - 2000)

	idx := w.ctx.AddShip(sh)
	w.clientsWaiting[j.ClientID] = idx
	w.accountsByClient[j.ClientID] = &accountBinding{join: j}
	w.shipsToAdd = append(w.shipsToAdd, sh.ID)

	w.Slot.Send(j.ClientID, &wire.ClientBattlePacket{
		Kind:       wire.PacketNewShipsPre,
		ShipsAdded: []idgen.ShipId{sh.ID},
	})

	if j.Ack != nil {
		j.Ack <- struct{}{}
	}
}
