// Package station implements the out-of-combat ship editor of spec.md
// §4.6: a 10x8 placement grid where a docked client may place/remove
// modules, request a jump, chat, or log out. It is grounded on the
// teacher's server/ship_management_handlers.go, which exposes the same
// "modify my ship while not in combat" action set over a connection that
// isn't currently inside a game loop.
package station

import (
	"errors"

	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/logging"
	"github.com/lab1702/ironclad-sim/internal/login"
	"github.com/lab1702/ironclad-sim/internal/netslot"
	"github.com/lab1702/ironclad-sim/internal/plan"
	"github.com/lab1702/ironclad-sim/internal/ship"
	"github.com/lab1702/ironclad-sim/internal/shipmodel"
	"github.com/lab1702/ironclad-sim/internal/wire"
	"github.com/lab1702/ironclad-sim/internal/xfer"
)

// GridWidth and GridHeight bound the station's placement grid, per spec.md
// §4.6.
const (
	GridWidth  = 10
	GridHeight = 8
)

var (
	ErrOutOfBounds  = errors.New("station: placement out of grid bounds")
	ErrSpaceTaken   = errors.New("station: space already occupied")
	ErrNoSuchModule = errors.New("station: no such module index")
)

// Catalog is the set of module templates a docked client may place,
// indexed by the PlaceModelIndex a StationAction carries.
var Catalog = []shipmodel.ModuleTemplate{}

// Session is one docked client's editing session: the ship being edited
// plus the transport it is reachable on.
type Session struct {
	ClientID idgen.ClientId
	Account  *login.Account
	Ship     *ship.Ship
}

// Worker runs one station's slot, handling docked clients one action at a
// time; unlike a sector it has no turn loop; every action applies
// immediately, per spec.md §4.6. No reply is sent for place or remove, and
// their errors are discarded.
type Worker struct {
	log        logging.Logger
	Slot       *netslot.Slot
	Departures chan<- xfer.Departure

	sessions map[idgen.ClientId]*Session
}

// NewWorker creates a station worker bound to slot.
func NewWorker(log logging.Logger, slot *netslot.Slot, departures chan<- xfer.Departure) *Worker {
	return &Worker{log: log, Slot: slot, Departures: departures, sessions: make(map[idgen.ClientId]*Session)}
}

// BroadcastChat implements chat.Sink.
func (w *Worker) BroadcastChat(author, content string) {
	w.Slot.Broadcast(&wire.ClientBattlePacket{Kind: wire.PacketChat, ChatAuthor: author, ChatContent: content})
}

// Admit registers a newly-docked client's editing session.
func (w *Worker) Admit(clientID idgen.ClientId, acct *login.Account, sh *ship.Ship) {
	w.sessions[clientID] = &Session{ClientID: clientID, Account: acct, Ship: sh}
}

// Poll drains and handles every pending slot message without blocking,
// meant to be called on the same cooperative schedule as sector workers.
func (w *Worker) Poll() {
	for {
		msg, ok := w.Slot.TryReceive()
		if !ok {
			return
		}
		w.handle(msg)
	}
}

func (w *Worker) handle(msg netslot.Message) {
	switch msg.Kind {
	case netslot.Disconnected:
		w.logout(msg.ClientID)
	case netslot.ReceivedPacket:
		action, ok := msg.Packet.(*wire.StationAction)
		if !ok {
			return
		}
		w.handleAction(msg.ClientID, action)
	}
}

func (w *Worker) handleAction(clientID idgen.ClientId, action *wire.StationAction) {
	sess, ok := w.sessions[clientID]
	if !ok {
		return
	}

	switch action.Kind {
	case wire.StationActionPlace:
		w.place(sess, action.PlaceModelIndex, action.PlaceX, action.PlaceY)
	case wire.StationActionRemove:
		w.remove(sess, ship.ModuleIndex(action.RemoveModuleIndex))
	case wire.StationActionJump:
		w.jump(sess, plan.SectorID(action.JumpSector))
	case wire.StationActionChat:
		w.Slot.Broadcast(&wire.ClientBattlePacket{Kind: wire.PacketChat, ChatAuthor: sess.Account.Username, ChatContent: action.Chat})
	case wire.StationActionLogout:
		w.logout(clientID)
	}
}

// place implements spec.md §4.6's Place action: bounds-check against the
// 10x8 grid, then defer to ship.Ship.IsSpaceFree/AddModule for the overlap
// test and activation semantics already shared with ship generation.
func (w *Worker) place(sess *Session, modelIdx, x, y int) error {
	if modelIdx < 0 || modelIdx >= len(Catalog) {
		return ErrNoSuchModule
	}
	tpl := Catalog[modelIdx]
	if x < 0 || y < 0 || x+tpl.Shape.Side > GridWidth || y+tpl.Shape.Side > GridHeight {
		return ErrOutOfBounds
	}
	if !sess.Ship.IsSpaceFree(x, y, tpl.Shape) {
		return ErrSpaceTaken
	}
	sess.Ship.AddModule(ship.Module{
		X: x, Y: y, Shape: tpl.Shape,
		Power: tpl.Power, MinHP: tpl.MinHP, MaxHP: tpl.MaxHP,
		Stats: ship.ModuleHP{HP: tpl.MaxHP}, Kind: tpl.Kind,
		ProjectileDamage:        tpl.ProjectileDamage,
		ProjectileTicks:         tpl.ProjectileTicks,
		ProjectileShieldPierce:  tpl.ProjectileShieldPierce,
		ProjectileDamageShields: tpl.ProjectileDamageShields,
		BeamDamage:              tpl.BeamDamage,
		BeamMaxLength:           tpl.BeamMaxLength,
		RepairAmount:            tpl.RepairAmount,
	})
	return nil
}

// remove deactivates and drops a module, releasing any power/shields it
// was contributing through the same OnDeactivated path combat damage uses.
func (w *Worker) remove(sess *Session, idx ship.ModuleIndex) error {
	if int(idx) < 0 || int(idx) >= len(sess.Ship.Modules) {
		return ErrNoSuchModule
	}
	sess.Ship.DeactivateModule(idx)
	sess.Ship.Modules = append(sess.Ship.Modules[:idx], sess.Ship.Modules[idx+1:]...)
	sess.Ship.State.ModuleStats = append(sess.Ship.State.ModuleStats[:idx], sess.Ship.State.ModuleStats[idx+1:]...)
	for i := range sess.Ship.Modules {
		sess.Ship.Modules[i].Index = ship.ModuleIndex(i)
	}
	return nil
}

// jump departs the session's ship to the star map with the requested
// destination sector on the Departure (the account is left unchanged),
// mirroring a sector's own jump handling
// (spec.md §4.6, §4.5 step l).
func (w *Worker) jump(sess *Session, dest plan.SectorID) {
	stored := sess.Ship.ToStored()
	w.Departures <- xfer.Departure{
		Account:      sess.Account,
		Ship:         stored,
		Reason:       xfer.ReasonJump,
		TargetSector: dest,
	}
	delete(w.sessions, sess.ClientID)
}

func (w *Worker) logout(clientID idgen.ClientId) {
	sess, ok := w.sessions[clientID]
	if !ok {
		return
	}
	stored := sess.Ship.ToStored()
	w.Departures <- xfer.Departure{Account: sess.Account, Ship: stored, Reason: xfer.ReasonLogout}
	delete(w.sessions, clientID)
}
