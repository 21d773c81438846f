package sector

import (
	"testing"
	"time"

	"github.com/lab1702/ironclad-sim/internal/geom"
	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/logging"
	"github.com/lab1702/ironclad-sim/internal/login"
	"github.com/lab1702/ironclad-sim/internal/netslot"
	"github.com/lab1702/ironclad-sim/internal/plan"
	"github.com/lab1702/ironclad-sim/internal/ship"
	"github.com/lab1702/ironclad-sim/internal/shipmodel"
	"github.com/lab1702/ironclad-sim/internal/xfer"
)

// joinClient wires a client into the slot (so Send/Broadcast have
// somewhere to deliver) and admits a fresh ship via handleIncoming.
func joinClient(t *testing.T, w *Worker, name string) (idgen.ClientId, chan netslot.Packet) {
	t.Helper()
	cid := idgen.NewClientId()
	sink := make(chan netslot.Packet, 32)
	w.Slot.Connect(cid, sink)
	w.Slot.TryReceive() // drain the Joined message, irrelevant to these tests

	sh := shipmodel.Generate(1, idgen.NewShipId(), name, shipmodel.HullDestroyer, 1)
	stored := sh.ToStored()
	ack := make(chan struct{}, 1)
	w.handleIncoming(xfer.Join{Account: &login.Account{Username: name}, Ship: stored, ClientID: cid, Ack: ack})
	<-ack
	<-sink // drain the PacketNewShipsPre sent directly to the joining client
	return cid, sink
}

func newSectorWorker() *Worker {
	slot := netslot.NewRootSlot("test-sector")
	incoming := make(chan xfer.Join, 8)
	departures := make(chan xfer.Departure, 8)
	return NewWorker(plan.SectorID("alpha"), logging.NewNop(), slot, incoming, departures, nil, time.Second, 0, 99)
}

func TestHandleIncomingAddsWaitingClient(t *testing.T) {
	w := newSectorWorker()
	cid, _ := joinClient(t, w, "pilot")

	if _, ok := w.clientsWaiting[cid]; !ok {
		t.Fatal("expected the joining client to be registered as waiting")
	}
	if w.ctx.Len() != 1 {
		t.Fatalf("battle context len = %d, want 1", w.ctx.Len())
	}
}

func TestSimulateNextTurnActivatesWaitingClient(t *testing.T) {
	w := newSectorWorker()
	cid, _ := joinClient(t, w, "pilot")

	w.simulateNextTurn()

	if _, stillWaiting := w.clientsWaiting[cid]; stillWaiting {
		t.Fatal("expected the client to move from waiting to active after one turn")
	}
	if _, active := w.clientsActive[cid]; !active {
		t.Fatal("expected the client to be active after simulateNextTurn")
	}
}

func TestSimulateNextTurnAppliesSubmittedPlan(t *testing.T) {
	w := newSectorWorker()
	cid, _ := joinClient(t, w, "pilot")
	w.simulateNextTurn() // admit from waiting -> active

	idx := w.clientsActive[cid]
	sh := w.ctx.GetShipByIndex(idx)
	engineIdx := -1
	for i := range sh.Modules {
		if sh.Modules[i].Kind == ship.KindEngine {
			engineIdx = i
			break
		}
	}
	if engineIdx < 0 {
		t.Fatal("expected the destroyer hull to include an engine module")
	}

	modules := make([]plan.ModulePlans, len(sh.Modules))
	modules[engineIdx] = plan.ModulePlans{Active: true}
	w.shipPlans[idx] = plan.ShipPlans{Modules: modules}

	w.simulateNextTurn()

	if !sh.Modules[engineIdx].Active {
		t.Fatal("expected the submitted plan to activate the engine")
	}
}

func TestAIShipGetsPlannedEachTurn(t *testing.T) {
	w := newSectorWorker()
	sh := shipmodel.Generate(5, idgen.NewShipId(), "drone", shipmodel.HullScout, 1)
	idx := w.ctx.AddShip(sh)

	w.simulateNextTurn()

	// The AI plan is consumed during simulateNextTurn, so by the time it
	// returns shipPlans has been cleared; assert indirectly via the
	// module activation state it would have produced (solar/command always
	// active).
	for i := range sh.Modules {
		if sh.Modules[i].Power == 0 && !sh.Modules[i].Active {
			t.Fatalf("expected free module %d to be active after AI planning", i)
		}
	}
	_ = idx
}

func TestDeathReplacesClientShipAtHigherLevel(t *testing.T) {
	w := newSectorWorker()
	cid, _ := joinClient(t, w, "pilot")
	w.simulateNextTurn()

	idx := w.clientsActive[cid]
	sh := w.ctx.GetShipByIndex(idx)
	sh.State.HP = 0

	w.simulateNextTurn()

	newIdx, stillActive := w.clientsActive[cid]
	if !stillActive {
		t.Fatal("expected the client to still have an active ship after dying")
	}
	replacement := w.ctx.GetShipByIndex(newIdx)
	if replacement == nil {
		t.Fatal("expected a replacement ship to exist")
	}
	if replacement.Level != sh.Level+1 {
		t.Fatalf("replacement level = %d, want %d", replacement.Level, sh.Level+1)
	}
	if replacement.ID != sh.ID {
		t.Fatal("expected the replacement to preserve the original ship id")
	}
	if replacement.ClientID != cid {
		t.Fatal("expected the replacement to preserve the client's ownership")
	}
	if got := w.ctx.GetShipByClient(cid); got != replacement {
		t.Fatal("expected GetShipByClient to resolve the respawned ship")
	}
}

func TestLogoutDepartsAndRemovesShip(t *testing.T) {
	w := newSectorWorker()
	cid, _ := joinClient(t, w, "pilot")
	w.simulateNextTurn() // admit

	w.enqueueLogout(cid)
	w.simulateNextTurn()

	if _, active := w.clientsActive[cid]; active {
		t.Fatal("expected the logged-out client to be removed from active clients")
	}

	select {
	case dep := <-w.Departures:
		if dep.Reason != xfer.ReasonLogout {
			t.Fatalf("departure reason = %v, want ReasonLogout", dep.Reason)
		}
	default:
		t.Fatal("expected a departure to be sent")
	}
}

func TestJumpDepartsWithTargetSector(t *testing.T) {
	w := newSectorWorker()
	cid, _ := joinClient(t, w, "pilot")
	w.simulateNextTurn() // admit

	idx := w.clientsActive[cid]
	dest := plan.SectorID("beta")
	sh := w.ctx.GetShipByIndex(idx)
	modules := make([]plan.ModulePlans, len(sh.Modules))
	w.shipPlans[idx] = plan.ShipPlans{Modules: modules, TargetSector: &dest}

	w.simulateNextTurn()

	select {
	case dep := <-w.Departures:
		if dep.Reason != xfer.ReasonJump {
			t.Fatalf("departure reason = %v, want ReasonJump", dep.Reason)
		}
		if dep.TargetSector != dest {
			t.Fatalf("target sector = %q, want %q", dep.TargetSector, dest)
		}
	default:
		t.Fatal("expected a jump departure to be sent")
	}
}

func TestLogoutDominatesSameTurnJump(t *testing.T) {
	w := newSectorWorker()
	cid, _ := joinClient(t, w, "pilot")
	w.simulateNextTurn() // admit

	idx := w.clientsActive[cid]
	dest := plan.SectorID("beta")
	sh := w.ctx.GetShipByIndex(idx)
	modules := make([]plan.ModulePlans, len(sh.Modules))
	w.shipPlans[idx] = plan.ShipPlans{Modules: modules, TargetSector: &dest}
	w.enqueueLogout(cid)

	w.simulateNextTurn()

	select {
	case dep := <-w.Departures:
		if dep.Reason != xfer.ReasonLogout {
			t.Fatalf("departure reason = %v, want ReasonLogout (logout dominates jump)", dep.Reason)
		}
	default:
		t.Fatal("expected a departure to be sent")
	}
}

func TestBeamWeaponDamagesTargetShip(t *testing.T) {
	w := newSectorWorker()

	// Both ships are given a (fake) owning ClientID so the turn's AI
	// planning pass, which only plans unowned ships, leaves the beam
	// target this test sets up untouched.
	shooter := &ship.Ship{ClientID: idgen.NewClientId()}
	shooter.AddModule(ship.Module{Kind: ship.KindCommand, Shape: geom.ParseShape([]string{"#"}), MaxHP: 50, Stats: ship.ModuleHP{HP: 50}})
	beamIdx := shooter.AddModule(ship.Module{Kind: ship.KindBeamWeapon, Shape: geom.ParseShape([]string{"#"}), Power: 3, MinHP: 1, MaxHP: 20, Stats: ship.ModuleHP{HP: 20}, BeamDamage: 50, BeamMaxLength: 10000})
	shooter.State.MaxPower = 10
	shooter.ActivateModule(beamIdx)
	shooterIdx := w.ctx.AddShip(shooter)

	victim := &ship.Ship{ClientID: idgen.NewClientId()}
	victim.AddModule(ship.Module{Kind: ship.KindCommand, Shape: geom.ParseShape([]string{"#"}), MinHP: 1, MaxHP: 50, Stats: ship.ModuleHP{HP: 50}})
	victimIdx := w.ctx.AddShip(victim)
	victim.Position = geom.Vec2{X: 100, Y: 0}

	// The victim's single-cell command module's hit-circle center sits at
	// (victim.Position + 24,24) per geom.Shape.OccupiedCenters; aim the
	// beam segment straight through that point.
	shooter.Modules[beamIdx].Target = &ship.Target{
		Ship: victimIdx, Kind: ship.TargetBeam,
		BeamStart: geom.Vec2{X: 0, Y: 24},
		BeamEnd:   geom.Vec2{X: 200, Y: 24},
	}

	beforeHP := victim.State.ModuleStats[0].HP
	w.simulateNextTurn()

	if victim.State.ModuleStats[0].HP >= beforeHP {
		t.Fatalf("expected the beam to damage the victim's command module: before=%d after=%d", beforeHP, victim.State.ModuleStats[0].HP)
	}
	_ = shooterIdx
}
