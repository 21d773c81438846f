package sector

import (
	"math/rand"
	"sort"

	"github.com/lab1702/ironclad-sim/internal/ai"
	"github.com/lab1702/ironclad-sim/internal/geom"
	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/logging"
	"github.com/lab1702/ironclad-sim/internal/login"
	"github.com/lab1702/ironclad-sim/internal/plan"
	"github.com/lab1702/ironclad-sim/internal/ship"
	"github.com/lab1702/ironclad-sim/internal/shipmodel"
	"github.com/lab1702/ironclad-sim/internal/tickevent"
	"github.com/lab1702/ironclad-sim/internal/tickqueue"
	"github.com/lab1702/ironclad-sim/internal/wire"
	"github.com/lab1702/ironclad-sim/internal/xfer"
)

// simulateNextTurn implements spec.md §4.5 steps a-n: admit waiting
// clients, fill in AI plans, apply every ship's plan, scan beam weapons,
// run the 100-tick scheduler, re-converge module stats, broadcast results,
// and process jumps/logouts/deaths.
func (w *Worker) simulateNextTurn() {
	w.turnNumber++
	log := w.log.With(logging.Int("turn", w.turnNumber))

	// a. waiting clients become active for this turn.
	var newlyActive []idgen.ShipId
	for cid, idx := range w.clientsWaiting {
		w.clientsActive[cid] = idx
		delete(w.clientsWaiting, cid)
		if sh := w.ctx.GetShipByIndex(idx); sh != nil {
			newlyActive = append(newlyActive, sh.ID)
		}
	}

	// b. generate AI plans for every unowned, non-exploding ship that
	// didn't already receive one this turn.
	w.generateAIPlans()

	// c. apply every pending plan against its ship's live power budget,
	// remembering any requested jump target for step l/m since ApplyPlans
	// only records the Jumping flag on the ship itself.
	for idx, plans := range w.shipPlans {
		sh := w.ctx.GetShipByIndex(idx)
		if sh == nil || sh.Exploding {
			continue
		}
		plan.ApplyPlans(sh, plans)
		if plans.TargetSector != nil {
			w.pendingJumpTarget[idx] = *plans.TargetSector
		}
	}
	w.shipPlans = make(map[ship.Index]plan.ShipPlans)
	w.receivedPlans = make(map[idgen.ClientId]bool)

	// d. schedule this turn's events: module BeforeSimulation hooks plus
	// the beam-hit scan (which beamBehavior.BeforeSimulation defers to us,
	// since it needs cross-ship module layouts).
	sched := tickqueue.New()
	w.ctx.Ships(func(idx ship.Index, sh *ship.Ship) {
		if sh.Exploding {
			return
		}
		for i := range sh.Modules {
			m := &sh.Modules[i]
			if !m.Active || m.Target == nil {
				continue
			}
			if m.Kind == ship.KindBeamWeapon {
				w.scheduleBeam(sched, idx, m)
				continue
			}
			ship.RunBeforeSimulation(m, idx, shipSchedulerAdapter{sched})
		}
	})

	// e/f. run the 100 deterministic ticks.
	for tick := 0; tick < tickqueue.TicksPerTurn; tick++ {
		sched.ApplyTick(w.ctx, tick)
	}

	// g. per-module after-simulation hooks (shield regen, etc).
	w.ctx.Ships(func(idx ship.Index, sh *ship.Ship) {
		if !sh.Exploding {
			sh.AfterSimulation()
		}
	})

	// h. re-converge: copy HP mirrors back, auto-(de)activate modules,
	// then rebalance power if damage left the ship over budget.
	w.ctx.Ships(func(idx ship.Index, sh *ship.Ship) {
		if sh.Exploding {
			return
		}
		sh.ApplyModuleStats()
		sh.DeactivateUnpowerableModules()
	})

	// i. mark newly-dead ships as exploding for this turn's broadcast,
	// then hand them to step j for removal/replacement.
	var destroyed []ship.Index
	w.ctx.Ships(func(idx ship.Index, sh *ship.Ship) {
		if !sh.Exploding && sh.State.HP <= 0 {
			sh.Exploding = true
			destroyed = append(destroyed, idx)
		}
	})

	// j. replace destroyed ships that belong to a connected client with a
	// fresh hull one level higher (capped at 15), preserving identity.
	var shipsAdded, shipsRemoved []idgen.ShipId
	for _, idx := range destroyed {
		sh := w.ctx.GetShipByIndex(idx)
		if sh == nil {
			continue
		}
		shipsRemoved = append(shipsRemoved, sh.ID)
		w.ctx.RemoveShip(idx, battleClearTargets)
		w.stats.RecordDestruction()

		if sh.ClientID.IsNil() {
			continue
		}
		nextLevel := sh.Level + 1
		if nextLevel > 15 {
			nextLevel = 15
		}
		replacement := shipmodel.Generate(w.rngSeed, sh.ID, sh.Name, shipmodel.HullDestroyer, nextLevel)
		replacement.ClientID = sh.ClientID
		replacement.Position = sh.Position
		newIdx := w.ctx.AddShip(replacement)
		w.clientsActive[sh.ClientID] = newIdx
		shipsAdded = append(shipsAdded, replacement.ID)
	}

	// k. broadcast this turn's results: new ships removed/added, then the
	// per-ship simulation outcome.
	if len(shipsRemoved) > 0 || len(newlyActive) > 0 {
		w.Slot.Broadcast(&wire.ClientBattlePacket{
			Kind:         wire.PacketNewShipsPre,
			ShipsAdded:   newlyActive,
			ShipsRemoved: nil,
		})
	}
	w.Slot.Broadcast(&wire.ClientBattlePacket{Kind: wire.PacketSimResults, Results: w.collectResults()})
	if len(shipsAdded) > 0 || len(shipsRemoved) > 0 {
		w.Slot.Broadcast(&wire.ClientBattlePacket{
			Kind:         wire.PacketNewShipsPost,
			ShipsAdded:   shipsAdded,
			ShipsRemoved: shipsRemoved,
		})
	}

	// l/m. process jumps and logouts. A client that both jumped and logged
	// out this turn is treated as a logout, per the Logout-dominates-Jump
	// resolution recorded in DESIGN.md.
	w.processDepartures(log)

	// n. record this turn's telemetry (turn count, destructions, peak ships).
	w.stats.RecordTurn(w.ctx)
}

// shipSchedulerAdapter satisfies ship.Scheduler by forwarding to a
// *tickqueue.Scheduler, which already implements Add with the same
// signature.
type shipSchedulerAdapter struct{ s *tickqueue.Scheduler }

func (a shipSchedulerAdapter) Add(tick int, shipIndex int, event tickevent.Event) {
	a.s.Add(tick, shipIndex, event)
}

func battleClearTargets(remaining *ship.Ship, removed ship.Index) {
	for i := range remaining.Modules {
		t := remaining.Modules[i].Target
		if t != nil && t.Ship == removed {
			remaining.Modules[i].Target = nil
		}
	}
}

// scheduleBeam implements the cross-ship beam-hit scan that
// beamBehavior.BeforeSimulation defers to the sector worker (it needs the
// target ship's live module layout, which the ship package's
// battle-context-free Behavior interface cannot reach). It schedules a
// single Damage event against the nearest hit module at the tick its
// sweep parameter maps to, per spec.md §4.3/geom.BeamTick.
func (w *Worker) scheduleBeam(sched *tickqueue.Scheduler, shooterIdx ship.Index, m *ship.Module) {
	target := m.Target
	if target == nil || target.Kind != ship.TargetBeam {
		return
	}
	targetShip := w.ctx.GetShipByIndex(target.Ship)
	if targetShip == nil || targetShip.Exploding {
		return
	}

	var (
		bestT       = 2.0
		bestHit     bool
		bestModule  ship.ModuleIndex
	)
	for i := range targetShip.Modules {
		tm := &targetShip.Modules[i]
		origin := geom.Vec2{
			X: targetShip.Position.X + float64(tm.X)*geom.CellSize,
			Y: targetShip.Position.Y + float64(tm.Y)*geom.CellSize,
		}
		hit, found := geom.BeamHits(target.BeamStart, target.BeamEnd, tm.Shape, origin, nil)
		if found && hit.T < bestT {
			bestT = hit.T
			bestHit = true
			bestModule = ship.ModuleIndex(i)
		}
	}
	if !bestHit {
		return
	}
	sched.Add(geom.BeamTick(bestT), int(target.Ship), tickevent.Damage{
		ModuleIndex: int(bestModule),
		Amount:      m.BeamDamage,
	})
}

// generateAIPlans fills in a ShipPlans for every unowned, non-exploding
// ship that hasn't already been planned this turn, per spec.md §4.5 step
// b. The RNG is reseeded every turn from the worker's fixed seed mixed
// with the turn number, never from wall-clock time (spec.md §9).
func (w *Worker) generateAIPlans() {
	rng := rand.New(rand.NewSource(w.rngSeed ^ int64(w.turnNumber)*1000003))

	var indexes []ship.Index
	w.ctx.Ships(func(idx ship.Index, sh *ship.Ship) {
		if sh.ClientID.IsNil() && !sh.Exploding {
			indexes = append(indexes, idx)
		}
	})
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	for _, idx := range indexes {
		if _, already := w.shipPlans[idx]; already {
			continue
		}
		self := w.ctx.GetShipByIndex(idx)
		var enemies []ai.EnemyView
		w.ctx.Ships(func(eIdx ship.Index, esh *ship.Ship) {
			if eIdx == idx || esh.Exploding {
				return
			}
			enemies = append(enemies, ai.EnemyView{Index: eIdx, Ship: esh, Position: esh.Position})
		})
		w.shipPlans[idx] = w.ai.Plan(self, enemies, rng)
	}
}

// collectResults builds the PacketSimResults payload for every live ship,
// per spec.md §4.3's write_results.
func (w *Worker) collectResults() []wire.ShipResult {
	var out []wire.ShipResult
	w.ctx.Ships(func(idx ship.Index, sh *ship.Ship) {
		modules := make([]wire.ModuleResult, len(sh.Modules))
		for i := range sh.Modules {
			m := &sh.Modules[i]
			mr := wire.ModuleResult{Active: m.Active}
			if m.Target != nil {
				mr.Target = &wire.ModuleTargetWire{
					ShipIndex:  int(m.Target.Ship),
					Kind:       uint8(m.Target.Kind),
					ModuleIdx:  int(m.Target.Module),
					BeamStartX: m.Target.BeamStart.X,
					BeamStartY: m.Target.BeamStart.Y,
					BeamEndX:   m.Target.BeamEnd.X,
					BeamEndY:   m.Target.BeamEnd.Y,
				}
			}
			modules[i] = mr
		}
		out = append(out, wire.ShipResult{
			ShipID:   sh.ID,
			PowerUse: sh.State.PowerUse,
			Jumping:  sh.Jumping,
			Modules:  modules,
		})
	})
	return out
}

// processDepartures implements spec.md §4.5 steps l/m: remove each
// departing ship from the context, send its final tick, and hand its
// stored ship back via a Departure message. The client is not transferred
// here: its slot ownership stays with this sector until the star map's
// next Join moves it.
func (w *Worker) processDepartures(log logging.Logger) {
	logoutSet := make(map[ship.Index]bool, len(w.shipsToLogout))
	for _, idx := range w.shipsToLogout {
		logoutSet[idx] = true
	}
	w.shipsToLogout = nil

	var departing []ship.Index
	w.ctx.Ships(func(idx ship.Index, sh *ship.Ship) {
		if sh.ClientID.IsNil() {
			return
		}
		if logoutSet[idx] || sh.Jumping {
			departing = append(departing, idx)
		}
	})

	for _, idx := range departing {
		sh := w.ctx.GetShipByIndex(idx)
		if sh == nil {
			continue
		}
		clientID := sh.ClientID
		reason := xfer.ReasonJump
		target := w.pendingJumpTarget[idx]
		if logoutSet[idx] {
			// Logout dominates a same-turn Jump request.
			reason = xfer.ReasonLogout
		}
		delete(w.pendingJumpTarget, idx)

		final := uint8(1)
		w.Slot.Send(clientID, &wire.ClientBattlePacket{Kind: wire.PacketTick, FinalTick: &final})

		stored := sh.ToStored()
		w.ctx.RemoveShip(idx, battleClearTargets)
		delete(w.clientsActive, clientID)
		delete(w.clientsWaiting, clientID)

		var acct *login.Account
		if binding, ok := w.accountsByClient[clientID]; ok && binding != nil {
			acct = binding.join.Account
		}
		delete(w.accountsByClient, clientID)

		w.Departures <- xfer.Departure{
			Account:      acct,
			Ship:         stored,
			Reason:       reason,
			TargetSector: target,
		}
		log.Info("client departed", logging.Str("client_id", clientID.String()), logging.Int("reason", int(reason)))
	}
}
