// Package ai generates per-turn plans for unowned (client_id == nil) ships,
// per spec.md §4.5(b). It is adapted from the teacher's continuous-steering
// bot (server/bots.go, server/bot_combat.go, server/bot_navigation.go)
// into a one-shot planner invoked once per turn rather than once per
// physics frame: instead of nudging heading/speed every tick, Plan decides
// this turn's module activations, targets, and a short waypoint hop.
package ai

import (
	"math"
	"math/rand"

	"github.com/lab1702/ironclad-sim/internal/geom"
	"github.com/lab1702/ironclad-sim/internal/plan"
	"github.com/lab1702/ironclad-sim/internal/ship"
)

// EngageRange is the distance within which a bot commits its weapons to a
// target, loosely modeled on the teacher's PhaserDist/TractorDist style
// fixed engagement constants (game/types.go).
const EngageRange = 6000.0

// Planner produces a ShipPlans for one AI-controlled ship given its own
// state and the list of enemy ships visible to it. rng must be seeded per
// sector per turn (never from wall-clock time), per spec.md §9
// Determinism.
type Planner struct{}

// Plan implements spec.md §4.5(b)'s ai.plan(ship, enemies) contract.
func (Planner) Plan(self *ship.Ship, enemies []EnemyView, rng *rand.Rand) plan.ShipPlans {
	target, dist := nearestEnemy(self, enemies)

	modulePlans := make([]plan.ModulePlans, len(self.Modules))
	for i := range self.Modules {
		m := &self.Modules[i]
		mp := plan.ModulePlans{Active: m.Active}

		switch m.Kind {
		case ship.KindSolar, ship.KindEngine, ship.KindCommand, ship.KindCabin:
			mp.Active = true

		case ship.KindShield, ship.KindDirShield:
			mp.Active = target != nil && dist < EngageRange*1.5

		case ship.KindProjectileWeapon:
			if target != nil && dist < EngageRange {
				mp.Active = true
				mp.Target = &ship.Target{
					Ship: target.Index,
					Kind: ship.TargetModule,
					Module: pickTargetModule(target.Ship, rng),
				}
			} else {
				mp.Active = false
			}

		case ship.KindBeamWeapon:
			if target != nil && dist < m.BeamMaxLength {
				mp.Active = true
				dir := geom.Vec2{X: target.Position.X - self.Position.X, Y: target.Position.Y - self.Position.Y}
				mp.Target = &ship.Target{
					Ship: target.Index,
					Kind: ship.TargetBeam,
					BeamStart: self.Position,
					BeamEnd:   geom.Vec2{X: self.Position.X + dir.X, Y: self.Position.Y + dir.Y},
				}
			} else {
				mp.Active = false
			}

		case ship.KindRepair:
			mp.Active = self.State.HP < self.State.TotalModuleHP
			if mp.Active {
				mp.Target = &ship.Target{Ship: self.Index, Kind: ship.TargetOwnModule, Module: mostDamagedModule(self)}
			}
		}

		modulePlans[i] = mp
	}

	waypoints := navigationHop(self, target, rng)

	return plan.ShipPlans{Modules: modulePlans, Waypoints: waypoints}
}

// EnemyView is the read-only view of an enemy ship the AI may target,
// carrying just enough to aim and navigate without exposing the full
// battle.Context (the sector worker builds this list fresh each turn).
type EnemyView struct {
	Index    ship.Index
	Ship     *ship.Ship
	Position geom.Vec2
}

func nearestEnemy(self *ship.Ship, enemies []EnemyView) (*EnemyView, float64) {
	var best *EnemyView
	bestDist := 0.0
	for i := range enemies {
		e := &enemies[i]
		if e.Ship.Exploding {
			continue
		}
		dx := e.Position.X - self.Position.X
		dy := e.Position.Y - self.Position.Y
		d := dx*dx + dy*dy
		if best == nil || d < bestDist {
			best = e
			bestDist = d
		}
	}
	if best == nil {
		return nil, 0
	}
	return best, sqrt(bestDist)
}

func pickTargetModule(target *ship.Ship, rng *rand.Rand) ship.ModuleIndex {
	candidates := make([]ship.ModuleIndex, 0, len(target.Modules))
	for i := range target.Modules {
		if target.Modules[i].Operable() {
			candidates = append(candidates, ship.ModuleIndex(i))
		}
	}
	if len(candidates) == 0 {
		return 0
	}
	return candidates[rng.Intn(len(candidates))]
}

func mostDamagedModule(self *ship.Ship) ship.ModuleIndex {
	worst := ship.ModuleIndex(0)
	worstRatio := 2.0
	for i := range self.Modules {
		m := &self.Modules[i]
		if m.MaxHP == 0 {
			continue
		}
		ratio := float64(m.Stats.HP) / float64(m.MaxHP)
		if ratio < worstRatio {
			worstRatio = ratio
			worst = ship.ModuleIndex(i)
		}
	}
	return worst
}

// navigationHop adapts the teacher's approach/flee steering
// (server/bot_navigation.go) into a single next-waypoint decision: close
// to engagement range of the nearest enemy, or hold position with a small
// random jitter if none is visible.
func navigationHop(self *ship.Ship, target *EnemyView, rng *rand.Rand) []geom.Vec2 {
	if target == nil {
		jitterX := float64(rng.Intn(400) - 200)
		jitterY := float64(rng.Intn(400) - 200)
		return []geom.Vec2{{X: self.Position.X + jitterX, Y: self.Position.Y + jitterY}}
	}

	dx := target.Position.X - self.Position.X
	dy := target.Position.Y - self.Position.Y
	d := sqrt(dx*dx + dy*dy)
	if d < 1 {
		return nil
	}
	step := d - EngageRange*0.6
	if step < 0 {
		step = 0
	}
	return []geom.Vec2{{
		X: self.Position.X + dx/d*step,
		Y: self.Position.Y + dy/d*step,
	}}
}

func sqrt(v float64) float64 { return math.Sqrt(v) }
