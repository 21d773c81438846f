// Package tickqueue implements the deterministic per-tick event scheduler
// of spec.md §3/§4.4: a fixed 100-bucket array, recreated each turn, whose
// buckets dispatch Damage/Repair events to ship state in strictly
// ascending tick order and insertion order within a tick.
package tickqueue

import (
	"github.com/lab1702/ironclad-sim/internal/tickevent"
)

// TicksPerTurn is the number of simulation ticks in one turn, per spec.md
// §6 (TICKS_PER_SECOND=20, so 100 ticks cover 5s of simulated time).
const TicksPerTurn = 100

// entry is one scheduled event, bound to the ship index it targets.
type entry struct {
	shipIndex int
	event     tickevent.Event
}

// Scheduler is the fixed 100-bucket tick array. A new Scheduler must be
// created for every turn (spec.md §4.4: "recreated each turn").
type Scheduler struct {
	buckets [TicksPerTurn][]entry
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Add appends an event to the given tick's bucket, in insertion order.
// Ticks outside [0, TicksPerTurn) are clamped into range so a
// mis-parameterized module cannot schedule out of bounds.
func (s *Scheduler) Add(tick int, shipIndex int, event tickevent.Event) {
	if tick < 0 {
		tick = 0
	}
	if tick >= TicksPerTurn {
		tick = TicksPerTurn - 1
	}
	s.buckets[tick] = append(s.buckets[tick], entry{shipIndex: shipIndex, event: event})
}

// ShipDamager is the subset of battle.Context's API ApplyTick needs:
// resolving a ship index to something that can take damage/repair.
type ShipDamager interface {
	DealDamage(shipIndex int, moduleIndex int, amount, shieldPiercing int, damageShields bool)
	RepairDamage(shipIndex int, moduleIndex int, amount int)
}

// ApplyTick drains bucket `tick` and dispatches each event to its target
// ship, in the bucket's insertion order (spec.md §4.4). It is a no-op if
// the ship index no longer resolves to a live ship (the ship died or left
// earlier in the same tick sequence).
func (s *Scheduler) ApplyTick(ctx ShipDamager, tick int) {
	if tick < 0 || tick >= TicksPerTurn {
		return
	}
	for _, e := range s.buckets[tick] {
		switch ev := e.event.(type) {
		case tickevent.Damage:
			ctx.DealDamage(e.shipIndex, ev.ModuleIndex, ev.Amount, ev.ShieldPiercing, ev.DamageShields)
		case tickevent.Repair:
			ctx.RepairDamage(e.shipIndex, ev.ModuleIndex, ev.Amount)
		}
	}
}

// Bucket returns the number of entries scheduled at tick (0 when out of
// range), for tests.
func (s *Scheduler) Bucket(tick int) int {
	if tick < 0 || tick >= TicksPerTurn {
		return 0
	}
	return len(s.buckets[tick])
}
