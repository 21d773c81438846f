package sector

import (
	"github.com/lab1702/ironclad-sim/internal/battle"
	"github.com/lab1702/ironclad-sim/internal/ship"
)

// Victory accumulates lightweight per-sector combat telemetry, adapted
// from the teacher's tournament scoring (server/victory.go,
// server/tournament.go tally kills/points across a running match) into a
// running counter a sector worker updates every turn instead of on each
// discrete kill event.
type Victory struct {
	TurnsPlayed    int
	ShipsDestroyed int
	PeakShipCount  int
}

// NewVictory creates an empty telemetry counter.
func NewVictory() *Victory { return &Victory{} }

// RecordTurn updates the running tally from the context's post-turn state.
func (v *Victory) RecordTurn(ctx *battle.Context) {
	v.TurnsPlayed++
	live := 0
	ctx.Ships(func(_ ship.Index, _ *ship.Ship) { live++ })
	if live > v.PeakShipCount {
		v.PeakShipCount = live
	}
}

// RecordDestruction increments the running kill count, called once per
// ship destroyed during a turn's resolution.
func (v *Victory) RecordDestruction() { v.ShipsDestroyed++ }
