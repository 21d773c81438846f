// Package plan holds a ship's pending activation/targeting/jump/logout
// intent for the next simulation (spec.md §3 "ModulePlans"/"ShipPlans"),
// and the ApplyPlans operation that reconciles those intents against a
// live ship's power budget (spec.md §4.3 "Apply plans").
package plan

import (
	"github.com/lab1702/ironclad-sim/internal/geom"
	"github.com/lab1702/ironclad-sim/internal/ship"
)

// SectorID names a sector a ship may jump to.
type SectorID string

// ModulePlans is the per-module pending state a client submits.
type ModulePlans struct {
	Active bool
	Target *ship.Target
}

// ShipPlans bundles one ship's full turn intent.
type ShipPlans struct {
	Modules       []ModulePlans // indexed by ship.ModuleIndex
	PlanPowerUse  int
	TargetSector  *SectorID
	Logout        bool
	Waypoints     []geom.Vec2
}

// ApplyPlans implements spec.md §4.3 "Apply plans (server)": for each
// module, activate if the plan requests it and power allows, or deactivate
// if the plan requests turning it off; assign the requested target
// regardless; and if a jump was requested, mark the ship jumping.
func ApplyPlans(sh *ship.Ship, plans ShipPlans) {
	for i := range sh.Modules {
		if i >= len(plans.Modules) {
			break
		}
		mp := plans.Modules[i]
		idx := ship.ModuleIndex(i)
		m := sh.ModuleAt(idx)

		if mp.Active && !m.Active {
			sh.ActivateModule(idx)
		} else if !mp.Active && m.Active {
			sh.DeactivateModule(idx)
		}

		m.Target = mp.Target
	}

	if len(plans.Waypoints) > 0 {
		sh.Waypoints = append([]geom.Vec2(nil), plans.Waypoints...)
	}

	if plans.TargetSector != nil {
		sh.Jumping = true
	}
}
