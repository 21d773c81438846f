// Package shipmodel is the immutable "model store" of spec.md §9 Design
// Notes: hull and module templates, shared by value across sectors, plus
// the seedable ship factory spec.md §1 places out of scope as a
// replaceable collaborator. The templates here are intentionally simple —
// balancing hull content is explicitly not this engine's concern.
package shipmodel

import (
	"github.com/lab1702/ironclad-sim/internal/geom"
	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/ship"
)

// ModuleTemplate is an immutable description of one kind of module a hull
// can mount, analogous to the teacher's per-ship-type stat block
// (game/types.go ShipStats) but generalized to a grid-placed part.
type ModuleTemplate struct {
	Kind  ship.Kind
	Shape geom.Shape

	Power int
	MinHP int
	MaxHP int

	ProjectileDamage        int
	ProjectileTicks         []int
	ProjectileShieldPierce  int
	ProjectileDamageShields bool

	BeamDamage    int
	BeamMaxLength float64

	RepairAmount int
}

// HullTemplate describes a ship hull: its fixed module loadout and grid
// layout, indexed by HullID.
type HullTemplate struct {
	Name    string
	Modules []PlacedModule
}

// PlacedModule is one module instance at a fixed grid position on a hull.
type PlacedModule struct {
	X, Y     int
	Template ModuleTemplate
}

func sq(rows ...string) geom.Shape { return geom.ParseShape(rows) }

var (
	cabinTemplate  = ModuleTemplate{Kind: ship.KindCabin, Shape: sq("##", "##"), Power: 0, MinHP: 0, MaxHP: 40}
	cmdTemplate    = ModuleTemplate{Kind: ship.KindCommand, Shape: sq("##", "##"), Power: 0, MinHP: 0, MaxHP: 50}
	solarTemplate  = ModuleTemplate{Kind: ship.KindSolar, Shape: sq("#"), Power: 0, MinHP: 0, MaxHP: 20}
	engineTemplate = ModuleTemplate{Kind: ship.KindEngine, Shape: sq("#"), Power: 2, MinHP: 1, MaxHP: 30}
	shieldTemplate = ModuleTemplate{Kind: ship.KindShield, Shape: sq("#"), Power: 3, MinHP: 1, MaxHP: 25}
	projTemplate   = ModuleTemplate{
		Kind: ship.KindProjectileWeapon, Shape: sq("#"), Power: 2, MinHP: 1, MaxHP: 20,
		ProjectileDamage: 10, ProjectileTicks: []int{40},
	}
	beamTemplate = ModuleTemplate{
		Kind: ship.KindBeamWeapon, Shape: sq("#"), Power: 3, MinHP: 1, MaxHP: 20,
		BeamDamage: 1, BeamMaxLength: 8 * float64(ship.GridCellSize),
	}
	repairTemplate = ModuleTemplate{
		Kind: ship.KindRepair, Shape: sq("#"), Power: 2, MinHP: 1, MaxHP: 20,
		RepairAmount: 10,
	}
)

// HullID selects a HullTemplate from the store.
type HullID int

const (
	HullScout HullID = iota
	HullDestroyer
	HullCruiser
)

var hulls = map[HullID]HullTemplate{
	HullScout: {
		Name: "Scout",
		Modules: []PlacedModule{
			{X: 0, Y: 0, Template: cmdTemplate},
			{X: 1, Y: 0, Template: solarTemplate},
			{X: 0, Y: 1, Template: engineTemplate},
			{X: 1, Y: 1, Template: projTemplate},
		},
	},
	HullDestroyer: {
		Name: "Destroyer",
		Modules: []PlacedModule{
			{X: 0, Y: 0, Template: cmdTemplate},
			{X: 1, Y: 0, Template: cabinTemplate},
			{X: 2, Y: 0, Template: solarTemplate},
			{X: 0, Y: 1, Template: engineTemplate},
			{X: 1, Y: 1, Template: shieldTemplate},
			{X: 2, Y: 1, Template: projTemplate},
			{X: 3, Y: 0, Template: beamTemplate},
			{X: 3, Y: 1, Template: repairTemplate},
		},
	},
	HullCruiser: {
		Name: "Cruiser",
		Modules: []PlacedModule{
			{X: 0, Y: 0, Template: cmdTemplate},
			{X: 1, Y: 0, Template: cabinTemplate},
			{X: 2, Y: 0, Template: cabinTemplate},
			{X: 3, Y: 0, Template: solarTemplate},
			{X: 4, Y: 0, Template: solarTemplate},
			{X: 0, Y: 1, Template: engineTemplate},
			{X: 1, Y: 1, Template: engineTemplate},
			{X: 2, Y: 1, Template: shieldTemplate},
			{X: 3, Y: 1, Template: shieldTemplate},
			{X: 4, Y: 1, Template: repairTemplate},
			{X: 0, Y: 2, Template: projTemplate},
			{X: 1, Y: 2, Template: projTemplate},
			{X: 2, Y: 2, Template: beamTemplate},
		},
	},
}

// Catalog returns the full set of placeable module templates, in a stable
// order, for a station's build menu (spec.md §4.6).
func Catalog() []ModuleTemplate {
	return []ModuleTemplate{
		cabinTemplate, cmdTemplate, solarTemplate, engineTemplate,
		shieldTemplate, projTemplate, beamTemplate, repairTemplate,
	}
}

func newModule(x, y int, t ModuleTemplate) ship.Module {
	return ship.Module{
		X: x, Y: y, Shape: t.Shape,
		Power: t.Power, MinHP: t.MinHP, MaxHP: t.MaxHP,
		Stats: ship.ModuleHP{HP: t.MaxHP},
		Kind:  t.Kind,

		ProjectileDamage:        t.ProjectileDamage,
		ProjectileTicks:         t.ProjectileTicks,
		ProjectileShieldPierce:  t.ProjectileShieldPierce,
		ProjectileDamageShields: t.ProjectileDamageShields,

		BeamDamage:    t.BeamDamage,
		BeamMaxLength: t.BeamMaxLength,
		RepairAmount:  t.RepairAmount,
	}
}

// Generate builds a fresh Ship for the given hull at the given level.
// Expansion off the fixed templates is already deterministic, so identical
// (hullID, level) pairs always produce byte-identical module loadouts
// (spec.md §9 Determinism); seed is threaded through for callers and kept
// in the signature for a future randomized-loadout generator, but is not
// yet consulted. Level only scales module max HP (a simple, explicit
// progression — balancing is out of scope).
func Generate(seed int64, id idgen.ShipId, name string, hullID HullID, level int) *ship.Ship {
	tpl, ok := hulls[hullID]
	if !ok {
		tpl = hulls[HullScout]
	}

	sh := &ship.Ship{ID: id, Name: name, Level: level}
	levelMult := 1.0 + 0.1*float64(level-1)
	for _, pm := range tpl.Modules {
		m := newModule(pm.X, pm.Y, pm.Template)
		m.MaxHP = int(float64(m.MaxHP) * levelMult)
		m.Stats.HP = m.MaxHP
		sh.AddModule(m)
	}
	return sh
}
