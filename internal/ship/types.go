// Package ship implements the ship and module state machine of spec.md
// §3/§4.3: grid placement, power discipline, damage/shield/repair
// semantics, and the per-module-kind behavior table.
package ship

import (
	"github.com/lab1702/ironclad-sim/internal/geom"
	"github.com/lab1702/ironclad-sim/internal/idgen"
)

// Index is a stable position of a ship within a battle.Context's slice.
// battle.Context owns the authoritative mapping; this package only stores
// the value a ship was told about.
type Index int

// ModuleIndex is a stable position of a module within its owning ship's
// Modules slice, assigned at AddModule time; removing a module at a
// station renumbers the modules after it.
type ModuleIndex int

// Kind tags a module's variant-specific behavior.
type Kind uint8

const (
	KindProjectileWeapon Kind = iota
	KindBeamWeapon
	KindShield
	KindDirShield
	KindEngine
	KindSolar
	KindCommand
	KindCabin
	KindRepair
)

// TargetKind tags the payload carried by a Target.
type TargetKind uint8

const (
	TargetShip TargetKind = iota
	TargetModule
	TargetOwnModule
	TargetAnyModule
	TargetBeam
)

// Target is a module's current aim: a ship index plus a kind-specific
// payload. The network/storage form uses only indexes (spec.md §9,
// "Cross-ship references"); dereferencing into live pointers happens only
// inside operations that hold the owning battle.Context.
type Target struct {
	Ship Index
	Kind TargetKind

	// Module is meaningful for TargetModule / TargetOwnModule / TargetAnyModule.
	Module ModuleIndex

	// BeamStart/BeamEnd are meaningful for TargetBeam, in world space.
	BeamStart geom.Vec2
	BeamEnd   geom.Vec2
}

// ShipState aggregates the derived combat stats for a Ship, as spec.md §3.
type ShipState struct {
	HP             int
	TotalModuleHP  int
	PowerUse       int
	MaxPower       int
	Thrust         int
	Shields        int
	MaxShields     int
	ModuleStats    []ModuleHP // parallel to Ship.Modules
}

// ModuleHP is the per-module HP mirror kept inside ShipState, per spec.md §3.
type ModuleHP struct {
	HP int
}

// CanActivateModule implements spec.md §4.3's power-discipline predicate:
// a module can be activated iff it is operable, not already active, and
// enough power remains in the ship's budget.
func (s *ShipState) CanActivateModule(m *Module) bool {
	return m.Operable() && !m.Active && (s.MaxPower-s.PowerUse) >= m.Power
}

// AddPower raises the ship's power budget (Solar.OnActivated).
func (s *ShipState) AddPower(amount int) { s.MaxPower += amount }

// RemovePower lowers the ship's power budget (Solar.OnDeactivated).
func (s *ShipState) RemovePower(amount int) {
	s.MaxPower -= amount
	if s.MaxPower < 0 {
		s.MaxPower = 0
	}
}

// AddShields raises the ship's shield capacity (Shield.OnActivated).
func (s *ShipState) AddShields(amount int) {
	s.MaxShields += amount
}

// RemoveShields lowers the ship's shield capacity (Shield.OnDeactivated),
// clamping current shields to the new maximum.
func (s *ShipState) RemoveShields(amount int) {
	s.MaxShields -= amount
	if s.MaxShields < 0 {
		s.MaxShields = 0
	}
	if s.Shields > s.MaxShields {
		s.Shields = s.MaxShields
	}
}

// Module is a grid-placed game piece: position, occupancy shape, power
// cost, HP thresholds, activation state, current target, and a kind tag
// selecting its behavior from the behavior table in behaviors.go.
type Module struct {
	X, Y  int
	Shape geom.Shape

	Power int
	MinHP int
	MaxHP int
	Stats ModuleHP

	Active bool
	Target *Target
	Index  ModuleIndex
	Kind   Kind

	// Kind-specific parameters, set at construction from the model store.
	ProjectileDamage      int
	ProjectileCount       int   // number of staggered projectiles
	ProjectileTicks       []int // deterministic tick per projectile
	ProjectileShieldPierce int
	ProjectileDamageShields bool

	BeamDamage    int
	BeamMaxLength float64

	RepairAmount int
}

// Operable reports whether the module has enough HP left to function at
// all, per spec.md §3.
func (m *Module) Operable() bool { return m.Stats.HP >= m.MinHP }

// Damaged reports whether the module has taken any damage from full health.
func (m *Module) Damaged() bool { return m.Stats.HP < m.MaxHP }

// Ship is a player- or AI-controlled combat unit: identity, grid-placed
// modules, aggregate state, position/waypoints, and lifecycle flags.
type Ship struct {
	ID       idgen.ShipId
	ClientID idgen.ClientId // idgen.NilClientId if AI-controlled
	Index    Index

	Name  string
	Level int

	State   ShipState
	Modules []Module

	Width, Height int // bounding box of placed modules, in grid cells

	Position  geom.Vec2
	Waypoints []geom.Vec2

	Jumping   bool
	Exploding bool
}
