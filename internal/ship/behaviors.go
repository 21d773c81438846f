package ship

import "github.com/lab1702/ironclad-sim/internal/tickevent"

// Behavior is the method table spec.md §9 Design Notes calls for instead of
// open inheritance: one small interface covering every point in the turn
// where a module kind needs to act.
type Behavior interface {
	// OnActivated runs when the module transitions inactive -> active. It
	// is the only place MaxPower/MaxShields/Thrust may change upward.
	OnActivated(m *Module, s *ShipState)
	// OnDeactivated runs when the module transitions active -> inactive.
	OnDeactivated(m *Module, s *ShipState)
	// TargetMode reports the kind of Target this module kind expects.
	TargetMode() TargetKind
	// BeforeSimulation lets an active module schedule tick events against
	// its target. sched is an interface satisfied by *tickqueue.Scheduler;
	// defined structurally here to avoid an import cycle (tickqueue
	// depends on nothing in ship, but ship's behavior table is invoked
	// from tickqueue-owning code, so the event constructors live in the
	// shared tickevent package instead).
	BeforeSimulation(m *Module, shipIdx Index, sched Scheduler)
	// AfterSimulation runs once per turn after all ticks have applied,
	// e.g. shield regeneration.
	AfterSimulation(m *Module, s *ShipState)
}

// Scheduler is the subset of tickqueue.Scheduler's API that module
// behaviors need: the ability to queue a damage or repair event at a tick.
type Scheduler interface {
	Add(tick int, shipIndex int, event tickevent.Event)
}

var behaviorTable = map[Kind]Behavior{
	KindProjectileWeapon: projectileBehavior{},
	KindBeamWeapon:       beamBehavior{},
	KindShield:           shieldBehavior{},
	KindDirShield:        shieldBehavior{}, // spec.md §4.3: behaviorally identical to Shield
	KindEngine:           engineBehavior{},
	KindSolar:            solarBehavior{},
	KindCommand:          structuralBehavior{},
	KindCabin:            structuralBehavior{},
	KindRepair:           repairBehavior{},
}

func behaviorFor(k Kind) Behavior { return behaviorTable[k] }

// RunBeforeSimulation dispatches to m's kind-specific BeforeSimulation hook.
// Exported so callers outside this package (the sector worker, which owns
// the battle.Context a beam scan needs) can drive the same per-kind
// dispatch table for every other module kind.
func RunBeforeSimulation(m *Module, shipIdx Index, sched Scheduler) {
	behaviorFor(m.Kind).BeforeSimulation(m, shipIdx, sched)
}

// --- Solar ---

type solarBehavior struct{}

func (solarBehavior) OnActivated(m *Module, s *ShipState)  { s.AddPower(5) }
func (solarBehavior) OnDeactivated(m *Module, s *ShipState) { s.RemovePower(5) }
func (solarBehavior) TargetMode() TargetKind                { return TargetShip }
func (solarBehavior) BeforeSimulation(*Module, Index, Scheduler) {}
func (solarBehavior) AfterSimulation(*Module, *ShipState)        {}

// --- Shield / DirShield ---

type shieldBehavior struct{}

func (shieldBehavior) OnActivated(m *Module, s *ShipState)   { s.AddShields(2) }
func (shieldBehavior) OnDeactivated(m *Module, s *ShipState) { s.RemoveShields(2) }
func (shieldBehavior) TargetMode() TargetKind                { return TargetShip }
func (shieldBehavior) BeforeSimulation(*Module, Index, Scheduler) {}
func (shieldBehavior) AfterSimulation(m *Module, s *ShipState) {
	if !m.Active {
		return
	}
	s.Shields++
	if s.Shields > s.MaxShields {
		s.Shields = s.MaxShields
	}
}

// --- Engine ---

type engineBehavior struct{}

func (engineBehavior) OnActivated(m *Module, s *ShipState)   { s.Thrust += m.Power }
func (engineBehavior) OnDeactivated(m *Module, s *ShipState) { s.Thrust -= m.Power }
func (engineBehavior) TargetMode() TargetKind                { return TargetShip }
func (engineBehavior) BeforeSimulation(*Module, Index, Scheduler) {}
func (engineBehavior) AfterSimulation(*Module, *ShipState)        {}

// --- Command / Cabin ---
// Purely structural: presence matters to higher layers (crew/command loss),
// but the module itself moves no ShipState fields.

type structuralBehavior struct{}

func (structuralBehavior) OnActivated(*Module, *ShipState)   {}
func (structuralBehavior) OnDeactivated(*Module, *ShipState) {}
func (structuralBehavior) TargetMode() TargetKind            { return TargetShip }
func (structuralBehavior) BeforeSimulation(*Module, Index, Scheduler) {}
func (structuralBehavior) AfterSimulation(*Module, *ShipState)        {}

// --- ProjectileWeapon ---

type projectileBehavior struct{}

func (projectileBehavior) OnActivated(*Module, *ShipState)   {}
func (projectileBehavior) OnDeactivated(*Module, *ShipState) {}
func (projectileBehavior) TargetMode() TargetKind            { return TargetModule }

// BeforeSimulation schedules one Damage event per staggered projectile at
// the module's deterministic tick offsets (spec.md §4.3: "e.g. tick 40",
// generalized here to ProjectileTicks so a module can fire a salvo).
func (b projectileBehavior) BeforeSimulation(m *Module, shipIdx Index, sched Scheduler) {
	if !m.Active || m.Target == nil {
		return
	}
	ticks := m.ProjectileTicks
	if len(ticks) == 0 {
		ticks = []int{40}
	}
	for _, tick := range ticks {
		sched.Add(tick, int(m.Target.Ship), tickevent.Damage{
			ModuleIndex:    int(m.Target.Module),
			Amount:         m.ProjectileDamage,
			ShieldPiercing: m.ProjectileShieldPierce,
			DamageShields:  m.ProjectileDamageShields,
		})
	}
}
func (projectileBehavior) AfterSimulation(*Module, *ShipState) {}

// --- BeamWeapon ---

type beamBehavior struct{}

func (beamBehavior) OnActivated(*Module, *ShipState)   {}
func (beamBehavior) OnDeactivated(*Module, *ShipState) {}
func (beamBehavior) TargetMode() TargetKind            { return TargetBeam }

// BeforeSimulation is a no-op here: the beam-hit scan needs the target
// ship's module layout, which this package's battle-context-free Behavior
// interface cannot reach. The sector worker performs the scan itself
// (see internal/sector's scheduleBeam), reusing this module's BeamDamage.
func (beamBehavior) BeforeSimulation(*Module, Index, Scheduler) {}
func (beamBehavior) AfterSimulation(*Module, *ShipState)        {}

// --- Repair ---

type repairBehavior struct{}

func (repairBehavior) OnActivated(*Module, *ShipState)   {}
func (repairBehavior) OnDeactivated(*Module, *ShipState) {}
func (repairBehavior) TargetMode() TargetKind            { return TargetOwnModule }

// BeforeSimulation schedules the two Repair events at ticks 40 and 80
// mandated by spec.md §4.3.
func (repairBehavior) BeforeSimulation(m *Module, shipIdx Index, sched Scheduler) {
	if !m.Active || m.Target == nil {
		return
	}
	for _, tick := range [2]int{40, 80} {
		sched.Add(tick, int(shipIdx), tickevent.Repair{
			ModuleIndex: int(m.Target.Module),
			Amount:      m.RepairAmount,
		})
	}
}
func (repairBehavior) AfterSimulation(*Module, *ShipState) {}
