package ship

import (
	"testing"

	"github.com/lab1702/ironclad-sim/internal/geom"
	"github.com/lab1702/ironclad-sim/internal/idgen"
)

func sq(rows ...string) geom.Shape { return geom.ParseShape(rows) }

func TestAddModuleActivatesFreeModules(t *testing.T) {
	sh := &Ship{}
	idx := sh.AddModule(Module{Kind: KindCommand, Shape: sq("#"), Power: 0, MaxHP: 50, Stats: ModuleHP{HP: 50}})
	if !sh.Modules[idx].Active {
		t.Fatal("a zero-power, undamaged module should activate immediately on AddModule")
	}
}

func TestAddModulePoweredStaysInactive(t *testing.T) {
	sh := &Ship{}
	idx := sh.AddModule(Module{Kind: KindEngine, Shape: sq("#"), Power: 2, MaxHP: 30, Stats: ModuleHP{HP: 30}})
	if sh.Modules[idx].Active {
		t.Fatal("a powered module should not auto-activate")
	}
}

func TestIsSpaceFreeOverlap(t *testing.T) {
	sh := &Ship{}
	sh.AddModule(Module{Shape: sq("##", "##"), X: 0, Y: 0})
	if sh.IsSpaceFree(1, 1, sq("#")) {
		t.Fatal("expected overlap with the already-placed 2x2 module")
	}
	if !sh.IsSpaceFree(2, 0, sq("#")) {
		t.Fatal("expected free space just past the 2x2 module")
	}
}

func TestRecomputeHPIsHalfTotalModuleHP(t *testing.T) {
	sh := &Ship{}
	sh.AddModule(Module{Shape: sq("#"), MaxHP: 40, Stats: ModuleHP{HP: 40}})
	sh.AddModule(Module{Shape: sq("#"), MaxHP: 60, Stats: ModuleHP{HP: 60}})
	if sh.State.TotalModuleHP != 100 {
		t.Fatalf("TotalModuleHP = %d, want 100", sh.State.TotalModuleHP)
	}
	if sh.State.HP != 50 {
		t.Fatalf("HP = %d, want 50 (half of TotalModuleHP)", sh.State.HP)
	}
}

func destroyerLikeShip() *Ship {
	sh := &Ship{}
	sh.AddModule(Module{Kind: KindCommand, Shape: sq("#"), MaxHP: 50, Stats: ModuleHP{HP: 50}})
	sh.AddModule(Module{Kind: KindProjectileWeapon, Shape: sq("#"), Power: 2, MinHP: 1, MaxHP: 20, Stats: ModuleHP{HP: 20}})
	sh.State.MaxPower = 10
	sh.ActivateModule(1)
	return sh
}

func TestDealDamageNoShields(t *testing.T) {
	sh := destroyerLikeShip()
	beforeHP := sh.State.HP
	sh.DealDamage(1, 15, 0, false)
	if sh.State.ModuleStats[1].HP != 5 {
		t.Fatalf("module HP = %d, want 5", sh.State.ModuleStats[1].HP)
	}
	if sh.State.HP != beforeHP-15 {
		t.Fatalf("ship HP = %d, want %d", sh.State.HP, beforeHP-15)
	}
}

func TestDealDamageShieldsAbsorb(t *testing.T) {
	sh := destroyerLikeShip()
	sh.State.Shields = 10
	sh.DealDamage(1, 8, 0, true)
	if sh.State.ModuleStats[1].HP != 20 {
		t.Fatalf("module HP = %d, want 20 (fully absorbed)", sh.State.ModuleStats[1].HP)
	}
	if sh.State.Shields != 2 {
		t.Fatalf("shields = %d, want 2", sh.State.Shields)
	}
}

func TestDealDamageShieldPiercing(t *testing.T) {
	sh := destroyerLikeShip()
	sh.State.Shields = 10
	sh.DealDamage(1, 8, 5, true)
	// effective absorb = shields - pierce = 5, remainder = 3
	if sh.State.ModuleStats[1].HP != 17 {
		t.Fatalf("module HP = %d, want 17", sh.State.ModuleStats[1].HP)
	}
}

func TestDealDamageSaturatesAtZero(t *testing.T) {
	sh := destroyerLikeShip()
	sh.DealDamage(1, 9999, 0, false)
	if sh.State.ModuleStats[1].HP != 0 {
		t.Fatalf("module HP = %d, want 0 (saturated)", sh.State.ModuleStats[1].HP)
	}
	if sh.State.HP < 0 {
		t.Fatalf("ship HP went negative: %d", sh.State.HP)
	}
}

func TestRepairDamageClampsAtMaxHP(t *testing.T) {
	sh := destroyerLikeShip()
	sh.DealDamage(1, 15, 0, false)
	sh.RepairDamage(1, 999)
	if sh.State.ModuleStats[1].HP != 20 {
		t.Fatalf("module HP = %d, want clamped to MaxHP 20", sh.State.ModuleStats[1].HP)
	}
}

func TestApplyModuleStatsDeactivatesDamagedModule(t *testing.T) {
	sh := destroyerLikeShip()
	sh.DealDamage(1, 20, 0, false) // drop weapon to 0 HP, below MinHP 1
	sh.ApplyModuleStats()
	if sh.Modules[1].Active {
		t.Fatal("expected the inoperable weapon module to deactivate")
	}
	if sh.State.PowerUse != 0 {
		t.Fatalf("PowerUse = %d, want 0 after deactivation", sh.State.PowerUse)
	}
}

func TestDeactivateUnpowerableModulesReleasesPower(t *testing.T) {
	sh := &Ship{}
	sh.AddModule(Module{Kind: KindCommand, Shape: sq("#"), MaxHP: 50, Stats: ModuleHP{HP: 50}})
	sh.State.MaxPower = 5
	sh.AddModule(Module{Kind: KindEngine, Shape: sq("#"), Power: 2, MinHP: 1, MaxHP: 30, Stats: ModuleHP{HP: 30}})
	sh.AddModule(Module{Kind: KindShield, Shape: sq("#"), Power: 3, MinHP: 1, MaxHP: 25, Stats: ModuleHP{HP: 25}})
	sh.ActivateModule(1)
	sh.ActivateModule(2)

	sh.State.MaxPower = 2 // simulate a solar module going offline
	sh.DeactivateUnpowerableModules()

	if sh.State.PowerUse > sh.State.MaxPower {
		t.Fatalf("PowerUse %d still exceeds MaxPower %d", sh.State.PowerUse, sh.State.MaxPower)
	}
}

func TestActivateModuleRespectsPowerBudget(t *testing.T) {
	sh := &Ship{}
	sh.AddModule(Module{Kind: KindEngine, Shape: sq("#"), Power: 5, MinHP: 1, MaxHP: 30, Stats: ModuleHP{HP: 30}})
	sh.State.MaxPower = 2
	if sh.ActivateModule(0) {
		t.Fatal("expected activation to fail: insufficient power budget")
	}
}

func TestStoredRoundTrip(t *testing.T) {
	sh := destroyerLikeShip()
	sh.Name = "Roundtrip"
	sh.Level = 3
	sh.Position = geom.Vec2{X: 10, Y: 20}
	sh.ID = idgen.NewShipId()

	stored := sh.ToStored()
	rebuilt := FromStored(stored, idgen.NewClientId())

	if rebuilt.ID != sh.ID || rebuilt.Name != sh.Name || rebuilt.Level != sh.Level {
		t.Fatal("identity fields did not survive the round trip")
	}
	if len(rebuilt.Modules) != len(sh.Modules) {
		t.Fatalf("module count = %d, want %d", len(rebuilt.Modules), len(sh.Modules))
	}
	if rebuilt.State.HP != sh.State.HP {
		t.Fatalf("HP = %d, want %d", rebuilt.State.HP, sh.State.HP)
	}

	// mutating the rebuilt ship's module stats must not alias the original.
	rebuilt.State.ModuleStats[0].HP = 0
	if sh.State.ModuleStats[0].HP == 0 {
		t.Fatal("FromStored should deep-copy ModuleStats, not alias them")
	}
}
