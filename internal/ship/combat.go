package ship

// DealDamage implements spec.md §4.3's deal_damage: shields absorb up to
// (shields - shieldPiercing) of the incoming damage (never negative), the
// remainder is subtracted from the module's HP and the ship's HP, both
// saturating at zero. damageShields additionally subtracts the absorbed
// portion from the ship's shield pool.
func (sh *Ship) DealDamage(moduleIdx ModuleIndex, amount, shieldPiercing int, damageShields bool) {
	if int(moduleIdx) < 0 || int(moduleIdx) >= len(sh.Modules) {
		return
	}

	shieldAbsorb := sh.State.Shields - shieldPiercing
	if shieldAbsorb > amount {
		shieldAbsorb = amount
	}
	if shieldAbsorb < 0 {
		shieldAbsorb = 0
	}

	if damageShields {
		sh.State.Shields -= shieldAbsorb
		if sh.State.Shields < 0 {
			sh.State.Shields = 0
		}
	}

	remainder := amount - shieldAbsorb
	if remainder <= 0 {
		return
	}

	ms := &sh.State.ModuleStats[moduleIdx]
	ms.HP -= remainder
	if ms.HP < 0 {
		ms.HP = 0
	}

	sh.State.HP -= remainder
	if sh.State.HP < 0 {
		sh.State.HP = 0
	}
}

// RepairDamage implements spec.md §4.3's Repair event: adds HP to a
// module's HP mirror up to its MaxHP, and adds the amount actually healed
// to ship HP, capped at TotalModuleHP.
func (sh *Ship) RepairDamage(moduleIdx ModuleIndex, amount int) {
	if int(moduleIdx) < 0 || int(moduleIdx) >= len(sh.Modules) {
		return
	}
	m := &sh.Modules[moduleIdx]
	ms := &sh.State.ModuleStats[moduleIdx]

	before := ms.HP
	ms.HP += amount
	if ms.HP > m.MaxHP {
		ms.HP = m.MaxHP
	}
	healed := ms.HP - before

	sh.State.HP += healed
	if sh.State.HP > sh.State.TotalModuleHP {
		sh.State.HP = sh.State.TotalModuleHP
	}
}

// ApplyModuleStats implements spec.md §4.3's post-tick re-convergence
// step: copy the HP mirror back onto each module, then deactivate any
// module that became damaged while active (releasing its power), and
// reactivate any free (zero-power), undamaged module that was left
// inactive.
func (sh *Ship) ApplyModuleStats() {
	for i := range sh.Modules {
		m := &sh.Modules[i]
		m.Stats.HP = sh.State.ModuleStats[i].HP

		switch {
		case m.Active && m.Damaged():
			behaviorFor(m.Kind).OnDeactivated(m, &sh.State)
			m.Active = false
			sh.State.PowerUse -= m.Power
			if sh.State.PowerUse < 0 {
				sh.State.PowerUse = 0
			}
		case !m.Active && m.Power == 0 && !m.Damaged():
			behaviorFor(m.Kind).OnActivated(m, &sh.State)
			m.Active = true
		}
	}
}

// DeactivateUnpowerableModules implements spec.md §4.3: while the ship's
// power draw exceeds its budget, deactivate the first still-active powered
// module in placement order, releasing its power, until the budget is
// satisfied again. The sector worker runs it after ApplyModuleStats.
func (sh *Ship) DeactivateUnpowerableModules() {
	for sh.State.PowerUse > sh.State.MaxPower {
		deactivatedAny := false
		for i := range sh.Modules {
			m := &sh.Modules[i]
			if !m.Active || m.Power == 0 {
				continue
			}
			behaviorFor(m.Kind).OnDeactivated(m, &sh.State)
			m.Active = false
			sh.State.PowerUse -= m.Power
			deactivatedAny = true
			break
		}
		if !deactivatedAny {
			break
		}
	}
}

// AfterSimulation runs every module's per-turn after-simulation hook
// (e.g. shield regeneration), per spec.md §4.5 step g.
func (sh *Ship) AfterSimulation() {
	for i := range sh.Modules {
		m := &sh.Modules[i]
		behaviorFor(m.Kind).AfterSimulation(m, &sh.State)
	}
}

// ActivateModule is the sole path by which a module turns on: it checks
// the power-discipline predicate, fires OnActivated, and books the power
// draw. Reports whether activation happened.
func (sh *Ship) ActivateModule(idx ModuleIndex) bool {
	m := &sh.Modules[idx]
	if !sh.State.CanActivateModule(m) {
		return false
	}
	behaviorFor(m.Kind).OnActivated(m, &sh.State)
	m.Active = true
	sh.State.PowerUse += m.Power
	return true
}

// DeactivateModule is the sole path by which a module turns off.
func (sh *Ship) DeactivateModule(idx ModuleIndex) {
	m := &sh.Modules[idx]
	if !m.Active {
		return
	}
	behaviorFor(m.Kind).OnDeactivated(m, &sh.State)
	m.Active = false
	sh.State.PowerUse -= m.Power
	if sh.State.PowerUse < 0 {
		sh.State.PowerUse = 0
	}
}

// ModuleAt returns a pointer to the module at idx, or nil if out of range.
func (sh *Ship) ModuleAt(idx ModuleIndex) *Module {
	if int(idx) < 0 || int(idx) >= len(sh.Modules) {
		return nil
	}
	return &sh.Modules[idx]
}
