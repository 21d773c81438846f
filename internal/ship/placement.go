package ship

import "github.com/lab1702/ironclad-sim/internal/geom"

// GridCellSize is the world-unit side length of one ship-grid cell
// (spec.md §6 constants: 48 units).
const GridCellSize = 48

// IsSpaceFree tests whether placing shape at (x,y) (grid coordinates, in
// sub-cells) would overlap any already-placed module's occupied sub-cells,
// per spec.md §4.3. The test is symmetric: placing module A then testing B
// gives the same answer as placing B then testing A, since Shape.Overlaps
// only inspects the two shapes' cell masks and grid offsets, not insertion
// order.
func (sh *Ship) IsSpaceFree(x, y int, shape geom.Shape) bool {
	for i := range sh.Modules {
		m := &sh.Modules[i]
		if shape.Overlaps(x, y, m.Shape, m.X, m.Y) {
			return false
		}
	}
	return true
}

// AddModule places a new module on the ship. It updates the ship's
// bounding box, assigns the next ModuleIndex, appends the parallel HP
// mirror in ShipState, recomputes TotalModuleHP/HP, and — per spec.md
// §4.3 — immediately activates the module if it is free (zero power cost)
// and undamaged.
func (sh *Ship) AddModule(m Module) ModuleIndex {
	idx := ModuleIndex(len(sh.Modules))
	m.Index = idx
	sh.Modules = append(sh.Modules, m)
	sh.State.ModuleStats = append(sh.State.ModuleStats, ModuleHP{HP: m.Stats.HP})

	right := m.X + m.Shape.Side
	bottom := m.Y + m.Shape.Side
	if right > sh.Width {
		sh.Width = right
	}
	if bottom > sh.Height {
		sh.Height = bottom
	}

	sh.recomputeHP()

	added := &sh.Modules[idx]
	if added.Power == 0 && !added.Damaged() {
		behaviorFor(added.Kind).OnActivated(added, &sh.State)
		added.Active = true
	}
	return idx
}

// recomputeHP recomputes TotalModuleHP and HP from the module HP mirror,
// per spec.md §3's construction-time invariant (hp == sum(module hp)/2).
func (sh *Ship) recomputeHP() {
	total := 0
	for _, ms := range sh.State.ModuleStats {
		total += ms.HP
	}
	sh.State.TotalModuleHP = total
	sh.State.HP = total / 2
}
