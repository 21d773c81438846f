package ship

import "github.com/lab1702/ironclad-sim/internal/idgen"

// StoredShip mirrors Ship without runtime battle fields (no Index,
// Position, Waypoints, Jumping/Exploding), per spec.md §3. It is the form
// that round-trips through the star map's AccountManager.
type StoredShip struct {
	ID    idgen.ShipId
	Name  string
	Level int

	State   ShipState
	Modules []Module

	Width, Height int
}

// ToStored converts a live Ship into its storage form. Target pointers are
// preserved as-is (they already reference only indexes, never battle
// context pointers, per spec.md §9), so no further sanitization is needed.
func (sh *Ship) ToStored() StoredShip {
	modules := make([]Module, len(sh.Modules))
	copy(modules, sh.Modules)

	stats := make([]ModuleHP, len(sh.State.ModuleStats))
	copy(stats, sh.State.ModuleStats)

	state := sh.State
	state.ModuleStats = stats

	return StoredShip{
		ID:      sh.ID,
		Name:    sh.Name,
		Level:   sh.Level,
		State:   state,
		Modules: modules,
		Width:   sh.Width,
		Height:  sh.Height,
	}
}

// FromStored rebuilds a battle-ready Ship from its storage form, assigning
// a fresh ClientID binding and leaving Index/Position/Waypoints/Jumping/
// Exploding at their zero values for the caller (typically a sector
// worker's join handler) to set.
func FromStored(s StoredShip, clientID idgen.ClientId) *Ship {
	modules := make([]Module, len(s.Modules))
	copy(modules, s.Modules)

	stats := make([]ModuleHP, len(s.State.ModuleStats))
	copy(stats, s.State.ModuleStats)

	state := s.State
	state.ModuleStats = stats

	return &Ship{
		ID:       s.ID,
		ClientID: clientID,
		Name:     s.Name,
		Level:    s.Level,
		State:    state,
		Modules:  modules,
		Width:    s.Width,
		Height:   s.Height,
	}
}
