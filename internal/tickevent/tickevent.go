// Package tickevent defines the two event payloads a tick bucket can carry
// (spec.md §3 "Tick scheduler"). It is a leaf package so both
// internal/ship (which schedules events from module behaviors) and
// internal/tickqueue (which stores and dispatches them) can depend on it
// without an import cycle.
package tickevent

// Event is the sum type of things a tick bucket entry can be.
type Event interface {
	isEvent()
}

// Damage is a scheduled hit against a specific module, with shield
// interaction flags per spec.md §4.3.
type Damage struct {
	ModuleIndex    int
	Amount         int
	ShieldPiercing int
	DamageShields  bool
}

// Repair is a scheduled heal against a specific module.
type Repair struct {
	ModuleIndex int
	Amount      int
}

func (Damage) isEvent() {}
func (Repair) isEvent() {}
