// Package battle implements the BattleContext of spec.md §3/§4.2: the
// mutable container owning all ships in a sector, with stable positional
// indexes and id/client-id lookup maps.
package battle

import (
	"fmt"

	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/ship"
)

// Context holds ships at stable positional indexes; freed slots become
// nil rather than being compacted, so no other ship's index ever changes
// out from under it.
type Context struct {
	ships        []*ship.Ship
	byID         map[idgen.ShipId]ship.Index
	byClientID   map[idgen.ClientId]ship.Index
}

// New creates an empty battle context.
func New() *Context {
	return &Context{
		byID:       make(map[idgen.ShipId]ship.Index),
		byClientID: make(map[idgen.ClientId]ship.Index),
	}
}

// AddShip stores sh in the first freed slot (appending only when none is
// free), assigns its Index, and updates both lookup maps.
func (c *Context) AddShip(sh *ship.Ship) ship.Index {
	idx := c.freeSlot()
	if idx < 0 {
		idx = ship.Index(len(c.ships))
		c.ships = append(c.ships, sh)
	} else {
		c.ships[idx] = sh
	}

	sh.Index = idx
	c.byID[sh.ID] = idx
	if !sh.ClientID.IsNil() {
		c.byClientID[sh.ClientID] = idx
	}
	return idx
}

// freeSlot returns the index of the first nil slot, or -1 if none.
func (c *Context) freeSlot() ship.Index {
	for i, existing := range c.ships {
		if existing == nil {
			return ship.Index(i)
		}
	}
	return -1
}

// RemoveShip empties the slot at idx, updates both maps, and invokes
// onRemoved for every remaining ship so targets pointing at the removed
// ship can be cleared (spec.md §4.2). Panics if idx is already empty: an
// invariant violation is a programmer error, per spec.md §7(e).
func (c *Context) RemoveShip(idx ship.Index, onRemoved func(remaining *ship.Ship, removed ship.Index)) *ship.Ship {
	sh := c.mustGet(idx)

	c.ships[idx] = nil
	delete(c.byID, sh.ID)
	if !sh.ClientID.IsNil() {
		delete(c.byClientID, sh.ClientID)
	}

	if onRemoved != nil {
		for _, remaining := range c.ships {
			if remaining != nil {
				onRemoved(remaining, idx)
			}
		}
	}

	return sh
}

// ClearTargetsOnShip clears any module Target referring to the removed
// ship index, the default onRemoved callback spec.md §4.2 describes.
func ClearTargetsOnShip(remaining *ship.Ship, removed ship.Index) {
	for i := range remaining.Modules {
		t := remaining.Modules[i].Target
		if t != nil && t.Ship == removed {
			remaining.Modules[i].Target = nil
		}
	}
}

// GetShipByIndex resolves a positional index to its ship, or nil if empty.
func (c *Context) GetShipByIndex(idx ship.Index) *ship.Ship {
	if int(idx) < 0 || int(idx) >= len(c.ships) {
		return nil
	}
	return c.ships[idx]
}

// GetShip resolves by stable ShipId.
func (c *Context) GetShip(id idgen.ShipId) *ship.Ship {
	idx, ok := c.byID[id]
	if !ok {
		return nil
	}
	return c.ships[idx]
}

// GetShipByClient resolves the ship owned by a connected client.
func (c *Context) GetShipByClient(cid idgen.ClientId) *ship.Ship {
	idx, ok := c.byClientID[cid]
	if !ok {
		return nil
	}
	return c.ships[idx]
}

// Ships iterates every occupied slot in index order.
func (c *Context) Ships(fn func(idx ship.Index, sh *ship.Ship)) {
	for i, sh := range c.ships {
		if sh != nil {
			fn(ship.Index(i), sh)
		}
	}
}

// Len returns the size of the underlying slot array, including empty
// (freed) slots.
func (c *Context) Len() int { return len(c.ships) }

func (c *Context) mustGet(idx ship.Index) *ship.Ship {
	sh := c.GetShipByIndex(idx)
	if sh == nil {
		panic(fmt.Sprintf("battle: reference to empty ship slot %d", idx))
	}
	return sh
}

// DealDamage implements tickqueue.ShipDamager, resolving a positional ship
// index to its live Ship and applying a Damage event, per spec.md §4.4.
// Silently ignores indexes that no longer resolve to a ship: the ship may
// have died or been removed earlier in the same tick sequence.
func (c *Context) DealDamage(shipIndex int, moduleIndex int, amount, shieldPiercing int, damageShields bool) {
	sh := c.GetShipByIndex(ship.Index(shipIndex))
	if sh == nil {
		return
	}
	sh.DealDamage(ship.ModuleIndex(moduleIndex), amount, shieldPiercing, damageShields)
}

// RepairDamage implements tickqueue.ShipDamager.
func (c *Context) RepairDamage(shipIndex int, moduleIndex int, amount int) {
	sh := c.GetShipByIndex(ship.Index(shipIndex))
	if sh == nil {
		return
	}
	sh.RepairDamage(ship.ModuleIndex(moduleIndex), amount)
}
