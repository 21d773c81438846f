// Package login implements the account model and login gateway of spec.md
// §3 ("Account")/§4.8: account lookup/creation, the single-login sentinel,
// and automatic ship generation for brand-new accounts.
package login

import (
	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/plan"
	"github.com/lab1702/ironclad-sim/internal/ship"
)

// Account is a player's persisted identity: credentials, their one stored
// ship (if any), and bookkeeping about where they currently are, per
// spec.md §3.
type Account struct {
	ID       idgen.AccountId
	Username string
	Password string

	Ship *ship.StoredShip

	ClientID      idgen.ClientId
	CurrentSector plan.SectorID
}
