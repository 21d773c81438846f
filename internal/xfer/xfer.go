// Package xfer defines the cross-worker account-transfer protocol that
// flows between the star-map orchestrator and sector/station workers
// (spec.md §4.5 step 6, §4.7, §4.8): the join handshake and the
// jump/logout departure messages.
package xfer

import (
	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/login"
	"github.com/lab1702/ironclad-sim/internal/plan"
	"github.com/lab1702/ironclad-sim/internal/ship"
)

// JoinMode tells the receiving worker which client-side UI to request.
type JoinMode uint8

const (
	JoinSector JoinMode = iota
	JoinStation
)

// Join is sent from the star map to a sector/station worker to introduce
// an incoming client, per spec.md §4.5 step 6 / §4.7. Ack must be signaled
// exactly once by the receiving worker so the star map can complete the
// slot transfer.
type Join struct {
	Account  *login.Account
	Ship     ship.StoredShip
	ClientID idgen.ClientId
	Mode     JoinMode
	Ack      chan<- struct{}
}

// DepartureReason tags why a ship is leaving its current sector/station.
type DepartureReason uint8

const (
	ReasonJump DepartureReason = iota
	ReasonLogout
)

// Departure is sent from a sector/station worker back to the star map when
// a client leaves, per spec.md §4.5 steps l/m and §4.6.
type Departure struct {
	Account    *login.Account
	Ship       ship.StoredShip
	Reason     DepartureReason
	TargetSector plan.SectorID // meaningful only for ReasonJump
}
