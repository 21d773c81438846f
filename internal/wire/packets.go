// Package wire defines the logical packet types of spec.md §6 and a
// minimal length-prefixed little-endian binary codec. Per spec.md §1's
// explicit Non-goal on wire-format specifics, only the packet boundaries
// here are normative; internal/netslot's primary transport (WSServeHTTP) uses
// JSON instead, matching the teacher's own encoding/json-over-websocket
// style.
package wire

import (
	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/plan"
)

// ServerBattlePacket is a client -> server message while in a sector.
type ServerBattlePacket struct {
	Plan   *plan.ShipPlans
	Chat   *string
	Logout bool
}

// ClientBattlePacket is a server -> client message while in a sector.
type ClientBattlePacketKind uint8

const (
	PacketNewShipsPre ClientBattlePacketKind = iota
	PacketSimResults
	PacketNewShipsPost
	PacketTick
	PacketChat
)

// ClientBattlePacket carries one of the kinds above plus its payload.
type ClientBattlePacket struct {
	Kind ClientBattlePacketKind

	// PacketTick: nil unless this is the sector's final tick for a
	// departing client, in which case it is &1 per spec.md §4.5 steps l/m.
	FinalTick *uint8

	// PacketChat.
	ChatAuthor  string
	ChatContent string

	// PacketNewShipsPre / PacketNewShipsPost.
	ShipsAdded   []idgen.ShipId
	ShipsRemoved []idgen.ShipId

	// PacketSimResults.
	Results []ShipResult
}

// ShipResult is the per-ship serialization surface of spec.md §4.3's
// write_results: power use, jumping flag, and per-module (active, target).
type ShipResult struct {
	ShipID   idgen.ShipId
	PowerUse int
	Jumping  bool
	Modules  []ModuleResult
}

// ModuleResult mirrors one module's post-apply-plans state.
type ModuleResult struct {
	Active bool
	Target *ModuleTargetWire
}

// ModuleTargetWire is the network form of a ship.Target: indexes only, per
// spec.md §9 "Cross-ship references".
type ModuleTargetWire struct {
	ShipIndex  int
	Kind       uint8
	ModuleIdx  int
	BeamStartX float64
	BeamStartY float64
	BeamEndX   float64
	BeamEndY   float64
}

// StationAction is a client -> server message while at a station.
type StationActionKind uint8

const (
	StationActionPlace StationActionKind = iota
	StationActionRemove
	StationActionJump
	StationActionChat
	StationActionLogout
)

// StationAction carries one of the kinds above plus its payload.
type StationAction struct {
	Kind StationActionKind

	PlaceModelIndex int
	PlaceX, PlaceY  int

	RemoveModuleIndex int

	JumpSector string

	Chat string
}

// ClientAction tells a transferred client which UI mode to enter.
type ClientActionKind uint8

const (
	ActionJoinSector ClientActionKind = iota
	ActionJoinStation
	ActionLogout
)

// ClientActionPacket wraps a ClientActionKind for transmission ahead of a
// star-map slot transfer, so the client switches UI mode at the same
// logical moment its messages start being routed to the new worker.
type ClientActionPacket struct {
	Kind ClientActionKind
}

// LoginPacket is the client's credential submission.
type LoginPacket struct {
	Username string
	Password string
}

// LoginError enumerates spec.md §6's login outcomes.
type LoginError string

const (
	NoLoginError        LoginError = ""
	ErrNoSuchAccount    LoginError = "no_such_account"
	ErrWrongPassword    LoginError = "wrong_password"
	ErrAlreadyLoggedIn  LoginError = "already_logged_in"
)
