// Package idgen provides the stable identifiers used across the battle
// engine: ships, clients, and accounts are all identified by a UUID wrapped
// in a distinct type so the compiler catches mixing them up.
package idgen

import "github.com/google/uuid"

// ShipId uniquely identifies a ship for its lifetime, independent of its
// positional index in a battle.Context.
type ShipId uuid.UUID

// ClientId identifies a connected player session.
type ClientId uuid.UUID

// AccountId identifies a persisted player account.
type AccountId uuid.UUID

// NilClientId is the zero value, used for ships with no owning client (AI).
var NilClientId = ClientId(uuid.Nil)

// NewShipId generates a fresh random ship identifier.
func NewShipId() ShipId { return ShipId(uuid.New()) }

// NewClientId generates a fresh random client identifier.
func NewClientId() ClientId { return ClientId(uuid.New()) }

// NewAccountId generates a fresh random account identifier.
func NewAccountId() AccountId { return AccountId(uuid.New()) }

func (s ShipId) String() string    { return uuid.UUID(s).String() }
func (c ClientId) String() string  { return uuid.UUID(c).String() }
func (a AccountId) String() string { return uuid.UUID(a).String() }

// IsNil reports whether the client id is the zero/nil value, meaning the
// owning ship has no connected player (an AI-controlled hull).
func (c ClientId) IsNil() bool { return c == NilClientId }
