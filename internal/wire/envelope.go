package wire

import (
	"encoding/json"
	"fmt"

	"github.com/lab1702/ironclad-sim/internal/netslot"
)

// Envelope type tags for the JSON-over-websocket transport. Per spec.md
// §1's wire-format Non-goal, these names are illustrative, not normative.
const (
	EnvelopeLogin              = "login"
	EnvelopeLoginResult        = "login_result"
	EnvelopeServerBattle       = "server_battle"
	EnvelopeClientBattle       = "client_battle"
	EnvelopeStationAction      = "station_action"
	EnvelopeClientAction       = "client_action"
)

// LoginResultPacket is the server's reply to a LoginPacket.
type LoginResultPacket struct {
	Error LoginError
}

// EncodeEnvelope converts a decoded logical packet into the tagged JSON
// frame netslot.WSServeHTTP writes to the socket.
func EncodeEnvelope(p netslot.Packet) (netslot.WireEnvelope, error) {
	var tag string
	switch p.(type) {
	case *LoginPacket:
		tag = EnvelopeLogin
	case *LoginResultPacket:
		tag = EnvelopeLoginResult
	case *ServerBattlePacket:
		tag = EnvelopeServerBattle
	case *ClientBattlePacket:
		tag = EnvelopeClientBattle
	case *StationAction:
		tag = EnvelopeStationAction
	case *ClientActionPacket:
		tag = EnvelopeClientAction
	default:
		return netslot.WireEnvelope{}, fmt.Errorf("wire: no envelope tag for %T", p)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return netslot.WireEnvelope{}, err
	}
	return netslot.WireEnvelope{Type: tag, Data: data}, nil
}

// DecodeEnvelope parses a tagged JSON frame back into its logical packet.
func DecodeEnvelope(env netslot.WireEnvelope) (netslot.Packet, error) {
	switch env.Type {
	case EnvelopeLogin:
		var p LoginPacket
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case EnvelopeServerBattle:
		var p ServerBattlePacket
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case EnvelopeStationAction:
		var p StationAction
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("wire: unknown envelope type %q", env.Type)
	}
}
