package netslot

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/logging"
)

// isValidOrigin mirrors the teacher's CheckOrigin policy
// (server/websocket.go isValidOrigin): allow same-origin, allow localhost
// for local development, reject everything else.
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == u.Host {
		return true
	}
	return strings.HasPrefix(u.Host, "localhost:") || strings.HasPrefix(u.Host, "127.0.0.1:") ||
		u.Host == "localhost" || u.Host == "127.0.0.1"
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true,
}

// WireEnvelope is the JSON frame shape exchanged over the websocket,
// matching the teacher's ClientMessage/ServerMessage convention
// (server/websocket.go): a type tag plus an opaque payload. Per spec.md
// §1's wire-format Non-goal, this is an illustrative transport, not a
// normative byte layout.
type WireEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// WSServeHTTP upgrades an HTTP request to a websocket connection, assigns
// it a fresh ClientId, registers it with slot, and pumps packets between
// the socket and the slot until the connection closes. encode/decode
// convert between the slot's logical Packet values and JSON wire
// envelopes; callers supply these because packet schemas are
// engine-specific (battle vs. station vs. login), not netslot's concern.
func WSServeHTTP(slot *Slot, log logging.Logger, decode func(WireEnvelope) (Packet, error), encode func(Packet) (WireEnvelope, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", logging.Err(err))
			return
		}

		clientID := idgen.NewClientId()
		send := make(chan Packet, 256)
		slot.Connect(clientID, send)

		go wsWriteLoop(conn, send, encode, log)
		wsReadLoop(conn, slot, clientID, decode, log)

		slot.Disconnect(clientID)
		conn.Close()
	}
}

func wsWriteLoop(conn *websocket.Conn, send <-chan Packet, encode func(Packet) (WireEnvelope, error), log logging.Logger) {
	for p := range send {
		env, err := encode(p)
		if err != nil {
			log.Warn("encode outbound packet failed", logging.Err(err))
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(env); err != nil {
			return
		}
	}
}

func wsReadLoop(conn *websocket.Conn, slot *Slot, clientID idgen.ClientId, decode func(WireEnvelope) (Packet, error), log logging.Logger) {
	for {
		var env WireEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		p, err := decode(env)
		if err != nil {
			log.Warn("decode inbound packet dropped", logging.Err(err), logging.Str("type", env.Type))
			continue
		}
		slot.Deliver(clientID, p)
	}
}
