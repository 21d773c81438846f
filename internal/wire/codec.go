package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// ErrShortPacket is returned by DecodeFrame when fewer bytes are present
// than the length prefix promised.
var ErrShortPacket = errors.New("wire: short packet")

// EncodeFrame prefixes payload with its 16-bit little-endian length, per
// spec.md §6 ("Every packet is prefixed by a 16-bit little-endian
// length"). Payloads over 65535 bytes cannot be framed this way; callers
// should never hit that for control packets this engine defines.
func EncodeFrame(payload []byte) ([]byte, error) {
	if len(payload) > 0xFFFF {
		return nil, errors.New("wire: payload too large for u16 frame")
	}
	buf := make([]byte, 2+len(payload))
	binary.LittleEndian.PutUint16(buf, uint16(len(payload)))
	copy(buf[2:], payload)
	return buf, nil
}

// DecodeFrame reads one length-prefixed frame from r, returning its
// payload.
func DecodeFrame(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint16(lenBuf[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, ErrShortPacket
	}
	return payload, nil
}

// writer is a small tag-prefixed binary writer for the primitive fields
// wire packets are built from, per spec.md §6 ("Enums are tag-prefixed (u8
// tag followed by payload)").
type writer struct {
	buf bytes.Buffer
}

func (w *writer) u8(v uint8)   { w.buf.WriteByte(v) }
func (w *writer) u16(v uint16) { var b [2]byte; binary.LittleEndian.PutUint16(b[:], v); w.buf.Write(b[:]) }
func (w *writer) u32(v uint32) { var b [4]byte; binary.LittleEndian.PutUint32(b[:], v); w.buf.Write(b[:]) }
func (w *writer) i32(v int32)  { w.u32(uint32(v)) }
func (w *writer) f64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf.Write(b[:])
}
func (w *writer) str(s string) {
	w.u16(uint16(len(s)))
	w.buf.WriteString(s)
}
func (w *writer) bytes() []byte { return w.buf.Bytes() }

type reader struct {
	buf *bytes.Reader
}

func newReader(b []byte) *reader { return &reader{buf: bytes.NewReader(b)} }

func (r *reader) u8() (uint8, error)   { return r.buf.ReadByte() }
func (r *reader) u16() (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r.buf, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}
func (r *reader) u32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r.buf, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
func (r *reader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}
func (r *reader) f64() (float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r.buf, b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:])), nil
}
func (r *reader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.buf, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodeModuleTarget writes the indexed, dereference-free network form of
// a target (spec.md §9 "Cross-ship references"): a tag-prefixed enum
// followed by its payload fields.
func EncodeModuleTarget(t *ModuleTargetWire) []byte {
	w := &writer{}
	if t == nil {
		w.u8(0xFF) // sentinel: no target
		return w.bytes()
	}
	w.u8(t.Kind)
	w.i32(int32(t.ShipIndex))
	w.i32(int32(t.ModuleIdx))
	w.f64(t.BeamStartX)
	w.f64(t.BeamStartY)
	w.f64(t.BeamEndX)
	w.f64(t.BeamEndY)
	return w.bytes()
}

// DecodeModuleTarget parses the form EncodeModuleTarget writes.
func DecodeModuleTarget(b []byte) (*ModuleTargetWire, error) {
	r := newReader(b)
	kind, err := r.u8()
	if err != nil {
		return nil, err
	}
	if kind == 0xFF {
		return nil, nil
	}
	shipIdx, err := r.i32()
	if err != nil {
		return nil, err
	}
	modIdx, err := r.i32()
	if err != nil {
		return nil, err
	}
	sx, err := r.f64()
	if err != nil {
		return nil, err
	}
	sy, err := r.f64()
	if err != nil {
		return nil, err
	}
	ex, err := r.f64()
	if err != nil {
		return nil, err
	}
	ey, err := r.f64()
	if err != nil {
		return nil, err
	}
	return &ModuleTargetWire{
		Kind: kind, ShipIndex: int(shipIdx), ModuleIdx: int(modIdx),
		BeamStartX: sx, BeamStartY: sy, BeamEndX: ex, BeamEndY: ey,
	}, nil
}
