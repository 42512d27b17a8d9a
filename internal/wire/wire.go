// Package wire frames entry metadata and payload into the single byte blob
// stored by byte-mode backends.
//
// Layout, little-endian, fixed 36-byte header:
//
//	0   i64  createdAt (unix nanoseconds)
//	8   i64  absoluteExpiration (unix nanoseconds; 0 = never expires)
//	16  i64  slidingWindow (nanoseconds; 0 = not sliding)
//	24  i64  staleWindow (nanoseconds; 0 = no stale window)
//	32  i32  payloadLength (>= 0)
//	36  ...  payload bytes
//
// There is no magic or version byte. Two deployments sharing a store must
// agree on this layout byte-for-byte; a future revision must prepend a magic
// prefix rather than reinterpret these offsets.
package wire

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/unkn0wn-root/swrcache/backend"
)

// HeaderSize is the fixed envelope header length in bytes.
const HeaderSize = 36

// ErrCorrupt is returned for blobs that do not carry a well-formed envelope.
var ErrCorrupt = errors.New("swrcache: corrupt envelope")

// Encode frames m and payload into a single blob.
func Encode(m backend.Metadata, payload []byte) []byte {
	b := make([]byte, HeaderSize+len(payload))
	binary.LittleEndian.PutUint64(b[0:8], uint64(m.CreatedAt.UnixNano()))
	binary.LittleEndian.PutUint64(b[8:16], uint64(instantTicks(m.AbsoluteExpiration)))
	binary.LittleEndian.PutUint64(b[16:24], uint64(m.SlidingWindow))
	binary.LittleEndian.PutUint64(b[24:32], uint64(m.StaleWindow))
	binary.LittleEndian.PutUint32(b[32:36], uint32(len(payload)))
	copy(b[HeaderSize:], payload)
	return b
}

// Decode parses a blob produced by Encode. The returned payload aliases b.
func Decode(b []byte) (backend.Metadata, []byte, error) {
	if len(b) < HeaderSize {
		return backend.Metadata{}, nil, ErrCorrupt
	}
	plen := int32(binary.LittleEndian.Uint32(b[32:36]))
	if plen < 0 || int(plen) != len(b)-HeaderSize {
		return backend.Metadata{}, nil, ErrCorrupt
	}
	m := backend.Metadata{
		CreatedAt:          time.Unix(0, int64(binary.LittleEndian.Uint64(b[0:8]))).UTC(),
		AbsoluteExpiration: instantFromTicks(int64(binary.LittleEndian.Uint64(b[8:16]))),
		SlidingWindow:      time.Duration(binary.LittleEndian.Uint64(b[16:24])),
		StaleWindow:        time.Duration(binary.LittleEndian.Uint64(b[24:32])),
	}
	if m.SlidingWindow < 0 || m.StaleWindow < 0 {
		return backend.Metadata{}, nil, ErrCorrupt
	}
	return m, b[HeaderSize:], nil
}

// instantTicks maps the zero time to the 0 sentinel.
func instantTicks(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func instantFromTicks(ticks int64) time.Time {
	if ticks == 0 {
		return time.Time{}
	}
	return time.Unix(0, ticks).UTC()
}
