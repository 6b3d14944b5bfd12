package project

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// IDs are ULIDs: 48 bits of millisecond time followed by 80 bits of
// randomness, Crockford base32 encoded into 26 characters. The first two
// random bytes carry a per-millisecond sequence so IDs minted in the same
// millisecond still sort in creation order.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

type idSource struct {
	mu     sync.Mutex
	lastMS uint64
	seq    uint16
}

var ids idSource

// NewID returns a fresh ULID string.
func NewID() string {
	return ids.next(time.Now())
}

func (s *idSource) next(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := uint64(now.UnixMilli())
	if ms == s.lastMS {
		s.seq++
	} else {
		s.lastMS = ms
		s.seq = 0
	}

	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], ms<<16)
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], s.seq)
	return encodeID(b)
}

// encodeID writes the 128-bit value as 26 base32 digits, most significant
// first. The leading digit holds only the top 3 bits.
func encodeID(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])
	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

// ValidID reports whether id looks like a ULID. Store uses it to keep
// caller-supplied ids from escaping the data directory.
func ValidID(id string) bool {
	if len(id) != 26 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if !isCrockford(id[i]) {
			return false
		}
	}
	return true
}

func isCrockford(c byte) bool {
	for i := 0; i < len(crockford); i++ {
		if crockford[i] == c {
			return true
		}
	}
	return false
}
