// Package gameid issues sortable identifiers for games and server sessions.
//
// An ID is a UUIDv7 written as 26 characters of Crockford base32, so IDs
// issued later sort after earlier ones.
package gameid

import (
	crand "crypto/rand"
	"fmt"
	rand "math/rand/v2"
	"strings"
	"sync"

	"github.com/coder/quartz"
)

// Length is the number of characters in an ID.
const Length = 26

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Generator issues IDs from a clock and a random source. It is safe for
// concurrent use.
type Generator struct {
	clock quartz.Clock

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator reading time from clock. A nil rng draws
// the random bits from crypto/rand; passing a seeded rng makes the random
// part reproducible, which replays and tests rely on.
func NewGenerator(clock quartz.Clock, rng *rand.Rand) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{clock: clock, rng: rng}
}

// Generate returns a new ID.
func (g *Generator) Generate() string {
	return encode(g.uuid())
}

func (g *Generator) uuid() [16]byte {
	var id [16]byte

	// 48-bit millisecond timestamp, then version, variant and random bits.
	ms := g.clock.Now().UnixMilli()
	for i := range 6 {
		id[i] = byte(ms >> (40 - 8*i))
	}

	if g.rng != nil {
		g.mu.Lock()
		for i := 6; i < 16; i++ {
			id[i] = byte(g.rng.IntN(256))
		}
		g.mu.Unlock()
	} else if _, err := crand.Read(id[6:]); err != nil {
		panic("gameid: reading random bytes: " + err.Error())
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// encode writes the 128 bits as 26 base32 digits, left-padded with two zero
// bits, so the first digit is always 0-7.
func encode(data [16]byte) string {
	var out [Length]byte
	bit := -2
	for i := range out {
		var v byte
		for j := range 5 {
			b := bit + j
			if b < 0 {
				continue
			}
			v |= ((data[b/8] >> (7 - b%8)) & 1) << (4 - j)
		}
		out[i] = alphabet[v]
		bit += 5
	}
	return string(out[:])
}

// Validate checks that id has the right length and alphabet.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	return nil
}
