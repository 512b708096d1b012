package room

import (
	"fmt"
	"math/rand/v2"
)

// generatePlayerID mints a persistent player id, the same shape the
// upstream server uses for its own persistent ids (a random 64-bit value
// rendered as hex) — stable across reconnects, never reused as a socket id.
func generatePlayerID() string {
	return fmt.Sprintf("%016x", rand.Uint64())
}

// generateCoinID, generateSinkholeID, generateTrapID produce short,
// room-scoped sequential ids; uniqueness only needs to hold within one room
// since every reference to an item id is already scoped by room code.
func generateCoinID(seq int) string {
	return fmt.Sprintf("coin_%d", seq)
}

func generateSinkholeID(seq int) string {
	return fmt.Sprintf("sinkhole_%d", seq)
}

func generateTrapID(seq int) string {
	return fmt.Sprintf("trap_%d", seq)
}
