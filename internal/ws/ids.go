package ws

import (
	"fmt"
	"math/rand/v2"
)

// generateSocketID mints an ephemeral per-connection id, the same shape as
// internal/room's persistent player ids, distinguished by prefix so the two
// never collide in logs.
func generateSocketID() string {
	return fmt.Sprintf("sock_%016x", rand.Uint64())
}
