package room

// Timer purpose keys, per spec.md 4.9's timer discipline list.
const (
	purposeBlitz    = "blitz"
	purposeHunt     = "hunt"
	purposeHuntTick = "hunt-tick"
	purposeGlobal   = "global"
)

func purposePlayerHunt(playerID string) string {
	return "per-player-hunt:" + playerID
}

func purposeReconnectGrace(playerID string) string {
	return "reconnect-grace:" + playerID
}

func purposeCoinRespawn(coinID string) string {
	return "coin-respawn:" + coinID
}

func purposeIFrameClear(playerID string) string {
	return "iframe-clear:" + playerID
}

const purposeSinkholeSpawn = "sinkhole-spawn"

// characterPaletteSize bounds the number of distinct character ids
// assignable within one room; chosen generously above MaxHunters' upper
// bound (30) so every room can fill without collision.
const characterPaletteSize = 32

// collisionCooldownGCThreshold is the number of entries in a room's
// collision-cooldown table that triggers a GC sweep of entries older than
// 5s (the maxAge in CombatMgr.gcCooldowns), per spec.md 4.4.
const collisionCooldownGCThreshold = 256

const knockbackEpsilon = 1e-9
