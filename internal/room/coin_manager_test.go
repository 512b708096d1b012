package room

import (
	"sync"
	"testing"
	"time"

	"github.com/maz/hunter/internal/gridutil"
)

func newTestMapConfig(t *testing.T) MapConfig {
	t.Helper()
	cfg, err := DefaultMapConfig(8, 8, 32)
	if err != nil {
		t.Fatalf("unexpected error building map config: %v", err)
	}
	return cfg
}

func TestCoinMgr_InitialSpawnRespectsSpacing(t *testing.T) {
	mgr := NewCoinMgr(CoinConfig{InitialCount: 3, MinDistance: 4})
	r := NewRoom("MAZAAAA", 4)
	cfg := newTestMapConfig(t)

	mgr.InitialSpawn(r, cfg, OccupiedSet{})

	var cells []gridutil.Cell
	for _, c := range r.Coins {
		cells = append(cells, c.Cell)
	}
	for i := range cells {
		for j := range cells {
			if i == j {
				continue
			}
			if gridutil.ChebyshevDistance(cells[i], cells[j]) < 4 {
				t.Errorf("coins %v and %v are closer than the configured spacing", cells[i], cells[j])
			}
		}
	}
}

func TestCoinMgr_CollectIsSingleFlight(t *testing.T) {
	mgr := NewCoinMgr(CoinConfig{InitialCount: 1, MinDistance: 1})
	r := NewRoom("MAZAAAA", 4)
	coin := &Coin{ID: "coin_1", Cell: gridutil.Cell{Row: 1, Col: 1}}
	r.Coins[coin.ID] = coin
	p := newPlayer(generatePlayerID(), "sock1", "Alice", 0, 100)
	r.Players = append(r.Players, p)

	const attempts = 20
	var wins int32
	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			signals := mgr.Collect(r, coin.ID, p.PlayerID, time.Second)
			if len(signals) > 0 {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly 1 winning collect, got %d", wins)
	}
	if p.Coins != 1 {
		t.Errorf("expected player credited once, got %d coins", p.Coins)
	}
}

func TestCoinMgr_CollectRejectsAlreadyCollected(t *testing.T) {
	mgr := NewCoinMgr(CoinConfig{InitialCount: 1, MinDistance: 1})
	r := NewRoom("MAZAAAA", 4)
	coin := &Coin{ID: "coin_1", Cell: gridutil.Cell{Row: 1, Col: 1}, Collected: true}
	r.Coins[coin.ID] = coin
	p := newPlayer(generatePlayerID(), "sock1", "Alice", 0, 100)
	r.Players = append(r.Players, p)

	signals := mgr.Collect(r, coin.ID, p.PlayerID, time.Second)
	if signals != nil {
		t.Error("expected no signals collecting an already-collected coin")
	}
}

func TestCoinMgr_RespawnFallsBackWhenSpacingUnsatisfiable(t *testing.T) {
	mgr := NewCoinMgr(CoinConfig{InitialCount: 1, MinDistance: 100})
	r := NewRoom("MAZAAAA", 4)
	coin := &Coin{ID: "coin_1", Cell: gridutil.Cell{Row: 0, Col: 0}, Collected: true}
	r.Coins[coin.ID] = coin
	other := &Coin{ID: "coin_2", Cell: gridutil.Cell{Row: 4, Col: 4}}
	r.Coins[other.ID] = other

	cfg := newTestMapConfig(t)
	signals := mgr.Respawn(r, coin.ID, cfg, OccupiedSet{})

	if len(signals) == 0 {
		t.Fatal("expected a respawn signal even when strict spacing cannot be satisfied")
	}
	if coin.Collected {
		t.Error("expected the respawned coin to be marked uncollected")
	}
}

func TestCoinMgr_ForgetDropsLocksForRoom(t *testing.T) {
	mgr := NewCoinMgr(CoinConfig{InitialCount: 1, MinDistance: 1})
	r := NewRoom("MAZAAAA", 4)
	coin := &Coin{ID: "coin_1", Cell: gridutil.Cell{Row: 1, Col: 1}}
	r.Coins[coin.ID] = coin
	p := newPlayer(generatePlayerID(), "sock1", "Alice", 0, 100)
	r.Players = append(r.Players, p)

	mgr.Collect(r, coin.ID, p.PlayerID, time.Second)
	mgr.Forget(r.Code)

	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	for key := range mgr.locks {
		if key.roomCode == r.Code {
			t.Error("expected locks for the room to be dropped")
		}
	}
}
