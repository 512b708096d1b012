// Command server runs the maze-hunt game server: it loads configuration
// from the environment, wires the room runtime and its WebSocket transport,
// and serves both behind a CORS policy, the same explicit, no-DI-framework
// wiring style as the upstream bouncebotserver entrypoint.
package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/maz/hunter/internal/config"
	"github.com/maz/hunter/internal/quiz"
	"github.com/maz/hunter/internal/room"
	"github.com/maz/hunter/internal/ws"
)

const (
	defaultGridRows     = 40
	defaultGridCols     = 40
	defaultCellSize     = 32.0
	staleRoomMaxAge     = 2 * time.Hour
	staleCleanupTick    = 10 * time.Minute
	snapshotTickDefault = 30 * time.Second
)

func main() {
	cfg := config.LoadFromEnv()
	log.Printf("server: starting in %s mode", cfg.NodeEnv)

	mapCfg, err := room.DefaultMapConfig(defaultGridRows, defaultGridCols, defaultCellSize)
	if err != nil {
		log.Fatalf("server: building map config: %v", err)
	}

	provider := quiz.NewHTTPProvider(cfg.QuizizzBaseURL, cfg.FetchTimeout)
	quizSvc := quiz.NewService(provider)

	svc := room.NewService(serviceConfigFrom(cfg), mapCfg, quizSvc)

	hub := ws.NewHub(svc, cfg)

	stop := make(chan struct{})
	if cfg.SnapshotFile != "" {
		svc.StartSnapshotLoop(cfg.SnapshotFile, snapshotTickDefault, stop)
	}
	svc.StartStaleCleanupLoop(staleRoomMaxAge, staleCleanupTick, stop)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWebSocket)
	mux.HandleFunc("/healthz", handleHealthz)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   cfg.CORSMethods,
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: corsMiddleware.Handler(mux),
	}

	go func() {
		log.Printf("server: listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: listen failed: %v", err)
		}
	}()

	waitForShutdown(srv, stop)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func waitForShutdown(srv *http.Server, stop chan struct{}) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	close(stop)
	log.Println("server: shutting down")
	if err := srv.Close(); err != nil {
		log.Printf("server: shutdown error: %v", err)
	}
}

func serviceConfigFrom(cfg *config.Config) room.ServiceConfig {
	return room.ServiceConfig{
		MaxPlayers:          cfg.MaxHunters * 3, // not read by room.Service; per-room maxPlayers is set at create time
		RoomCodePrefix:      cfg.RoomCodePrefix,
		MaxRoomCodeAttempts: cfg.MaxRoomCodeAttempts,
		StartingHealth:      cfg.StartingHealth,
		ReconnectGrace:      cfg.ReconnectGrace,
		PositionThrottle:    cfg.PositionThrottle,
		FetchTimeout:        cfg.FetchTimeout,
		Combat: room.CombatConfig{
			TagDamage:         cfg.TagDamage,
			TagScoreSteal:     cfg.TagScoreSteal,
			IFrameDuration:    cfg.IFrameDuration,
			KnockbackDistance: cfg.KnockbackDistance,
			KnockbackDuration: cfg.KnockbackDuration,
			CollisionCooldown: cfg.CollisionCooldown,
		},
		Coin: room.CoinConfig{
			InitialCount: cfg.CoinInitialCount,
			MinDistance:  cfg.MinCoinDistance,
			RespawnTime:  cfg.CoinRespawnTime,
		},
		Sinkhole: room.SinkholeConfig{
			InitialCount:     cfg.SinkholeInitialCount,
			MaxCount:         cfg.SinkholeMaxCount,
			MinInterval:      cfg.SinkholeMinInterval,
			MaxInterval:      cfg.SinkholeMaxInterval,
			TeleportCooldown: cfg.TeleportCooldown,
			CollectionRadius: cfg.CollectionRadius,
		},
		Trap: room.TrapConfig{
			InitialCount: cfg.TrapInitialCount,
		},
		Lifecycle: room.GameLifecycleConfig{
			HuntDuration:      cfg.HuntDuration,
			BlitzDuration:     cfg.BlitzDuration,
			RoundEndDuration:  cfg.RoundEndDuration,
			GameTotalDuration: cfg.GameTotalDuration,
		},
		PlayerPhase: room.PlayerPhaseConfig{
			HuntDuration:       cfg.HuntDuration,
			EnforcerChance:     cfg.EnforcerChance,
			BlitzQuestionCount: cfg.BlitzQuestionCount,
			BlitzWinnerBonus:   cfg.BlitzWinnerBonus,
		},
	}
}
