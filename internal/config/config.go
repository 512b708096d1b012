// Package config loads server configuration from the environment, the way
// the upstream server package this is modeled on does: typed defaults,
// overridden by recognized environment variables, with a production preset
// selected by NODE_ENV.
package config

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every tunable named in the configuration envelope: transport
// settings, CORS policy, the external question provider, and game tuning
// constants.
type Config struct {
	Port            string
	CORSOrigins     []string
	CORSMethods     []string
	AllowSameHost   bool
	QuizizzBaseURL  string
	NodeEnv         string
	SnapshotFile    string // empty disables the optional debug snapshot

	StartingHealth       int
	TagDamage            int
	TagScoreSteal        int
	IFrameDuration       time.Duration
	KnockbackDistance    int
	KnockbackDuration    time.Duration
	HunterPercentage     float64
	MinHunters           int
	MaxHunters           int
	HuntDuration         time.Duration
	BlitzDuration        time.Duration
	RoundEndDuration     time.Duration
	GameTotalDuration    time.Duration
	ReconnectGrace       time.Duration
	PositionThrottle     time.Duration
	CoinRespawnTime      time.Duration
	CoinInitialCount     int
	MinCoinDistance      int
	SinkholeMinInterval  time.Duration
	SinkholeMaxInterval  time.Duration
	SinkholeInitialCount int
	SinkholeMaxCount     int
	TeleportCooldown     time.Duration
	CollectionRadius     float64
	TrapInitialCount     int
	EnforcerChance       float64
	BlitzQuestionCount   int
	BlitzWinnerBonus     int
	CollisionCooldown    time.Duration
	RoomCodePrefix       string
	MaxRoomCodeAttempts  int
	FetchTimeout         time.Duration
}

// DefaultConfig returns the tuning constants named in the configuration
// envelope.
func DefaultConfig() *Config {
	return &Config{
		Port:           "8080",
		CORSOrigins:    []string{"*"},
		CORSMethods:    []string{"GET", "POST"},
		AllowSameHost:  true,
		QuizizzBaseURL: "https://quizizz.com",
		NodeEnv:        "development",
		SnapshotFile:   "",

		StartingHealth:       100,
		TagDamage:            50,
		TagScoreSteal:        10,
		IFrameDuration:       3 * time.Second,
		KnockbackDistance:    2,
		KnockbackDuration:    300 * time.Millisecond,
		HunterPercentage:     0.3,
		MinHunters:           1,
		MaxHunters:           30,
		HuntDuration:         30 * time.Second,
		BlitzDuration:        15 * time.Second,
		RoundEndDuration:     3 * time.Second,
		GameTotalDuration:    300 * time.Second,
		ReconnectGrace:       10 * time.Second,
		PositionThrottle:     30 * time.Millisecond,
		CoinRespawnTime:      2 * time.Second,
		CoinInitialCount:     20,
		MinCoinDistance:      3,
		SinkholeMinInterval:  15 * time.Second,
		SinkholeMaxInterval:  25 * time.Second,
		SinkholeInitialCount: 4,
		SinkholeMaxCount:     8,
		TeleportCooldown:     2 * time.Second,
		CollectionRadius:     0.5,
		TrapInitialCount:     6,
		EnforcerChance:       0.3,
		BlitzQuestionCount:   3,
		BlitzWinnerBonus:     20,
		CollisionCooldown:    500 * time.Millisecond,
		RoomCodePrefix:       "MAZ",
		MaxRoomCodeAttempts:  25,
		FetchTimeout:         5 * time.Second,
	}
}

// LoadFromEnv applies recognized environment variables on top of
// DefaultConfig, mirroring the upstream server's env-driven config loader.
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("NODE_ENV"); v != "" {
		cfg.NodeEnv = v
		if v == "production" {
			cfg.AllowSameHost = false
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.CORSOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("CORS_METHODS"); v != "" {
		cfg.CORSMethods = splitAndTrim(v)
	}
	if v := os.Getenv("QUIZIZZ_BASE_URL"); v != "" {
		cfg.QuizizzBaseURL = v
	}
	if v := os.Getenv("SNAPSHOT_FILE"); v != "" {
		cfg.SnapshotFile = v
	}
	if v, ok := parseBool(os.Getenv("ALLOW_SAME_HOST")); ok {
		cfg.AllowSameHost = v
	}

	return cfg
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string) (bool, bool) {
	if s == "" {
		return false, false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return v, true
}

// IsOriginAllowed reports whether origin matches one of the configured CORS
// origins (or the wildcard).
func (c *Config) IsOriginAllowed(origin string) bool {
	for _, o := range c.CORSOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// IsOriginAllowedForRequest additionally permits same-host requests when
// AllowSameHost is set, comparing the origin's hostname against the
// incoming request's host.
func (c *Config) IsOriginAllowedForRequest(origin, requestHost string) bool {
	if c.IsOriginAllowed(origin) {
		return true
	}
	if !c.AllowSameHost || origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	reqHost := requestHost
	if h, _, err := net.SplitHostPort(requestHost); err == nil {
		reqHost = h
	}
	return u.Hostname() == reqHost
}
