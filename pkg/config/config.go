package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/dayanaadylkhanova/powgate/pkg/puzzle"
)

const (
	ReplayBadger = "badger"
	ReplayLRU    = "lru"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	ListenAddr      string
	PoWDifficulty   uint16
	PoWTTL          time.Duration
	PoWSecret       string
	LogLevel        string
	ShutdownWait    time.Duration
	ReplayBackend   string
	ReplayPath      string
	ReplayCacheSize int
	QuotesFile      string
}

type ClientConfig struct {
	ServerAddr string
	Batch      uint64
	Workers    int
	Timeout    time.Duration
	LogLevel   string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func duration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

// Parse reads the server config from the environment. Malformed numbers and
// durations fall back to defaults; values that are well-formed but unusable
// are reported as ErrInvalid.
func Parse() (Config, error) {
	cfg := Config{
		ListenAddr:      getenv("LISTEN_ADDR", ":8080"),
		PoWTTL:          duration(getenv("POW_TTL", "60s"), 60*time.Second),
		PoWSecret:       os.Getenv("POW_SECRET"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		ShutdownWait:    duration(getenv("SHUTDOWN_WAIT", "5s"), 5*time.Second),
		ReplayBackend:   getenv("REPLAY_BACKEND", ReplayBadger),
		ReplayPath:      os.Getenv("REPLAY_PATH"),
		ReplayCacheSize: atoi(getenv("REPLAY_CACHE_SIZE", "100000"), 100000),
		QuotesFile:      os.Getenv("QUOTES_FILE"),
	}

	d, err := strconv.ParseInt(getenv("POW_DIFFICULTY", "5"), 10, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return cfg, fmt.Errorf("%w: POW_DIFFICULTY out of range 1..%d", ErrInvalid, puzzle.DigestLen)
	case err != nil:
		d = 5
	case d < 0 || d > puzzle.DigestLen:
		return cfg, fmt.Errorf("%w: POW_DIFFICULTY %d out of range 1..%d", ErrInvalid, d, puzzle.DigestLen)
	}
	cfg.PoWDifficulty = uint16(d)

	return cfg, cfg.Validate()
}

// VolatileReplay reports whether spent solutions are lost on restart.
func (c Config) VolatileReplay() bool {
	return c.ReplayBackend == ReplayLRU || c.ReplayPath == ""
}

func (c Config) Validate() error {
	switch {
	case c.PoWDifficulty < 1:
		return fmt.Errorf("%w: POW_DIFFICULTY: %w", ErrInvalid, puzzle.ErrZeroDifficulty)
	case int(c.PoWDifficulty) > puzzle.DigestLen:
		return fmt.Errorf("%w: POW_DIFFICULTY %d exceeds digest length %d", ErrInvalid, c.PoWDifficulty, puzzle.DigestLen)
	case c.PoWTTL <= 0:
		return fmt.Errorf("%w: POW_TTL must be positive", ErrInvalid)
	case c.ReplayBackend != ReplayBadger && c.ReplayBackend != ReplayLRU:
		return fmt.Errorf("%w: REPLAY_BACKEND %q", ErrInvalid, c.ReplayBackend)
	case c.ReplayBackend == ReplayLRU && c.ReplayCacheSize <= 0:
		return fmt.Errorf("%w: REPLAY_CACHE_SIZE must be positive", ErrInvalid)
	case c.PoWSecret != "" && c.VolatileReplay():
		// A fixed secret keeps challenges valid across restarts, so spent
		// solutions must survive them too.
		return fmt.Errorf("%w: POW_SECRET requires REPLAY_BACKEND=badger with REPLAY_PATH set", ErrInvalid)
	}
	return nil
}

func ParseClient() ClientConfig {
	batch, err := strconv.ParseUint(getenv("CLIENT_BATCH", "1000000"), 10, 64)
	if err != nil || batch == 0 {
		batch = 1_000_000
	}
	workers := atoi(getenv("CLIENT_WORKERS", ""), runtime.NumCPU())
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return ClientConfig{
		ServerAddr: getenv("SERVER_ADDR", "localhost:8080"),
		Batch:      batch,
		Workers:    workers,
		Timeout:    duration(getenv("CLIENT_TIMEOUT", "30s"), 30*time.Second),
		LogLevel:   getenv("LOG_LEVEL", "info"),
	}
}
