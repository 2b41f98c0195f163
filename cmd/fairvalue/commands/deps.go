package commands

import (
	"fmt"

	"github.com/wonny/fairvalue/internal/assumptions"
	"github.com/wonny/fairvalue/internal/external/iex"
	"github.com/wonny/fairvalue/internal/valuation"
	"github.com/wonny/fairvalue/pkg/config"
	"github.com/wonny/fairvalue/pkg/httputil"
	"github.com/wonny/fairvalue/pkg/logger"
	"github.com/wonny/fairvalue/pkg/memcache"
	"github.com/wonny/fairvalue/pkg/redis"
)

// keyPrefix namespaces every Redis key this binary writes
const keyPrefix = "fairvalue"

// deps is the wired object graph shared by every command
type deps struct {
	cfg       *config.Config
	log       *logger.Logger
	redis     *redis.Client
	evaluator *valuation.Evaluator
}

// initDeps loads config and wires gateway → evaluator.
// quiet drops logging to errors so command output stays readable.
func initDeps(quiet bool) (*deps, error) {
	// 1. Load config
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	switch {
	case verbose:
		cfg.LogLevel = "debug"
	case quiet:
		cfg.LogLevel = "error"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Valuation assumptions
	path := cfg.AssumptionsFile
	if assumptionsFile != "" {
		path = assumptionsFile
	}
	a, fromFile, err := assumptions.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("load assumptions %s: %w", path, err)
	}
	log.WithFields(map[string]interface{}{
		"path":      path,
		"from_file": fromFile,
		"hash":      assumptions.ShortHash(a),
	}).Debug("Assumptions resolved")

	// 4. HTTP client
	httpClient := httputil.New(cfg, log)

	// 5. Redis (optional): shared quota + response cache
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, falling back to in-process cache")
		rdb = redis.NewFromRedis(nil)
	}
	if rdb.Enabled() {
		limiter := redis.NewRateLimiter(rdb, keyPrefix)
		httpClient.WithRateLimiter(limiter.Bind(redis.IEXRateLimit(cfg.IEX.RateLimit)))
		log.Debug("Using Redis sliding-window rate limiter")
	}

	// 6. Gateway + evaluator (in-process cache when Redis is off)
	var cache iex.ResponseCache = memcache.New(log)
	if rdb.Enabled() {
		cache = redis.NewCache(rdb, keyPrefix)
	}
	gateway := iex.NewClient(cfg, httpClient, log).WithCache(cache)
	evaluator := valuation.NewEvaluator(gateway, a, log)

	return &deps{
		cfg:       cfg,
		log:       log,
		redis:     rdb,
		evaluator: evaluator,
	}, nil
}

// Close releases the Redis connection
func (d *deps) Close() {
	if err := d.redis.Close(); err != nil {
		d.log.WithError(err).Warn("Failed to close redis")
	}
}
