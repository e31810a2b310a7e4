package injector

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/wire"

	"github.com/zeusync/arenabot/internal/agent"
	"github.com/zeusync/arenabot/internal/config"
	"github.com/zeusync/arenabot/internal/core/bt/builder"
	"github.com/zeusync/arenabot/internal/core/leaves"
	"github.com/zeusync/arenabot/internal/core/observability/log"
	"github.com/zeusync/arenabot/internal/core/physics"
	"github.com/zeusync/arenabot/internal/server"
)

// App is everything cmd needs to run the server.
type App struct {
	Server   *server.Server
	Logger   *log.Logger
	Resolver leaves.Resolver
	Trees    server.TreeProvider
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideSentry,
	ProvideResolver,
	leaves.NewRegistry,
	builder.NewCache,
	ProvideTrees,
	ProvideServer,
)

func ProvideLogger(cfg config.Config) *log.Logger {
	return log.New(log.Options{
		Level:    log.ParseLevel(cfg.Log.Level),
		Encoding: cfg.Log.Encoding,
	})
}

// ProvideSentry initialises error reporting when a DSN is configured. The
// cleanup flushes pending events.
func ProvideSentry(cfg config.Config, logger *log.Logger) (*sentry.Hub, func(), error) {
	if cfg.Sentry.DSN == "" {
		return sentry.CurrentHub(), func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("sentry: %w", err)
	}
	logger.Info("sentry enabled", log.String("environment", cfg.Sentry.Environment))
	return sentry.CurrentHub(), func() { sentry.Flush(2 * time.Second) }, nil
}

func ProvideResolver(cfg config.Config) leaves.Resolver {
	return leaves.Resolver{
		Predictor: physics.NewPredictor(cfg.Arena, physics.BallRadius),
		Horizon:   cfg.Prediction.Horizon,
		Step:      cfg.Prediction.Step,
	}
}

// ProvideTrees reads the configured tree file, or the built-in tree, and
// builds it once so a broken tree fails at startup.
func ProvideTrees(cfg config.Config, cache *builder.Cache, logger *log.Logger) (server.TreeProvider, error) {
	trees := server.CachedTree{Cache: cache, Name: "default.bt", Data: []byte(leaves.DefaultTreeSource)}
	if path := cfg.Tree.File; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read tree: %w", err)
		}
		trees.Name, trees.Data = path, data
	}
	tree, err := trees.NewTree()
	if err != nil {
		return nil, fmt.Errorf("build tree %s: %w", trees.Name, err)
	}
	logger.Info("tree loaded", log.String("source", trees.Name), log.Int("nodes", tree.Len()))
	return trees, nil
}

func ProvideServer(cfg config.Config, logger *log.Logger, trees server.TreeProvider, hub *sentry.Hub) *server.Server {
	return server.NewServer(cfg.Server, logger, trees, agent.WithHub(hub))
}
