package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"abtest/adapters/memory"
	"abtest/adapters/postgres"
	"abtest/adapters/rng"
	"abtest/app"
	"abtest/internal"
	"abtest/internal/analysis"
	"abtest/internal/config"
	"abtest/internal/errors"
	"abtest/internal/migration"
	"abtest/ports"
	"abtest/ui"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Ports
	RNG       ports.RNGPort
	ShareRepo ports.ShareRepository

	// Services
	Engine          *analysis.Engine
	AnalysisService *app.AnalysisService
	ShareService    *app.ShareService
}

// New creates a container with the in-memory share store. Call
// InitWithDatabase to switch to PostgreSQL.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		RNG:       rng.NewStreamAdapter(),
		ShareRepo: memory.NewShareRepository(),
	}
	c.initServices()
	return c, nil
}

// Connect opens the configured database when DATABASE_URL is set
func (c *Container) Connect(ctx context.Context) error {
	if c.Config.Database.URL == "" {
		c.Logger.Info("DATABASE_URL not set, shares are kept in memory")
		return nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)

	if err := c.InitWithDatabase(ctx, db); err != nil {
		db.Close()
		return err
	}
	return nil
}

// InitWithDatabase switches the share store to PostgreSQL
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.PingContext(ctx); err != nil {
		return errors.DatabaseError("database connection test failed", err)
	}

	if c.Config.Database.Migrate {
		migrator := migration.NewRunner()
		if err := migrator.Run(ctx, db); err != nil {
			return errors.Wrap(err, "database migration failed")
		}
		c.Logger.Info("database schema at version %s", migrator.Version())
	}

	c.DB = db
	c.ShareRepo = postgres.NewShareRepository(db)
	c.initServices()

	c.Logger.Info("container initialized with PostgreSQL share store")
	return nil
}

func (c *Container) initServices() {
	c.Engine = analysis.NewEngine(c.RNG, c.Config.Engine.Workers, c.Logger)
	c.AnalysisService = app.NewAnalysisService(c.Engine, c.Logger, app.AnalysisOptions{
		DefaultSeed:   c.Config.Engine.Seed,
		MaxInputBytes: c.Config.Share.MaxInputBytes,
	})
	c.ShareService = app.NewShareService(c.ShareRepo, c.Logger)
}

// HTTPApp builds the HTTP application
func (c *Container) HTTPApp() *ui.App {
	return ui.NewApp(c.AnalysisService, c.ShareService, c.Logger, ui.Config{
		MaxInputBytes: c.Config.Share.MaxInputBytes,
	})
}

// Shutdown releases resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return errors.DatabaseError("failed to close database", err)
		}
	}
	_ = c.Logger.Sync()
	return nil
}
