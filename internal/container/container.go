package container

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"surveyinsight/adapters/excel"
	"surveyinsight/adapters/memstore"
	"surveyinsight/adapters/postgres"
	"surveyinsight/app"
	"surveyinsight/internal"
	"surveyinsight/internal/classify"
	"surveyinsight/internal/config"
	"surveyinsight/internal/errors"
	"surveyinsight/internal/metrics"
	"surveyinsight/internal/migration"
	"surveyinsight/internal/overview"
	"surveyinsight/internal/segment"
	"surveyinsight/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Analysis components
	Rules      *classify.RuleSet
	Classifier *classify.Classifier
	Engine     *segment.Engine
	Overview   *overview.Builder
	Metrics    *metrics.Recorder

	// Storage; DB is nil when datasets live in memory
	DB    *sqlx.DB
	Store ports.DatasetStore

	Service *app.SegmentExplorerService
}

// New wires every component from the configuration
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))

	rules, err := classify.LoadRules(cfg.Data.ClassifierRules)
	if err != nil {
		return nil, err
	}

	opts := segment.OptionsFromConfig(cfg.Analysis)
	// A rule file carries its own group conventions and takes precedence over the env knobs
	if cfg.Data.ClassifierRules != "" {
		opts.GroupRules = rules.GroupRules
	}

	recorder := metrics.NewRecorder()
	engine := segment.NewEngine(opts,
		segment.WithLogger(logger),
		segment.WithSkipObserver(recorder),
		segment.WithRunObserver(recorder.ObserveRun),
	)

	c := &Container{
		Config:     cfg,
		Logger:     logger.WithComponent("Container"),
		Rules:      rules,
		Classifier: classify.New(rules.Rules, classify.WithLogger(logger)),
		Engine:     engine,
		Overview:   overview.NewBuilder(opts.GroupRules),
		Metrics:    recorder,
	}

	if err := c.initStore(); err != nil {
		return nil, err
	}
	c.Service = app.NewSegmentExplorerService(c.Store, c.Classifier, c.Engine, c.Overview, app.WithLogger(logger))

	c.Logger.Info("container ready: alpha=%g min_group=%d workers=%d rules=%d",
		opts.Alpha, opts.MinGroupSize, opts.Workers, len(rules.Rules))
	return c, nil
}

// initStore picks PostgreSQL when DATABASE_URL is set, memory otherwise
func (c *Container) initStore() error {
	if c.Config.Database.URL == "" {
		c.Store = memstore.NewDatasetStore()
		return nil
	}

	db, err := postgres.Connect(c.Config.Database.URL)
	if err != nil {
		return err
	}
	if err := migration.NewRunner().Run(context.Background(), db); err != nil {
		db.Close()
		return errors.Wrap(err, "database migration failed")
	}

	c.DB = db
	c.Store = postgres.NewDatasetStore(db)
	c.Logger.Info("datasets are stored in PostgreSQL")
	return nil
}

// ImportDataFile loads the configured DATA_FILE into the store, if any
func (c *Container) ImportDataFile(ctx context.Context) error {
	path := c.Config.Data.DataFile
	if path == "" {
		return nil
	}

	ds, err := excel.NewDataReader(path).ReadData()
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to load %s", path))
	}
	record, err := c.Service.Import(ctx, filepath.Base(path), ds)
	if err != nil {
		return err
	}
	c.Logger.Info("imported %s as dataset %s", path, record.ID)
	return nil
}

// Shutdown releases resources held by the container
func (c *Container) Shutdown(ctx context.Context) error {
	c.Logger.Info("shutting down")
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
