package backend

import (
	"context"
	"fmt"
	"log/slog"

	"legisbase/internal/amqp"
	"legisbase/internal/catalog"
	"legisbase/internal/source"
	"legisbase/internal/source/google"
	"legisbase/internal/source/memory"
	"legisbase/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Loader: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, google.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleSheetName)
	return &BackendResult{Loader: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	if config.SeedFile == "" {
		f.logger.Info("Initialized memory backend with built-in bills")
		return &BackendResult{Loader: memory.New(memory.DefaultBills())}, nil
	}
	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	f.logger.Info("Initialized memory backend", "source", store.Name())
	return &BackendResult{Loader: store}, nil
}

// CreatePublisher implements Factory.CreatePublisher. A broker that cannot
// be reached at startup downgrades to no publishing instead of failing.
func (f *DefaultFactory) CreatePublisher(ctx context.Context, config Config) (*PublisherResult, error) {
	if config.AMQPURL == "" {
		return &PublisherResult{}, nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without lookup events", "error", err)
		return &PublisherResult{}, nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	async := amqp.NewAsyncPublisher(client, config.PublishQueueSize, nil)
	return &PublisherResult{
		Publisher: async,
		Cleanup: func() error {
			// Drain pending events before the connection goes away.
			_ = async.Close()
			return client.Close()
		},
	}, nil
}

// Catalog is a loaded, immutable bill catalog and the query service over it.
type Catalog struct {
	Service *catalog.Service
	Source  string
	cleanup []CleanupFunc
}

// Close releases the backend and the publisher.
func (c *Catalog) Close() error {
	var first error
	for i := len(c.cleanup) - 1; i >= 0; i-- {
		if err := c.cleanup[i](); err != nil && first == nil {
			first = err
		}
	}
	c.cleanup = nil
	return first
}

// OpenCatalog loads bills once from the configured backend and freezes
// them in a catalog.Store. Publishing is skipped when publish is false.
func OpenCatalog(ctx context.Context, f Factory, config Config, publish bool) (*Catalog, error) {
	res, err := f.CreateBackend(ctx, config)
	if err != nil {
		return nil, err
	}
	cat := &Catalog{Source: source.NameOf(res.Loader)}
	if res.Cleanup != nil {
		cat.cleanup = append(cat.cleanup, res.Cleanup)
	}

	bills, err := res.Loader.Load(ctx)
	if err != nil {
		_ = cat.Close()
		return nil, fmt.Errorf("load bills from %s: %w", cat.Source, err)
	}
	store, err := catalog.NewStore(bills)
	if err != nil {
		_ = cat.Close()
		return nil, fmt.Errorf("invalid bills from %s: %w", cat.Source, err)
	}

	var publisher catalog.LookupPublisher
	if publish {
		pub, err := f.CreatePublisher(ctx, config)
		if err != nil {
			_ = cat.Close()
			return nil, err
		}
		if pub.Cleanup != nil {
			cat.cleanup = append(cat.cleanup, pub.Cleanup)
		}
		publisher = pub.Publisher
	}

	cat.Service = catalog.NewService(store, publisher)
	slog.InfoContext(ctx, "Bill catalog loaded",
		"source", cat.Source,
		"bills", store.Len(),
		"tags", len(store.Tags()),
		"publishes_lookups", publisher != nil)
	return cat, nil
}
