package backend

import (
	"context"

	"legisbase/internal/catalog"
	"legisbase/internal/source"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the bill loader and optional cleanup function
type BackendResult struct {
	Loader  source.Loader
	Cleanup CleanupFunc
}

// PublisherResult contains the lookup publisher, nil when lookups are not
// published, and its cleanup.
type PublisherResult struct {
	Publisher catalog.LookupPublisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates the bill loader selected by config.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreatePublisher creates the lookup event publisher.
	CreatePublisher(ctx context.Context, config Config) (*PublisherResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Memory backend
	SeedFile string

	// SQLite backend
	SQLiteDBPath string

	// Google Sheets backend
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Lookup events; empty URL disables publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// PublishQueueSize bounds the events waiting for the broker.
	PublishQueueSize int
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
