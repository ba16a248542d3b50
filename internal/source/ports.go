// Package source defines where bills come from before they are frozen into a
// catalog.Store.
package source

import (
	"context"

	"legisbase/internal/core"
)

// Ports for inbound bill adapters.
type (
	// Loader reads the full bill list once, at startup.
	Loader interface {
		Load(ctx context.Context) ([]core.Bill, error)
	}

	// Named is implemented by loaders that can describe themselves in logs.
	Named interface {
		Name() string
	}
)

// NameOf returns a printable name for l.
func NameOf(l Loader) string {
	if n, ok := l.(Named); ok {
		return n.Name()
	}
	return "unknown"
}
