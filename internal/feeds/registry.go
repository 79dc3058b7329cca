package feeds

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pagesentry/pkg/logger"
)

// Registry manages all feed connectors
type Registry struct {
	connectors map[string]Connector
	mu         sync.RWMutex
	logger     *logger.Logger
}

// NewRegistry creates a new connector registry
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		connectors: make(map[string]Connector),
		logger:     log.WithComponent("feed-registry"),
	}
}

// Register registers a connector
func (r *Registry) Register(connector Connector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slug := connector.Slug()
	if _, exists := r.connectors[slug]; exists {
		return fmt.Errorf("connector already registered: %s", slug)
	}

	r.connectors[slug] = connector
	r.logger.Info().
		Str("slug", slug).
		Str("name", connector.Name()).
		Int("priority", connector.Priority()).
		Msg("registered connector")

	return nil
}

// Get returns a connector by slug
func (r *Registry) Get(slug string) (Connector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.connectors[slug]
	return conn, ok
}

// ListEnabled returns all enabled connectors ordered by priority
func (r *Registry) ListEnabled() []Connector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Connector, 0, len(r.connectors))
	for _, conn := range r.connectors {
		if conn.IsEnabled() {
			conns = append(conns, conn)
		}
	}
	sort.Slice(conns, func(i, j int) bool {
		return conns[i].Priority() < conns[j].Priority()
	})
	return conns
}

// Count returns the number of registered connectors
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connectors)
}

// Fetch fetches from a specific connector
func (r *Registry) Fetch(ctx context.Context, slug string) (*FetchResult, error) {
	conn, ok := r.Get(slug)
	if !ok {
		return nil, fmt.Errorf("connector not found: %s", slug)
	}

	if !conn.IsEnabled() {
		return nil, fmt.Errorf("connector is disabled: %s", slug)
	}

	return conn.Fetch(ctx)
}
