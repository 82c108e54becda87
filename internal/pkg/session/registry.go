package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/config"
)

// Factory opens a session for a browser mode. The returned func releases it.
type Factory func(ctx context.Context, cfg config.BrowserConfig) (Session, func(), error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, f Factory) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		panic("session: empty name in Register")
	}
	if f == nil {
		panic("session: nil factory in Register for " + n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[n]; exists {
		panic("session: duplicate registration for " + n)
	}
	registry[n] = f
}

func FactoryByName(name string) (Factory, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[n]
	return f, ok
}

func AvailableNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Open creates a session for cfg.Mode.
func Open(ctx context.Context, cfg config.BrowserConfig) (Session, func(), error) {
	f, ok := FactoryByName(cfg.Mode)
	if !ok {
		return nil, nil, fmt.Errorf("unknown browser mode %q (available: %v)", cfg.Mode, AvailableNames())
	}
	return f(ctx, cfg)
}
