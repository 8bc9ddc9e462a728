// Package directory provides a cached lookup of party display names.
// The shorthand parser resolves party references through it on every
// line, so lookups must not hit storage more than once per load.
package directory

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/rkhatri/munim/internal/models"
	"github.com/rkhatri/munim/internal/storage"
)

// Directory is a lazily loaded, case-insensitive index of party names.
// It is safe for concurrent use; mutating operations call Invalidate so
// the next lookup reloads from storage.
type Directory struct {
	store storage.Store

	mu     sync.RWMutex
	byName map[string]models.Party
	loaded bool
}

// New creates a Directory over the given store.
func New(store storage.Store) *Directory {
	return &Directory{store: store}
}

// Resolve looks up a party by display name, ignoring case and surrounding
// whitespace. A storage failure during the initial load is logged and
// reported as "not found": name validation is advisory for bill forms and
// the caller decides whether an unresolved name is fatal.
func (d *Directory) Resolve(ctx context.Context, name string) (*models.Party, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, false
	}

	d.mu.RLock()
	if d.loaded {
		p, ok := d.byName[key]
		d.mu.RUnlock()
		if !ok {
			return nil, false
		}
		return &p, true
	}
	d.mu.RUnlock()

	if err := d.load(ctx); err != nil {
		slog.Error("party directory load failed", "error", err)
		return nil, false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.byName[key]
	if !ok {
		return nil, false
	}
	return &p, true
}

// Invalidate drops the cached index. The next Resolve reloads it.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaded = false
	d.byName = nil
}

func (d *Directory) load(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded {
		return nil
	}

	parties, err := d.store.Parties(ctx)
	if err != nil {
		return err
	}

	d.byName = make(map[string]models.Party, len(parties))
	for _, p := range parties {
		d.byName[strings.ToLower(p.Name)] = p
	}
	d.loaded = true
	return nil
}
