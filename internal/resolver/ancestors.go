// Package resolver maps remote entries to local directories by walking
// their parent chain.
package resolver

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dl-alexandre/gdxfer/internal/remote"
	"github.com/dl-alexandre/gdxfer/internal/utils"
)

// DefaultMaxAncestorDepth bounds a parent walk
const DefaultMaxAncestorDepth = 256

// AncestorResolver turns an entry's first-parent chain into a relative
// directory of ancestor titles. Ancestor lookups are cached by ID and the
// resolver is safe for concurrent use.
type AncestorResolver struct {
	svc      remote.Service
	maxDepth int

	mu    sync.RWMutex
	cache map[string]*remote.Entry
}

// NewAncestorResolver creates a resolver backed by svc
func NewAncestorResolver(svc remote.Service) *AncestorResolver {
	return &AncestorResolver{
		svc:      svc,
		maxDepth: DefaultMaxAncestorDepth,
		cache:    make(map[string]*remote.Entry),
	}
}

// Remember seeds the cache with a complete entry already fetched elsewhere
func (r *AncestorResolver) Remember(e *remote.Entry) {
	if e == nil || !e.Complete {
		return
	}
	r.mu.Lock()
	r.cache[e.ID] = e
	r.mu.Unlock()
}

// Dir returns the ancestor titles of e joined as a relative path.
// Only the first parent of each entry is followed and the walk stops at the
// first reference flagged as root. An entry with no parents resolves to "".
func (r *AncestorResolver) Dir(ctx context.Context, e *remote.Entry) (string, error) {
	var titles []string
	ref, ok := e.FirstParent()
	for depth := 0; ok && !ref.IsRoot; depth++ {
		if depth >= r.maxDepth {
			return "", utils.NewAppError(utils.NewCLIError(utils.ErrCodeInternalError,
				fmt.Sprintf("Parent chain of %s exceeds %d levels", e.ID, r.maxDepth)).
				WithContext("fileId", e.ID).
				Build())
		}
		parent, err := r.lookup(ctx, ref.ID)
		if err != nil {
			return "", err
		}
		titles = append(titles, parent.Title)
		ref, ok = parent.FirstParent()
	}

	for i, j := 0, len(titles)-1; i < j; i, j = i+1, j-1 {
		titles[i], titles[j] = titles[j], titles[i]
	}
	return filepath.Join(titles...), nil
}

func (r *AncestorResolver) lookup(ctx context.Context, id string) (*remote.Entry, error) {
	r.mu.RLock()
	e, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return e, nil
	}

	e, err := r.svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Remember(e)
	return e, nil
}
