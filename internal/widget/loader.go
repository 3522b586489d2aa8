package widget

import (
	"context"
	"sync"
)

// Loader loads widget HTML from a Source at most once per process.
// Concurrent callers serialize on a single lock so only one fetch is in flight.
// Successful results are cached; failures are returned and retried on the next call.
type Loader struct {
	src Source

	mu     sync.Mutex
	html   string
	loaded bool
}

func NewLoader(src Source) *Loader {
	return &Loader{src: src}
}

// Load returns the cached HTML, fetching it on first use.
func (l *Loader) Load(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return l.html, nil
	}
	html, err := l.src.Fetch(ctx)
	if err != nil {
		return "", err
	}
	l.html = html
	l.loaded = true
	return html, nil
}

// Loaded reports whether the HTML is cached.
func (l *Loader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Source returns the underlying source.
func (l *Loader) Source() Source { return l.src }
