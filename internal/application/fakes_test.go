package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/joacominatel/platewise/internal/domain"
)

type fakeProfileRepo struct {
	byExternalID map[string]*domain.Profile
	err          error
}

func newFakeProfileRepo(profiles ...*domain.Profile) *fakeProfileRepo {
	r := &fakeProfileRepo{byExternalID: make(map[string]*domain.Profile)}
	for _, p := range profiles {
		r.byExternalID[p.ExternalID()] = p
	}
	return r
}

func (r *fakeProfileRepo) Save(_ context.Context, p *domain.Profile) error {
	r.byExternalID[p.ExternalID()] = p
	return nil
}

func (r *fakeProfileRepo) FindByExternalID(_ context.Context, externalID string) (*domain.Profile, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.byExternalID[externalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type fakeMealRepo struct {
	mu      sync.Mutex
	entries []*domain.LogEntry
	queries int
	err     error
}

func (r *fakeMealRepo) Save(_ context.Context, e *domain.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeMealRepo) SaveBatch(_ context.Context, entries []*domain.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *fakeMealRepo) FindCountedByUserInRange(_ context.Context, userID domain.UserID, from, to time.Time) ([]*domain.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries++
	if r.err != nil {
		return nil, r.err
	}
	var out []*domain.LogEntry
	for _, e := range r.entries {
		if e.UserID() != userID || !e.IsCounted() {
			continue
		}
		if e.ConsumedAt().Before(from) || !e.ConsumedAt().Before(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	gets   int
	sets   int
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

type fakeMetrics struct {
	mu        sync.Mutex
	durations map[string]int
	hits      int
	misses    int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{durations: make(map[string]int)}
}

func (m *fakeMetrics) RecordInsightDuration(view string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[view]++
}

func (m *fakeMetrics) RecordInsightCache(_ string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

var errBoom = errors.New("boom")

func fixedTime(t time.Time) TimeProvider {
	return func() time.Time { return t }
}
