package link

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abdusco/shorty/internal"
)

// memStore is an in-memory Store used by the service tests.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	links  map[string]*internal.Link

	existsCalls int
	failWith    error
}

func newMemStore() *memStore {
	return &memStore{links: map[string]*internal.Link{}}
}

func (m *memStore) CodeExists(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existsCalls++
	if m.failWith != nil {
		return false, m.failWith
	}
	_, ok := m.links[code]
	return ok, nil
}

func (m *memStore) Create(_ context.Context, code, targetURL string, now time.Time) (*internal.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if _, ok := m.links[code]; ok {
		return nil, internal.ErrCodeExists
	}
	m.nextID++
	link := &internal.Link{
		ID:        m.nextID,
		Code:      code,
		TargetURL: targetURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.links[code] = link
	copied := *link
	return &copied, nil
}

func (m *memStore) GetByCode(_ context.Context, code string) (*internal.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	link, ok := m.links[code]
	if !ok {
		return nil, internal.ErrLinkNotFound
	}
	copied := *link
	return &copied, nil
}

func (m *memStore) ListAll(_ context.Context) ([]*internal.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	links := make([]*internal.Link, 0, len(m.links))
	for _, link := range m.links {
		copied := *link
		links = append(links, &copied)
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].ID > links[j].ID
	})
	return links, nil
}

func (m *memStore) DeleteByCode(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.links[code]; !ok {
		return internal.ErrLinkNotFound
	}
	delete(m.links, code)
	return nil
}

func (m *memStore) RecordClick(_ context.Context, code string, at time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return "", m.failWith
	}
	link, ok := m.links[code]
	if !ok {
		return "", internal.ErrLinkNotFound
	}
	link.TotalClicks++
	link.LastClickedAt = &at
	link.UpdatedAt = at
	return link.TargetURL, nil
}

func (m *memStore) DBTime(_ context.Context) (time.Time, error) {
	if m.failWith != nil {
		return time.Time{}, m.failWith
	}
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), nil
}
