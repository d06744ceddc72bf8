package multiblog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// memoryStore is an in-memory TenantStore.
type memoryStore struct {
	tenants []Tenant
	err     error
}

func (m *memoryStore) FindTenant(_ context.Context, q SiteQuery) (Tenant, error) {
	if m.err != nil {
		return Tenant{}, m.err
	}
	var domainMatch *Tenant
	for i, t := range m.tenants {
		if !q.Matches(t) {
			continue
		}
		if t.Slug == q.Identifier {
			return t, nil
		}
		if domainMatch == nil {
			domainMatch = &m.tenants[i]
		}
	}
	if domainMatch != nil {
		return *domainMatch, nil
	}
	return Tenant{}, ErrTenantNotFound
}

func (m *memoryStore) ListTenants(context.Context) ([]Tenant, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tenants, nil
}

// memorySource is an in-memory ContentSource keyed by content source ID.
type memorySource struct {
	mu       sync.Mutex
	docs     map[string][]RawDocument
	failures map[string]error
	bodies   map[string][]Block
	delay    time.Duration

	calls    atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32
}

func (m *memorySource) ListDocuments(ctx context.Context, sourceID string) ([]RawDocument, error) {
	m.calls.Add(1)
	n := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures[sourceID]; err != nil {
		return nil, err
	}
	return m.docs[sourceID], nil
}

func (m *memorySource) GetDocumentBody(_ context.Context, documentID string) ([]Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bodies[documentID], nil
}

func (m *memorySource) setDocs(sourceID string, docs []RawDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs == nil {
		m.docs = make(map[string][]RawDocument)
	}
	m.docs[sourceID] = docs
}

func doc(id, title, route string, published string, categories ...string) RawDocument {
	d := RawDocument{"id": id, "title": title, "route": route}
	if published != "" {
		d["published"] = published
	}
	if len(categories) > 0 {
		d["categories"] = categories
	}
	return d
}

// memoryShared is an in-process SharedCache.
type memoryShared struct {
	mu    sync.Mutex
	posts map[string][]Post
	err   error
}

func newMemoryShared() *memoryShared {
	return &memoryShared{posts: make(map[string][]Post)}
}

func (m *memoryShared) GetPosts(_ context.Context, sourceID string) ([]Post, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	posts, ok := m.posts[sourceID]
	return posts, ok, nil
}

func (m *memoryShared) SetPosts(_ context.Context, sourceID string, posts []Post, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.posts[sourceID] = posts
	return nil
}

func (m *memoryShared) DeletePosts(_ context.Context, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.posts, sourceID)
	return nil
}

func (m *memoryShared) has(sourceID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.posts[sourceID]
	return ok
}
