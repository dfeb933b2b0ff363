package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var ErrNotFound = errors.New("session not found")

// Store persists session records. Implementations are safe for concurrent
// use; concurrent writers to one id are last-writer-wins.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, rec *Record, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Close() error
}

type memoryItem struct {
	data      Record
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Expired entries are invisible to Get
// immediately and reclaimed by the sweeper.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
	cron  *cron.Cron
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	item, ok := s.items[id]
	s.mu.RUnlock()

	if !ok || !s.now().Before(item.expiresAt) {
		return nil, ErrNotFound
	}
	rec := item.data
	return &rec, nil
}

func (s *MemoryStore) Save(_ context.Context, rec *Record, ttl time.Duration) error {
	if rec == nil || rec.ID == "" {
		return errors.New("session record without id")
	}
	s.mu.Lock()
	s.items[rec.ID] = memoryItem{data: *rec, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

// Len counts live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	n := 0
	for _, item := range s.items {
		if now.Before(item.expiresAt) {
			n++
		}
	}
	return n
}

// Sweep evicts expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, item := range s.items {
		if !now.Before(item.expiresAt) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on a cron schedule such as "@every 1m". report, if
// set, receives the live count after each sweep.
func (s *MemoryStore) StartSweeper(schedule string, report func(active int)) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		s.Sweep()
		if report != nil {
			report(s.Len())
		}
	}); err != nil {
		return err
	}
	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	c.Start()
	return nil
}

// Close stops the sweeper, waiting for a running sweep to finish.
func (s *MemoryStore) Close() error {
	s.mu.RLock()
	c := s.cron
	s.mu.RUnlock()
	if c != nil {
		<-c.Stop().Done()
	}
	return nil
}
