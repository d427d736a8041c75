package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-stats-dashboard/internal/errors"
	"go-stats-dashboard/internal/model"
	"go-stats-dashboard/internal/pipeline"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
)

// Loader loads the tables a session works on
type Loader interface {
	LoadLivestock(ctx context.Context) (*pipeline.Tables, error)
	LoadPenguins(ctx context.Context) (dataframe.DataFrame, error)
}

// Session is the per-user state of one dashboard: its tables, loaded once.
// Tables are never mutated after Create, so a session is safe to share.
type Session struct {
	ID        string            `json:"id"`
	Dataset   model.DatasetKind `json:"dataset"`
	CreatedAt time.Time         `json:"createdAt"`
	Rows      int               `json:"rows"`

	Livestock *pipeline.Tables    `json:"-"`
	Penguins  dataframe.DataFrame `json:"-"`
}

// Manager is the registry of live sessions
type Manager struct {
	mu       sync.RWMutex
	loader   Loader
	sessions map[string]*Session
}

// NewManager creates an empty registry backed by loader
func NewManager(loader Loader) *Manager {
	return &Manager{
		loader:   loader,
		sessions: make(map[string]*Session),
	}
}

// Create loads the dataset's tables and registers a new session
func (m *Manager) Create(ctx context.Context, dataset model.DatasetKind) (*Session, error) {
	if !dataset.Valid() {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown dataset %q (want livestock or penguins)", dataset))
	}

	s := &Session{
		ID:        uuid.New().String(),
		Dataset:   dataset,
		CreatedAt: time.Now().UTC(),
	}

	switch dataset {
	case model.DatasetLivestock:
		tables, err := m.loader.LoadLivestock(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load livestock tables")
		}
		s.Livestock = tables
		s.Rows = tables.Records.Nrow()
	case model.DatasetPenguins:
		df, err := m.loader.LoadPenguins(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load penguin table")
		}
		s.Penguins = df
		s.Rows = df.Nrow()
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	fmt.Printf("🆕 Session %s created (%s, %d rows)\n", s.ID, s.Dataset, s.Rows)
	return s, nil
}

// Get returns a session by ID
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("session %s", id))
	}
	return s, nil
}

// List returns all sessions, oldest first
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return errors.NotFound(fmt.Sprintf("session %s", id))
	}
	delete(m.sessions, id)
	return nil
}
