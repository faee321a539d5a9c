package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-intake/pkg/model"
	"go.uber.org/zap"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClearOnSubmit forgets the cached identity after a successful final
// submission so the next session starts a new draft.
func WithClearOnSubmit(enabled bool) Option {
	return func(m *Manager) {
		m.clearOnSubmit = enabled
	}
}

// Manager owns the draft identity for one session. It decides between create
// and update, hydrates form state on resume and exports it on every commit.
type Manager struct {
	backend       Backend
	store         IdentityStore
	logger        *zap.Logger
	clearOnSubmit bool

	mu       sync.Mutex
	identity Identity
	complete bool
}

// NewManager wires a manager to its backend and identity store.
func NewManager(backend Backend, store IdentityStore, opts ...Option) *Manager {
	m := &Manager{
		backend: backend,
		store:   store,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Identity returns the current draft identity, empty before the first
// successful save.
func (m *Manager) Identity() Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// Complete reports whether the resumed draft was already submitted.
func (m *Manager) Complete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.complete
}

// LoadIdentity reads the cached identity and, when present, fetches and
// hydrates the stored draft. The boolean reports whether a draft was resumed.
// A cached identity the backend no longer knows is cleared and the session
// starts fresh.
func (m *Manager) LoadIdentity(ctx context.Context) (model.FormState, bool, error) {
	id, err := m.store.Load(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("draft: load identity: %w", err)
	}
	if id == "" {
		return model.FormState{}, false, nil
	}

	rec, err := m.backend.Get(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		m.logger.Warn("cached draft identity not found, starting fresh", zap.String("draft_id", id.String()))
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.logger.Warn("clear stale draft identity", zap.Error(clearErr))
		}
		return model.FormState{}, false, nil
	case err != nil:
		m.setIdentity(id, false)
		return nil, false, fmt.Errorf("draft: fetch %s: %w", id, errors.Join(ErrTransport, err))
	}

	m.setIdentity(id, rec.IsComplete)
	m.logger.Debug("resumed draft", zap.String("draft_id", id.String()), zap.Bool("complete", rec.IsComplete))
	return Hydrate(rec), true, nil
}

// Commit exports state and persists it. Without an identity the draft is
// created and the assigned identity cached; otherwise it is updated in place.
// Failures return a *CommitError and leave the identity unchanged, so a retry
// of a failed final submission never creates a second draft.
func (m *Manager) Commit(ctx context.Context, state model.FormState, final bool) (Identity, error) {
	rec := Export(state, final)
	id := m.Identity()

	if id == "" {
		created, err := m.backend.Create(ctx, rec)
		if err != nil {
			return "", m.fail(final, "", err)
		}
		id = created
		m.setIdentity(id, final)
		if err := m.store.Save(ctx, id); err != nil {
			m.logger.Warn("cache draft identity", zap.String("draft_id", id.String()), zap.Error(err))
		}
	} else {
		if err := m.backend.Update(ctx, id, rec); err != nil {
			return id, m.fail(final, id, err)
		}
		m.setIdentity(id, final)
	}

	if final {
		m.logger.Info("draft submitted", zap.String("draft_id", id.String()))
		if m.clearOnSubmit {
			if err := m.store.Clear(ctx); err != nil {
				m.logger.Warn("clear draft identity after submit", zap.String("draft_id", id.String()), zap.Error(err))
			}
			m.setIdentity("", false)
		}
	}
	return id, nil
}

func (m *Manager) fail(final bool, id Identity, err error) error {
	fields := []zap.Field{zap.Bool("final", final), zap.Error(err)}
	if id != "" {
		fields = append(fields, zap.String("draft_id", id.String()))
	}
	m.logger.Warn("draft commit failed", fields...)
	return &CommitError{Final: final, Identity: id, Err: err}
}

func (m *Manager) setIdentity(id Identity, complete bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = id
	m.complete = complete
}
