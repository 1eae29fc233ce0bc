package connection

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// Opener opens a Source for a connection config
type Opener func(ctx context.Context, config models.ConnectionConfig) (Source, error)

// Manager manages named data sources. Sources are opened on first use.
type Manager struct {
	configs     map[string]models.ConnectionConfig
	connections map[string]*Connection
	open        Opener
	lg          *zap.Logger
	mu          sync.RWMutex
}

// Connection wraps a source with metadata
type Connection struct {
	models.Connection
	Source Source
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithOpener replaces the driver based opener
func WithOpener(open Opener) ManagerOption {
	return func(m *Manager) { m.open = open }
}

// WithManagerLogger sets the logger
func WithManagerLogger(lg *zap.Logger) ManagerOption {
	return func(m *Manager) { m.lg = lg }
}

// NewManager creates a new connection manager over the configured connections
func NewManager(configs []models.ConnectionConfig, poolSize int, loc *time.Location, opts ...ManagerOption) *Manager {
	m := &Manager{
		configs:     make(map[string]models.ConnectionConfig, len(configs)),
		connections: make(map[string]*Connection),
		lg:          zap.NewNop(),
	}
	for _, c := range configs {
		m.configs[c.ID()] = c
	}
	m.open = func(ctx context.Context, config models.ConnectionConfig) (Source, error) {
		return Open(ctx, config, poolSize, loc)
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Open opens a source for the configured driver
func Open(ctx context.Context, config models.ConnectionConfig, poolSize int, loc *time.Location) (Source, error) {
	config, err := withPassword(config)
	if err != nil {
		return nil, err
	}
	switch config.Driver {
	case models.PostgreSQL:
		pool, err := NewPool(ctx, config, int32(poolSize))
		if err != nil {
			return nil, err
		}
		return pool, nil
	case models.MySQL:
		src, err := OpenMySQL(ctx, config, poolSize, loc)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, errors.Errorf("unsupported driver %q", config.Driver)
	}
}

// Get returns the named source, connecting on first use
func (m *Manager) Get(ctx context.Context, name string) (Source, error) {
	m.mu.RLock()
	conn, ok := m.connections[name]
	m.mu.RUnlock()
	if ok && conn.Source != nil {
		return conn.Source, nil
	}

	m.mu.RLock()
	config, ok := m.configs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("connection %q not configured", name)
	}
	if _, err := m.Connect(ctx, config); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connections[name].Source, nil
}

// Connect establishes a connection and registers it under its ID
func (m *Manager) Connect(ctx context.Context, config models.ConnectionConfig) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := config.ID()
	m.configs[id] = config
	if conn, ok := m.connections[id]; ok && conn.Source != nil {
		return id, nil
	}

	m.lg.Debug("Connecting", zap.String("connection", id), zap.String("driver", string(config.Driver)))
	src, err := m.open(ctx, config)
	if err != nil {
		m.connections[id] = &Connection{Connection: models.Connection{
			ID:     id,
			Config: config,
			State:  models.Failed,
			Error:  err,
		}}
		return id, errors.Wrapf(err, "connect %q", id)
	}

	now := time.Now()
	m.connections[id] = &Connection{
		Connection: models.Connection{
			ID:          id,
			Config:      config,
			State:       models.Connected,
			ConnectedAt: now,
			LastPing:    now,
		},
		Source: src,
	}
	return id, nil
}

// Disconnect closes a connection
func (m *Manager) Disconnect(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.connections[id]
	if !ok {
		return errors.Errorf("connection %s not found", id)
	}
	if conn.Source != nil {
		conn.Source.Close()
	}
	delete(m.connections, id)
	return nil
}

// GetAll returns a snapshot of every known connection sorted by ID.
// Configured connections that were never opened report Disconnected.
func (m *Manager) GetAll() []models.Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Connection, 0, len(m.configs))
	for id, config := range m.configs {
		if conn, ok := m.connections[id]; ok {
			out = append(out, conn.Connection)
			continue
		}
		out = append(out, models.Connection{ID: id, Config: config, State: models.Disconnected})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Ping tests an opened connection and records the outcome
func (m *Manager) Ping(ctx context.Context, id string) error {
	m.mu.RLock()
	conn, ok := m.connections[id]
	m.mu.RUnlock()
	if !ok || conn.Source == nil {
		return errors.Errorf("connection %s not open", id)
	}

	err := conn.Source.Ping(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		conn.State = models.Failed
		conn.Error = err
		return err
	}
	conn.State = models.Connected
	conn.LastPing = time.Now()
	conn.Error = nil
	return nil
}

// Close closes every open source
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, conn := range m.connections {
		if conn.Source != nil {
			conn.Source.Close()
		}
		delete(m.connections, id)
	}
}
