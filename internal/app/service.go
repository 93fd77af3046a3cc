// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	repository "github.com/Sticlo/ProyectoCobra/internal/adapters/repository"
	"github.com/Sticlo/ProyectoCobra/internal/domain/usuario"
	"github.com/Sticlo/ProyectoCobra/pkg/logger"
	"github.com/Sticlo/ProyectoCobra/pkg/metrics"
)

// ErrNotStarted is returned by use cases called before Start.
var ErrNotStarted = errors.New("service not started")

// Metric outcomes for usuario operations.
const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// Service implements the API dependencies for the usuario registry.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	ownsStore bool

	// Configuration
	storeDriver string
	databaseURL string
	redisURL    string
	redisPrefix string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore injects a ready store. Start will not open another one and Stop
// will not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStoreDriver selects the store driver opened by Start.
func WithStoreDriver(driver string) Option {
	return func(s *Service) {
		if driver != "" {
			s.storeDriver = driver
		}
	}
}

// WithDatabaseURL sets the PostgreSQL URL used by the postgres driver.
func WithDatabaseURL(url string) Option {
	return func(s *Service) {
		s.databaseURL = url
	}
}

// WithRedisURL sets the Redis URL used by the redis driver.
func WithRedisURL(url string) Option {
	return func(s *Service) {
		s.redisURL = url
	}
}

// WithRedisPrefix sets the key prefix used by the redis driver.
func WithRedisPrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.redisPrefix = prefix
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeDriver: "memory",
		redisPrefix: "cobra:",
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store. Calling Start on a started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting usuario service...")

	if s.store == nil {
		store, err := repository.Open(ctx, repository.Config{
			Driver:      s.storeDriver,
			DatabaseURL: s.databaseURL,
			RedisURL:    s.redisURL,
			RedisPrefix: s.redisPrefix,
		})
		if err != nil {
			return fmt.Errorf("open %s store: %w", s.storeDriver, err)
		}
		s.store = store
		s.ownsStore = true
		s.logger.Info(ctx, "usuario store opened", logger.String("driver", s.storeDriver))
	} else {
		s.storeDriver = "custom"
	}

	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateUsuariosTotal(n)
	}

	s.started = true
	s.logger.Info(ctx, "usuario service started", logger.String("storeDriver", s.storeDriver))

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping usuario service...")

	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "failed to close store", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(context.Background(), "usuario service stopped")
}

func (s *Service) getStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// ListUsuarios returns every usuario in creation order.
func (s *Service) ListUsuarios(ctx context.Context) ([]usuario.Usuario, error) {
	store, err := s.getStore()
	if err != nil {
		return nil, err
	}
	list, err := store.List(ctx)
	record("listar", err)
	return list, err
}

// GetUsuario returns one usuario or repository.ErrNotFound.
func (s *Service) GetUsuario(ctx context.Context, id string) (usuario.Usuario, error) {
	store, err := s.getStore()
	if err != nil {
		return usuario.Usuario{}, err
	}
	u, err := store.Get(ctx, id)
	record("obtener", err)
	return u, err
}

// CreateUsuario validates in, assigns a fresh id and stores the usuario.
func (s *Service) CreateUsuario(ctx context.Context, in usuario.Crear) (usuario.Usuario, error) {
	store, err := s.getStore()
	if err != nil {
		return usuario.Usuario{}, err
	}

	in, err = in.Normalizar()
	if err != nil {
		record("crear", err)
		return usuario.Usuario{}, err
	}

	u := usuario.Nuevo(uuid.NewString(), in, time.Now())
	if err := store.Create(ctx, u); err != nil {
		record("crear", err)
		return usuario.Usuario{}, fmt.Errorf("create usuario: %w", err)
	}
	record("crear", nil)
	s.refreshTotal(ctx, store)

	s.logger.Debug(ctx, "usuario created", logger.String("id", u.ID))
	return u, nil
}

// UpdateUsuario applies the present fields of a to the usuario with id.
func (s *Service) UpdateUsuario(ctx context.Context, id string, a usuario.Actualizar) (usuario.Usuario, error) {
	store, err := s.getStore()
	if err != nil {
		return usuario.Usuario{}, err
	}

	a, err = a.Normalizar()
	if err != nil {
		record("actualizar", err)
		return usuario.Usuario{}, err
	}

	current, err := store.Get(ctx, id)
	if err != nil {
		record("actualizar", err)
		return usuario.Usuario{}, err
	}

	updated := current.Aplicar(a)
	if err := store.Update(ctx, updated); err != nil {
		record("actualizar", err)
		return usuario.Usuario{}, err
	}
	record("actualizar", nil)

	s.logger.Debug(ctx, "usuario updated", logger.String("id", id))
	return updated, nil
}

// DeleteUsuario removes the usuario with id.
func (s *Service) DeleteUsuario(ctx context.Context, id string) error {
	store, err := s.getStore()
	if err != nil {
		return err
	}
	err = store.Delete(ctx, id)
	record("eliminar", err)
	if err != nil {
		return err
	}
	s.refreshTotal(ctx, store)

	s.logger.Debug(ctx, "usuario deleted", logger.String("id", id))
	return nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	store, err := s.getStore()
	if err != nil {
		return err
	}
	return store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"storeDriver": s.storeDriver,
	}

	if s.started {
		total, err := s.store.Count(context.Background())
		if err == nil {
			stats["totalUsuarios"] = total
			metrics.UpdateUsuariosTotal(total)
		}
	}

	return stats
}

func (s *Service) refreshTotal(ctx context.Context, store repository.Store) {
	if n, err := store.Count(ctx); err == nil {
		metrics.UpdateUsuariosTotal(n)
	}
}

func record(op string, err error) {
	metrics.RecordUsuarioOperation(op, outcome(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case usuario.IsValidation(err):
		return outcomeInvalid
	case errors.Is(err, repository.ErrNotFound):
		return outcomeNotFound
	default:
		return outcomeError
	}
}
