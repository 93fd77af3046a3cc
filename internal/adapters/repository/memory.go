package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Sticlo/ProyectoCobra/internal/domain/usuario"
	"github.com/Sticlo/ProyectoCobra/pkg/metrics"
)

const driverMemory = "memory"

// MemoryStore keeps usuarios in process memory. Data is lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]usuario.Usuario
	order []string // ids in insertion order

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs an empty store and starts its metrics updater.
// The updater stops when ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:                  make(map[string]usuario.Usuario),
		metricsUpdateInterval: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)

	return s
}

// List implements Store.List.
func (s *MemoryStore) List(_ context.Context) ([]usuario.Usuario, error) {
	defer observe(driverMemory, "list", time.Now(), nil)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]usuario.Usuario, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, id string) (u usuario.Usuario, err error) {
	defer func(start time.Time) { observe(driverMemory, "get", start, err) }(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return usuario.Usuario{}, ErrNotFound
	}
	return u, nil
}

// Create implements Store.Create.
func (s *MemoryStore) Create(_ context.Context, u usuario.Usuario) (err error) {
	defer func(start time.Time) { observe(driverMemory, "create", start, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[u.ID]; ok {
		return ErrDuplicateID
	}
	s.byID[u.ID] = u
	s.order = append(s.order, u.ID)
	return nil
}

// Update implements Store.Update.
func (s *MemoryStore) Update(_ context.Context, u usuario.Usuario) (err error) {
	defer func(start time.Time) { observe(driverMemory, "update", start, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[u.ID]
	if !ok {
		return ErrNotFound
	}
	old.Nombre = u.Nombre
	old.Correo = u.Correo
	s.byID[u.ID] = old
	return nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, id string) (err error) {
	defer func(start time.Time) { observe(driverMemory, "delete", start, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

// Ping implements Store.Ping. Memory is always reachable.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close stops the background metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// startMetricsUpdater starts a background goroutine that publishes the usuario count.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				n, _ := s.Count(ctx)
				metrics.UpdateUsuariosTotal(n)
			}
		}
	}()
}
