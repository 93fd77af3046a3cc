package smoke

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Sticlo/ProyectoCobra/pkg/logger"
)

const (
	apiTitle       = "API ProyectoCobra"
	usuariosPath   = "/api/usuarios"
	chanMultiplier = 2
)

// Run executes the smoke scenario against a running server.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg == nil || cfg.BaseURL == "" || cfg.Usuarios <= 0 || cfg.Workers <= 0 {
		return nil, ErrInvalidConfig
	}

	log := logger.Named("smoke")
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("usuarios", cfg.Usuarios),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()))

	if err := checkHealth(ctx, c); err != nil {
		return stats, fmt.Errorf("health check: %w", err)
	}
	if err := checkDocument(ctx, c); err != nil {
		return stats, fmt.Errorf("openapi document: %w", err)
	}

	created, err := createUsuarios(ctx, c, cfg, stats)
	if err != nil {
		return stats, fmt.Errorf("create usuarios: %w", err)
	}

	if err := checkListed(ctx, c, created, stats); err != nil {
		return stats, fmt.Errorf("list usuarios: %w", err)
	}

	var failed int
	err = forEach(ctx, cfg, created, &failed, func(u Usuario) error {
		return fetchAndUpdate(ctx, c, u, cfg.Verbose)
	})
	stats.Failed += failed
	stats.Fetched = len(created) - failed
	stats.Updated = stats.Fetched
	if err != nil {
		return stats, fmt.Errorf("get/update usuarios: %w", err)
	}

	err = forEach(ctx, cfg, created, &failed, func(u Usuario) error {
		return deleteAndConfirm(ctx, c, u)
	})
	stats.Failed += failed
	stats.Deleted = len(created) - failed
	if err != nil {
		return stats, fmt.Errorf("delete usuarios: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

func checkHealth(ctx context.Context, c *client) error {
	var body struct {
		OK bool `json:"ok"`
	}
	if err := c.do(ctx, http.MethodGet, "/salud", nil, &body, http.StatusOK); err != nil {
		return err
	}
	if !body.OK {
		return fmt.Errorf("%w: salud reported ok=false", ErrContract)
	}
	return nil
}

func checkDocument(ctx context.Context, c *client) error {
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
	}
	if err := c.do(ctx, http.MethodGet, "/openapi.json", nil, &doc, http.StatusOK); err != nil {
		return err
	}
	if doc.Info.Title != apiTitle {
		return fmt.Errorf("%w: title %q", ErrContract, doc.Info.Title)
	}
	return nil
}

// createUsuarios posts cfg.Usuarios usuarios with a worker pool and returns
// the ones the server accepted.
func createUsuarios(ctx context.Context, c *client, cfg *Config, stats *Stats) ([]Usuario, error) {
	inputs := make([]Usuario, cfg.Usuarios)
	for i := range inputs {
		tag := uuid.NewString()[:8]
		inputs[i] = Usuario{
			Nombre: fmt.Sprintf("Usuario %d", i+1),
			Correo: fmt.Sprintf("smoke-%s@correo.com", tag),
		}
	}

	var (
		mu      sync.Mutex
		created = make([]Usuario, 0, len(inputs))
		failed  int
	)
	err := forEach(ctx, cfg, inputs, &failed, func(in Usuario) error {
		var out Usuario
		payload := map[string]string{"nombre": in.Nombre, "correo": in.Correo}
		if err := c.do(ctx, http.MethodPost, usuariosPath, payload, &out, http.StatusCreated); err != nil {
			return err
		}
		if _, err := uuid.Parse(out.ID); err != nil {
			return fmt.Errorf("%w: id %q is not a uuid", ErrContract, out.ID)
		}
		if out.Nombre != in.Nombre || out.Correo != in.Correo {
			return fmt.Errorf("%w: created %+v from %+v", ErrContract, out, in)
		}
		mu.Lock()
		created = append(created, out)
		mu.Unlock()
		return nil
	})
	stats.Created = len(created)
	stats.Failed += failed
	return created, err
}

func checkListed(ctx context.Context, c *client, created []Usuario, stats *Stats) error {
	var list []Usuario
	if err := c.do(ctx, http.MethodGet, usuariosPath, nil, &list, http.StatusOK); err != nil {
		return err
	}
	stats.Listed = len(list)

	seen := make(map[string]struct{}, len(list))
	for _, u := range list {
		seen[u.ID] = struct{}{}
	}
	for _, u := range created {
		if _, ok := seen[u.ID]; !ok {
			return fmt.Errorf("%w: usuario %s missing from list", ErrContract, u.ID)
		}
	}
	return nil
}

func fetchAndUpdate(ctx context.Context, c *client, u Usuario, verbose bool) error {
	path := usuariosPath + "/" + u.ID

	var got Usuario
	if err := c.do(ctx, http.MethodGet, path, nil, &got, http.StatusOK); err != nil {
		return err
	}
	if got != u {
		return fmt.Errorf("%w: got %+v, want %+v", ErrContract, got, u)
	}

	nombre := u.Nombre + " (editado)"
	var updated Usuario
	if err := c.do(ctx, http.MethodPut, path, map[string]string{"nombre": nombre}, &updated, http.StatusOK); err != nil {
		return err
	}
	if updated.Nombre != nombre || updated.Correo != u.Correo || updated.ID != u.ID {
		return fmt.Errorf("%w: updated %+v", ErrContract, updated)
	}

	if verbose {
		logger.Named("smoke").Debug(ctx, "usuario verified", logger.String("id", u.ID))
	}
	return nil
}

func deleteAndConfirm(ctx context.Context, c *client, u Usuario) error {
	path := usuariosPath + "/" + u.ID
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, http.StatusNoContent); err != nil {
		return err
	}
	return c.do(ctx, http.MethodGet, path, nil, nil, http.StatusNotFound)
}

// forEach runs fn over items with cfg.Workers workers. It counts failures in
// *failed and returns the first error seen.
func forEach(ctx context.Context, cfg *Config, items []Usuario, failed *int, fn func(Usuario) error) error {
	work := make(chan Usuario, cfg.Workers*chanMultiplier)
	var (
		wg       sync.WaitGroup
		failures int64
		once     sync.Once
		firstErr error
	)

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				if err := fn(item); err != nil {
					atomic.AddInt64(&failures, 1)
					once.Do(func() { firstErr = err })
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case work <- item:
			}
		}
	}()

	wg.Wait()
	*failed = int(atomic.LoadInt64(&failures))

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Created) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("created", stats.Created),
		logger.Int("listed", stats.Listed),
		logger.Int("fetched", stats.Fetched),
		logger.Int("updated", stats.Updated),
		logger.Int("deleted", stats.Deleted),
		logger.Int("failed", stats.Failed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("usuariosPerSecond", perSecond))
}
