// Package repository defines the usuario store interface and its drivers.
package repository

import (
	"context"

	"github.com/Sticlo/ProyectoCobra/internal/domain/usuario"
)

// Store provides read/write access to usuarios.
type Store interface {
	// List returns every usuario in creation order. Never nil.
	List(ctx context.Context) ([]usuario.Usuario, error)

	// Get returns the usuario with id.
	// Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (usuario.Usuario, error)

	// Create stores a new usuario. The caller assigns the id.
	Create(ctx context.Context, u usuario.Usuario) error

	// Update replaces nombre and correo of an existing usuario.
	// Returns ErrNotFound if the id is unknown.
	Update(ctx context.Context, u usuario.Usuario) error

	// Delete removes the usuario with id.
	// Returns ErrNotFound if the id is unknown.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored usuarios.
	Count(ctx context.Context) (int, error)

	// Ping checks that the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases connections and background goroutines.
	Close() error
}
