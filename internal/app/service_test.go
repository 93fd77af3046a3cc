package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	repository "github.com/Sticlo/ProyectoCobra/internal/adapters/repository"
	service "github.com/Sticlo/ProyectoCobra/internal/app"
	"github.com/Sticlo/ProyectoCobra/internal/domain/usuario"
	"github.com/Sticlo/ProyectoCobra/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func ptr(s string) *string { return &s }

// downStore is a store whose backend is unreachable.
type downStore struct{ repository.Store }

var errDown = errors.New("connection refused")

func (downStore) Ping(context.Context) error                      { return errDown }
func (downStore) Count(context.Context) (int, error)              { return 0, errDown }
func (downStore) Create(context.Context, usuario.Usuario) error   { return errDown }
func (downStore) List(context.Context) ([]usuario.Usuario, error) { return nil, errDown }
func (downStore) Close() error                                    { return nil }

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it uses the memory driver and is not started", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["storeDriver"], ShouldEqual, "memory")
		})

		Convey("Then use cases fail with ErrNotStarted", func() {
			ctx := context.Background()
			_, err := svc.ListUsuarios(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.CreateUsuario(ctx, usuario.Crear{Nombre: "a", Correo: "a@b.co"})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(errors.Is(svc.DeleteUsuario(ctx, "x"), service.ErrNotStarted), ShouldBeTrue)
			So(errors.Is(svc.Ping(ctx), service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given an unknown store driver", t, func() {
		svc := service.New(service.WithStoreDriver("mongo"), service.WithLogger(logger.Nop()))

		Convey("Then Start fails with ErrUnknownDriver", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, repository.ErrUnknownDriver), ShouldBeTrue)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["totalUsuarios"], ShouldEqual, 0)
				So(svc.Ping(ctx), ShouldBeNil)
			})

			Convey("And starting it again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping it twice does not panic", func() {
				So(func() { svc.Stop(); svc.Stop() }, ShouldNotPanic)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Usuarios(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithLogger(logger.Nop()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a usuario is created", func() {
			u, err := svc.CreateUsuario(ctx, usuario.Crear{Nombre: " Ana ", Correo: "ana@example.com"})

			Convey("Then it gets a uuid and trimmed fields", func() {
				So(err, ShouldBeNil)
				_, perr := uuid.Parse(u.ID)
				So(perr, ShouldBeNil)
				So(u.Nombre, ShouldEqual, "Ana")
			})

			Convey("Then it is listed and retrievable", func() {
				list, err := svc.ListUsuarios(ctx)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 1)
				So(list[0].ID, ShouldEqual, u.ID)

				got, err := svc.GetUsuario(ctx, u.ID)
				So(err, ShouldBeNil)
				So(got.Correo, ShouldEqual, "ana@example.com")
				So(svc.GetStats()["totalUsuarios"], ShouldEqual, 1)
			})

			Convey("When only nombre is updated", func() {
				upd, err := svc.UpdateUsuario(ctx, u.ID, usuario.Actualizar{Nombre: ptr("Ana María")})

				Convey("Then correo and id are unchanged", func() {
					So(err, ShouldBeNil)
					So(upd.ID, ShouldEqual, u.ID)
					So(upd.Nombre, ShouldEqual, "Ana María")
					So(upd.Correo, ShouldEqual, "ana@example.com")
				})
			})

			Convey("When the update carries an invalid correo", func() {
				_, err := svc.UpdateUsuario(ctx, u.ID, usuario.Actualizar{Correo: ptr("nope")})

				Convey("Then ErrCorreoInvalido is returned and nothing changes", func() {
					So(errors.Is(err, usuario.ErrCorreoInvalido), ShouldBeTrue)
					got, _ := svc.GetUsuario(ctx, u.ID)
					So(got.Correo, ShouldEqual, "ana@example.com")
				})
			})

			Convey("When it is deleted", func() {
				So(svc.DeleteUsuario(ctx, u.ID), ShouldBeNil)

				Convey("Then it can no longer be found", func() {
					_, err := svc.GetUsuario(ctx, u.ID)
					So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
					So(errors.Is(svc.DeleteUsuario(ctx, u.ID), repository.ErrNotFound), ShouldBeTrue)
				})
			})
		})

		Convey("When required fields are missing", func() {
			_, err := svc.CreateUsuario(ctx, usuario.Crear{Nombre: "Ana"})
			So(errors.Is(err, usuario.ErrCamposObligatorios), ShouldBeTrue)
		})

		Convey("When updating an unknown id", func() {
			_, err := svc.UpdateUsuario(ctx, uuid.NewString(), usuario.Actualizar{Nombre: ptr("x")})
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_InjectedStore(t *testing.T) {
	Convey("Given a service with an unreachable injected store", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithStore(downStore{}), service.WithLogger(logger.Nop()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then Ping reports the failure", func() {
			So(errors.Is(svc.Ping(ctx), errDown), ShouldBeTrue)
			So(svc.GetStats()["storeDriver"], ShouldEqual, "custom")
		})

		Convey("Then store errors are wrapped, not hidden", func() {
			_, err := svc.CreateUsuario(ctx, usuario.Crear{Nombre: "Ana", Correo: "ana@example.com"})
			So(errors.Is(err, errDown), ShouldBeTrue)
			_, err = svc.ListUsuarios(ctx)
			So(errors.Is(err, errDown), ShouldBeTrue)
		})
	})
}
