package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sticlo/ProyectoCobra/internal/domain/usuario"
)

const (
	driverRedis = "redis"
	// maxWatchAttempts bounds optimistic retries when a watched key changes.
	maxWatchAttempts = 5
)

// Hash fields of a stored usuario.
const (
	fieldID       = "id"
	fieldNombre   = "nombre"
	fieldCorreo   = "correo"
	fieldCreadoEn = "creado_en"
)

// RedisStore keeps each usuario in a hash and their creation order in a sorted set.
//
//	<prefix>usuario:<id>  HASH  id, nombre, correo, creado_en (unix micros)
//	<prefix>usuarios      ZSET  member id, score creado_en
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redisURL. Every key is prefixed with prefix.
func NewRedisStore(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) usuarioKey(id string) string { return s.prefix + "usuario:" + id }
func (s *RedisStore) indexKey() string            { return s.prefix + "usuarios" }

// List implements Store.List.
func (s *RedisStore) List(ctx context.Context) (out []usuario.Usuario, err error) {
	defer func(start time.Time) { observe(driverRedis, "list", start, err) }(time.Now())

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list usuario ids: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	if len(ids) > 0 {
		_, err = s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
			for i, id := range ids {
				cmds[i] = p.HGetAll(ctx, s.usuarioKey(id))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list usuarios: %w", err)
		}
	}

	out = make([]usuario.Usuario, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// removed between ZRANGE and HGETALL
			continue
		}
		out = append(out, fromHash(fields))
	}
	return out, nil
}

// Get implements Store.Get.
func (s *RedisStore) Get(ctx context.Context, id string) (u usuario.Usuario, err error) {
	defer func(start time.Time) { observe(driverRedis, "get", start, err) }(time.Now())

	fields, err := s.client.HGetAll(ctx, s.usuarioKey(id)).Result()
	if err != nil {
		return usuario.Usuario{}, fmt.Errorf("get usuario: %w", err)
	}
	if len(fields) == 0 {
		return usuario.Usuario{}, ErrNotFound
	}
	return fromHash(fields), nil
}

// Create implements Store.Create.
func (s *RedisStore) Create(ctx context.Context, u usuario.Usuario) (err error) {
	defer func(start time.Time) { observe(driverRedis, "create", start, err) }(time.Now())

	key := s.usuarioKey(u.ID)
	err = s.watch(ctx, key, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateID
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key,
				fieldID, u.ID,
				fieldNombre, u.Nombre,
				fieldCorreo, u.Correo,
				fieldCreadoEn, strconv.FormatInt(u.CreadoEn.UnixMicro(), 10),
			)
			p.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(u.CreadoEn.UnixMicro()), Member: u.ID})
			return nil
		})
		return err
	})
	if err != nil && !errors.Is(err, ErrDuplicateID) {
		return fmt.Errorf("create usuario: %w", err)
	}
	return err
}

// Update implements Store.Update.
func (s *RedisStore) Update(ctx context.Context, u usuario.Usuario) (err error) {
	defer func(start time.Time) { observe(driverRedis, "update", start, err) }(time.Now())

	key := s.usuarioKey(u.ID)
	err = s.watch(ctx, key, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, fieldNombre, u.Nombre, fieldCorreo, u.Correo)
			return nil
		})
		return err
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update usuario: %w", err)
	}
	return err
}

// watch runs fn in a WATCH transaction on key, retrying when another client
// modified key before EXEC.
func (s *RedisStore) watch(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	return retryTxFailed(ctx, maxWatchAttempts, func() error {
		return s.client.Watch(ctx, fn, key)
	})
}

// retryTxFailed calls fn up to attempts times while it returns redis.TxFailedErr.
func retryTxFailed(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

// Delete implements Store.Delete.
func (s *RedisStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe(driverRedis, "delete", start, err) }(time.Now())

	var del *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, s.usuarioKey(id))
		p.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete usuario: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count implements Store.Count.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("count usuarios: %w", err)
	}
	return int(n), nil
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func fromHash(fields map[string]string) usuario.Usuario {
	u := usuario.Usuario{
		ID:     fields[fieldID],
		Nombre: fields[fieldNombre],
		Correo: fields[fieldCorreo],
	}
	if micros, err := strconv.ParseInt(fields[fieldCreadoEn], 10, 64); err == nil {
		u.CreadoEn = time.UnixMicro(micros).UTC()
	}
	return u
}
