package carrito

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// snapshotTTL bounds abandoned carts; an active terminal refreshes it on
// every save.
const snapshotTTL = 7 * 24 * time.Hour

// Store persists cart snapshots per terminal so a restart does not lose an
// in-progress sale.
type Store interface {
	Cargar(ctx context.Context, clave string) (*Carrito, error)
	Guardar(ctx context.Context, clave string, c *Carrito) error
	Limpiar(ctx context.Context, clave string) error
}

// RedisStore keeps one JSON snapshot per terminal key.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) key(clave string) string { return "carrito:" + clave }

// Cargar returns an empty cart when no snapshot exists.
func (s *RedisStore) Cargar(ctx context.Context, clave string) (*Carrito, error) {
	raw, err := s.rdb.Get(ctx, s.key(clave)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Nuevo(), nil
	}
	if err != nil {
		return nil, err
	}
	var c Carrito
	if err := json.Unmarshal(raw, &c); err != nil {
		// A corrupt snapshot is unrecoverable — start clean rather than block sales
		return Nuevo(), nil
	}
	return &c, nil
}

func (s *RedisStore) Guardar(ctx context.Context, clave string, c *Carrito) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(clave), raw, snapshotTTL).Err()
}

func (s *RedisStore) Limpiar(ctx context.Context, clave string) error {
	return s.rdb.Del(ctx, s.key(clave)).Err()
}
