// Package bus is the explicit refresh-signal channel between views: mutations
// publish a low-priority event, consumers re-fetch the affected data instead
// of patching incrementally. In-process subscribers get a synchronous
// callback; a Redis PUBLISH on a per-empresa channel reaches sibling
// processes and any realtime frontends.
package bus

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	EventoInventario = "inventario_actualizado"
	EventoCaja       = "caja_actualizada"
	EventoVenta      = "venta_registrada"
)

// Evento is the refresh signal. It intentionally carries no row data —
// consumers always re-fetch from the authoritative store.
type Evento struct {
	Tipo      string    `json:"tipo"`
	EmpresaID uuid.UUID `json:"empresa_id"`
}

type Bus struct {
	mu     sync.RWMutex
	subs   map[int]func(Evento)
	nextID int
	rdb    *redis.Client
}

// New creates a Bus. rdb may be nil (unit tests) — events then stay in-process.
func New(rdb *redis.Client) *Bus {
	return &Bus{subs: make(map[int]func(Evento)), rdb: rdb}
}

// Suscribir registers fn for every published event and returns a cancel func.
func (b *Bus) Suscribir(fn func(Evento)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publicar fans the event out to in-process subscribers and, when Redis is
// available, to the per-empresa channel. Publish failures are logged, never
// propagated: a refresh signal must not fail the mutation that produced it.
func (b *Bus) Publicar(ctx context.Context, e Evento) {
	b.mu.RLock()
	for _, fn := range b.subs {
		fn(e)
	}
	b.mu.RUnlock()

	if b.rdb == nil {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return
	}
	canal := Canal(e.EmpresaID)
	if err := b.rdb.Publish(ctx, canal, payload).Err(); err != nil {
		log.Warn().Err(err).Str("canal", canal).Msg("bus: publish fallido")
	}
}

// Canal returns the Redis pub/sub channel name for an empresa.
func Canal(empresaID uuid.UUID) string {
	return "gestion:eventos:" + empresaID.String()
}
