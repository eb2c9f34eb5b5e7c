package handler

// eventos.go — Server-Sent Events stream of refresh signals. A terminal keeps
// one long-lived GET open and re-fetches whatever view the received tipo
// names. Cross-instance events arrive via the per-empresa Redis channel.

import (
	"encoding/json"
	"io"

	"gestion/internal/bus"
	"gestion/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type EventosHandler struct {
	eventos *bus.Bus
	rdb     *redis.Client
}

func NewEventosHandler(eventos *bus.Bus, rdb *redis.Client) *EventosHandler {
	return &EventosHandler{eventos: eventos, rdb: rdb}
}

// Stream pushes the empresa's refresh events as SSE until the client
// disconnects.
func (h *EventosHandler) Stream(c *gin.Context) {
	empresaID := middleware.EmpresaID(c)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// Buffered: a slow client drops events rather than blocking publishers
	out := make(chan bus.Evento, 16)

	cancelar := h.eventos.Suscribir(func(e bus.Evento) {
		if e.EmpresaID != empresaID {
			return
		}
		select {
		case out <- e:
		default:
		}
	})
	defer cancelar()

	// Events published by sibling instances arrive over Redis
	if h.rdb != nil {
		sub := h.rdb.Subscribe(c.Request.Context(), bus.Canal(empresaID))
		defer sub.Close()
		go func() {
			for msg := range sub.Channel() {
				var e bus.Evento
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					log.Warn().Err(err).Msg("eventos: payload inválido en canal redis")
					continue
				}
				select {
				case out <- e:
				default:
				}
			}
		}()
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case e := <-out:
			c.SSEvent("refresh", gin.H{"tipo": e.Tipo})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
