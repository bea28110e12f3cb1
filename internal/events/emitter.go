// Package events publica eventos estruturados de pós-efetivação para
// consumidores externos (impressão de cupom, fidelidade). Falhas de publicação
// são registradas e nunca propagam para o chamador.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	EventOrderCommitted = "order.committed"
	EventOrderVoided    = "order.voided"
	EventOrderRefunded  = "order.refunded"
	EventTillClosed     = "till.closed"
)

// Envelope é o formato serializado de todo evento emitido.
type Envelope struct {
	Event      string    `json:"event"`
	TenantKey  string    `json:"tenant_key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Emitter publica eventos em um canal Redis por tenant.
type Emitter struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewEmitter cria o emissor de eventos.
func NewEmitter(client *redis.Client, log zerolog.Logger) *Emitter {
	return &Emitter{client: client, log: log}
}

// Emit publica o evento; qualquer falha é apenas registrada.
func (e *Emitter) Emit(ctx context.Context, tenantKey, event string, payload any) {
	if e.client == nil {
		return
	}

	envelope := Envelope{
		Event:      event,
		TenantKey:  tenantKey,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		e.log.Warn().Err(err).Str("event", event).Msg("falha ao serializar evento")
		return
	}

	channel := "pos.events." + tenantKey
	if err := e.client.Publish(ctx, channel, data).Err(); err != nil {
		e.log.Warn().Err(err).Str("event", event).Str("channel", channel).Msg("falha ao publicar evento")
	}
}
