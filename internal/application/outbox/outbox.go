package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// Enqueue inserta el mensaje en la transacción en curso. Si la transacción hace rollback,
// el mensaje desaparece con ella: nunca se envía nada antes del commit.
func Enqueue(ctx context.Context, uow repository.UnitOfWork, m *entity.OutboxMessage) error {
	m.Recipients = dedupe(m.Recipients, nil)
	m.CC = dedupe(m.CC, m.Recipients)
	if len(m.Recipients) == 0 {
		return nil
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Payload == nil {
		m.Payload = json.RawMessage("{}")
	}
	m.Status = entity.OutboxPending
	if err := uow.Outbox().Enqueue(ctx, m); err != nil {
		return fmt.Errorf("outbox: encolar %s: %w", m.Kind, err)
	}
	return nil
}

// dedupe quita vacíos, duplicados (sin distinguir mayúsculas) y los ya presentes en exclude.
func dedupe(addrs, exclude []string) []string {
	seen := make(map[string]struct{}, len(addrs)+len(exclude))
	for _, e := range exclude {
		seen[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		k := strings.ToLower(strings.TrimSpace(a))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, strings.TrimSpace(a))
	}
	return out
}

func payload(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return b
}
