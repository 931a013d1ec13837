package outbox_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/application/outbox"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/memory"
)

func TestEnqueue_DeduplicaDestinatariosYCopia(t *testing.T) {
	s := memory.NewStore(0)
	u := &entity.User{ID: 3, Username: "ana", Email: "ana@x.fr"}
	msg := outbox.UserCreated("T1", u, "pw", []string{"ANA@x.fr", "boss@x.fr", ""})

	require.NoError(t, outbox.Enqueue(context.Background(), s, msg))

	got := s.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, []string{"ana@x.fr"}, got[0].Recipients)
	assert.Equal(t, []string{"boss@x.fr"}, got[0].CC, "la copia no repite al destinatario")
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, entity.OutboxPending, got[0].Status)
}

func TestEnqueue_SinDestinatariosNoEncola(t *testing.T) {
	s := memory.NewStore(0)
	u := &entity.User{ID: 3, Username: "ana"}
	require.NoError(t, outbox.Enqueue(context.Background(), s, outbox.UserCreated("T1", u, "pw", nil)))
	assert.Empty(t, s.Messages())
}
