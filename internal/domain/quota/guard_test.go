package quota_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
)

// ──────────────────────────────────────────────────────────────────────────────
// Limit: normalización del centinela ilimitado
// ──────────────────────────────────────────────────────────────────────────────

func TestFromRaw_NormalizaNullY999999(t *testing.T) {
	legacy := int64(999999)
	five := int64(5)

	assert.True(t, quota.FromRaw(nil).IsUnlimited())
	assert.True(t, quota.FromRaw(&legacy).IsUnlimited())
	assert.False(t, quota.FromRaw(&five).IsUnlimited())
	assert.Equal(t, int64(5), quota.FromRaw(&five).Value())
	assert.Nil(t, quota.Unlimited().Raw())
}

func TestLimit_JSON(t *testing.T) {
	var l quota.Limit
	require.NoError(t, json.Unmarshal([]byte("999999"), &l))
	assert.True(t, l.IsUnlimited())

	require.NoError(t, json.Unmarshal([]byte("3"), &l))
	assert.Equal(t, "3", l.String())

	b, err := json.Marshal(quota.Unlimited())
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

// ──────────────────────────────────────────────────────────────────────────────
// Decide
// ──────────────────────────────────────────────────────────────────────────────

func TestDecide(t *testing.T) {
	limits := quota.Limits{
		quota.ResourceUsers:    quota.Of(2),
		quota.ResourceProducts: quota.Unlimited(),
	}
	flags := quota.Flags{quota.FeatureInventory: true}

	cases := []struct {
		name    string
		usage   quota.Counters
		action  quota.Action
		wantErr error
	}{
		{"crear bajo el tope", quota.Counters{quota.ResourceUsers: 1},
			quota.Action{Verb: quota.VerbCreate, Resource: quota.ResourceUsers}, nil},
		{"crear en el tope", quota.Counters{quota.ResourceUsers: 2},
			quota.Action{Verb: quota.VerbCreate, Resource: quota.ResourceUsers}, domain.ErrQuotaExceeded},
		{"borrar nunca se deniega", quota.Counters{quota.ResourceUsers: 9},
			quota.Action{Verb: quota.VerbDelete, Resource: quota.ResourceUsers}, nil},
		{"lectura siempre admitida", quota.Counters{quota.ResourceUsers: 9},
			quota.Action{Verb: quota.VerbRead, Resource: quota.ResourceUsers}, nil},
		{"update bajo el tope", quota.Counters{quota.ResourceUsers: 1},
			quota.Action{Verb: quota.VerbUpdate, Resource: quota.ResourceUsers}, nil},
		{"update en el tope se deniega", quota.Counters{quota.ResourceUsers: 2},
			quota.Action{Verb: quota.VerbUpdate, Resource: quota.ResourceUsers}, domain.ErrQuotaExceeded},
		{"update por encima del tope", quota.Counters{quota.ResourceUsers: 3},
			quota.Action{Verb: quota.VerbUpdate, Resource: quota.ResourceUsers}, domain.ErrQuotaExceeded},
		{"ilimitado nunca deniega", quota.Counters{quota.ResourceProducts: 1_000_000},
			quota.Action{Verb: quota.VerbCreate, Resource: quota.ResourceProducts}, nil},
		{"recurso ausente es ilimitado", quota.Counters{quota.ResourceWarehouses: 50},
			quota.Action{Verb: quota.VerbCreate, Resource: quota.ResourceWarehouses}, nil},
		{"bandera desactivada", nil,
			quota.Action{Verb: quota.VerbCreate, Feature: quota.FeatureTransfers}, domain.ErrFeatureUnavailable},
		{"bandera activa", nil,
			quota.Action{Verb: quota.VerbCreate, Feature: quota.FeatureInventory}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := quota.Decide(limits, flags, tc.usage, tc.action)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
}

func TestDecide_MensajeCitaActualYLimite(t *testing.T) {
	err := quota.Decide(
		quota.Limits{quota.ResourceUsers: quota.Of(2)}, nil,
		quota.Counters{quota.ResourceUsers: 2},
		quota.Action{Verb: quota.VerbCreate, Resource: quota.ResourceUsers},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2/2")
	assert.Equal(t, "2", domain.DetailsOf(err)["limit"])
}

func TestCrossed(t *testing.T) {
	assert.Empty(t, quota.Crossed(quota.Of(10), 7))
	assert.Equal(t, []int{80}, quota.Crossed(quota.Of(10), 8))
	assert.Equal(t, []int{80, 95}, quota.Crossed(quota.Of(20), 19))
	assert.Empty(t, quota.Crossed(quota.Unlimited(), 1000))
}
