package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/pkg/jwt"
)

func TestIssuer_AccessYRefresh(t *testing.T) {
	iss, err := jwt.NewIssuer("secreto", "boutique-api", 60, 600)
	require.NoError(t, err)
	w := int64(4)
	subj := jwt.Subject{UserID: 9, TenantID: "ABCDEFGHIJ", WarehouseID: &w, Role: "admin"}

	access, err := iss.Access(subj)
	require.NoError(t, err)
	refresh, err := iss.Refresh(subj)
	require.NoError(t, err)

	c, err := iss.Parse(access, jwt.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, subj, c.Subject())

	_, err = iss.Parse(refresh, jwt.TypeAccess)
	assert.ErrorIs(t, err, jwt.ErrWrongType, "un refresh no sirve como access")

	_, err = iss.Parse(refresh, jwt.TypeRefresh)
	assert.NoError(t, err)
}

func TestIssuer_TokenExpirado(t *testing.T) {
	base := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	iss, err := jwt.NewIssuer("secreto", "", 1, 10)
	require.NoError(t, err)
	iss.WithClock(func() time.Time { return base })
	tok, err := iss.Access(jwt.Subject{UserID: 1})
	require.NoError(t, err)

	iss.WithClock(func() time.Time { return base.Add(2 * time.Minute) })
	_, err = iss.Parse(tok, jwt.TypeAccess)
	assert.Error(t, err)
}

func TestIssuer_FirmaIncorrecta(t *testing.T) {
	a, _ := jwt.NewIssuer("uno", "", 60, 60)
	b, _ := jwt.NewIssuer("dos", "", 60, 60)
	tok, err := a.Access(jwt.Subject{UserID: 1})
	require.NoError(t, err)
	_, err = b.Parse(tok, jwt.TypeAccess)
	assert.Error(t, err)
}

func TestNewIssuer_SecretVacio(t *testing.T) {
	_, err := jwt.NewIssuer("", "", 60, 60)
	assert.Error(t, err)
}
