package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/pkg/config"
)

func TestPoolConfig_SesionEnUTCYTamanoPorDefecto(t *testing.T) {
	pc, err := poolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@127.0.0.1:5432/boutique?sslmode=disable"})
	require.NoError(t, err)

	assert.Equal(t, "UTC", pc.ConnConfig.RuntimeParams["timezone"])
	assert.Equal(t, "boutique-api", pc.ConnConfig.RuntimeParams["application_name"])
	assert.EqualValues(t, defaultMaxConns, pc.MaxConns)
	assert.NotNil(t, pc.AfterConnect)
}

func TestPoolConfig_RespetaMaxConnsYConstruyeDSN(t *testing.T) {
	pc, err := poolConfig(config.DBConfig{
		Host: "127.0.0.1", Port: 5433, User: "boutique", Password: "p@ss word", DBName: "shop", SSLMode: "disable",
		MaxConns: 7,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 7, pc.MaxConns)
	assert.Equal(t, "127.0.0.1", pc.ConnConfig.Host)
	assert.EqualValues(t, 5433, pc.ConnConfig.Port)
	assert.Equal(t, "p@ss word", pc.ConnConfig.Password)
	assert.Equal(t, "shop", pc.ConnConfig.Database)
}

func TestPoolConfig_DSNInvalido(t *testing.T) {
	_, err := poolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@host:notaport/db"})
	assert.Error(t, err)
}
