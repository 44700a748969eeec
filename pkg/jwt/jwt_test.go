package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Almacen-api/pkg/jwt"
)

const (
	secret = "test-secret-key-for-unit-tests"
	issuer = "almacen-api-test"
)

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u-1", "w-1", pkgjwt.RoleOperario, issuer, 60)
	require.NoError(t, err)

	c, err := pkgjwt.Parse(secret, issuer, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, "w-1", c.WarehouseID)
	assert.Equal(t, pkgjwt.RoleOperario, c.Role)
}

func TestParse_Rechaza(t *testing.T) {
	expired, err := pkgjwt.Generate(secret, "u-1", "w-1", pkgjwt.RoleAdmin, issuer, -1)
	require.NoError(t, err)
	_, err = pkgjwt.Parse(secret, issuer, expired)
	assert.Error(t, err, "token expirado")

	valid, err := pkgjwt.Generate(secret, "u-1", "w-1", pkgjwt.RoleAdmin, issuer, 60)
	require.NoError(t, err)
	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", issuer, valid)
	assert.Error(t, err, "secret incorrecto")

	_, err = pkgjwt.Parse(secret, "otro-emisor", valid)
	assert.Error(t, err, "emisor distinto")

	_, err = pkgjwt.Parse("", issuer, valid)
	assert.Error(t, err, "secret vacío")
}
