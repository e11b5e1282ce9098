package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := Generate("s3cr3t", "u-1", RoleBodeguero, "stock-ledger", 5)
	require.NoError(t, err)

	claims, err := Parse("s3cr3t", "stock-ledger", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, RoleBodeguero, claims.Role)
}

func TestParse_Rechazos(t *testing.T) {
	tok, err := Generate("s3cr3t", "u-1", RoleAdmin, "stock-ledger", 5)
	require.NoError(t, err)

	_, err = Parse("otro", "stock-ledger", tok)
	assert.Error(t, err, "firma incorrecta")

	_, err = Parse("s3cr3t", "otro-emisor", tok)
	assert.Error(t, err, "emisor distinto")

	expired, err := Generate("s3cr3t", "u-1", RoleAdmin, "stock-ledger", -1)
	require.NoError(t, err)
	_, err = Parse("s3cr3t", "", expired)
	assert.Error(t, err, "expirado")

	_, err = Generate("", "u-1", RoleAdmin, "", 5)
	assert.Error(t, err)
}
