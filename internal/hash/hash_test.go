package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashECheck(t *testing.T) {
	hashed, err := HashPassword("segredo123")
	require.NoError(t, err)
	require.NotEqual(t, "segredo123", hashed)

	require.True(t, CheckPassword(hashed, "segredo123"))
	require.False(t, CheckPassword(hashed, "outra-senha"))
	require.False(t, CheckPassword("nao-e-um-hash", "segredo123"))
}
