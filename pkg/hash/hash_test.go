package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("Passw0rd!")
	require.NoError(t, err)
	require.NotEmpty(t, h)
	assert.NotEqual(t, "Passw0rd!", h)

	assert.True(t, CheckPassword(h, "Passw0rd!"))
	assert.False(t, CheckPassword(h, "passw0rd!"))
	assert.False(t, CheckPassword("", "Passw0rd!"))
}
