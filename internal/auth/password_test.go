// SPDX-License-Identifier: MIT

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hashed, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hashed)

	assert.True(t, VerifyPassword("s3cret", hashed))
	assert.False(t, VerifyPassword("wrong", hashed))
	assert.False(t, VerifyPassword("s3cret", "not-a-bcrypt-hash"))
}

func TestPasswordHashIsSalted(t *testing.T) {
	h1, err := HashPassword("s3cret")
	require.NoError(t, err)
	h2, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
