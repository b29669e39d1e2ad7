package testutil

import (
	crand "crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func RandomBytes(t *testing.T, size int) []byte {
	bytes := make([]byte, size)
	_, err := crand.Read(bytes)
	require.NoError(t, err)
	return bytes
}

// RandomName returns a random lowercase hex string usable as a bucket name or
// object key.
func RandomName(t *testing.T, size int) string {
	return hex.EncodeToString(RandomBytes(t, size))
}
