package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelKeyDeterministic(t *testing.T) {
	for _, version := range []uint32{0, 1, 7, 255, 1 << 20} {
		assert.Equal(t, ModelKey(version), ModelKey(version), "version %d", version)
	}
}

func TestModelKeyPairwiseDistinct(t *testing.T) {
	const n = 256

	seen := make(map[string]uint32, n)
	for version := uint32(0); version < n; version++ {
		key := ModelKey(version).Hex()
		prev, dup := seen[key]
		require.False(t, dup, "versions %d and %d collide on %s", prev, version, key)
		seen[key] = version
	}
}
