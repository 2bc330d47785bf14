package pairkey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusmatch/matchengine/internal/utils/pairkey"
)

func TestKey_OrderIndependent(t *testing.T) {
	assert.Equal(t, pairkey.Key(7, 3), pairkey.Key(3, 7))
	assert.Equal(t, "3:7", pairkey.Key(7, 3))
}

func TestKey_DistinctPairsDistinctKeys(t *testing.T) {
	// "1:23" vs "12:3" must not collide thanks to the separator.
	assert.NotEqual(t, pairkey.Key(1, 23), pairkey.Key(12, 3))
}

func TestOrdered(t *testing.T) {
	lo, hi := pairkey.Ordered(9, 2)
	assert.Equal(t, uint64(2), lo)
	assert.Equal(t, uint64(9), hi)

	lo, hi = pairkey.Ordered(2, 9)
	assert.Equal(t, uint64(2), lo)
	assert.Equal(t, uint64(9), hi)
}
