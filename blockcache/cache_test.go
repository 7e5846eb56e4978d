package blockcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decred/zeclightsync/lightwalletrpc/walletrpc"
	"github.com/decred/zeclightsync/syncstatus"
)

func blocks(heights ...uint64) []*walletrpc.CompactBlock {
	out := make([]*walletrpc.CompactBlock, 0, len(heights))
	for _, h := range heights {
		out = append(out, &walletrpc.CompactBlock{Height: h})
	}
	return out
}

func TestCache_InsertAndRetrieveRange(t *testing.T) {
	c := New()
	c.InsertRange(blocks(10, 11, 12, 13))

	got, err := c.BlocksInRange(10, 4)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, b := range got {
		assert.Equal(t, uint64(10+i), b.Height)
	}
}

func TestCache_BlocksInRangeMissing(t *testing.T) {
	c := New()
	c.InsertRange(blocks(10, 11, 13))

	_, err := c.BlocksInRange(10, 4)
	require.Error(t, err)

	var missing *ErrMissing
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, syncstatus.BlockHeight(12), missing.Height)
}

func TestCache_RemoveRange(t *testing.T) {
	c := New()
	c.InsertRange(blocks(10, 11, 12, 13, 14))
	c.RemoveRange(11, 13)

	assert.Equal(t, 3, c.Len())
	_, err := c.BlocksInRange(10, 1)
	assert.NoError(t, err)
	_, err = c.BlocksInRange(11, 1)
	assert.Error(t, err)
}

func TestCache_TruncateToHeight(t *testing.T) {
	c := New()
	c.InsertRange(blocks(10, 11, 12, 13))
	c.TruncateToHeight(12)

	assert.Equal(t, 2, c.Len())
	_, err := c.BlocksInRange(10, 2)
	assert.NoError(t, err)
	_, err = c.BlocksInRange(12, 1)
	assert.Error(t, err)
}
