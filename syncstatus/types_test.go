package syncstatus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRange_SplitAt(t *testing.T) {
	r := ScanRange{Start: 10, End: 20, Priority: PriorityHistoric}

	before, after, ok := r.SplitAt(15)
	require.True(t, ok)
	assert.Equal(t, ScanRange{Start: 10, End: 15, Priority: PriorityHistoric}, before)
	assert.Equal(t, ScanRange{Start: 15, End: 20, Priority: PriorityHistoric}, after)

	_, _, ok = r.SplitAt(10)
	assert.False(t, ok)
	_, _, ok = r.SplitAt(20)
	assert.False(t, ok)
	_, _, ok = r.SplitAt(25)
	assert.False(t, ok)
}

func TestScanRange_Chunks(t *testing.T) {
	r := ScanRange{Start: 0, End: 25, Priority: PriorityChainTip}
	chunks := r.Chunks(10)
	require.Len(t, chunks, 3)
	assert.Equal(t, ScanRange{Start: 0, End: 10, Priority: PriorityChainTip}, chunks[0])
	assert.Equal(t, ScanRange{Start: 10, End: 20, Priority: PriorityChainTip}, chunks[1])
	assert.Equal(t, ScanRange{Start: 20, End: 25, Priority: PriorityChainTip}, chunks[2])
}

func TestScanRange_ChunksEmpty(t *testing.T) {
	r := ScanRange{Start: 5, End: 5}
	assert.Nil(t, r.Chunks(10))
	assert.Nil(t, (ScanRange{Start: 0, End: 10}).Chunks(0))
}

func TestScanRange_EmptyAndLen(t *testing.T) {
	assert.True(t, (ScanRange{Start: 5, End: 5}).Empty())
	assert.True(t, (ScanRange{Start: 10, End: 5}).Empty())
	assert.False(t, (ScanRange{Start: 5, End: 10}).Empty())
	assert.Equal(t, uint32(5), (ScanRange{Start: 5, End: 10}).Len())
	assert.Equal(t, uint32(0), (ScanRange{Start: 10, End: 5}).Len())
}

func TestScanPriority_Ordering(t *testing.T) {
	assert.True(t, PriorityVerify > PriorityChainTip)
	assert.True(t, PriorityChainTip > PriorityOpenAdjacent)
	assert.True(t, PriorityOpenAdjacent > PriorityFoundNote)
	assert.True(t, PriorityFoundNote > PriorityHistoric)
	assert.True(t, PriorityHistoric > PriorityIgnored)
}
