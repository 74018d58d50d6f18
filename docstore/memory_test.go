package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, s Store, lids []uint32) map[uint32][]byte {
	t.Helper()
	seq, err := s.MultiGet(context.Background(), lids)
	require.NoError(t, err)
	out := make(map[uint32][]byte)
	for lid, blob := range seq {
		out[lid] = blob
	}
	return out
}

func TestMemoryMultiGet(t *testing.T) {
	m := NewMemory()
	m.Put(1, []byte("one"))
	m.Put(2, []byte("two"))
	m.Put(3, []byte("three"))

	got := collect(t, m, []uint32{1, 3, 9})
	assert.Len(t, got, 2)
	assert.Equal(t, []byte("one"), got[1])
	assert.Equal(t, []byte("three"), got[3])
	assert.NotContains(t, got, uint32(9))
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	m.Put(1, []byte("one"))
	m.Delete(1)
	assert.Empty(t, collect(t, m, []uint32{1}))
}

func TestMemoryPutCopies(t *testing.T) {
	m := NewMemory()
	b := []byte("mutable")
	m.Put(1, b)
	b[0] = 'X'
	got := collect(t, m, []uint32{1})
	assert.Equal(t, []byte("mutable"), got[1])
}

func TestMemoryEmptyRequest(t *testing.T) {
	m := NewMemory()
	assert.Empty(t, collect(t, m, nil))
}
