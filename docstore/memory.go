package docstore

import (
	"context"
	"iter"
	"slices"
	"sync"
)

// Memory is a mutex-guarded map Store for tests and small corpora.
type Memory struct {
	mu   sync.RWMutex
	docs map[uint32][]byte
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{docs: make(map[uint32][]byte)}
}

// Put stores a copy of blob under lid.
func (m *Memory) Put(lid uint32, blob []byte) {
	m.mu.Lock()
	m.docs[lid] = slices.Clone(blob)
	m.mu.Unlock()
}

// Delete removes lid, if present.
func (m *Memory) Delete(lid uint32) {
	m.mu.Lock()
	delete(m.docs, lid)
	m.mu.Unlock()
}

func (m *Memory) MultiGet(_ context.Context, lids []uint32) (iter.Seq2[uint32, []byte], error) {
	if len(lids) == 0 {
		return emptySeq, nil
	}
	// snapshot under the read lock so iteration does not hold it
	type hit struct {
		lid  uint32
		blob []byte
	}
	m.mu.RLock()
	found := make([]hit, 0, len(lids))
	for _, lid := range lids {
		if b, ok := m.docs[lid]; ok {
			found = append(found, hit{lid: lid, blob: b})
		}
	}
	m.mu.RUnlock()
	return func(yield func(uint32, []byte) bool) {
		for _, h := range found {
			if !yield(h.lid, h.blob) {
				return
			}
		}
	}, nil
}
