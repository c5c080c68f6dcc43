package emberforge

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestClientRegistryInsertRemoveSnapshot(t *testing.T) {
	r := newClientRegistry()
	a := &Client{UUID: uuid.New()}
	b := &Client{UUID: uuid.New()}

	r.insert(a)
	r.insert(b)
	assert.Len(t, r.Snapshot(), 2)

	r.remove(a.UUID)
	got := r.Snapshot()
	assert.Len(t, got, 1)
	assert.Equal(t, b.UUID, got[0].UUID)

	r.remove(uuid.New()) // removing an absent id is a no-op
	assert.Len(t, r.Snapshot(), 1)
}
