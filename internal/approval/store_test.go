package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismhq/prism/internal/action"
)

func TestStoreAddAssignsSequentialIDs(t *testing.T) {
	s := NewStore()

	first := s.Add(action.Request{Type: "system_command", Reason: "install deps"})
	second := s.Add(action.Request{Type: "system_command", Reason: "clean up"})
	third := s.Add(action.Request{Type: "delete_file"})

	assert.Equal(t, "system_command_0", first.ID)
	assert.Equal(t, "system_command_1", second.ID)
	assert.Equal(t, "delete_file_2", third.ID)
	assert.Equal(t, 3, s.Len())
}

func TestStoreIDsNeverReused(t *testing.T) {
	s := NewStore()

	first := s.Add(action.Request{Type: "delete_file"})
	_, ok := s.Resolve(first.ID)
	require.True(t, ok)

	// The counter keeps growing past resolved entries, so a stale id from
	// before the resolution can never match a new entry.
	second := s.Add(action.Request{Type: "delete_file"})
	assert.NotEqual(t, first.ID, second.ID)
}

func TestStoreResolveRemoves(t *testing.T) {
	s := NewStore()
	p := s.Add(action.Request{Type: "system_command"})

	got, ok := s.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, p.ID, got.ID)

	resolved, ok := s.Resolve(p.ID)
	require.True(t, ok)
	assert.Equal(t, p.ID, resolved.ID)
	assert.Zero(t, s.Len())

	// Resolving again reports unknown rather than panicking.
	_, ok = s.Resolve(p.ID)
	assert.False(t, ok)
	_, ok = s.Get(p.ID)
	assert.False(t, ok)
}

func TestStoreListInSubmissionOrder(t *testing.T) {
	s := NewStore()
	a := s.Add(action.Request{Type: "delete_file"})
	b := s.Add(action.Request{Type: "system_command"})
	c := s.Add(action.Request{Type: "delete_file"})

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
}
