package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultSetGet(t *testing.T) {
	v := NewVault()

	v.Set("claude_api_key", "sk-test-123")
	got, ok := v.Get("claude_api_key")
	require.True(t, ok)
	assert.Equal(t, "sk-test-123", got)

	assert.True(t, v.Exists("claude_api_key"))
	assert.False(t, v.Exists("gemini_api_key"))

	_, ok = v.Get("gemini_api_key")
	assert.False(t, ok)
}

func TestVaultOverwrite(t *testing.T) {
	v := NewVault()
	v.Set("key", "old")
	v.Set("key", "new")

	got, _ := v.Get("key")
	assert.Equal(t, "new", got)
	assert.Equal(t, 1, v.Len())
}

func TestVaultKeysSortedWithoutValues(t *testing.T) {
	v := NewVault()
	v.Set("perplexity_api_key", "b")
	v.Set("claude_api_key", "a")

	assert.Equal(t, []string{"claude_api_key", "perplexity_api_key"}, v.Keys())
}

func TestVaultWipe(t *testing.T) {
	v := NewVault()
	v.Set("claude_api_key", "sk-test-123")
	v.Set("gemini_api_key", "gm-test-456")

	v.Wipe()
	assert.Zero(t, v.Len())
	assert.False(t, v.Exists("claude_api_key"))

	// The vault stays usable after a wipe, and wiping twice is harmless.
	v.Wipe()
	v.Set("claude_api_key", "sk-new")
	got, ok := v.Get("claude_api_key")
	require.True(t, ok)
	assert.Equal(t, "sk-new", got)
}
