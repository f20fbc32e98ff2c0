package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showbridge/midirelay/sdk/contracts"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")

	store, err := NewFileStore(path)
	require.NoError(t, err)

	triggers := []contracts.Trigger{
		{
			ID:          "t1",
			MidiCommand: "noteon",
			Channel:     contracts.Wildcard,
			Note:        "60",
			ActionType:  "http",
			URL:         "http://example.com/hook",
		},
		{
			ID:          "t2",
			MidiCommand: "cc",
			Controller:  "7",
			ActionType:  "midi",
			OutputPort:  "Synth",
		},
	}
	require.NoError(t, store.Set("triggers", triggers))
	require.NoError(t, store.Set("httpTimeout", 2500))

	var got []contracts.Trigger
	require.NoError(t, store.Get("triggers", &got))
	assert.Equal(t, triggers, got)

	// A fresh store reads the same file back.
	reopened, err := NewFileStore(path)
	require.NoError(t, err)

	got = nil
	require.NoError(t, reopened.Get("triggers", &got))
	assert.Equal(t, triggers, got)

	var timeout int
	require.NoError(t, reopened.Get("httpTimeout", &timeout))
	assert.Equal(t, 2500, timeout)
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	var out []string
	err = store.Get("disabledInputs", &out)
	assert.ErrorIs(t, err, contracts.ErrSettingNotFound)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	in := []string{"Launchpad", "Keys"}
	require.NoError(t, store.Set("disabledInputs", in))

	var out []string
	require.NoError(t, store.Get("disabledInputs", &out))
	assert.Equal(t, in, out)

	err := store.Get("triggers", &[]contracts.Trigger{})
	assert.ErrorIs(t, err, contracts.ErrSettingNotFound)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()

	in := []string{"A"}
	require.NoError(t, store.Set("disabledInputs", in))
	in[0] = "mutated"

	var out []string
	require.NoError(t, store.Get("disabledInputs", &out))
	assert.Equal(t, []string{"A"}, out)
}
