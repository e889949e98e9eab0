package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	f, err := NewFile(filepath.Join(t.TempDir(), "nested", "storage.json"))
	require.NoError(t, err)
	return map[string]Store{"memory": NewMemory(), "file": f}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get("isLoggedIn")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set("isLoggedIn", "true"))
			v, ok, err := s.Get("isLoggedIn")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "true", v)

			require.NoError(t, s.Remove("isLoggedIn"))
			_, ok, err = s.Get("isLoggedIn")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Remove("never-set"))
		})
	}
}

func TestFilePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")

	first, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", "v"))

	second, err := NewFile(path)
	require.NoError(t, err)
	v, ok, err := second.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	f, err := NewFile(path)
	require.NoError(t, err)
	_, _, err = f.Get("k")
	assert.Error(t, err)
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemory()

	var got []string
	ok, err := GetJSON(s, "list", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(s, "list", []string{"a", "b"}))
	ok, err = GetJSON(s, "list", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)
}
