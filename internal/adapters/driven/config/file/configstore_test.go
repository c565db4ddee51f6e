package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set("server.listen_addr", ":9000"))
	require.NoError(t, s.Set("server.verbose", true))

	// A fresh store must read the persisted values back.
	s2, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9000", s2.GetString("server.listen_addr"))
	assert.True(t, s2.GetBool("server.verbose"))
}

func TestConfigStore_FlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := "[server]\nlisten_addr = \":7070\"\nverbose = true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, ":7070", s.GetString(KeyListenAddr))
	assert.True(t, s.Verbose())
}

func TestConfigStore_Defaults(t *testing.T) {
	s, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, s.ListenAddr())
	assert.Empty(t, s.DataDir())
	assert.Equal(t, filepath.Join(filepath.Dir(s.Path()), "uploads"), s.UploadDir())
	assert.False(t, s.Verbose())
}

func TestConfigStore_MissingAndMistypedKeys(t *testing.T) {
	s, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set("number", int64(42)))

	assert.Equal(t, 42, s.GetInt("number"))
	assert.Empty(t, s.GetString("number"))
	assert.Equal(t, 0, s.GetInt("absent"))

	_, ok := s.Get("absent")
	assert.False(t, ok)
}
