package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fspdf", prefsFile)

	p := LoadFile(path)
	assert.Equal(t, 900.0, p.FloatWithFallback(KeyWindowWidth, 900))
	assert.Equal(t, "", p.String(KeyMode))

	p.SetFloat(KeyWindowWidth, 1024)
	p.SetString(KeyMode, "Sign")
	require.NoError(t, p.Save())

	q := LoadFile(path)
	assert.Equal(t, 1024.0, q.FloatWithFallback(KeyWindowWidth, 900))
	assert.Equal(t, "Sign", q.String(KeyMode))
}

func TestSaveSkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)

	p := LoadFile(path)
	require.NoError(t, p.Save())
	assert.NoFileExists(t, path)

	p.SetString(KeyMode, "Fill")
	require.NoError(t, p.Save())
	require.NoError(t, os.Remove(path))

	p.SetString(KeyMode, "Fill")
	require.NoError(t, p.Save())
	assert.NoFileExists(t, path)
}

func TestCorruptFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	p := LoadFile(path)
	assert.Equal(t, 1.5, p.FloatWithFallback(KeyWindowHeight, 1.5))
}

func TestNullFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))

	p := LoadFile(path)
	p.SetFloat(KeyWindowWidth, 10)
	assert.Equal(t, 10.0, p.FloatWithFallback(KeyWindowWidth, 0))
	require.NoError(t, p.Save())
	assert.Equal(t, 10.0, LoadFile(path).FloatWithFallback(KeyWindowWidth, 0))
}
