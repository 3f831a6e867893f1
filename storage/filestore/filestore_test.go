package filestore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-campus-session/storage"
	"github.com/jrsteele09/go-campus-session/storage/filestore"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	t.Run("missing file starts empty", func(t *testing.T) {
		s, err := filestore.Open(path)
		require.NoError(t, err)
		_, err = s.Get("token")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("values survive reopen", func(t *testing.T) {
		s, err := filestore.Open(path)
		require.NoError(t, err)
		require.NoError(t, s.Set("token", "abc"))
		require.NoError(t, s.Set("role", "teacher"))
		require.NoError(t, s.Remove("role"))

		reopened, err := filestore.Open(path)
		require.NoError(t, err)
		v, err := reopened.Get("token")
		require.NoError(t, err)
		require.Equal(t, "abc", v)
		_, err = reopened.Get("role")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("removing absent key", func(t *testing.T) {
		s, err := filestore.Open(path)
		require.NoError(t, err)
		require.NoError(t, s.Remove("nope"))
	})

	t.Run("corrupt file", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
		_, err := filestore.Open(bad)
		require.Error(t, err)
	})
}
