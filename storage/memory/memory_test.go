package memory_test

import (
	"testing"

	"github.com/jrsteele09/go-campus-session/storage"
	"github.com/jrsteele09/go-campus-session/storage/memory"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := memory.New()

	_, err := s.Get("token")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set("token", "abc"))
	v, err := s.Get("token")
	require.NoError(t, err)
	require.Equal(t, "abc", v)
	require.ElementsMatch(t, []string{"token"}, s.Keys())

	require.NoError(t, s.Remove("token"))
	require.NoError(t, s.Remove("token"))
	_, err = s.Get("token")
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.Empty(t, s.Keys())
}
