package artifact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Helper to build an artifact for tests
func mkArtifact(t *testing.T, name, version string, langs ...string) *Artifact {
	t.Helper()
	a, err := NewBuilder(name).Version(version).Languages(langs...).Build()
	require.NoError(t, err)
	return a
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry("main")
	require.NotNil(t, reg)
	require.Equal(t, "main", reg.Name())
	require.Empty(t, reg.List())
}

func TestRegistry_Add(t *testing.T) {
	reg := NewRegistry("main")

	err := reg.Add(mkArtifact(t, "foo", "1.0.0"))

	require.NoError(t, err)
	require.Equal(t, 1, reg.Len())
}

func TestRegistry_Add_NilArtifact(t *testing.T) {
	reg := NewRegistry("main")

	err := reg.Add(nil)

	require.ErrorIs(t, err, ErrNilArtifact)
	require.Empty(t, reg.List())
}

func TestRegistry_Add_DuplicateVersion(t *testing.T) {
	reg := NewRegistry("main")
	require.NoError(t, reg.Add(mkArtifact(t, "foo", "1.0.0")))

	err := reg.Add(mkArtifact(t, "foo", "1.0.0"))

	require.ErrorIs(t, err, ErrDuplicateVersion)
}

func TestRegistry_Add_SameNameDifferentVersion(t *testing.T) {
	reg := NewRegistry("main")

	require.NoError(t, reg.Add(mkArtifact(t, "foo", "1.0.0")))
	require.NoError(t, reg.Add(mkArtifact(t, "foo", "2.0.0")))

	require.Len(t, reg.Versions("foo"), 2)
}

func TestRegistry_Versions_Unknown(t *testing.T) {
	reg := NewRegistry("main")
	require.NoError(t, reg.Add(mkArtifact(t, "foo", "1.0.0")))

	require.Empty(t, reg.Versions("bar"))
}

func TestRegistry_Get(t *testing.T) {
	reg := NewRegistry("main")
	require.NoError(t, reg.Add(mkArtifact(t, "foo", "1.0.0")))

	got, err := reg.Get("foo", "1.0.0")
	require.NoError(t, err)
	require.Equal(t, "foo@1.0.0", got.ID())

	_, err = reg.Get("foo", "9.9.9")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_GetByLanguage(t *testing.T) {
	reg := NewRegistry("main")
	require.NoError(t, reg.Add(mkArtifact(t, "english", "1.0", "en-us")))
	require.NoError(t, reg.Add(mkArtifact(t, "japanese", "1.0", "ja-jp")))
	require.NoError(t, reg.Add(mkArtifact(t, "neutral", "1.0")))

	got := reg.GetByLanguage("EN-US")

	require.Len(t, got, 2)
	require.Equal(t, "english", got[0].Name())
	require.Equal(t, "neutral", got[1].Name())
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry("main")
	require.NoError(t, reg.Add(mkArtifact(t, "zeta", "1.0")))
	require.NoError(t, reg.Add(mkArtifact(t, "alpha", "1.0")))
	require.NoError(t, reg.Add(mkArtifact(t, "alpha", "2.0")))

	require.Equal(t, []string{"alpha", "zeta"}, reg.Names())
}
