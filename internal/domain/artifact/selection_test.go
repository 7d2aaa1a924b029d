package artifact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mkSelection(t *testing.T, index int, name, version string) Selection {
	t.Helper()
	spec, err := ParseSpecifier(index, name, "")
	require.NoError(t, err)
	return Selection{
		Specifier:  spec,
		Candidates: []Candidate{{Artifact: mkArtifact(t, name, version), Source: "main"}},
	}
}

func TestNewSelectionSet_OrdersByInputPosition(t *testing.T) {
	set, err := NewSelectionSet([]Selection{
		mkSelection(t, 1, "bar", "2.1"),
		mkSelection(t, 0, "foo", "1.0"),
	})

	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	require.Equal(t, "foo", set.Selections()[0].Best().Name())
	require.Equal(t, "bar", set.Selections()[1].Best().Name())
}

func TestNewSelectionSet_RejectsVersionConflict(t *testing.T) {
	_, err := NewSelectionSet([]Selection{
		mkSelection(t, 0, "foo", "1.0"),
		mkSelection(t, 1, "foo", "2.0"),
	})

	require.ErrorIs(t, err, ErrVersionConflict)
	var conflict *VersionConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "foo", conflict.Name)
}

func TestNewSelectionSet_SameNameSameVersionAllowed(t *testing.T) {
	set, err := NewSelectionSet([]Selection{
		mkSelection(t, 0, "foo", "1.0"),
		mkSelection(t, 1, "foo", "1.0"),
	})

	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	require.Len(t, set.Artifacts(), 1)
}

func TestNewSelectionSet_EmptyCandidates(t *testing.T) {
	spec, _ := ParseSpecifier(0, "foo", "")

	_, err := NewSelectionSet([]Selection{{Specifier: spec}})

	require.ErrorIs(t, err, ErrNoMatch)
}

func TestErrors_Unwrap(t *testing.T) {
	require.ErrorIs(t, &MismatchedVersionCountError{Specifiers: 2, Versions: 1}, ErrMismatchedVersionCount)
	require.ErrorIs(t, &NoMatchError{}, ErrNoMatch)

	cause := ErrNotFound
	actErr := &ActivationError{Name: "foo", Version: "1.0", Err: cause}
	require.ErrorIs(t, actErr, ErrActivationFailed)
	require.ErrorIs(t, actErr, ErrNotFound)
	require.Contains(t, actErr.Error(), "foo@1.0")
}
