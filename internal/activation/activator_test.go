package activation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/acquire/internal/domain/artifact"
)

// installed creates an install directory and returns a candidate rooted there.
func installed(t *testing.T, name, version string, configure func(*artifact.Builder)) artifact.Candidate {
	t.Helper()
	loc := filepath.Join(t.TempDir(), filepath.Base(name)+"-"+version)
	require.NoError(t, os.MkdirAll(loc, 0o750))
	return candidateAt(t, name, version, loc, configure)
}

func candidateAt(t *testing.T, name, version, loc string, configure func(*artifact.Builder)) artifact.Candidate {
	t.Helper()
	b := artifact.NewBuilder(name).Version(version).Location(loc)
	if configure != nil {
		configure(b)
	}
	a, err := b.Build()
	require.NoError(t, err)
	return artifact.Candidate{Artifact: a, Source: "main"}
}

func TestExportActivator_AppliesExports(t *testing.T) {
	c := installed(t, "tools/kitware/cmake", "3.28.1", func(b *artifact.Builder) {
		b.Path("PATH", "bin").
			Env("CMAKE_ROOT", ".").
			Env("CMAKE_GENERATOR", "Ninja").
			Property("CMakeVersion", "3.28.1").
			Tool("cmake", "bin/cmake")
	})
	loc := c.Artifact.Location()
	env := NewEnvironment([]string{"PATH=/usr/bin"})
	stage := env.Stage(c.Name())

	require.NoError(t, NewExportActivator().Activate(context.Background(), stage, c, Options{}))
	stage.Commit()

	v, _ := env.Get("PATH")
	require.Equal(t, filepath.Join(loc, "bin")+sep+"/usr/bin", v)
	v, _ = env.Get("CMAKE_ROOT")
	require.Equal(t, loc, v)
	v, _ = env.Get("CMAKE_GENERATOR")
	require.Equal(t, "Ninja", v)
	v, _ = env.Property("CMakeVersion")
	require.Equal(t, "3.28.1", v)
	v, _ = env.Tool("cmake")
	require.Equal(t, filepath.Join(loc, "bin", "cmake"), v)
}

func TestExportActivator_MissingLocation(t *testing.T) {
	c := candidateAt(t, "ninja", "1.11.1", filepath.Join(t.TempDir(), "absent"), func(b *artifact.Builder) {
		b.Path("PATH", "bin")
	})
	stage := NewEnvironment(nil).Stage(c.Name())

	err := NewExportActivator().Activate(context.Background(), stage, c, Options{})
	require.ErrorIs(t, err, ErrNotInstalled)
	require.Empty(t, stage.Changes())
}

func TestExportActivator_NoLocation(t *testing.T) {
	withExports := candidateAt(t, "ninja", "1.11.1", "", func(b *artifact.Builder) {
		b.Env("NINJA", "1")
	})
	err := NewExportActivator().Activate(context.Background(), NewEnvironment(nil).Stage("ninja"), withExports, Options{})
	require.ErrorIs(t, err, ErrNotInstalled)

	bare := candidateAt(t, "meta", "1.0.0", "", nil)
	require.NoError(t, NewExportActivator().Activate(context.Background(), NewEnvironment(nil).Stage("meta"), bare, Options{}))
}

func TestExportActivator_OwnershipConflict(t *testing.T) {
	env := NewEnvironment(nil)
	gcc := installed(t, "compilers/gcc", "13.2.0", func(b *artifact.Builder) { b.Env("CC", "gcc") })
	clang := installed(t, "compilers/clang", "17.0.6", func(b *artifact.Builder) { b.Env("CC", "clang") })

	first := env.Stage(gcc.Name())
	require.NoError(t, NewExportActivator().Activate(context.Background(), first, gcc, Options{}))
	first.Commit()

	second := env.Stage(clang.Name())
	err := NewExportActivator().Activate(context.Background(), second, clang, Options{})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "compilers/gcc", conflict.Owner)
	require.Equal(t, "CC", conflict.Key)

	forced := env.Stage(clang.Name())
	require.NoError(t, NewExportActivator().Activate(context.Background(), forced, clang, Options{Force: true}))
	forced.Commit()
	require.Equal(t, "compilers/clang", env.Owner(artifact.ChangeEnv, "CC"))
}

func TestExportActivator_CancelledContext(t *testing.T) {
	c := installed(t, "ninja", "1.11.1", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewExportActivator().Activate(ctx, NewEnvironment(nil).Stage("ninja"), c, Options{})
	require.ErrorIs(t, err, context.Canceled)
}
