package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/acquire/internal/config"
	"github.com/zjrosen/acquire/internal/presentation"
	"github.com/zjrosen/acquire/internal/testutil"
)

// testEnv writes a config with one file registry and isolates HOME.
func testEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ACQUIRE_HOME", filepath.Join(home, ".acquire"))
	t.Setenv("ACQUIRE_SESSION", "")
	t.Setenv("ACQUIRE_POSTSCRIPT", "")

	reg := testutil.NewRegistry(t, "main").
		WithArtifact("tools/kitware/cmake", "3.28.1", testutil.Env("CMAKE_ROOT", ".")).
		WithArtifact("tools/kitware/cmake", "3.27.0").
		Build()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.SaveRegistries(path, []config.RegistryConfig{{Name: "main", Location: reg}}))
	return path
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	cfg = config.Config{}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default; cobra keeps parsed values in
// package variables between runs.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

func TestFind_JSON(t *testing.T) {
	path := testEnv(t)

	out, _, err := execute(t, "--config", path, "find", "cmake", "--count", "2", "--json")
	require.NoError(t, err)

	var got []presentation.CandidateDTO
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	require.Equal(t, "3.28.1", got[0].Version)
	require.Equal(t, "main", got[0].Registry)
}

func TestUse_WritesPostscript(t *testing.T) {
	path := testEnv(t)
	script := filepath.Join(t.TempDir(), "activate.sh")
	t.Setenv("ACQUIRE_POSTSCRIPT", script)

	_, stderr, err := execute(t, "--config", path, "use", "tools/kitware/cmake", "--yes")
	require.NoError(t, err)
	require.Contains(t, stderr, "Activating individual artifacts")

	data, err := os.ReadFile(script)
	require.NoError(t, err)
	require.Contains(t, string(data), "export CMAKE_ROOT=")
}

func TestUse_FailureIsReportedOnce(t *testing.T) {
	path := testEnv(t)

	_, stderr, err := execute(t, "--config", path, "use", "does/not/exist", "--yes")
	require.ErrorIs(t, err, errReported)
	require.Contains(t, stderr, "unable to resolve artifact does/not/exist")
}

func TestUse_MismatchedVersions(t *testing.T) {
	path := testEnv(t)

	_, _, err := execute(t, "--config", path, "use", "a", "b", "--version", "1", "--yes")
	require.ErrorIs(t, err, errReported)
}

func TestRegistry_AddListRemove(t *testing.T) {
	path := testEnv(t)
	extra := testutil.NewRegistry(t, "extra").Build()

	_, _, err := execute(t, "--config", path, "registry:add", "extra", extra)
	require.NoError(t, err)

	out, _, err := execute(t, "--config", path, "registry:list", "--json")
	require.NoError(t, err)
	var regs []presentation.RegistryDTO
	require.NoError(t, json.Unmarshal([]byte(out), &regs))
	require.Len(t, regs, 2)
	require.Equal(t, "extra", regs[1].Name)
	require.True(t, regs[1].Reachable)

	_, _, err = execute(t, "--config", path, "registry:remove", "extra")
	require.NoError(t, err)
	_, _, err = execute(t, "--config", path, "registry:remove", "extra")
	require.Error(t, err)
}

func TestActive_EmptyWithoutPersistence(t *testing.T) {
	path := testEnv(t)

	out, _, err := execute(t, "--config", path, "active", "--json")
	require.NoError(t, err)
	require.JSONEq(t, "[]", out)
}
