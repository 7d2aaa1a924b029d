package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults_AreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 10*time.Second, cfg.Resolver.Timeout)
	require.Equal(t, 4, cfg.Resolver.Concurrency)
	require.True(t, cfg.Cache.Enabled)
	require.False(t, cfg.Session.Persist)
}

func TestRegistryConfig_ResolvedKind(t *testing.T) {
	tests := []struct {
		reg  RegistryConfig
		want string
	}{
		{RegistryConfig{Location: "./registry"}, KindFile},
		{RegistryConfig{Location: "https://example.com/index.yaml"}, KindHTTP},
		{RegistryConfig{Location: "http://localhost:8080/index.yaml"}, KindHTTP},
		{RegistryConfig{Kind: KindFile, Location: "https://looks-remote"}, KindFile},
	}
	for _, tt := range tests {
		t.Run(tt.reg.Location, func(t *testing.T) {
			require.Equal(t, tt.want, tt.reg.ResolvedKind())
		})
	}
}

func TestValidateRegistries(t *testing.T) {
	require.NoError(t, ValidateRegistries(nil))

	err := ValidateRegistries([]RegistryConfig{{Location: "./x"}})
	require.ErrorContains(t, err, "registry 0: name is required")

	err = ValidateRegistries([]RegistryConfig{{Name: "main"}})
	require.ErrorContains(t, err, "location is required")

	err = ValidateRegistries([]RegistryConfig{{Name: "main", Kind: "ftp", Location: "x"}})
	require.ErrorContains(t, err, "kind must be")

	err = ValidateRegistries([]RegistryConfig{
		{Name: "main", Location: "./a"},
		{Name: "main", Location: "./b"},
	})
	require.ErrorContains(t, err, `duplicate name "main"`)
}

func TestValidateResolver(t *testing.T) {
	require.Error(t, ValidateResolver(ResolverConfig{Timeout: 0, Concurrency: 1}))
	require.Error(t, ValidateResolver(ResolverConfig{Timeout: time.Second, Concurrency: 0}))
	require.NoError(t, ValidateResolver(ResolverConfig{Timeout: time.Second, Concurrency: 1}))
}

func TestValidate_Session(t *testing.T) {
	cfg := Defaults()
	cfg.Session = SessionConfig{Persist: true}
	require.ErrorContains(t, cfg.Validate(), "session.db_path is required")
}

func TestValidate_Shell(t *testing.T) {
	cfg := Defaults()
	cfg.Activation.Shell = "fish"
	require.ErrorContains(t, cfg.Validate(), "activation.shell")
}

func TestValidateTracing(t *testing.T) {
	require.NoError(t, ValidateTracing(TracingConfig{}))
	require.ErrorContains(t, ValidateTracing(TracingConfig{SampleRate: 1.5}), "sample_rate")
	require.ErrorContains(t, ValidateTracing(TracingConfig{Exporter: "jaeger"}), "exporter")
	require.ErrorContains(t, ValidateTracing(TracingConfig{Enabled: true, Exporter: "file", SampleRate: 1}), "file_path is required")
	require.ErrorContains(t, ValidateTracing(TracingConfig{Enabled: true, Exporter: "otlp", SampleRate: 1}), "otlp_endpoint is required")
}

func TestHomeDir_Env(t *testing.T) {
	t.Setenv("ACQUIRE_HOME", "/opt/acquire")
	require.Equal(t, "/opt/acquire", HomeDir())
	require.Equal(t, "/opt/acquire/session.db", DefaultSessionDBPath())
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("ACQUIRE_SESSION", "abc")
	t.Setenv("ACQUIRE_DEBUG", "true")
	t.Setenv("ACQUIRE_POSTSCRIPT", "/tmp/post.sh")

	e, err := LoadEnv()
	require.NoError(t, err)
	require.Equal(t, "abc", e.Session)
	require.True(t, e.Debug)
	require.Equal(t, "/tmp/post.sh", e.Postscript)
	require.Equal(t, "debug.log", e.LogPath)
}

func TestLoadEnv_BadBool(t *testing.T) {
	t.Setenv("ACQUIRE_DEBUG", "maybe")
	_, err := LoadEnv()
	require.ErrorContains(t, err, "parse env")
}
