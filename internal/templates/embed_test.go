package templates

import (
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig_IsValidYAML(t *testing.T) {
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(DefaultConfig(), &doc))
	require.Contains(t, doc, "registries")
	require.Contains(t, doc, "resolver")
}

func TestDefaultConfig_ReturnsCopy(t *testing.T) {
	a := DefaultConfig()
	a[0] = 'X'
	require.NotEqual(t, a[0], DefaultConfig()[0])
}

func TestPostscript_AllShellsParse(t *testing.T) {
	funcs := template.FuncMap{
		"shquote":   func(s string) string { return s },
		"pwshquote": func(s string) string { return s },
	}
	for _, shell := range Shells {
		t.Run(shell, func(t *testing.T) {
			src, err := Postscript(shell)
			require.NoError(t, err)
			_, err = template.New(shell).Funcs(funcs).Parse(src)
			require.NoError(t, err)
		})
	}
}

func TestPostscript_UnknownShell(t *testing.T) {
	_, err := Postscript("fish")
	require.ErrorContains(t, err, `"fish"`)
}

func TestMSBuildProps(t *testing.T) {
	require.True(t, strings.HasPrefix(MSBuildProps(), "<?xml"))
}
