// Package templates embeds the default configuration and the activation output templates.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed config.yaml
var defaultConfig []byte

// postscripts holds one text/template per shell dialect:
//   - postscript/sh.tmpl
//   - postscript/pwsh.tmpl
//   - postscript/cmd.tmpl
//
//go:embed postscript
var postscripts embed.FS

//go:embed msbuild.props.tmpl
var msbuildProps string

// Shells lists the postscript dialects that have a template.
var Shells = []string{"sh", "pwsh", "cmd"}

// DefaultConfig returns the commented config file written on first run.
func DefaultConfig() []byte {
	out := make([]byte, len(defaultConfig))
	copy(out, defaultConfig)
	return out
}

// Postscript returns the template source for shell.
func Postscript(shell string) (string, error) {
	data, err := fs.ReadFile(postscripts, "postscript/"+shell+".tmpl")
	if err != nil {
		return "", fmt.Errorf("no postscript template for shell %q: %w", shell, err)
	}
	return string(data), nil
}

// MSBuildProps returns the template source for the build properties file.
func MSBuildProps() string {
	return msbuildProps
}
