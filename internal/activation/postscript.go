package activation

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/zjrosen/acquire/internal/log"
	"github.com/zjrosen/acquire/internal/templates"
)

var funcs = template.FuncMap{
	"shquote":   shquote,
	"pwshquote": pwshquote,
	"xmlescape": xmlescape,
}

// ShellFor infers the postscript dialect from a file name: .ps1 is pwsh, .cmd and
// .bat are cmd, anything else is sh. A non-empty preferred shell wins.
func ShellFor(path, preferred string) string {
	if preferred != "" {
		return preferred
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ps1":
		return "pwsh"
	case ".cmd", ".bat":
		return "cmd"
	default:
		return "sh"
	}
}

// RenderPostscript renders the variable part of d as a script for shell.
func RenderPostscript(shell string, d Diff) (string, error) {
	src, err := templates.Postscript(shell)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(shell).Funcs(funcs).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse %s postscript template: %w", shell, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render %s postscript: %w", shell, err)
	}
	return buf.String(), nil
}

// WritePostscript renders d for shell and writes it to path. The parent shell
// sources the file after acquire exits.
func WritePostscript(path, shell string, d Diff) error {
	out, err := RenderPostscript(shell, d)
	if err != nil {
		return err
	}
	if err := writeFile(path, out); err != nil {
		return fmt.Errorf("write postscript: %w", err)
	}
	log.Debug(log.CatActivate, "wrote postscript", "path", path, "shell", shell, "set", len(d.Set), "unset", len(d.Unset))
	return nil
}

// RenderMSBuildProps renders the build properties of d as an MSBuild props file.
func RenderMSBuildProps(d Diff) (string, error) {
	tmpl, err := template.New("msbuild").Funcs(funcs).Parse(templates.MSBuildProps())
	if err != nil {
		return "", fmt.Errorf("parse msbuild template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Properties []KV }{d.Properties}); err != nil {
		return "", fmt.Errorf("render msbuild props: %w", err)
	}
	return buf.String(), nil
}

// WriteMSBuildProps renders and writes the props file to path.
func WriteMSBuildProps(path string, d Diff) error {
	out, err := RenderMSBuildProps(d)
	if err != nil {
		return err
	}
	if err := writeFile(path, out); err != nil {
		return fmt.Errorf("write msbuild props: %w", err)
	}
	log.Debug(log.CatActivate, "wrote msbuild props", "path", path, "properties", len(d.Properties))
	return nil
}

func writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

func shquote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func pwshquote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func xmlescape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
