package presentation

import (
	"fmt"
	"io"
)

// Reporter receives human-readable status messages.
type Reporter interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// Console writes status messages to a terminal stream, usually stderr, so stdout
// stays clean for JSON and tables.
type Console struct {
	w     io.Writer
	quiet bool
}

var _ Reporter = (*Console)(nil)

// NewConsole creates a console reporter on w. A quiet console drops Info.
func NewConsole(w io.Writer, quiet bool) *Console {
	return &Console{w: w, quiet: quiet}
}

func (c *Console) Info(msg string) {
	if c.quiet {
		return
	}
	_, _ = fmt.Fprintln(c.w, msg)
}

func (c *Console) Warn(msg string) {
	_, _ = fmt.Fprintln(c.w, warningStyle.Render("warning:")+" "+msg)
}

func (c *Console) Error(msg string) {
	_, _ = fmt.Fprintln(c.w, errorStyle.Render("error:")+" "+msg)
}

// Writer returns the underlying stream.
func (c *Console) Writer() io.Writer { return c.w }
