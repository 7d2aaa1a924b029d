package presentation

import (
	"fmt"
	"io"

	"github.com/zjrosen/acquire/internal/activation"
	"github.com/zjrosen/acquire/internal/pubsub"
)

// FormatTransition renders one activation state change. Pending and Checked are
// bookkeeping states and produce no line.
func FormatTransition(ev activation.Event) (string, bool) {
	id := ev.Name + "@" + ev.Version
	switch ev.State {
	case activation.StateActivating:
		return mutedStyle.Render("activating " + id), true
	case activation.StateActivated:
		return successStyle.Render("activated") + " " + id, true
	case activation.StateSkipped:
		return mutedStyle.Render("skipped " + id), true
	case activation.StateFailed:
		line := errorStyle.Render("failed") + " " + id
		if ev.Err != nil {
			line += ": " + causeOf(ev.Err)
		}
		return line, true
	default:
		return "", false
	}
}

// ShowProgress prints transitions from events as they arrive. It stops at the end
// of the batch or when events is closed; the returned channel is closed then.
func ShowProgress(w io.Writer, events <-chan pubsub.Event[activation.Event]) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if ev.Type == pubsub.BatchDoneEvent {
				return
			}
			if line, ok := FormatTransition(ev.Payload); ok {
				_, _ = fmt.Fprintln(w, line)
			}
		}
	}()
	return done
}
