package openres

import (
	"fmt"

	"github.com/gosuri/uiprogress"
)

// Feedback carries progress messages, percent-complete and the cancellation
// flag between the pipeline and its host. Long stages poll Canceled at least
// once per processed row; a cancelled run stops early with no output and no
// error.
type Feedback interface {
	PushInfo(format string, args ...interface{})
	SetProgress(pct float64)
	Canceled() bool
}

// NullFeedback discards everything and never cancels
type NullFeedback struct{}

func (NullFeedback) PushInfo(string, ...interface{}) {}
func (NullFeedback) SetProgress(float64)             {}
func (NullFeedback) Canceled() bool                  { return false }

// TermFeedback prints messages to the terminal with a progress bar
type TermFeedback struct {
	bar *uiprogress.Bar
}

// NewTermFeedback starts the progress renderer
func NewTermFeedback() *TermFeedback {
	uiprogress.Start()
	return &TermFeedback{bar: uiprogress.AddBar(100).AppendCompleted().PrependElapsed()}
}

// Stop the progress renderer
func (t *TermFeedback) Stop() { uiprogress.Stop() }

func (t *TermFeedback) PushInfo(format string, args ...interface{}) {
	fmt.Printf(" "+format+"\n", args...)
}

func (t *TermFeedback) SetProgress(pct float64) {
	if pct < 0. {
		pct = 0.
	} else if pct > 100. {
		pct = 100.
	}
	t.bar.Set(int(pct))
}

func (t *TermFeedback) Canceled() bool { return false }
