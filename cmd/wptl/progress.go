package main

import (
	"io"
	"time"

	"github.com/ZaguanLabs/wptl"
	"github.com/jedib0t/go-pretty/v6/progress"
)

// progressBar renders pipeline progress on a single tracker.
type progressBar struct {
	pw      progress.Writer
	tracker *progress.Tracker
	done    chan struct{}
}

func newProgressBar(w io.Writer, title string) *progressBar {
	pw := progress.NewWriter()
	pw.SetOutputWriter(w)
	pw.SetAutoStop(true)
	pw.SetTrackerLength(30)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Value = false

	tracker := &progress.Tracker{
		Message: title,
		Total:   wptl.ProgressComplete,
		Units:   progress.UnitsDefault,
	}
	pw.AppendTracker(tracker)

	b := &progressBar{pw: pw, tracker: tracker, done: make(chan struct{})}
	go func() {
		pw.Render()
		close(b.done)
	}()
	return b
}

// Update is a wptl.ProgressFunc.
func (b *progressBar) Update(percent int, message string) {
	b.tracker.UpdateMessage(message)
	b.tracker.SetValue(int64(percent))
}

// Finish marks the tracker done or errored and waits for the last render.
func (b *progressBar) Finish(err error) {
	if err != nil {
		b.tracker.MarkAsErrored()
	} else {
		b.tracker.MarkAsDone()
	}
	<-b.done
}

// progressFor returns the progress callback for a run and a finish function.
// Quiet and JSON runs report nothing.
func (a *app) progressFor(title string) (wptl.ProgressFunc, func(error)) {
	if a.quiet || a.jsonOut {
		return nil, func(error) {}
	}
	bar := newProgressBar(a.stderr, title)
	return bar.Update, bar.Finish
}
