package cli

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestSimpleProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "pairs")

	progress.Start(4)
	progress.Update(2)
	progress.Finish()

	out := buf.String()
	if !strings.Contains(out, "Evaluating [") {
		t.Errorf("output missing progress bar: %q", out)
	}
	if !strings.Contains(out, "2/4 pairs") || !strings.Contains(out, "4/4 pairs") {
		t.Errorf("output missing counts: %q", out)
	}
	if !strings.Contains(out, "eta 0s") {
		t.Errorf("finished bar missing eta: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish() did not end the line")
	}
}

func TestSimpleProgress_ZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "")

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if strings.Contains(buf.String(), "Evaluating") {
		t.Errorf("zero total rendered a bar: %q", buf.String())
	}
}

func TestSimpleProgress_OutOfOrderUpdates(t *testing.T) {
	progress := NewProgressReporter(&bytes.Buffer{}, "pairs")
	progress.Start(10)
	progress.Update(7)
	progress.Update(3)

	if progress.current != 7 {
		t.Errorf("current = %d after a stale update, want 7", progress.current)
	}
}

func TestSimpleProgress_Concurrent(t *testing.T) {
	progress := NewProgressReporter(&bytes.Buffer{}, "pairs")
	progress.Start(100)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			progress.Update(int64(i + 1))
		}()
	}
	wg.Wait()

	if progress.current != 100 {
		t.Errorf("current = %d, want 100", progress.current)
	}
}

func TestSimpleProgress_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "pairs")
	progress.Error(errors.New("chart missing"))

	if !strings.Contains(buf.String(), "✗ Error: chart missing") {
		t.Errorf("error output = %q", buf.String())
	}
}

func TestSimpleProgress_SetLabel(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "records")
	progress.SetLabel("Pruning")
	progress.Start(2)

	if !strings.HasPrefix(buf.String(), "\rPruning [") {
		t.Errorf("output = %q, want the custom label", buf.String())
	}
}
