package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSimpleProgressRendersBar(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter("Processing", &buf)

	p.Start(100)
	p.Update(50)
	p.Finish()

	out := buf.String()
	if !strings.Contains(out, "Processing") {
		t.Error("output missing stage label")
	}
	if !strings.Contains(out, "50.0%") {
		t.Errorf("output missing midpoint percentage:\n%s", out)
	}
	if !strings.Contains(out, "100.0%") {
		t.Errorf("output missing completion percentage:\n%s", out)
	}
	if !strings.Contains(out, "(50/100)") {
		t.Errorf("output missing counts:\n%s", out)
	}
}

func TestSimpleProgressZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter("Empty", &buf)

	// Must not divide by zero.
	p.Start(0)
	p.Update(0)
	p.Finish()
}

func TestSimpleProgressError(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter("Archiving", &buf)

	p.Start(10)
	p.Error(errors.New("connection lost"))

	if !strings.Contains(buf.String(), "connection lost") {
		t.Errorf("output missing error message:\n%s", buf.String())
	}
}

func TestFormatterSelection(t *testing.T) {
	var buf bytes.Buffer

	jf := NewFormatter(FormatJSON)
	if err := jf.FormatTo(&buf, map[string]int{"count": 3}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"count"`) {
		t.Errorf("JSON output = %q", buf.String())
	}

	buf.Reset()
	tf := NewFormatter(FormatText)
	if err := tf.FormatTo(&buf, "done"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if !strings.Contains(buf.String(), "done") {
		t.Errorf("text output = %q", buf.String())
	}
}
