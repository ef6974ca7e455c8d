package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestBarRendersCompletion(t *testing.T) {
	var buf bytes.Buffer
	b := NewWithWriter(2, &buf)

	b.Increment()
	b.Increment()
	if !strings.Contains(buf.String(), "2/2 (100.0%)") {
		t.Errorf("output %q missing completion", buf.String())
	}

	b.Finish()
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("Finish() should end the line")
	}

	n := buf.Len()
	b.Finish()
	b.Increment()
	if buf.Len() != n {
		t.Error("bar rendered after Finish()")
	}
}

func TestBarDescribe(t *testing.T) {
	var buf bytes.Buffer
	b := NewWithWriter(3, &buf)

	b.Describe("Yesterday – The Beatles")
	if !strings.Contains(buf.String(), "0/3") || !strings.Contains(buf.String(), "Yesterday – The Beatles") {
		t.Errorf("output %q missing label", buf.String())
	}
	if b.Current() != 0 {
		t.Errorf("Current() = %d, want 0", b.Current())
	}
}

func TestBarZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	b := NewWithWriter(0, &buf)
	b.Increment()
	b.Describe("x")
	if strings.Contains(buf.String(), "[") {
		t.Errorf("zero-total bar rendered %q", buf.String())
	}
}

func TestFitLabel(t *testing.T) {
	if got := fitLabel("abc"); len([]rune(got)) != labelWidth {
		t.Errorf("fitLabel short = %d runes", len([]rune(got)))
	}
	long := strings.Repeat("é", labelWidth+10)
	if got := fitLabel(long); len([]rune(got)) != labelWidth || !strings.HasSuffix(got, "…") {
		t.Errorf("fitLabel long = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2*time.Hour + 5*time.Minute, "2h5m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
