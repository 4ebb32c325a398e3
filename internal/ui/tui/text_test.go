package tui

import (
	"strings"
	"testing"
)

func TestClipCell(t *testing.T) {
	tests := map[string]struct {
		text  string
		width int
		want  string
	}{
		"fits":           {text: "short", width: 10, want: "short"},
		"exact":          {text: "short", width: 5, want: "short"},
		"clipped":        {text: "a longer string", width: 10, want: "a longe..."},
		"tiny width":     {text: "abcdef", width: 2, want: "ab"},
		"zero width":     {text: "abc", width: 0, want: ""},
		"negative width": {text: "abc", width: -1, want: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := clipCell(tt.text, tt.width); got != tt.want {
				t.Errorf("clipCell(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapWords(t *testing.T) {
	tests := map[string]struct {
		text      string
		width     int
		wantLines int
	}{
		"single line":        {text: "one two", width: 20, wantLines: 1},
		"wraps at width":     {text: "one two three four", width: 9, wantLines: 2},
		"collapses newlines": {text: "one\ntwo", width: 20, wantLines: 1},
		"blank input":        {text: "   ", width: 10, wantLines: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			lines := wrapWords(tt.text, tt.width)
			if len(lines) != tt.wantLines {
				t.Errorf("wrapWords(%q, %d) = %v (%d lines), want %d lines",
					tt.text, tt.width, lines, len(lines), tt.wantLines)
			}
		})
	}
}

func TestWrapWordsZeroWidthPassesThrough(t *testing.T) {
	lines := wrapWords("text", 0)
	if len(lines) != 1 || lines[0] != "text" {
		t.Errorf("wrapWords with zero width = %v, want passthrough", lines)
	}
}

func TestDetailField(t *testing.T) {
	got := detailField("Source: ", "a very long description that will certainly wrap", 30)
	lines := strings.Split(got, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected wrapped output, got %q", got)
	}
	if !strings.HasPrefix(lines[0], "Source: ") {
		t.Errorf("first line should carry the label, got %q", lines[0])
	}
	for _, line := range lines[1:] {
		if !strings.HasPrefix(line, strings.Repeat(" ", len("Source: "))) {
			t.Errorf("continuation line should be indented to the label width, got %q", line)
		}
	}
}

func TestDetailFieldNarrowWidth(t *testing.T) {
	if got := detailField("Name: ", "pkg", 4); got != "Name: pkg" {
		t.Errorf("narrow width should not wrap, got %q", got)
	}
}
