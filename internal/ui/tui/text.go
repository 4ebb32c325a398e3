package tui

import "strings"

// clipCell fits text into a table cell of the given width, marking
// clipped values with an ellipsis.
func clipCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if len(text) <= width {
		return text
	}
	if width <= 3 {
		return text[:width]
	}
	return text[:width-3] + "..."
}

// detailField renders one labeled field of the package detail view,
// wrapping the value and indenting continuation lines under the label.
func detailField(label, value string, width int) string {
	if width <= len(label) {
		return label + value
	}

	lines := wrapWords(value, width-len(label))
	if len(lines) == 0 {
		return label
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteString(lines[0])
	indent := strings.Repeat(" ", len(label))
	for _, line := range lines[1:] {
		b.WriteString("\n")
		b.WriteString(indent)
		b.WriteString(line)
	}
	return b.String()
}

// wrapWords breaks text into lines at word boundaries. Words longer
// than the width get a line of their own. Embedded newlines are
// treated as spaces so registry descriptions flow as one paragraph.
func wrapWords(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	words := strings.Fields(strings.ReplaceAll(text, "\n", " "))
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var line strings.Builder
	for _, word := range words {
		switch {
		case line.Len() == 0:
			line.WriteString(word)
		case line.Len()+1+len(word) > width:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
		default:
			line.WriteByte(' ')
			line.WriteString(word)
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
