package cli

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ansiEscape matches SGR escape sequences such as colour previews.
var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Alignment controls how a column is padded.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table is a plain-text table with dynamic column widths. Cells may contain
// ANSI colour sequences; they do not count towards the column width.
type Table struct {
	headers   []string
	rows      [][]string
	padding   int
	maxWidths map[int]int       // Maximum width per column index (0 = no limit)
	align     map[int]Alignment // Alignment per column index (default left)
}

// NewTable creates a new table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:   headers,
		rows:      make([][]string, 0),
		padding:   2,
		maxWidths: make(map[int]int),
		align:     make(map[int]Alignment),
	}
}

// SetColumnMaxWidth sets a maximum width for a column. Longer text is
// wrapped at word boundaries.
func (t *Table) SetColumnMaxWidth(colIndex int, maxWidth int) {
	t.maxWidths[colIndex] = maxWidth
}

// SetColumnAlignment sets the alignment of a column.
func (t *Table) SetColumnAlignment(colIndex int, a Alignment) {
	t.align[colIndex] = a
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	normalised := make([]string, len(t.headers))
	copy(normalised, row)
	t.rows = append(t.rows, normalised)
}

// Render formats the table. Lines carry no trailing whitespace.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	cells := make([][][]string, len(t.rows))
	for r, row := range t.rows {
		cells[r] = make([][]string, len(row))
		for c, cell := range row {
			if limit := t.maxWidths[c]; limit > 0 {
				cells[r][c] = wrapText(cell, limit)
			} else {
				cells[r][c] = []string{cell}
			}
		}
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = displayWidth(h)
	}
	for _, row := range cells {
		for c, lines := range row {
			for _, line := range lines {
				widths[c] = max(widths[c], displayWidth(line))
			}
		}
	}

	var sb strings.Builder
	t.writeLine(&sb, t.headers, widths)

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	t.writeLine(&sb, sep, widths)

	for _, row := range cells {
		height := 1
		for _, lines := range row {
			height = max(height, len(lines))
		}
		for l := range height {
			parts := make([]string, len(t.headers))
			for c := range t.headers {
				if c < len(row) && l < len(row[c]) {
					parts[c] = row[c][l]
				}
			}
			t.writeLine(&sb, parts, widths)
		}
	}

	return sb.String()
}

func (t *Table) writeLine(sb *strings.Builder, parts []string, widths []int) {
	padded := make([]string, len(parts))
	for i, p := range parts {
		if t.align[i] == AlignRight {
			padded[i] = padLeft(p, widths[i])
		} else {
			padded[i] = padRight(p, widths[i])
		}
	}
	sb.WriteString(strings.TrimRight(strings.Join(padded, strings.Repeat(" ", t.padding)), " "))
	sb.WriteString("\n")
}

// displayWidth returns the number of runes in s, ignoring ANSI sequences.
func displayWidth(s string) int {
	if strings.IndexByte(s, '\x1b') >= 0 {
		s = ansiEscape.ReplaceAllString(s, "")
	}
	return utf8.RuneCountInString(s)
}

// padRight pads s with spaces on the right to the given display width.
func padRight(s string, width int) string {
	if n := displayWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// padLeft pads s with spaces on the left to the given display width.
func padLeft(s string, width int) string {
	if n := displayWidth(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

// wrapText wraps text to fit within width, breaking at word boundaries.
// Words longer than width are split.
func wrapText(text string, width int) []string {
	if width <= 0 || displayWidth(text) <= width {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	current := ""
	for _, word := range words {
		for utf8.RuneCountInString(word) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
		}

		switch {
		case current == "":
			current = word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}

	return lines
}
