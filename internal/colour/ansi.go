package colour

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiFgPrefix = "\033[38;2;"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 8
)

// ColourPreview returns an ANSI-coloured preview string for a colour.
// Width specifies how many characters wide the colour block should be.
// Uses background colour with spaces for a solid block.
func ColourPreview(c Color, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.Red(), c.Green(), c.Blue(), ansiSuffix)
	block := strings.Repeat(" ", width)

	return bgColour + block + ansiReset
}

// ColourPreviewWithText returns a colour preview with text overlay.
// The text colour is the given foreground, composited over the block so that
// translucent text colours render as they would in a UI.
func ColourPreviewWithText(bg, fg Color, text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	if !fg.IsOpaque() {
		fg = CompositeColors(fg, bg.WithAlpha(OpaqueAlpha))
	}

	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, bg.Red(), bg.Green(), bg.Blue(), ansiSuffix)
	fgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiFgPrefix, fg.Red(), fg.Green(), fg.Blue(), ansiSuffix)

	// Pad or truncate text to fit width.
	displayText := text
	if len(text) > width {
		displayText = text[:width]
	} else if len(text) < width {
		padding := (width - len(text)) / 2
		displayText = strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
	}

	return bgColour + fgColour + displayText + ansiReset
}

// FormatColourWithPreview formats a colour with its preview and hex code.
func FormatColourWithPreview(c Color, width int) string {
	return fmt.Sprintf("%s %s", ColourPreview(c, width), c.Hex())
}

// SupportsANSIColours reports whether w is a terminal that is likely to
// render ANSI colour codes.
func SupportsANSIColours(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
