// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// spliceOverlay replaces a rectangular region of a rendered view with
// overlay lines anchored at (anchorX, anchorY) in screen coordinates.
// Truncation is ANSI aware, so escape sequences on either side of the
// spliced region survive. Every overlay line must have the same
// visible width.
func spliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlayLines[0])

	for index, overlayLine := range overlayLines {
		row := anchorY + index
		if row < 0 || row >= len(viewLines) {
			continue
		}
		viewLine := viewLines[row]

		var spliced strings.Builder
		if anchorX > 0 {
			spliced.WriteString(ansi.Truncate(viewLine, anchorX, ""))
		}
		// Reset on both sides so the overlay neither inherits nor
		// leaks styling.
		spliced.WriteString("\x1b[0m")
		spliced.WriteString(overlayLine)
		spliced.WriteString("\x1b[0m")

		if suffixStart := anchorX + overlayWidth; suffixStart < ansi.StringWidth(viewLine) {
			spliced.WriteString(ansi.TruncateLeft(viewLine, suffixStart, ""))
		}

		viewLines[row] = spliced.String()
	}

	return strings.Join(viewLines, "\n")
}

// centerOverlay splices overlay lines into the middle of a view of the
// given terminal dimensions.
func centerOverlay(view string, overlayLines []string, width, height int) string {
	if len(overlayLines) == 0 {
		return view
	}
	anchorX := (width - ansi.StringWidth(overlayLines[0])) / 2
	anchorY := (height - len(overlayLines)) / 2
	if anchorX < 0 {
		anchorX = 0
	}
	if anchorY < 0 {
		anchorY = 0
	}
	return spliceOverlay(view, overlayLines, anchorX, anchorY)
}
