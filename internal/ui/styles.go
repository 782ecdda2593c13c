package ui

import "fmt"

// ANSI256 color codes for event listings.
const (
	colorEvent = 74  // blue, event names
	colorTime  = 245 // gray, timestamps
)

var noColor bool

// RenderEventName returns s in the event-name (blue) color.
func RenderEventName(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorEvent, s)
}

// RenderTimestamp returns s in the timestamp (gray) color.
func RenderTimestamp(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorTime, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
