package ui

import (
	"io"
)

// Severity classifies the visual weight of a piece of inline text.
type Severity uint8

const (
	SeverityInfo    Severity = iota // plain
	SeveritySuccess                 // green
	SeverityWarn                    // yellow
	SeverityError                   // red
)

// StyledText pairs a plain string with a Severity annotation. Pass it to
// [UI.Style] to get the coloured string for the current output.
type StyledText struct {
	Text     string
	Severity Severity
}

// UI is the output side of every blockseek command.
//
// Production code uses TerminalUI, tests use RecordingUI. A child UI from
// [UI.Indent] shares the parent's writer and prints one level deeper.
type UI interface {
	Style(t StyledText) string

	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)

	// KeyValue renders an aligned two column block.
	KeyValue(rows [][2]string)

	// Table renders a bordered table. No header row is printed when
	// headers is empty.
	Table(headers []string, rows [][]string)

	// Spinner shows msg with an animation until the returned stop function
	// is called. On non-terminal outputs msg is printed once.
	Spinner(msg string) func()

	Indent() UI

	// Writer prepends the current indentation to every written line.
	Writer() io.Writer
}
