package ui

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Entry records a single UI method call for test assertions.
type Entry struct {
	Method string
	Value  string
}

type sharedState struct {
	mu      sync.Mutex
	entries []Entry
	tables  [][][]string
	buf     *bytes.Buffer
}

// RecordingUI implements UI for tests. Every call is captured in an entry
// log. Child UIs created via Indent() share the log with their parent.
type RecordingUI struct {
	shared      *sharedState
	indentLevel int
}

func NewRecordingUI() *RecordingUI {
	return &RecordingUI{
		shared: &sharedState{buf: &bytes.Buffer{}},
	}
}

func (r *RecordingUI) record(method, value string) {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	r.shared.entries = append(r.shared.entries, Entry{
		Method: method,
		Value:  value,
	})
}

// Style returns the plain text of t.
func (r *RecordingUI) Style(t StyledText) string {
	return t.Text
}

func (r *RecordingUI) Info(format string, args ...any) {
	r.record("Info", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Success(format string, args ...any) {
	r.record("Success", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Warn(format string, args ...any) {
	r.record("Warn", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Error(format string, args ...any) {
	r.record("Error", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) KeyValue(rows [][2]string) {
	for _, row := range rows {
		r.record("KeyValue", row[0]+": "+row[1])
	}
}

func (r *RecordingUI) Table(headers []string, rows [][]string) {
	r.shared.mu.Lock()
	r.shared.tables = append(r.shared.tables, rows)
	r.shared.mu.Unlock()
	for _, row := range rows {
		r.record("Table", strings.Join(row, " | "))
	}
}

func (r *RecordingUI) Spinner(msg string) func() {
	r.record("Spinner", msg)
	return func() {}
}

func (r *RecordingUI) Indent() UI {
	return &RecordingUI{
		shared:      r.shared,
		indentLevel: r.indentLevel + 1,
	}
}

// Writer returns a writer that appends to the internal buffer.
func (r *RecordingUI) Writer() io.Writer {
	return r.shared.buf
}

// Entries returns all recorded UI calls in order.
func (r *RecordingUI) Entries() []Entry {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	return append([]Entry(nil), r.shared.entries...)
}

// Tables returns the rows of every rendered table in order.
func (r *RecordingUI) Tables() [][][]string {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	return append([][][]string(nil), r.shared.tables...)
}

func (r *RecordingUI) ErrorMessages() []string {
	return r.methodValues("Error")
}

// HasMessage reports whether any recorded value contains substr, ignoring
// case.
func (r *RecordingUI) HasMessage(substr string) bool {
	lower := strings.ToLower(substr)
	for _, e := range r.Entries() {
		if strings.Contains(strings.ToLower(e.Value), lower) {
			return true
		}
	}
	return false
}

func (r *RecordingUI) methodValues(method string) []string {
	res := []string{}
	for _, e := range r.Entries() {
		if e.Method == method {
			res = append(res, e.Value)
		}
	}
	return res
}
