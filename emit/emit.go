// Package emit implements the Output Emitter: it writes delimited,
// single-line JSON records describing newly asserted types and topic
// bindings.
package emit

import (
	"io"
	"strings"
	"sync"

	goccyjson "github.com/goccy/go-json"

	"github.com/wkalt/typewatch/typecode"
)

// Emitter is the Output Emitter contract.
type Emitter interface {
	EmitType(tc *typecode.TypeCode) error
	EmitTopic(name string, tc *typecode.TypeCode) error
	Close() error
}

// typeRecord and topicRecord mirror the on-wire field order:
// "fqname"/"idl" and "name"/"type_name"/"idl".
type typeRecord struct {
	FQName string `json:"fqname"`
	IDL    string `json:"idl"`
}

type topicRecord struct {
	Name     string `json:"name"`
	TypeName string `json:"type_name"`
	IDL      string `json:"idl"`
}

// Writer is the file/stream-backed Output Emitter. Writes are serialised
// by a single mutex so interleaved writers never tear a record.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter builds a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// EmitType writes a >>> type ... <<< type record for tc.
func (w *Writer) EmitType(tc *typecode.TypeCode) error {
	rec := typeRecord{FQName: tc.Name, IDL: normaliseLineEndings(PrintIDL(tc))}
	return w.emit("type", rec)
}

// EmitTopic writes a >>> topic ... <<< topic record binding name to tc.
func (w *Writer) EmitTopic(name string, tc *typecode.TypeCode) error {
	rec := topicRecord{Name: name, TypeName: tc.Name, IDL: normaliseLineEndings(PrintIDL(tc))}
	return w.emit("topic", rec)
}

func (w *Writer) emit(kind string, rec any) error {
	payload, err := goccyjson.Marshal(rec)
	if err != nil {
		return &IoFailureError{Op: "marshal " + kind, Err: err}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := io.WriteString(w.w, ">>> "+kind+"\n"); err != nil {
		return &IoFailureError{Op: "write " + kind + " open delimiter", Err: err}
	}
	if _, err := w.w.Write(payload); err != nil {
		return &IoFailureError{Op: "write " + kind + " payload", Err: err}
	}
	if _, err := io.WriteString(w.w, "\n<<< "+kind+"\n"); err != nil {
		return &IoFailureError{Op: "write " + kind + " close delimiter", Err: err}
	}
	return nil
}

// Close closes the underlying writer if it implements io.Closer.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.w.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return &IoFailureError{Op: "close", Err: err}
		}
	}
	return nil
}

// normaliseLineEndings collapses Windows-style line endings in pre-rendered
// multi-line IDL text to a single "\n" before it is embedded as a JSON
// string value. Quote and newline escaping is left to the marshaler: doing
// it by hand here as well would double-escape, since goccy/go-json applies
// standard JSON string escaping to every field it marshals.
func normaliseLineEndings(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
