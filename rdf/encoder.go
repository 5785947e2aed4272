package rdf

import (
	"bufio"
	"io"
)

// Encoder writes triples to an N-Triples stream, one per line.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder returns a new Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode writes a single triple, terminated by a newline.
func (e *Encoder) Encode(tr Triple) error {
	if _, err := e.w.WriteString(tr.String()); err != nil {
		return err
	}
	return e.w.WriteByte('\n')
}

// Flush flushes any buffered output to the underlying writer.
func (e *Encoder) Flush() error { return e.w.Flush() }
