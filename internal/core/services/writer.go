package services

import (
	"bufio"
	"errors"
	"io"

	"github.com/custodia-labs/skycat/internal/core/domain"
)

// OutputWriter renders output rows, one per line, using the owning catalog's
// formats and delimiter. Writes are buffered; call Flush at the end.
type OutputWriter struct {
	buf  *bufio.Writer
	line []byte
	rows int
}

// NewOutputWriter creates a writer over w.
func NewOutputWriter(w io.Writer) *OutputWriter {
	return &OutputWriter{buf: bufio.NewWriter(w)}
}

// WriteRow renders row with spec's rules and appends it to the destination.
func (o *OutputWriter) WriteRow(spec *domain.CatalogSpec, row domain.OutputRow) error {
	line, err := o.render(spec, row)
	if err != nil {
		return err
	}
	if _, err := o.buf.Write(line); err != nil {
		return &domain.IOError{Op: "write", Err: err}
	}
	o.rows++
	return nil
}

// Flush writes any buffered rows to the destination.
func (o *OutputWriter) Flush() error {
	if err := o.buf.Flush(); err != nil {
		return &domain.IOError{Op: "flush", Err: err}
	}
	return nil
}

// Rows returns the number of rows written so far.
func (o *OutputWriter) Rows() int {
	return o.rows
}

func (o *OutputWriter) render(spec *domain.CatalogSpec, row domain.OutputRow) ([]byte, error) {
	delim := spec.FieldDelimiter()
	o.line = o.line[:0]

	for i, v := range row.Values {
		field, err := spec.Formats.Render(v)
		if err != nil {
			var fe *domain.FormatError
			if errors.As(err, &fe) {
				fe.Catalog = spec.Label()
				if i < len(spec.Outputs) {
					fe.Column = spec.Outputs[i]
				}
			}
			return nil, err
		}
		if i > 0 {
			o.line = append(o.line, delim...)
		}
		o.line = append(o.line, field...)
	}
	o.line = append(o.line, '\n')
	return o.line, nil
}
