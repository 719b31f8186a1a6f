package dump

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrStop can be returned from a walk callback to end the walk early without
// reporting an error to the caller.
var ErrStop = errors.New("dump: stop walk")

// Source is a re-walkable stream of dump rows. A file-backed source opens a
// fresh pass on every walk; a slice-backed source iterates in place.
type Source interface {
	// Walk calls fn for every row in order. It stops on the first error
	// returned by fn; ErrStop ends the walk cleanly.
	Walk(fn func(Row) error) error
}

// File returns a Source backed by a dump XML file. The file is not touched
// until Walk is called.
func File(path string) Source {
	return fileSource{path: path}
}

// Rows returns a Source backed by an in-memory slice of rows.
func Rows(rows []Row) Source {
	return sliceSource(rows)
}

type fileSource struct {
	path string
}

func (s fileSource) Walk(fn func(Row) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open dump file %s: %w", s.path, err)
	}
	defer f.Close()

	if err := walkRows(f, fn); err != nil {
		return fmt.Errorf("dump file %s: %w", s.path, err)
	}
	return nil
}

type sliceSource []Row

func (s sliceSource) Walk(fn func(Row) error) error {
	for _, row := range s {
		if err := fn(row); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

// walkRows streams <row .../> elements from r and hands each to fn. Any XML
// decoding failure is fatal: a dump file that cannot be parsed aborts the
// whole pass rather than silently truncating the record stream.
func walkRows(r io.Reader, fn func(Row) error) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("malformed XML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "row" {
			continue
		}

		row := make(Row, len(start.Attr))
		for _, attr := range start.Attr {
			row[attr.Name.Local] = attr.Value
		}
		if err := dec.Skip(); err != nil {
			return fmt.Errorf("malformed XML: %w", err)
		}

		if err := fn(row); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}
