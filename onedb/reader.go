package onedb

import (
	"bytes"
	"encoding/xml"
	"io"

	"gapscan/errors"
)

// Reader yields one Record per top-level OBJECT element, in document order.
// It is a lazy, finite, non-restartable sequence: memory use is bounded by
// element depth, not document size.
type Reader struct {
	dec *xml.Decoder
	seq int
}

// NewReader wraps an XML stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: xml.NewDecoder(r)}
}

// Next returns the next object in the stream, or io.EOF once exhausted.
// The returned Record owns its backing storage; the stream keeps no
// reference to it.
func (r *Reader) Next() (*Record, error) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, errors.Wrapf(err, "reading object %d", r.seq+1)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "OBJECT" {
			continue
		}

		r.seq++
		rec, err := r.readObject()
		if err != nil {
			return nil, errors.Wrapf(err, "reading object %d", r.seq)
		}
		return rec, nil
	}
}

// Seq returns the number of objects yielded so far.
func (r *Reader) Seq() int {
	return r.seq
}

func (r *Reader) readObject() (*Record, error) {
	var props []Property
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "PROPERTY" {
				// Not part of the flat object shape; skip subtree.
				if err := r.dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			var name, value string
			for _, attr := range t.Attr {
				switch attr.Name.Local {
				case "NAME":
					name = attr.Value
				case "VALUE":
					value = attr.Value
				}
			}
			if name != "" {
				props = append(props, Property{Name: name, Value: value})
			}
			if err := r.dec.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if t.Name.Local == "OBJECT" {
				return newRecord(r.seq, props), nil
			}
		}
	}
}

// CountRecords scans a raw database stream and counts top-level objects.
// Cosmetic pre-pass used only to size the progress bar; the caller must
// reopen the stream afterwards. The scan reads fixed-size chunks, so the
// stream's line structure never matters.
func CountRecords(r io.Reader) (int, error) {
	marker := []byte("<OBJECT")
	keep := len(marker) - 1

	buf := make([]byte, 1024*1024+keep)
	count := 0
	offset := 0
	for {
		n, err := r.Read(buf[offset:])
		if n > 0 {
			window := buf[:offset+n]
			count += bytes.Count(window, marker)

			// Hold back a marker-length tail so an open tag split across
			// two chunks is still seen whole. The tail is shorter than
			// the marker, so nothing counts twice.
			tail := keep
			if len(window) < tail {
				tail = len(window)
			}
			copy(buf, window[len(window)-tail:])
			offset = tail
		}
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, errors.Wrap(err, "counting objects")
		}
	}
}
