package xmldecode

import (
	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmlevent"
	"github.com/corvantis/xmlserde/xmltag"
)

// SeqReader walks a sequence one element at a time, mirroring
// Seq/SeqAccess (spec §4.4.4).
type SeqReader struct {
	d        *Decoder
	expected *xmltag.QName // nil when the sequence isn't wrapped by a shared sibling name
	hasExp   bool
}

func newSeqReader(d *Decoder) (*SeqReader, error) {
	s := &SeqReader{d: d}
	if d.unsetMapValue() {
		e := d.peek()
		d.resetPeek()
		if e.Kind != xmlevent.StartElement {
			return nil, xmlerr.New(xmlerr.ExpectedElement, "expected a start element to begin a sequence")
		}
		name := e.Name
		s.expected = &name
		s.hasExp = true
	}
	return s, nil
}

func seqMore(e xmlevent.Event, expected *xmltag.QName) bool {
	if expected != nil {
		return e.Kind == xmlevent.StartElement && e.Name == *expected
	}
	return e.Kind != xmlevent.EndElement && e.Kind != xmlevent.EndDocument
}

// Next reports whether another element is available and, if so, invokes fn
// to decode it. It returns (false, nil) once the sequence is exhausted.
func (s *SeqReader) Next(fn func(*Decoder) error) (bool, error) {
	e := s.d.peek()
	more := seqMore(e, s.expected)
	s.d.resetPeek()
	if !more {
		return false, nil
	}
	if s.hasExp {
		s.d.setMapValue()
	}
	s.d.setSeqValue()
	if err := fn(s.d); err != nil {
		return true, err
	}
	return true, nil
}

// Seq begins reading a sequence at the current position without
// DecodeSeq's trailing seq-value reset, leaving that flag to the caller.
func (d *Decoder) Seq() (*SeqReader, error) { return newSeqReader(d) }

// DecodeSeq is the entry point a slice-typed field uses: it reads elements
// via walk until the sequence is exhausted, then clears the seq-value flag
// exactly once (spec §4.4.4).
func (d *Decoder) DecodeSeq(walk func(*SeqReader) error) error {
	s, err := newSeqReader(d)
	if err != nil {
		return err
	}
	err = walk(s)
	d.unsetSeqValue()
	return err
}
