package xmlevent

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmltag"
	"golang.org/x/net/html/charset"
)

// Source is a pull source of Events. Next returns io.EOF, and only io.EOF,
// once the stream is exhausted; callers (xmlcursor.Cursor) translate that
// into a synthetic EndDocument event (spec.md §3.5).
type Source interface {
	Next() (Event, error)
}

// ReaderOptions configures a decoder Source.
type ReaderOptions struct {
	// LegacyCharsets enables transcoding of non-UTF-8 encoded documents
	// (declared via the XML declaration's encoding= attribute) using
	// golang.org/x/net/html/charset, mirroring spec.md §6.6.
	LegacyCharsets bool
}

// decoderSource adapts an *encoding/xml.Decoder token stream into Events.
// It always synthesizes exactly one StartDocument event first (spec.md
// §3.4), consuming the "<?xml ...?>" declaration token if present rather
// than surfacing it as a separate ProcessingInstruction event, and it
// discards every other processing instruction, comment, and directive
// token, along with whitespace-only character data between elements —
// matching the discard-on-construction behavior spec.md §4.3/§6.4
// describes for the Rust original's EventReader configuration.
type decoderSource struct {
	dec             *xml.Decoder
	startDocEmitted bool
	pending         xml.Token // one token of pushback, consumed before dec.Token()
	exhausted       bool
}

// NewDecoderSource builds a Source over r.
func NewDecoderSource(r io.Reader, opts ReaderOptions) Source {
	dec := xml.NewDecoder(r)
	if opts.LegacyCharsets {
		dec.CharsetReader = charset.NewReaderLabel
	}
	return &decoderSource{dec: dec}
}

func (s *decoderSource) rawNext() (xml.Token, error) {
	if s.pending != nil {
		t := s.pending
		s.pending = nil
		return t, nil
	}
	return s.dec.Token()
}

func (s *decoderSource) Next() (Event, error) {
	if s.exhausted {
		return Event{}, io.EOF
	}
	if !s.startDocEmitted {
		s.startDocEmitted = true
		tok, err := s.rawNext()
		if err != nil {
			if err == io.EOF {
				s.exhausted = true
				return Event{Kind: StartDocument}, nil
			}
			return Event{}, xmlerr.Wrap(xmlerr.ParserError, err)
		}
		if pi, ok := tok.(xml.ProcInst); !ok || pi.Target != "xml" {
			s.pending = tok // not a declaration: replay it as the next real token
		}
		return Event{Kind: StartDocument}, nil
	}

	for {
		tok, err := s.rawNext()
		if err != nil {
			if err == io.EOF {
				s.exhausted = true
				return Event{}, io.EOF
			}
			return Event{}, xmlerr.Wrap(xmlerr.ParserError, err)
		}

		switch t := tok.(type) {
		case xml.ProcInst:
			continue // non-declaration PIs are ignored on decode (§6.4)
		case xml.Directive:
			continue // DOCTYPE-like directives are not preserved (Non-goal)
		case xml.Comment:
			continue // comments are ignored on decode (§6.4)
		case xml.StartElement:
			return Event{Kind: StartElement, Name: qnameFromXML(t.Name), Attrs: attrsFromXML(t.Attr)}, nil
		case xml.EndElement:
			return Event{Kind: EndElement, Name: qnameFromXML(t.Name)}, nil
		case xml.CharData:
			text := string(t)
			if strings.TrimSpace(text) == "" {
				continue // whitespace-only text between elements is ignored (§6.4)
			}
			return Event{Kind: Characters, Text: text}, nil
		}
	}
}

func qnameFromXML(n xml.Name) xmltag.QName {
	if n.Space == "" {
		return xmltag.QName{Local: n.Local}
	}
	return xmltag.QName{Namespace: n.Space, HasNS: true, Local: n.Local}
}

func attrsFromXML(raw []xml.Attr) []Attr {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Attr, 0, len(raw))
	for _, a := range raw {
		// encoding/xml reports the xmlns bookkeeping attributes themselves;
		// a bare "xmlns" name always carries Space=="xmlns" pseudo-marker
		// only for prefixed declarations, so unprefixed "xmlns" passes
		// through with an empty Space — filter both forms, they are
		// namespace declarations, not data attributes (spec §3.1/§6.1).
		if a.Name.Local == "xmlns" && a.Name.Space == "" {
			continue
		}
		if a.Name.Space == "xmlns" {
			continue
		}
		out = append(out, Attr{Name: qnameFromXML(a.Name), Value: a.Value})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SliceSource replays a pre-built []Event, used by xmlserde's DecodeEvents
// entry point (spec.md §4.6) and by fragment re-parsing.
type SliceSource struct {
	events []Event
	pos    int
}

// NewSliceSource builds a Source that replays events in order.
func NewSliceSource(events []Event) *SliceSource {
	return &SliceSource{events: events}
}

func (s *SliceSource) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}
	e := s.events[s.pos]
	s.pos++
	return e, nil
}

// ParseFragment parses a standalone XML fragment (no declaration, no
// EndDocument requirement) into its flat Event sequence, for raw-XML text
// extraction / re-streaming ($valueRaw, spec.md §4.4.9/§4.5.6).
func ParseFragment(raw string) ([]Event, error) {
	src := NewDecoderSource(bytes.NewReader([]byte(raw)), ReaderOptions{})
	var out []Event
	for {
		e, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if e.Kind == StartDocument {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
