package xmlserde

import (
	"bytes"
	"strings"

	"github.com/corvantis/xmlserde/xmlcursor"
	"github.com/corvantis/xmlserde/xmldecode"
	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmlevent"
	"github.com/corvantis/xmlserde/xmlreflect"
)

// DecodeBytes parses data and populates v, which must be a non-nil
// pointer — either to a type implementing xmldecode.Decodable, or to a
// struct xmlreflect's "xml"-tag convention can drive directly (spec
// §6.1's decode_from_bytes).
func DecodeBytes(data []byte, v any, opts ...DecodeOption) error {
	cfg := buildDecodeConfig(opts)
	src := xmlevent.NewDecoderSource(bytes.NewReader(data), xmlevent.ReaderOptions{LegacyCharsets: cfg.legacyCharsets})
	return decodeFrom(src, v, cfg)
}

// DecodeString is DecodeBytes over an in-memory string (spec §6.1's
// decode_from_string).
func DecodeString(s string, v any, opts ...DecodeOption) error {
	cfg := buildDecodeConfig(opts)
	src := xmlevent.NewDecoderSource(strings.NewReader(s), xmlevent.ReaderOptions{LegacyCharsets: cfg.legacyCharsets})
	return decodeFrom(src, v, cfg)
}

// DecodeEvents decodes a pre-collected event sequence (spec §6.1's
// decode_from_events), as produced by EncodeToEvents or hand-assembled by
// a caller driving its own pull parser.
func DecodeEvents(events []xmlevent.Event, v any, opts ...DecodeOption) error {
	cfg := buildDecodeConfig(opts)
	return decodeFrom(xmlevent.NewSliceSource(events), v, cfg)
}

func decodeFrom(src xmlevent.Source, v any, cfg decodeConfig) (err error) {
	// xmlcursor surfaces a malformed stream as a panic carrying an
	// *xmlerr.Error (its own doc comment notes this mirrors the Rust
	// original's next()-panics-to-Result boundary); this is the one place
	// that boundary is crossed back into an ordinary error return.
	defer func() {
		if r := recover(); r != nil {
			if xerr, ok := r.(*xmlerr.Error); ok {
				err = xerr
				return
			}
			panic(r)
		}
	}()

	cur := xmlcursor.New(src)
	// A decoder Source always leads with a synthesized StartDocument
	// event (spec §3.4); a hand-assembled or re-collected vector (as
	// EncodeToEvents and ParseFragment produce) typically does not, so
	// this consumes one only when it is actually there.
	if cur.Peek().Kind == xmlevent.StartDocument {
		cur.Next()
	} else {
		cur.ResetPeek()
	}

	d := xmldecode.New(cur)
	if cfg.logger != nil {
		cfg.logger.Debug("xmlserde: decode starting")
	}
	return xmlreflect.Decode(d, v)
}
