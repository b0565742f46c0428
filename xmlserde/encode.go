package xmlserde

import (
	"bytes"
	"io"

	"github.com/corvantis/xmlserde/xmlencode"
	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmlevent"
	"github.com/corvantis/xmlserde/xmlreflect"
)

// EncodeToString serializes v (a struct, or a type implementing
// xmlencode.Encodable) to a string (spec §6.2's encode_to_string /
// encode_to_string_with). The root element's name comes from an XMLName
// sentinel field on v's type if one is declared, otherwise from the Go
// type's own name, lowercased (see DESIGN.md).
func EncodeToString(v any, opts ...EncodeOption) (string, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, v, opts...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EncodeToEvents serializes v into a flat Event sequence instead of bytes,
// for a caller that wants to inspect or further transform the output
// before handing it to its own emitter (spec §6.2's encode_to_events).
func EncodeToEvents(v any, opts ...EncodeOption) ([]xmlevent.Event, error) {
	s, err := EncodeToString(v, opts...)
	if err != nil {
		return nil, err
	}
	return xmlevent.ParseFragment(s)
}

// EncodeTo writes v's serialized form directly to w.
func EncodeTo(w io.Writer, v any, opts ...EncodeOption) error {
	cfg := buildEncodeConfig(opts)

	qn, ok := xmlreflect.RootName(v)
	if !ok {
		return xmlerr.New(xmlerr.Unsupported, "xmlserde: v has no usable root element name")
	}

	writer := xmlevent.NewWriter(w, cfg.writerOpts)
	if err := writer.Write(xmlevent.Event{Kind: xmlevent.StartDocument}); err != nil {
		return xmlerr.Wrap(xmlerr.EmitterError, err)
	}

	e := xmlencode.New(writer)
	if cfg.logger != nil {
		cfg.logger.Debug("xmlserde: encode starting", "root", qn.Synthetic())
	}
	return xmlreflect.Encode(e, qn, v)
}
