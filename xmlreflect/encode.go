package xmlreflect

import (
	"reflect"

	"github.com/corvantis/xmlserde/xmlencode"
	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmltag"
)

// Encode writes src (a struct, or any value implementing xmlencode.Encodable)
// wrapped in the element named qn. qn is supplied by the caller rather than
// read off src itself — unlike the original, where the destination type's
// single top-level field carried the root element's own rename string (see
// DESIGN.md's "top-level destination shape" note), a plain Go struct here
// has no such field, so the root name is an explicit parameter instead of
// an implicit convention.
//
// A value implementing Encodable (notably Enum, whose EncodeXML writes its
// own variant tag as a child of qn) is deferred to directly, exactly as
// decodeValue defers to Decodable before falling back to reflection — even
// when its underlying kind is a struct, since Enum is typically modeled as
// one.
func Encode(e *xmlencode.Encoder, qn xmltag.QName, src any) error {
	rv := reflect.ValueOf(src)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return xmlerr.New(xmlerr.Unsupported, "xmlreflect: Encode requires a non-nil value")
		}
		rv = rv.Elem()
	}
	if !isEncodable(rv) && rv.Kind() == reflect.Struct {
		return encodeStruct(e, qn, rv)
	}
	return e.Record(qn, func(r *xmlencode.RecordWriter) error {
		return r.Value(func(e *xmlencode.Encoder) error { return encodeFieldValue(e, rv) })
	})
}

// encodeFieldValue writes rv's content into e directly, with no wrapping
// element of its own — the caller already owns that (an enclosing
// RecordWriter's Element/Value call, or a NestedRecord's Value call). A
// type implementing xmlencode.Encodable (notably Enum, via its own
// EncodeXML wrapping EncodeEnum) is given full control here, exactly as
// xmlreflect.decodeValue defers to Decodable before falling back to
// reflection.
func encodeFieldValue(e *xmlencode.Encoder, rv reflect.Value) error {
	if rv.CanAddr() {
		if enc, ok := rv.Addr().Interface().(xmlencode.Encodable); ok {
			return enc.EncodeXML(e)
		}
	}
	if rv.CanInterface() {
		if enc, ok := rv.Interface().(xmlencode.Encodable); ok {
			return enc.EncodeXML(e)
		}
	}

	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return encodeFieldValue(e, rv.Elem())
	case reflect.Struct:
		return xmlerr.New(xmlerr.Unsupported, "xmlreflect: a nested struct needs its own RecordWriter (NestedRecord), not a flattened value")
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return e.String(string(rv.Bytes()))
		}
		return xmlerr.New(xmlerr.Unsupported, "xmlreflect: a sequence field must be encoded by its enclosing record, not flattened")
	default:
		return encodeScalar(e, rv)
	}
}

func encodeScalar(e *xmlencode.Encoder, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.String:
		return e.String(rv.String())
	case reflect.Bool:
		return e.Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return e.Uint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return e.Float(rv.Float(), rv.Type().Bits())
	default:
		return xmlerr.Newf(xmlerr.Unsupported, "xmlreflect: unsupported scalar kind %s", rv.Kind())
	}
}

// EncodeInto writes src's fields (src must be a struct, or a pointer to
// one) directly into e, with no wrapping element of its own — for a type
// whose Encodable.EncodeXML is invoked as an Enum variant payload, where
// the wrapping tag was already opened by EncodeEnum itself.
func EncodeInto(e *xmlencode.Encoder, src any) error {
	rv := reflect.ValueOf(src)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return xmlerr.New(xmlerr.Unsupported, "xmlreflect: EncodeInto requires a non-nil value")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return xmlerr.New(xmlerr.Unsupported, "xmlreflect: EncodeInto requires a struct")
	}
	return encodeStructInto(e.ExistingRecord(), rv)
}

// encodeStruct writes rv (a struct) wrapped in its own element named qn:
// attribute-tagged fields go on the opening tag, then element/value-sink
// fields follow in declared order.
func encodeStruct(e *xmlencode.Encoder, qn xmltag.QName, rv reflect.Value) error {
	return e.Record(qn, func(r *xmlencode.RecordWriter) error {
		return encodeStructInto(r, rv)
	})
}

func encodeStructInto(r *xmlencode.RecordWriter, rv reflect.Value) error {
	info := infoFor(rv.Type())

	for _, name := range info.declared {
		desc := xmltag.Parse(name)
		if !desc.IsAttribute {
			continue
		}
		if err := encodeAttrField(r, desc, rv.Field(info.byDeclared[name])); err != nil {
			return err
		}
	}
	for _, name := range info.declared {
		desc := xmltag.Parse(name)
		if desc.IsAttribute {
			continue
		}
		if err := encodeElementField(r, desc, rv.Field(info.byDeclared[name])); err != nil {
			return err
		}
	}
	return nil
}

func encodeAttrField(r *xmlencode.RecordWriter, desc xmltag.Descriptor, fv reflect.Value) error {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	return r.AttrString(desc.QName(), func(e *xmlencode.Encoder) error {
		return encodeScalar(e, fv)
	})
}

// encodeElementField writes fv as r's next non-attribute field: a value
// sink contributes directly to r's own element, a slice repeats its
// element name once per item, a nil pointer writes nothing, a nested
// struct opens its own NestedRecord (so its attributes can still precede
// its own children), and everything else gets an ordinary wrapping
// element.
func encodeElementField(r *xmlencode.RecordWriter, desc xmltag.Descriptor, fv reflect.Value) error {
	if desc.IsValueSink {
		return r.Value(func(e *xmlencode.Encoder) error {
			if desc.IsRaw {
				s, err := fieldAsString(fv)
				if err != nil {
					return err
				}
				return e.RawXML(s)
			}
			return encodeFieldValue(e, fv)
		})
	}

	if fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() != reflect.Uint8 {
		for i := 0; i < fv.Len(); i++ {
			item := fv.Index(i)
			if err := encodeSingleElement(r, desc, item); err != nil {
				return err
			}
		}
		return nil
	}

	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}

	return encodeSingleElement(r, desc, fv)
}

// encodeSingleElement writes one element-shaped value: a struct (not
// otherwise Encodable) gets its own deferred-open NestedRecord so its own
// attribute fields still land on its opening tag; anything else — a
// scalar, or a type implementing Encodable (e.g. an Enum field, whose
// EncodeXML writes its own variant-tag wrapper one level deeper) — goes
// through the ordinary immediately-opened Element wrapper.
func encodeSingleElement(r *xmlencode.RecordWriter, desc xmltag.Descriptor, fv reflect.Value) error {
	if isEncodable(fv) {
		return r.Element(desc.QName(), func(e *xmlencode.Encoder) error {
			return encodeFieldValue(e, fv)
		})
	}
	if fv.Kind() == reflect.Struct {
		return r.NestedRecord(desc.QName(), func(nr *xmlencode.RecordWriter) error {
			return encodeStructInto(nr, fv)
		})
	}
	return r.Element(desc.QName(), func(e *xmlencode.Encoder) error {
		return encodeFieldValue(e, fv)
	})
}

func isEncodable(rv reflect.Value) bool {
	if rv.CanAddr() {
		if _, ok := rv.Addr().Interface().(xmlencode.Encodable); ok {
			return true
		}
	}
	if rv.CanInterface() {
		if _, ok := rv.Interface().(xmlencode.Encodable); ok {
			return true
		}
	}
	return false
}

func fieldAsString(fv reflect.Value) (string, error) {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return "", nil
		}
		fv = fv.Elem()
	}
	if fv.Kind() != reflect.String {
		return "", xmlerr.New(xmlerr.Unsupported, "xmlreflect: $valueRaw field must be a string")
	}
	return fv.String(), nil
}
