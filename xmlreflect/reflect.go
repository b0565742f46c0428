// Package xmlreflect is the struct-tag-driven default implementation of
// xmldecode.Decodable/xmlencode.Encodable, built at call time with reflect
// instead of requiring a hand-written Decodable/Encodable per type.
//
// A field's declared name comes straight from its "xml" struct tag, using
// xmltag's own rename grammar (xmltag.Parse) rather than encoding/xml's
// comma-option tag dialect: "$attr:id" marks an attribute, "$value"/
// "$valueN"/"$valueRaw" mark a value sink, "{uri}local" marks a namespace.
// A field with no tag falls back to its Go field name; a tag of "-" skips
// the field entirely.
package xmlreflect

import (
	"reflect"
	"strings"
	"sync"

	"github.com/corvantis/xmlserde/xmldecode"
	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmlfield"
	"github.com/corvantis/xmlserde/xmltag"
)

const tagKey = "xml"

// rootNameField is a reserved field name (mirroring encoding/xml's
// "XMLName" sentinel): a struct with a field of this name uses its "xml"
// tag as the document's root element name, instead of a name derived from
// the Go type itself. The field's own type is irrelevant and never
// populated or read beyond its tag — unlike encoding/xml's xml.Name, no
// value round-trips through it.
const rootNameField = "XMLName"

// typeInfo is the cached, per-struct-type result of walking its fields
// once (mirrors xmlfield's own interning philosophy one layer up).
type typeInfo struct {
	declared   []string
	byDeclared map[string]int // declared name -> struct field index
}

var typeCache sync.Map // reflect.Type -> *typeInfo

func infoFor(t reflect.Type) *typeInfo {
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeInfo)
	}
	info := buildTypeInfo(t)
	actual, _ := typeCache.LoadOrStore(t, info)
	return actual.(*typeInfo)
}

func buildTypeInfo(t reflect.Type) *typeInfo {
	info := &typeInfo{byDeclared: map[string]int{}}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		if f.Name == rootNameField {
			continue // reserved for RootName, not an ordinary data field
		}
		tag, ok := f.Tag.Lookup(tagKey)
		if ok && tag == "-" {
			continue
		}
		declared := f.Name
		if ok && tag != "" {
			declared = tag
		}
		info.declared = append(info.declared, declared)
		info.byDeclared[declared] = i
	}
	return info
}

// RootName reports the root element name xmlserde's facade should use for
// v: the "xml" tag on a reserved XMLName field if v's (dereferenced) type
// declares one, otherwise a synthesized no-namespace name from the Go type
// name itself, lowercased. The second return is false only when neither
// is available (v is not ultimately a struct).
func RootName(v any) (xmltag.QName, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			rv = reflect.Zero(rv.Type().Elem())
		} else {
			rv = rv.Elem()
		}
	}
	if rv.Kind() != reflect.Struct {
		return xmltag.QName{}, false
	}
	t := rv.Type()
	if f, ok := t.FieldByName(rootNameField); ok {
		if tag, ok := f.Tag.Lookup(tagKey); ok && tag != "" {
			return xmltag.Parse(tag).QName(), true
		}
	}
	return xmltag.QName{Local: strings.ToLower(t.Name())}, true
}

// table returns the interned Field Table for t, keyed by t itself (spec
// §5's "Go analogue of pointer identity" scheme).
func table(t reflect.Type) *xmlfield.Table {
	info := infoFor(t)
	return xmlfield.InternByType(t, info.declared)
}

// Decode populates dst (a non-nil pointer) by walking d with the default,
// struct-tag-driven dispatch. xmlserde's facade calls it for every decode.
// When dst itself implements xmldecode.Decodable, its DecodeXML is called
// instead of the struct-tag walk (so a DecodeXML that passes its own
// receiver to Decode calls itself again).
func Decode(d *xmldecode.Decoder, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return xmlerr.New(xmlerr.Unsupported, "xmlreflect: Decode requires a non-nil pointer")
	}
	return decodeValue(d, rv.Elem())
}

func decodeValue(d *xmldecode.Decoder, rv reflect.Value) error {
	if rv.CanAddr() {
		if dec, ok := rv.Addr().Interface().(xmldecode.Decodable); ok {
			return dec.DecodeXML(d)
		}
	}

	switch rv.Kind() {
	case reflect.Ptr:
		return decodePtr(d, rv)
	case reflect.Slice:
		return decodeSlice(d, rv)
	case reflect.Struct:
		return decodeStruct(d, rv)
	case reflect.String:
		s, err := d.String()
		if err != nil {
			return err
		}
		rv.SetString(s)
		return nil
	case reflect.Bool:
		b, err := d.Bool()
		if err != nil {
			return err
		}
		rv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := d.Int(rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := d.Uint(rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := d.Float(rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetFloat(f)
		return nil
	default:
		return xmlerr.Newf(xmlerr.Unsupported, "xmlreflect: unsupported field kind %s", rv.Kind())
	}
}

func decodePtr(d *xmldecode.Decoder, rv reflect.Value) error {
	present, err := d.Option()
	if err != nil {
		return err
	}
	if !present {
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}
	if rv.IsNil() {
		rv.Set(reflect.New(rv.Type().Elem()))
	}
	return decodeValue(d, rv.Elem())
}

func decodeSlice(d *xmldecode.Decoder, rv reflect.Value) error {
	elemType := rv.Type().Elem()
	// Byte slices are treated as plain text content (base64 is a domain
	// concern of the destination type, not this package's).
	if elemType.Kind() == reflect.Uint8 {
		s, err := d.String()
		if err != nil {
			return err
		}
		rv.SetBytes([]byte(s))
		return nil
	}
	rv.Set(reflect.MakeSlice(rv.Type(), 0, 0))
	return d.DecodeSeq(func(s *xmldecode.SeqReader) error {
		for {
			item := reflect.New(elemType).Elem()
			more, err := s.Next(func(d *xmldecode.Decoder) error {
				return decodeValue(d, item)
			})
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
			rv.Set(reflect.Append(rv, item))
		}
	})
}

func decodeStruct(d *xmldecode.Decoder, rv reflect.Value) error {
	t := rv.Type()
	info := infoFor(t)
	tbl := table(t)
	return d.Record(tbl, func(name string, f *xmldecode.RecordField) error {
		idx, ok := info.byDeclared[name]
		if !ok {
			return f.Ignore()
		}
		fv := rv.Field(idx)
		return f.Decode(func(d *xmldecode.Decoder) error {
			return decodeValue(d, fv)
		})
	})
}
