package xmlencode

import (
	"bytes"
	"testing"

	"github.com/corvantis/xmlserde/xmlevent"
	"github.com/corvantis/xmlserde/xmltag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncoder(buf *bytes.Buffer) *Encoder {
	w := xmlevent.NewWriter(buf, xmlevent.WriterOptions{NormalizeEmptyElements: true})
	return New(w)
}

func qn(local string) xmltag.QName { return xmltag.QName{Local: local} }

func TestRecordWithAttributeAndChildElement(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEncoder(&buf)

	err := e.Record(qn("person"), func(r *RecordWriter) error {
		r.Attr(qn("id"), "42")
		return r.Element(qn("name"), func(e *Encoder) error {
			return e.String("Ann")
		})
	})
	require.NoError(t, err)
	assert.Equal(t, `<person id="42"><name>Ann</name></person>`, buf.String())
}

func TestRecordWithNoChildrenSelfCloses(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEncoder(&buf)

	err := e.Record(qn("empty"), func(r *RecordWriter) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, `<empty/>`, buf.String())
}

func TestValueSinkWritesDirectlyIntoEnclosingElement(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEncoder(&buf)

	err := e.Record(qn("note"), func(r *RecordWriter) error {
		return r.Value(func(e *Encoder) error {
			return e.String("hello world")
		})
	})
	require.NoError(t, err)
	assert.Equal(t, `<note>hello world</note>`, buf.String())
}

func TestSliceFieldRepeatsElementName(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEncoder(&buf)

	tags := []string{"admin", "owner"}
	err := e.Record(qn("person"), func(r *RecordWriter) error {
		for _, tg := range tags {
			tg := tg
			if err := r.Element(qn("tag"), func(e *Encoder) error { return e.String(tg) }); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, `<person><tag>admin</tag><tag>owner</tag></person>`, buf.String())
}

func TestRawXMLReStreamsVerbatim(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEncoder(&buf)

	err := e.Record(qn("wrapper"), func(r *RecordWriter) error {
		return r.Value(func(e *Encoder) error {
			return e.RawXML(`<foo attr="1"><bar/></foo>`)
		})
	})
	require.NoError(t, err)
	assert.Equal(t, `<wrapper><foo attr="1"><bar/></foo></wrapper>`, buf.String())
}

type shapeVariant struct {
	tag     string
	payload any
}

func (s *shapeVariant) XMLVariant() (string, any)             { return s.tag, s.payload }
func (s *shapeVariant) XMLSetVariant(tag string) (any, error) { return nil, nil }

func TestEncodeEnumUnitVariant(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEncoder(&buf)

	v := &shapeVariant{tag: "circle"}
	err := e.EncodeEnum(v, func(*Encoder, any) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, `<circle/>`, buf.String())
}

func TestEncodeEnumPayloadVariant(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEncoder(&buf)

	v := &shapeVariant{tag: "circle", payload: "radius=3"}
	err := e.EncodeEnum(v, func(e *Encoder, payload any) error {
		return e.String(payload.(string))
	})
	require.NoError(t, err)
	assert.Equal(t, `<circle>radius=3</circle>`, buf.String())
}
