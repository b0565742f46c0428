package xmldecode

import (
	"testing"

	"github.com/corvantis/xmlserde/xmlcursor"
	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmlfield"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type circlePayload struct{ Radius int64 }

func (c *circlePayload) DecodeXML(d *Decoder) error {
	r, err := d.Int(64)
	if err != nil {
		return err
	}
	c.Radius = r
	return nil
}

type shapeEnum struct {
	kind    string
	payload any
}

func (s *shapeEnum) XMLVariant() (string, any) { return s.kind, s.payload }

func (s *shapeEnum) XMLSetVariant(tag string) (any, error) {
	s.kind = tag
	switch tag {
	case "circle":
		s.payload = &circlePayload{}
		return s.payload, nil
	case "square":
		s.payload = nil
		return nil, nil
	default:
		return nil, xmlerr.Newf(xmlerr.Unsupported, "unknown variant %q", tag)
	}
}

func TestDecodeEnumUnitVariant(t *testing.T) {
	cur := xmlcursor.New(sourceFor(t, `<shape><square></square></shape>`))
	d := New(cur)
	d.setMapValue()
	table := xmlfield.Build([]string{"circle", "square"})

	s := &shapeEnum{}
	require.NoError(t, d.DecodeEnum(table, s))
	assert.Equal(t, "square", s.kind)
	assert.Nil(t, s.payload)
}

func TestDecodeEnumPayloadVariant(t *testing.T) {
	cur := xmlcursor.New(sourceFor(t, `<shape><circle>5</circle></shape>`))
	d := New(cur)
	d.setMapValue()
	table := xmlfield.Build([]string{"circle", "square"})

	s := &shapeEnum{}
	require.NoError(t, d.DecodeEnum(table, s))
	assert.Equal(t, "circle", s.kind)
	assert.Equal(t, int64(5), s.payload.(*circlePayload).Radius)
}

func TestDecodeEnumBareTextNamesVariant(t *testing.T) {
	cur := xmlcursor.New(sourceFor(t, `<shape>square</shape>`))
	d := New(cur)
	d.setMapValue()
	table := xmlfield.Build([]string{"circle", "square"})

	s := &shapeEnum{}
	require.NoError(t, d.DecodeEnum(table, s))
	assert.Equal(t, "square", s.kind)
}

func TestDecodeEnumFromAttributeValue(t *testing.T) {
	d := newAttrValueDecoder("square")
	table := xmlfield.Build([]string{"circle", "square"})

	s := &shapeEnum{}
	require.NoError(t, d.DecodeEnum(table, s))
	assert.Equal(t, "square", s.kind)
}
