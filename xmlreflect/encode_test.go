package xmlreflect

import (
	"bytes"
	"testing"

	"github.com/corvantis/xmlserde/xmlencode"
	"github.com/corvantis/xmlserde/xmlevent"
	"github.com/corvantis/xmlserde/xmltag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncoder(buf *bytes.Buffer) *xmlencode.Encoder {
	w := xmlevent.NewWriter(buf, xmlevent.WriterOptions{NormalizeEmptyElements: true})
	return xmlencode.New(w)
}

func TestEncodeStructWithAttrChildrenAndSlice(t *testing.T) {
	p := Person{
		ID:   "42",
		Name: "Ann",
		Age:  30,
		Tags: []string{"admin", "owner"},
		Address: Address{
			City: "Metropolis",
			Zip:  "10101",
		},
	}

	var buf bytes.Buffer
	e := newTestEncoder(&buf)
	require.NoError(t, Encode(e, xmltag.QName{Local: "person"}, &p))

	assert.Equal(t,
		`<person id="42"><name>Ann</name><age>30</age><tag>admin</tag><tag>owner</tag>`+
			`<address><city>Metropolis</city><zip>10101</zip></address></person>`,
		buf.String())
}

func TestEncodeOmitsAbsentPointerField(t *testing.T) {
	p := Person{ID: "1", Name: "Ann", Age: 30, Address: Address{City: "X", Zip: "1"}}

	var buf bytes.Buffer
	e := newTestEncoder(&buf)
	require.NoError(t, Encode(e, xmltag.QName{Local: "person"}, &p))

	assert.NotContains(t, buf.String(), "<bio>")
}

func TestEncodeHonorsEncodableEscapeHatch(t *testing.T) {
	w := Wrapper{Raw: rawValue{text: "verbatim"}}

	var buf bytes.Buffer
	e := newTestEncoder(&buf)
	require.NoError(t, Encode(e, xmltag.QName{Local: "wrapper"}, &w))

	assert.Equal(t, `<wrapper><raw>verbatim</raw></wrapper>`, buf.String())
}
