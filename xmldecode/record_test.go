package xmldecode

import (
	"testing"

	"github.com/corvantis/xmlserde/xmlcursor"
	"github.com/corvantis/xmlserde/xmlfield"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWalksAttributeThenChildElement(t *testing.T) {
	cur := xmlcursor.New(sourceFor(t, `<person id="7"><name>Ann</name></person>`))
	d := New(cur)
	d.setMapValue()
	table := xmlfield.Build([]string{"$attr:id", "name"})

	got := map[string]string{}
	err := d.Record(table, func(name string, f *RecordField) error {
		return f.Decode(func(d *Decoder) error {
			s, err := d.String()
			if err != nil {
				return err
			}
			got[name] = s
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"$attr:id": "7", "name": "Ann"}, got)
}

func TestRecordValueSinkReadsBareText(t *testing.T) {
	cur := xmlcursor.New(sourceFor(t, `<note>hello world</note>`))
	d := New(cur)
	d.setMapValue()
	table := xmlfield.Build([]string{"$value"})

	got := map[string]string{}
	err := d.Record(table, func(name string, f *RecordField) error {
		return f.Decode(func(d *Decoder) error {
			s, err := d.String()
			if err != nil {
				return err
			}
			got[name] = s
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"$value": "hello world"}, got)
}

func TestRecordUnknownChildSynthesizesName(t *testing.T) {
	cur := xmlcursor.New(sourceFor(t, `<box><mystery>1</mystery></box>`))
	d := New(cur)
	d.setMapValue()
	table := xmlfield.Build(nil)

	var seen string
	err := d.Record(table, func(name string, f *RecordField) error {
		seen = name
		return f.Ignore()
	})
	require.NoError(t, err)
	assert.Equal(t, "mystery", seen)
}
