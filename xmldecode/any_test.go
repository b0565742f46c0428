package xmldecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnyDecodesBareText(t *testing.T) {
	d := newScalarDecoder(t, `<v>hi</v>`)
	val, err := d.Any()
	require.NoError(t, err)
	assert.Equal(t, "hi", val)
}

func TestAnyDecodesRecordWithAttributeAndChildren(t *testing.T) {
	d := newScalarDecoder(t, `<v attr="1"><a>1</a><b>2</b></v>`)
	val, err := d.Any()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"$attr:attr": "1",
		"a":          "1",
		"b":          "2",
	}, val)
}

func TestAnyDetectsImplicitSequenceOfRepeatedSiblings(t *testing.T) {
	d := newScalarDecoder(t, `<v><item>1</item><item>2</item><item>3</item></v>`)
	val, err := d.Any()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"item": []any{"1", "2", "3"},
	}, val)
}

func TestAnyDoesNotTreatSingleChildAsSequence(t *testing.T) {
	d := newScalarDecoder(t, `<v><item>1</item></v>`)
	val, err := d.Any()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"item": "1"}, val)
}
