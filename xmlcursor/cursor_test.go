package xmlcursor

import (
	"testing"

	"github.com/corvantis/xmlserde/xmlevent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceFor(t *testing.T, xmlStr string) xmlevent.Source {
	t.Helper()
	events, err := xmlevent.ParseFragment(xmlStr)
	require.NoError(t, err)
	return xmlevent.NewSliceSource(events)
}

func TestPeekDoesNotConsume(t *testing.T) {
	c := New(sourceFor(t, `<a><b/></a>`))
	first := c.Peek()
	second := c.Peek()
	assert.Equal(t, xmlevent.StartElement, first.Kind)
	assert.Equal(t, "b", second.Name.Local)
	// Nothing consumed yet: Next() still returns the outer <a> open tag.
	next := c.Next()
	assert.Equal(t, "a", next.Name.Local)
}

func TestResetPeekRewinds(t *testing.T) {
	c := New(sourceFor(t, `<a><b/></a>`))
	c.Peek()
	c.Peek()
	c.ResetPeek()
	first := c.Peek()
	assert.Equal(t, "a", first.Name.Local)
}

func TestPastEndOfStreamReturnsEndDocumentForever(t *testing.T) {
	c := New(sourceFor(t, `<a/>`))
	c.Next() // <a>
	c.Next() // </a>
	assert.Equal(t, xmlevent.EndDocument, c.Next().Kind)
	assert.Equal(t, xmlevent.EndDocument, c.Peek().Kind)
	assert.Equal(t, xmlevent.EndDocument, c.Next().Kind)
}

func TestDepthTracking(t *testing.T) {
	c := New(sourceFor(t, `<a><b><c/></b></a>`))
	assert.Equal(t, 0, c.Depth())
	c.Next() // <a>
	assert.Equal(t, 1, c.Depth())
	c.Next() // <b>
	assert.Equal(t, 2, c.Depth())
	c.Next() // <c>
	assert.Equal(t, 3, c.Depth())
	c.Next() // </c>
	assert.Equal(t, 2, c.Depth())
}

func TestSkipSubtreeConsumesNestedElementWhole(t *testing.T) {
	c := New(sourceFor(t, `<root><skip><inner/></skip><next/></root>`))
	c.Next() // <root>
	c.SkipSubtree()
	after := c.Next()
	assert.Equal(t, "next", after.Name.Local)
}

func TestSkipSubtreeLeavesDepthUnchanged(t *testing.T) {
	c := New(sourceFor(t, `<root><a><b/></a></root>`))
	c.Next() // <root>
	before := c.Depth()
	c.SkipSubtree()
	assert.Equal(t, before, c.Depth())
}

func TestSkipSubtreeOfLastChildLeavesParentEndElement(t *testing.T) {
	c := New(sourceFor(t, `<root><only/></root>`))
	c.Next() // <root>
	c.SkipSubtree()
	after := c.Next()
	assert.Equal(t, xmlevent.EndElement, after.Kind)
	assert.Equal(t, "root", after.Name.Local)
}
