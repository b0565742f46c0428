package xmlevent

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// WriterOptions configures a Writer's emission, matching spec.md §4.5's
// pull-emitter configuration knobs (the Rust original's EmitterConfig).
type WriterOptions struct {
	// Pretty enables newline + Indent-unit indentation between elements.
	Pretty bool
	// Indent is the per-depth indentation unit used when Pretty is set.
	// Defaults to two spaces if empty.
	Indent string
	// WriteDocumentDeclaration writes "<?xml version=\"1.0\"
	// encoding=\"UTF-8\"?>" for the stream's StartDocument event.
	WriteDocumentDeclaration bool
	// NormalizeEmptyElements writes "<x/>" for elements with no content
	// when true; false always emits the explicit "<x></x>" open/close
	// pair. xmlserde's encode options leave it false unless
	// NormalizeEmptyElements() is given.
	NormalizeEmptyElements bool
	// PadSelfClosing inserts a space before "/>" ("<x />") when self-
	// closing an empty element.
	PadSelfClosing bool
	// CDATAToCharacters demotes CData-kind events to plain escaped text.
	CDATAToCharacters bool
}

func (o WriterOptions) indentUnit() string {
	if o.Indent != "" {
		return o.Indent
	}
	return "  "
}

type openFrame struct {
	pendingClose bool // '>' not yet written
	hasContent   bool
	hasChildElem bool
	tagName      string            // rendered element name, remembered for EndElement
	declared     map[string]string // namespace URI -> prefix declared at this element
}

// Writer drives Events onto an io.Writer one at a time, deferring each
// StartElement's closing '>' until it knows whether the element turns out
// to be empty, so childless elements self-close — adapted from a
// tree-based encodeNode, restructured for a flat Event stream instead of a
// fully materialized tree since the serializing driver has no lookahead
// over the whole document.
type Writer struct {
	w        io.Writer
	opts     WriterOptions
	stack    []*openFrame
	depth    int
	err      error
	nsSerial int
}

// NewWriter builds a Writer over w.
func NewWriter(w io.Writer, opts WriterOptions) *Writer {
	return &Writer{w: w, opts: opts}
}

// Write consumes one Event, emitting bytes as needed.
func (wr *Writer) Write(e Event) error {
	if wr.err != nil {
		return wr.err
	}
	if err := wr.write(e); err != nil {
		wr.err = err
	}
	return wr.err
}

func (wr *Writer) write(e Event) error {
	switch e.Kind {
	case StartDocument:
		if wr.opts.WriteDocumentDeclaration {
			fmt.Fprint(wr.w, `<?xml version="1.0" encoding="UTF-8"?>`)
			if wr.opts.Pretty {
				fmt.Fprint(wr.w, "\n")
			}
		}
		return nil
	case EndDocument:
		return nil
	case StartElement:
		wr.closeParentIfPending()
		wr.writeIndentForElement()

		pending := map[string]string{}
		lookup := func(uri string) (string, bool) {
			if p, ok := pending[uri]; ok {
				return p, true
			}
			return wr.resolvePrefix(uri)
		}

		tagName := e.Name.Local
		if e.Name.HasNS {
			prefix, ok := lookup(e.Name.Namespace)
			if !ok {
				prefix = wr.allocPrefix()
				pending[e.Name.Namespace] = prefix
			}
			tagName = prefix + ":" + e.Name.Local
		}

		attrNames := make([]string, len(e.Attrs))
		for i, a := range e.Attrs {
			name := a.Name.Local
			if a.Name.HasNS {
				prefix, ok := lookup(a.Name.Namespace)
				if !ok {
					prefix = wr.allocPrefix()
					pending[a.Name.Namespace] = prefix
				}
				name = prefix + ":" + a.Name.Local
			}
			attrNames[i] = name
		}

		fmt.Fprint(wr.w, "<"+tagName)
		for _, decl := range sortedDecls(pending) {
			fmt.Fprintf(wr.w, ` xmlns:%s="%s"`, decl.prefix, escapeAttr(decl.uri))
		}
		for i, a := range e.Attrs {
			fmt.Fprintf(wr.w, ` %s="%s"`, attrNames[i], escapeAttr(a.Value))
		}

		wr.markParentHasChild()
		wr.stack = append(wr.stack, &openFrame{pendingClose: true, tagName: tagName, declared: pending})
		wr.depth++
		return nil
	case EndElement:
		if len(wr.stack) == 0 {
			return fmt.Errorf("xmlevent: unmatched EndElement %s", e.Name.Synthetic())
		}
		wr.depth--
		frame := wr.stack[len(wr.stack)-1]
		wr.stack = wr.stack[:len(wr.stack)-1]
		if frame.pendingClose {
			if wr.opts.NormalizeEmptyElements {
				if wr.opts.PadSelfClosing {
					fmt.Fprint(wr.w, " />")
				} else {
					fmt.Fprint(wr.w, "/>")
				}
			} else {
				fmt.Fprint(wr.w, ">")
				fmt.Fprint(wr.w, "</"+frame.tagName+">")
			}
			return nil
		}
		if frame.hasChildElem && wr.opts.Pretty {
			wr.writeIndentAtDepth(wr.depth)
		}
		fmt.Fprint(wr.w, "</"+frame.tagName+">")
		return nil
	case Characters:
		wr.closeParentIfPending()
		wr.markParentHasText()
		fmt.Fprint(wr.w, escapeText(e.Text))
		return nil
	case CData:
		wr.closeParentIfPending()
		wr.markParentHasText()
		if wr.opts.CDATAToCharacters {
			fmt.Fprint(wr.w, escapeText(e.Text))
			return nil
		}
		fmt.Fprint(wr.w, "<![CDATA[", e.Text, "]]>")
		return nil
	case Comment:
		wr.closeParentIfPending()
		wr.markParentHasText()
		fmt.Fprint(wr.w, "<!--", e.Text, "-->")
		return nil
	case ProcessingInstruction:
		wr.closeParentIfPending()
		wr.markParentHasText()
		fmt.Fprintf(wr.w, "<?%s %s?>", e.Target, e.Inst)
		return nil
	}
	return nil
}

// resolvePrefix searches the open-element stack, innermost first, for a
// namespace prefix already in scope for uri.
func (wr *Writer) resolvePrefix(uri string) (string, bool) {
	for i := len(wr.stack) - 1; i >= 0; i-- {
		if p, ok := wr.stack[i].declared[uri]; ok {
			return p, true
		}
	}
	return "", false
}

func (wr *Writer) allocPrefix() string {
	p := fmt.Sprintf("ns%d", wr.nsSerial)
	wr.nsSerial++
	return p
}

type nsDecl struct {
	uri    string
	prefix string
}

// sortedDecls orders declarations by prefix so output is deterministic
// regardless of map iteration order.
func sortedDecls(m map[string]string) []nsDecl {
	out := make([]nsDecl, 0, len(m))
	for uri, prefix := range m {
		out = append(out, nsDecl{uri: uri, prefix: prefix})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].prefix < out[j].prefix })
	return out
}

func (wr *Writer) closeParentIfPending() {
	if len(wr.stack) == 0 {
		return
	}
	top := wr.stack[len(wr.stack)-1]
	if top.pendingClose {
		fmt.Fprint(wr.w, ">")
		top.pendingClose = false
	}
}

func (wr *Writer) markParentHasChild() {
	if len(wr.stack) == 0 {
		return
	}
	top := wr.stack[len(wr.stack)-1]
	top.hasContent = true
	top.hasChildElem = true
}

func (wr *Writer) markParentHasText() {
	if len(wr.stack) == 0 {
		return
	}
	wr.stack[len(wr.stack)-1].hasContent = true
}

func (wr *Writer) writeIndentForElement() {
	if !wr.opts.Pretty {
		return
	}
	// The root element gets no leading blank line beyond the declaration;
	// every nested element gets a newline + depth indentation.
	if wr.depth == 0 {
		return
	}
	wr.writeIndentAtDepth(wr.depth)
}

func (wr *Writer) writeIndentAtDepth(depth int) {
	fmt.Fprint(wr.w, "\n"+strings.Repeat(wr.opts.indentUnit(), depth))
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
