// Package xmltag parses the field-rename mini-language described in
// spec.md §6.3 into a structured descriptor. It is a pure, side-effect
// free function package — the "Tag Parser" component of the design.
package xmltag

import "strings"

const (
	attrPrefix     = "$attr:"
	valuePrefix    = "$value"
	valueRawSuffix = "Raw"
)

// Descriptor is the parsed form of one declared rename string.
//
// Declared holds the original string as given (including any "$attr:"
// prefix), exactly as spec.md §3.2 requires so it can be handed back out
// as a declared name by the Field Table.
type Descriptor struct {
	Declared    string
	Namespace   string // "" if unqualified
	HasNS       bool
	Prefix      string // "" if none given
	Local       string
	IsAttribute bool
	// IsValueSink is true for "$value", "$valueN" (N>=1), and "$valueRaw".
	IsValueSink bool
	// IsRaw is true only for "$valueRaw": on encode, the field's string
	// content is re-streamed as literal XML rather than escaped text.
	IsRaw bool
}

// Parse parses one rename string. Parse is total over well-formed
// declarations; a malformed declaration (e.g. an unmatched '{') is a
// programmer fault and panics, matching spec.md §4.1 ("fail loudly at
// table-build time").
func Parse(declared string) Descriptor {
	d := Descriptor{Declared: declared}

	rest := declared
	if strings.HasPrefix(rest, attrPrefix) {
		d.IsAttribute = true
		rest = strings.TrimPrefix(rest, attrPrefix)
	}

	if strings.HasPrefix(rest, valuePrefix) {
		d.IsValueSink = true
		if rest == valuePrefix+valueRawSuffix {
			d.IsRaw = true
		}
		d.Local = rest
		return d
	}

	if strings.HasPrefix(rest, "{") {
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			panic("xmltag: malformed rename string, unmatched '{': " + declared)
		}
		d.Namespace = rest[1:end]
		d.HasNS = true
		rest = rest[end+1:]
	}

	if idx := strings.LastIndexByte(rest, ':'); idx >= 0 {
		d.Prefix = rest[:idx]
		d.Local = rest[idx+1:]
	} else {
		d.Local = rest
	}

	if d.Local == "" {
		panic("xmltag: malformed rename string, empty local name: " + declared)
	}

	return d
}

// QName is the namespace+local pair used for name comparisons (spec §3.1).
// Equality ignores Prefix by construction: QName carries no prefix field.
type QName struct {
	Namespace string
	HasNS     bool
	Local     string
}

// QName extracts the qualified name half of the descriptor.
func (d Descriptor) QName() QName {
	return QName{Namespace: d.Namespace, HasNS: d.HasNS, Local: d.Local}
}

// Matches reports whether this descriptor's qualified name equals q.
func (d Descriptor) Matches(q QName) bool {
	return d.HasNS == q.HasNS && d.Namespace == q.Namespace && d.Local == q.Local
}

// Synthetic builds the synthetic declared-name string used for unknown
// elements/attributes: "{URI}local" if namespaced, else just "local".
func (q QName) Synthetic() string {
	if q.HasNS {
		return "{" + q.Namespace + "}" + q.Local
	}
	return q.Local
}
