// Package xmlserde is the public facade spec.md §6 describes: a drop-in
// alternative to encoding/xml's Marshal/Unmarshal pair, wiring xmlcursor,
// xmldecode, xmlencode and xmlreflect together behind a handful of
// top-level functions plus functional-options configuration.
package xmlserde

import (
	"log/slog"

	"github.com/corvantis/xmlserde/xmlevent"
)

// decodeConfig is the realization of spec §6.2's Options record on the
// decode side, plus the EXPANSION-only knobs (LegacyCharsets, Logger) that
// have no Rust-original counterpart.
type decodeConfig struct {
	legacyCharsets bool
	logger         *slog.Logger
}

// DecodeOption configures a decode call.
type DecodeOption func(*decodeConfig)

// LegacyCharsets enables transcoding of documents whose XML declaration
// names a non-UTF-8 encoding, via golang.org/x/net/html/charset (spec
// §6.6's EXPANSION-only concession to real-world legacy documents).
func LegacyCharsets() DecodeOption {
	return func(c *decodeConfig) { c.legacyCharsets = true }
}

// WithDecodeLogger sets a slog.Logger that receives one Debug record when
// the decode starts; the decoding driver itself does not log.
func WithDecodeLogger(l *slog.Logger) DecodeOption {
	return func(c *decodeConfig) { c.logger = l }
}

func buildDecodeConfig(opts []DecodeOption) decodeConfig {
	var c decodeConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// encodeConfig is spec §6.2's Options record verbatim, plus the
// EXPANSION-only Logger knob.
type encodeConfig struct {
	writerOpts xmlevent.WriterOptions
	logger     *slog.Logger
}

// EncodeOption configures an encode call.
type EncodeOption func(*encodeConfig)

// Pretty enables newline + indent formatting between elements.
func Pretty() EncodeOption {
	return func(c *encodeConfig) { c.writerOpts.Pretty = true }
}

// Indent sets the per-depth indentation unit Pretty uses (defaults to two
// spaces when unset).
func Indent(unit string) EncodeOption {
	return func(c *encodeConfig) { c.writerOpts.Indent = unit }
}

// WriteDocumentDeclaration prefixes the output with an
// "<?xml version=\"1.0\" encoding=\"UTF-8\"?>" declaration.
func WriteDocumentDeclaration() EncodeOption {
	return func(c *encodeConfig) { c.writerOpts.WriteDocumentDeclaration = true }
}

// NormalizeEmptyElements emits "<x/>" rather than "<x></x>" for elements
// with no content.
func NormalizeEmptyElements() EncodeOption {
	return func(c *encodeConfig) { c.writerOpts.NormalizeEmptyElements = true }
}

// PadSelfClosing inserts a space before a self-closing tag's "/>".
func PadSelfClosing() EncodeOption {
	return func(c *encodeConfig) { c.writerOpts.PadSelfClosing = true }
}

// CDATAToCharacters demotes CDATA-kind content to plain escaped text.
func CDATAToCharacters() EncodeOption {
	return func(c *encodeConfig) { c.writerOpts.CDATAToCharacters = true }
}

// WithEncodeLogger sets a slog.Logger that receives one Debug record when
// the encode starts; the emitter itself does not log.
func WithEncodeLogger(l *slog.Logger) EncodeOption {
	return func(c *encodeConfig) { c.logger = l }
}

func buildEncodeConfig(opts []EncodeOption) encodeConfig {
	var c encodeConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
