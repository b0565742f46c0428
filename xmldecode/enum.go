package xmldecode

import (
	"strings"

	"github.com/corvantis/xmlserde/xmlerr"
	"github.com/corvantis/xmlserde/xmlevent"
	"github.com/corvantis/xmlserde/xmlfield"
)

// DecodeEnum resolves the variant tag at the current position (an element
// name matched against variantTable, or bare text naming the variant
// directly), asks target to prepare storage for it via XMLSetVariant, and
// — for variants that carry a payload — decodes that payload using the
// same Decoder (spec §4.4.6).
func (d *Decoder) DecodeEnum(variantTable *xmlfield.Table, target Enum) error {
	if d.attrText != nil {
		tag := *d.attrText
		payload, err := target.XMLSetVariant(tag)
		if err != nil {
			return err
		}
		if payload != nil {
			return xmlerr.New(xmlerr.Unsupported, "an attribute-backed enum variant cannot carry a payload")
		}
		return nil
	}
	if d.unsetIsValue() {
		return d.decodeEnumBody(variantTable, target)
	}
	return d.readInnerValue(func(d *Decoder) error {
		return d.decodeEnumBody(variantTable, target)
	})
}

func (d *Decoder) decodeEnumBody(variantTable *xmlfield.Table, target Enum) error {
	state := xmlfield.NewState(variantTable)
	e := d.peek()

	var tag string
	isElement := false
	switch e.Kind {
	case xmlevent.StartElement:
		tag = state.MatchElement(e.Name)
		isElement = true
	case xmlevent.Characters, xmlevent.CData:
		tag = e.Text
	default:
		d.resetPeek()
		return xmlerr.New(xmlerr.ExpectedString, "expected an element or text naming an enum variant")
	}
	d.resetPeek()

	if isElement && !strings.HasPrefix(tag, "$value") {
		d.setMapValue()
	}

	payload, err := target.XMLSetVariant(tag)
	if err != nil {
		return err
	}

	if payload == nil {
		return d.decodeUnitVariant()
	}

	dec, ok := payload.(Decodable)
	if !ok {
		return xmlerr.New(xmlerr.Unsupported, "enum variant payload must implement Decodable")
	}
	return dec.DecodeXML(d)
}

func (d *Decoder) decodeUnitVariant() error {
	d.unsetMapValue()
	start := d.next()
	switch start.Kind {
	case xmlevent.StartElement:
		if len(start.Attrs) > 0 {
			return xmlerr.New(xmlerr.ExpectedElement, "a unit variant's element must carry no attributes")
		}
		return d.expectEndElement(start)
	case xmlevent.Characters, xmlevent.CData:
		return nil
	default:
		return xmlerr.New(xmlerr.ExpectedElement, "expected a unit variant's element or text")
	}
}
