package xmlserde_test

// Round-trip property tests: decode(encode(x)) must structurally equal x,
// for values exercising options, nested records, and repeated elements
// together. These use go-cmp's cmp.Diff rather than testify's Equal
// because its failure output names the path of each differing field.

import (
	"testing"

	"github.com/corvantis/xmlserde/xmlserde"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type shippingAddress struct {
	Street string `xml:"street"`
	City   string `xml:"city"`
}

type orderLine struct {
	SKU      string `xml:"$attr:sku"`
	Quantity int    `xml:"qty"`
}

type purchaseOrder struct {
	XMLName struct{} `xml:"purchaseOrder"`

	ID     string           `xml:"$attr:id"`
	Note   *string          `xml:"note"`
	ShipTo shippingAddress  `xml:"shipTo"`
	Lines  []orderLine      `xml:"line"`
	BillTo *shippingAddress `xml:"billTo"`
}

func roundTrip(t *testing.T, po purchaseOrder) purchaseOrder {
	t.Helper()
	out, err := xmlserde.EncodeToString(&po, xmlserde.NormalizeEmptyElements())
	require.NoError(t, err)

	var decoded purchaseOrder
	require.NoError(t, xmlserde.DecodeString(out, &decoded))
	return decoded
}

func TestRoundTripPreservesNestedRecordAndSequence(t *testing.T) {
	note := "rush order"
	po := purchaseOrder{
		ID:     "PO-1001",
		Note:   &note,
		ShipTo: shippingAddress{Street: "1 Infinite Loop", City: "Cupertino"},
		Lines: []orderLine{
			{SKU: "WIDGET-1", Quantity: 3},
			{SKU: "WIDGET-2", Quantity: 1},
		},
	}

	decoded := roundTrip(t, po)
	if diff := cmp.Diff(po, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripPreservesAbsentOptionalAsNil(t *testing.T) {
	po := purchaseOrder{
		ID:     "PO-1002",
		ShipTo: shippingAddress{Street: "350 5th Ave", City: "New York"},
	}

	decoded := roundTrip(t, po)
	if diff := cmp.Diff(po, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	require.Nil(t, decoded.Note)
	require.Nil(t, decoded.BillTo)
}

func TestRoundTripPreservesPresentNestedPointerRecord(t *testing.T) {
	po := purchaseOrder{
		ID:     "PO-1003",
		ShipTo: shippingAddress{Street: "1 Hacker Way", City: "Menlo Park"},
		BillTo: &shippingAddress{Street: "P.O. Box 1", City: "Reno"},
		Lines:  []orderLine{{SKU: "GIZMO", Quantity: 10}},
	}

	decoded := roundTrip(t, po)
	if diff := cmp.Diff(po, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
