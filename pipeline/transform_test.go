package pipeline

import (
	"testing"
	"time"

	"shipgate/shopify"
)

func testTransformer(t *testing.T) *Transformer {
	t.Helper()
	tf, err := NewTransformer("UTC")
	if err != nil {
		t.Fatalf("NewTransformer: %v", err)
	}
	tf.now = func() time.Time {
		return time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	}
	return tf
}

func TestExtractClientKey(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://shop.example.com/74521840950/orders/abc123/authenticate?key=x", "74521840950"},
		{"https://shop.example.com/orders/abc123", ""},
		{"", ""},
		{"https://shop.example.com/74521840950/invoices/abc", ""},
	}
	for _, tc := range cases {
		if got := ExtractClientKey(tc.url); got != tc.want {
			t.Errorf("ExtractClientKey(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestBuildDescriptionSkipsSentinels(t *testing.T) {
	items := []shopify.LineItem{
		{SKU: "SKU-1", Title: "Blue Shirt", VariantTitle: "M / Blue", Quantity: 2, Grams: 1500},
		{SKU: "no sku found", Title: "title not defined", VariantTitle: "size and colors not defined", Quantity: 1},
	}
	got := buildDescription(items)
	want := "SKU: SKU-1, SKU Name: Blue Shirt, Color & Size: M / Blue, Qty: 2, Weight: 1.5 kg | Qty: 1"
	if got != want {
		t.Errorf("description = %q, want %q", got, want)
	}
}

func TestBuildDescriptionEmpty(t *testing.T) {
	if got := buildDescription(nil); got != "" {
		t.Errorf("description = %q, want empty", got)
	}
}

func TestBuildDescriptionSkipsZeroQuantity(t *testing.T) {
	items := []shopify.LineItem{{SKU: "SKU-1", Grams: 500}}
	got := buildDescription(items)
	want := "SKU: SKU-1, Weight: 0.5 kg"
	if got != want {
		t.Errorf("description = %q, want %q (no Qty for absent quantity)", got, want)
	}
}

func TestResolveWeight(t *testing.T) {
	// Weight comes from line item 0 specifically, not a max or sum, and
	// an explicit zero stays zero.
	items := []shopify.LineItem{{Grams: 0}, {Grams: 1500}, {Grams: 500}}
	if got := resolveWeight(items); got != 0 {
		t.Errorf("weight = %d, want 0 from first item", got)
	}
	if got := resolveWeight(nil); got != 1000 {
		t.Errorf("weight = %d, want default 1000 for empty list", got)
	}
	if got := resolveWeight([]shopify.LineItem{{Grams: 750}}); got != 750 {
		t.Errorf("weight = %d, want 750", got)
	}
}

func TestTransformPrepaid(t *testing.T) {
	tf := testTransformer(t)
	f := tf.Transform(&shopify.OrderPayload{
		ID:              450789469,
		OrderNumber:     1001,
		FinancialStatus: "paid",
		TotalPrice:      "49.99",
	})
	if f.PaymentType != "Prepaid" {
		t.Errorf("PaymentType = %q, want Prepaid", f.PaymentType)
	}
	if f.CODAmount != 0 {
		t.Errorf("CODAmount = %v, want 0 regardless of total price", f.CODAmount)
	}
}

func TestTransformCOD(t *testing.T) {
	tf := testTransformer(t)
	f := tf.Transform(&shopify.OrderPayload{
		FinancialStatus: "pending",
		TotalPrice:      "49.99",
	})
	if f.PaymentType != "COD" {
		t.Errorf("PaymentType = %q, want COD", f.PaymentType)
	}
	if f.CODAmount != 49.99 {
		t.Errorf("CODAmount = %v, want 49.99", f.CODAmount)
	}
}

func TestTransformUnparseablePrice(t *testing.T) {
	tf := testTransformer(t)
	f := tf.Transform(&shopify.OrderPayload{
		FinancialStatus: "pending",
		TotalPrice:      "not-a-number",
	})
	if f.CODAmount != 0 {
		t.Errorf("CODAmount = %v, want 0 for unparseable price", f.CODAmount)
	}
}

func TestTransformPickupDate(t *testing.T) {
	tf := testTransformer(t)
	f := tf.Transform(&shopify.OrderPayload{})
	if f.PickupDate != "2025-06-02" {
		t.Errorf("PickupDate = %q, want next calendar day in configured zone", f.PickupDate)
	}
}

func TestTransformPieces(t *testing.T) {
	tf := testTransformer(t)
	f := tf.Transform(&shopify.OrderPayload{
		LineItems: []shopify.LineItem{{Quantity: 2}, {Quantity: 3}},
	})
	if f.Pieces != 5 {
		t.Errorf("Pieces = %d, want 5", f.Pieces)
	}
	if f2 := tf.Transform(&shopify.OrderPayload{}); f2.Pieces != 0 {
		t.Errorf("Pieces = %d, want 0 for empty order", f2.Pieces)
	}
}

func TestTransformDestinationDefaults(t *testing.T) {
	tf := testTransformer(t)
	f := tf.Transform(&shopify.OrderPayload{})
	if f.DropoffName != "Unknown" || f.DropoffPhone != "Unknown" || f.DropoffArea != "Unknown Area" {
		t.Errorf("defaults = %q / %q / %q", f.DropoffName, f.DropoffPhone, f.DropoffArea)
	}

	f = tf.Transform(&shopify.OrderPayload{
		ShippingAddress: &shopify.Address{
			Name:     "Amira K",
			Phone:    "+9715550001",
			Address1: "12 Marina Walk",
			Address2: "Apt 4",
			Province: "Dubai",
		},
	})
	if f.DropoffArea != "12 Marina Walk Apt 4" {
		t.Errorf("DropoffArea = %q", f.DropoffArea)
	}
	if f.DropoffCity != "Dubai" {
		t.Errorf("DropoffCity = %q", f.DropoffCity)
	}
}

func TestTransformClientKeyAndShipType(t *testing.T) {
	tf := testTransformer(t)
	f := tf.Transform(&shopify.OrderPayload{
		OrderStatusURL: "https://shop.example.com/74521840950/orders/tok",
		ShippingLines:  []shopify.ShippingLine{{Title: "Express"}},
	})
	if f.ClientKey != "74521840950" {
		t.Errorf("ClientKey = %q", f.ClientKey)
	}
	if f.ShipType != "Express" {
		t.Errorf("ShipType = %q", f.ShipType)
	}
}

func TestFormatOrderNumber(t *testing.T) {
	if got := FormatOrderNumber(1001); got != "1001" {
		t.Errorf("FormatOrderNumber(1001) = %q", got)
	}
	if got := FormatOrderNumber(0); got != "#001" {
		t.Errorf("FormatOrderNumber(0) = %q, want the placeholder", got)
	}
}

func TestNewTransformerBadZone(t *testing.T) {
	if _, err := NewTransformer("Not/AZone"); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
