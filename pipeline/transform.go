package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"shipgate/shopify"
)

// Upstream placeholder strings. These are literal values the platform
// substitutes for missing product data; they must be skipped verbatim,
// not pattern-matched.
const (
	sentinelNoSKU     = "no sku found"
	sentinelNoTitle   = "title not defined"
	sentinelNoVariant = "size and colors not defined"
)

// clientKeyPattern pulls the numeric shop id out of the order status URL,
// e.g. https://shop.example.com/12345678/orders/abc -> 12345678. That id
// doubles as the courier account's client key.
var clientKeyPattern = regexp.MustCompile(`/(\d+)/orders`)

func ExtractClientKey(orderStatusURL string) string {
	m := clientKeyPattern.FindStringSubmatch(orderStatusURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// ShipmentFields is the normalized view of an order used to build the
// courier booking request.
type ShipmentFields struct {
	ClientKey    string
	OrderID      int64
	OrderNumber  string
	Description  string
	Weight       int
	Pieces       int
	PaymentType  string // "Prepaid" or "COD"
	CODAmount    float64
	PickupDate   string
	DropoffName  string
	DropoffPhone string
	DropoffArea  string
	DropoffCity  string
	Country      string
	ShipType     string
}

// Transformer maps order payloads to shipment fields. The pickup date is
// "tomorrow" in loc; whose timezone that should be is genuinely
// unspecified upstream, so it is injected configuration.
type Transformer struct {
	loc *time.Location
	now func() time.Time
}

func NewTransformer(tzName string) (*Transformer, error) {
	loc := time.Local
	if tzName != "" {
		var err error
		loc, err = time.LoadLocation(tzName)
		if err != nil {
			return nil, fmt.Errorf("pickup timezone %q: %w", tzName, err)
		}
	}
	return &Transformer{loc: loc, now: time.Now}, nil
}

func (t *Transformer) Transform(p *shopify.OrderPayload) *ShipmentFields {
	f := &ShipmentFields{
		ClientKey:   ExtractClientKey(p.OrderStatusURL),
		OrderID:     p.ID,
		OrderNumber: FormatOrderNumber(p.OrderNumber),
		Description: buildDescription(p.LineItems),
		Weight:      resolveWeight(p.LineItems),
		Pieces:      countPieces(p.LineItems),
		PickupDate:  t.now().In(t.loc).AddDate(0, 0, 1).Format("2006-01-02"),
		Country:     p.Country,
		ShipType:    p.ShippingTitle(),
	}

	if p.FinancialStatus == "paid" {
		f.PaymentType = "Prepaid"
		f.CODAmount = 0
	} else {
		f.PaymentType = "COD"
		f.CODAmount = parsePrice(p.TotalPrice)
	}

	f.DropoffName = "Unknown"
	f.DropoffPhone = "Unknown"
	f.DropoffArea = "Unknown Area"
	if a := p.ShippingAddress; a != nil {
		if a.Name != "" {
			f.DropoffName = a.Name
		}
		if a.Phone != "" {
			f.DropoffPhone = a.Phone
		}
		if area := strings.TrimSpace(a.Address1 + " " + a.Address2); area != "" {
			f.DropoffArea = area
		}
		f.DropoffCity = a.Province
	}
	return f
}

// buildDescription concatenates per-item details, skipping placeholder
// values. Items join with " | ", fields within an item with ", ".
func buildDescription(items []shopify.LineItem) string {
	var parts []string
	for _, item := range items {
		var details []string
		if item.SKU != "" && item.SKU != sentinelNoSKU {
			details = append(details, "SKU: "+item.SKU)
		}
		if item.Title != "" && item.Title != sentinelNoTitle {
			details = append(details, "SKU Name: "+item.Title)
		}
		if item.VariantTitle != "" && item.VariantTitle != sentinelNoVariant {
			details = append(details, "Color & Size: "+item.VariantTitle)
		}
		if item.Quantity > 0 {
			details = append(details, fmt.Sprintf("Qty: %d", item.Quantity))
		}
		if item.Grams > 0 {
			details = append(details, fmt.Sprintf("Weight: %.1f kg", float64(item.Grams)/1000))
		}
		parts = append(parts, strings.Join(details, ", "))
	}
	return strings.Join(parts, " | ")
}

// resolveWeight takes the first line item's grams; only an empty item
// list falls back to the 1000g default. A literal zero weight on the
// first item stays zero.
func resolveWeight(items []shopify.LineItem) int {
	if len(items) == 0 {
		return 1000
	}
	return items[0].Grams
}

func countPieces(items []shopify.LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatOrderNumber is the display form of an order number used in the
// courier reference, the cooldown key, and stored records. A missing
// number gets the "#001" placeholder everywhere so the records agree.
func FormatOrderNumber(n int64) string {
	if n == 0 {
		return "#001"
	}
	return strconv.FormatInt(n, 10)
}
