package shopify

// OrderPayload is the subset of the order-creation webhook body this
// service reads. Field names follow the Admin API wire format.
type OrderPayload struct {
	ID              int64          `json:"id"`
	OrderNumber     int64          `json:"order_number"`
	OrderStatusURL  string         `json:"order_status_url"`
	FinancialStatus string         `json:"financial_status"`
	TotalPrice      string         `json:"total_price"`
	Country         string         `json:"country"`
	CancelReason    *string        `json:"cancel_reason"`
	LineItems       []LineItem     `json:"line_items"`
	ShippingAddress *Address       `json:"shipping_address"`
	ShippingLines   []ShippingLine `json:"shipping_lines"`
}

type LineItem struct {
	SKU          string `json:"sku"`
	Title        string `json:"title"`
	VariantTitle string `json:"variant_title"`
	Quantity     int    `json:"quantity"`
	Grams        int    `json:"grams"`
}

type Address struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province"`
	Country  string `json:"country"`
}

type ShippingLine struct {
	Title string `json:"title"`
}

// ShippingTitle returns the first shipping line's title, if any.
func (p *OrderPayload) ShippingTitle() string {
	if len(p.ShippingLines) == 0 {
		return ""
	}
	return p.ShippingLines[0].Title
}

// FulfillmentOrder is a unit of fulfillment work on an order; new
// fulfillments must reference one.
type FulfillmentOrder struct {
	ID      int64  `json:"id"`
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

type Fulfillment struct {
	ID           int64         `json:"id"`
	OrderID      int64         `json:"order_id"`
	Status       string        `json:"status"`
	TrackingInfo *TrackingInfo `json:"tracking_info,omitempty"`
}

type TrackingInfo struct {
	Number  string `json:"number"`
	Company string `json:"company"`
	URL     string `json:"url,omitempty"`
}

type Shop struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Email  string `json:"email"`
}

type Order struct {
	ID           int64   `json:"id"`
	OrderNumber  int64   `json:"order_number"`
	Name         string  `json:"name"`
	CancelReason *string `json:"cancel_reason"`
	TotalPrice   string  `json:"total_price"`
	CreatedAt    string  `json:"created_at"`
}
