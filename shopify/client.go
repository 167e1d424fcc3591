package shopify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the Admin REST API of a single shop using its offline
// access token.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// AdminBaseURL builds the versioned Admin API root for a shop domain.
func AdminBaseURL(shopDomain, apiVersion string) string {
	return fmt.Sprintf("https://%s/admin/api/%s", shopDomain, apiVersion)
}

func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) do(method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("shopify marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("shopify %s %s: %w", method, path, err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("shopify read body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("shopify HTTP %d: %s", resp.StatusCode, string(data))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("shopify decode: %w", err)
		}
	}
	return nil
}

func (c *Client) GetFulfillmentOrders(orderID int64) ([]FulfillmentOrder, error) {
	var out struct {
		FulfillmentOrders []FulfillmentOrder `json:"fulfillment_orders"`
	}
	path := fmt.Sprintf("/orders/%d/fulfillment_orders.json", orderID)
	if err := c.do(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.FulfillmentOrders, nil
}

func (c *Client) GetFulfillments(orderID int64) ([]Fulfillment, error) {
	var out struct {
		Fulfillments []Fulfillment `json:"fulfillments"`
	}
	path := fmt.Sprintf("/orders/%d/fulfillments.json", orderID)
	if err := c.do(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Fulfillments, nil
}

// UpdateFulfillmentTracking replaces tracking info on an existing
// fulfillment without notifying the customer.
func (c *Client) UpdateFulfillmentTracking(fulfillmentID int64, tracking TrackingInfo) (*Fulfillment, error) {
	req := map[string]any{
		"fulfillment": map[string]any{
			"notify_customer": false,
			"tracking_info":   tracking,
		},
	}
	var out struct {
		Fulfillment Fulfillment `json:"fulfillment"`
	}
	path := fmt.Sprintf("/fulfillments/%d/update_tracking.json", fulfillmentID)
	if err := c.do(http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out.Fulfillment, nil
}

// CreateFulfillment creates a fulfillment against a fulfillment order and
// attaches tracking info.
func (c *Client) CreateFulfillment(fulfillmentOrderID int64, tracking TrackingInfo) (*Fulfillment, error) {
	req := map[string]any{
		"fulfillment": map[string]any{
			"notify_customer": false,
			"line_items_by_fulfillment_order": []map[string]any{
				{"fulfillment_order_id": fulfillmentOrderID},
			},
			"tracking_info": tracking,
		},
	}
	var out struct {
		Fulfillment Fulfillment `json:"fulfillment"`
	}
	if err := c.do(http.MethodPost, "/fulfillments.json", req, &out); err != nil {
		return nil, err
	}
	return &out.Fulfillment, nil
}

func (c *Client) GetShop() (*Shop, error) {
	var out struct {
		Shop Shop `json:"shop"`
	}
	if err := c.do(http.MethodGet, "/shop.json", nil, &out); err != nil {
		return nil, err
	}
	return &out.Shop, nil
}

// ListOrders fetches orders with the given status filter ("any" matches
// everything).
func (c *Client) ListOrders(status string) ([]Order, error) {
	var out struct {
		Orders []Order `json:"orders"`
	}
	path := "/orders.json"
	if status != "" {
		path += "?status=" + status
	}
	if err := c.do(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}
