package courier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the courier's app API. All endpoints are keyed by the
// merchant's client key passed as a query parameter.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) get(path, clientKey string, result any) error {
	u := fmt.Sprintf("%s%s?client_key=%s", c.baseURL, path, url.QueryEscape(clientKey))
	resp, err := c.httpClient.Get(u)
	if err != nil {
		return fmt.Errorf("courier GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	return c.decode(resp, path, result)
}

func (c *Client) post(path, clientKey string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("courier marshal: %w", err)
	}
	u := fmt.Sprintf("%s%s?client_key=%s", c.baseURL, path, url.QueryEscape(clientKey))
	resp, err := c.httpClient.Post(u, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("courier POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	return c.decode(resp, path, result)
}

func (c *Client) decode(resp *http.Response, path string, result any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("courier read body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("courier HTTP %d on %s: %s", resp.StatusCode, path, string(data))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("courier decode %s: %w", path, err)
		}
	}
	return nil
}

// GetDefaultAddress returns the account's default pickup address, or nil
// when the account has none. Lookup failures also resolve to nil: a
// missing origin address is a normal abort condition for the pipeline,
// not an exception, so errors are logged here and swallowed.
func (c *Client) GetDefaultAddress(clientKey string) *Address {
	if clientKey == "" {
		log.Printf("courier: default address lookup skipped, empty client key")
		return nil
	}
	var out addressResponse
	if err := c.get("/app/get_address", clientKey, &out); err != nil {
		log.Printf("courier: default address lookup: %v", err)
		return nil
	}
	if out.Success != "true" {
		return nil
	}
	for i := range out.Addresses {
		if out.Addresses[i].DefaultAddress == "1" {
			return &out.Addresses[i]
		}
	}
	return nil
}

// GetConfiguration returns the account's service configuration, or nil on
// any failure. Callers fall back to default service/courier types.
func (c *Client) GetConfiguration(clientKey string) *Configuration {
	var out Configuration
	if err := c.get("/app/get_configuration", clientKey, &out); err != nil {
		log.Printf("courier: configuration lookup: %v", err)
		return nil
	}
	if !out.Success {
		return nil
	}
	return &out
}

// CreateShipment books a shipment and returns the assigned AWB number.
// A 2xx response without an AWB is reported as an error; the courier
// occasionally accepts the request but declines the booking.
func (c *Client) CreateShipment(clientKey string, req *ShipmentRequest) (string, error) {
	var out ShipmentResponse
	if err := c.post("/app/create_shipment_webhook", clientKey, req, &out); err != nil {
		return "", err
	}
	if out.AWBNo == "" {
		return "", fmt.Errorf("courier: shipment accepted but no AWB in response")
	}
	return out.AWBNo, nil
}
