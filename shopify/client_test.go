package shopify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(handler http.HandlerFunc) (*httptest.Server, *Client) {
	srv := httptest.NewServer(handler)
	client := NewClient(srv.URL, "test-token", 5*time.Second)
	return srv, client
}

func TestGetFulfillmentOrders(t *testing.T) {
	srv, client := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/450789469/fulfillment_orders.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("X-Shopify-Access-Token"); got != "test-token" {
			t.Errorf("access token header = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"fulfillment_orders": []FulfillmentOrder{
				{ID: 1046000777, OrderID: 450789469, Status: "open"},
			},
		})
	})
	defer srv.Close()

	orders, err := client.GetFulfillmentOrders(450789469)
	if err != nil {
		t.Fatalf("GetFulfillmentOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != 1046000777 {
		t.Errorf("orders = %+v", orders)
	}
}

func TestUpdateFulfillmentTracking(t *testing.T) {
	srv, client := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fulfillments/1069019888/update_tracking.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}

		var req struct {
			Fulfillment struct {
				NotifyCustomer bool         `json:"notify_customer"`
				TrackingInfo   TrackingInfo `json:"tracking_info"`
			} `json:"fulfillment"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Fulfillment.NotifyCustomer {
			t.Error("notify_customer should be false")
		}
		if req.Fulfillment.TrackingInfo.Number != "AWB-42" {
			t.Errorf("tracking number = %q", req.Fulfillment.TrackingInfo.Number)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"fulfillment": Fulfillment{ID: 1069019888, Status: "success"},
		})
	})
	defer srv.Close()

	f, err := client.UpdateFulfillmentTracking(1069019888, TrackingInfo{Number: "AWB-42", Company: "Others"})
	if err != nil {
		t.Fatalf("UpdateFulfillmentTracking: %v", err)
	}
	if f.ID != 1069019888 {
		t.Errorf("fulfillment ID = %d", f.ID)
	}
}

func TestCreateFulfillment(t *testing.T) {
	srv, client := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fulfillments.json" {
			t.Errorf("path = %q", r.URL.Path)
		}

		var req struct {
			Fulfillment struct {
				LineItems []struct {
					FulfillmentOrderID int64 `json:"fulfillment_order_id"`
				} `json:"line_items_by_fulfillment_order"`
				TrackingInfo TrackingInfo `json:"tracking_info"`
			} `json:"fulfillment"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Fulfillment.LineItems) != 1 || req.Fulfillment.LineItems[0].FulfillmentOrderID != 1046000777 {
			t.Errorf("line_items_by_fulfillment_order = %+v", req.Fulfillment.LineItems)
		}
		if req.Fulfillment.TrackingInfo.URL == "" {
			t.Error("tracking URL missing on create")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"fulfillment": Fulfillment{ID: 1069019999, Status: "success"},
		})
	})
	defer srv.Close()

	f, err := client.CreateFulfillment(1046000777, TrackingInfo{
		Number:  "AWB-42",
		Company: "Others",
		URL:     "https://www.my-shipping-company.com?tracking_number=AWB-42",
	})
	if err != nil {
		t.Fatalf("CreateFulfillment: %v", err)
	}
	if f.ID != 1069019999 {
		t.Errorf("fulfillment ID = %d", f.ID)
	}
}

func TestClientHTTPError(t *testing.T) {
	srv, client := testClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":"Not Found"}`, http.StatusNotFound)
	})
	defer srv.Close()

	if _, err := client.GetFulfillments(1); err == nil {
		t.Fatal("expected error on 404")
	}
}
