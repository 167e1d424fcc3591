package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"shipgate/config"
	"shipgate/cooldown"
	"shipgate/courier"
	"shipgate/shopify"
	"shipgate/store"
)

const testShop = "test-shop.myshopify.com"

// courierCounters tracks which courier endpoints a test exercised.
type courierCounters struct {
	address int64
	config  int64
	create  int64
}

func fakeCourier(t *testing.T, counters *courierCounters, withDefault bool, awb string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app/get_address":
			atomic.AddInt64(&counters.address, 1)
			flag := "0"
			if withDefault {
				flag = "1"
			}
			json.NewEncoder(w).Encode(map[string]any{
				"success": "true",
				"address": []map[string]string{{
					"addr_contact_person": "Warehouse A",
					"addr_mobile_number":  "+9715550000",
					"addr_area":           "Al Quoz",
					"addr_city":           "Dubai",
					"addr_country":        "AE",
					"default_address":     flag,
				}},
			})
		case "/app/get_configuration":
			atomic.AddInt64(&counters.config, 1)
			json.NewEncoder(w).Encode(courier.Configuration{Success: true, ServiceType: "Next Day", CourierType: "Non-document"})
		case "/app/create_shipment_webhook":
			atomic.AddInt64(&counters.create, 1)
			if awb == "" {
				json.NewEncoder(w).Encode(map[string]string{"message": "declined"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"AWB No": awb})
		default:
			t.Errorf("unexpected courier path %q", r.URL.Path)
		}
	}))
}

func fakeShopify(t *testing.T, existingFulfillments int, created *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/orders/450789469/fulfillment_orders.json":
			json.NewEncoder(w).Encode(map[string]any{
				"fulfillment_orders": []shopify.FulfillmentOrder{{ID: 9001, OrderID: 450789469}},
			})
		case r.URL.Path == "/orders/450789469/fulfillments.json":
			fs := make([]shopify.Fulfillment, existingFulfillments)
			for i := range fs {
				fs[i] = shopify.Fulfillment{ID: int64(7001 + i), OrderID: 450789469}
			}
			json.NewEncoder(w).Encode(map[string]any{"fulfillments": fs})
		case r.URL.Path == "/fulfillments.json":
			if created != nil {
				atomic.AddInt64(created, 1)
			}
			json.NewEncoder(w).Encode(map[string]any{"fulfillment": shopify.Fulfillment{ID: 7777}})
		case r.URL.Path == "/fulfillments/7001/update_tracking.json":
			json.NewEncoder(w).Encode(map[string]any{"fulfillment": shopify.Fulfillment{ID: 7001}})
		default:
			t.Errorf("unexpected shopify path %q", r.URL.Path)
		}
	}))
}

func testProcessor(t *testing.T, courierURL, shopifyURL string, window time.Duration) (*Processor, *store.DB) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Shopify.BaseURL = shopifyURL
	cfg.Shopify.Timeout = 5 * time.Second
	cfg.Pipeline.Cooldown = window

	db, err := store.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.UpsertShopSession(testShop, "offline-token", "write_fulfillments"); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	guard := cooldown.NewMemoryGuard(window)
	t.Cleanup(guard.Close)

	tf, err := NewTransformer("UTC")
	if err != nil {
		t.Fatalf("NewTransformer: %v", err)
	}

	return NewProcessor(cfg, db, courier.NewClient(courierURL, 5*time.Second), guard, tf), db
}

func testJob(t *testing.T, db *store.DB) *Job {
	t.Helper()
	payload := &shopify.OrderPayload{
		ID:              450789469,
		OrderNumber:     1001,
		OrderStatusURL:  "https://checkout.example.com/74521840950/orders/tok",
		FinancialStatus: "pending",
		TotalPrice:      "49.99",
		Country:         "AE",
		LineItems:       []shopify.LineItem{{SKU: "SKU-1", Title: "Blue Shirt", Quantity: 1, Grams: 500}},
		ShippingAddress: &shopify.Address{Name: "Amira K", Phone: "+9715550001", Address1: "12 Marina Walk", Province: "Dubai"},
	}
	d := &store.WebhookDelivery{
		DeliveryID:  "dl-" + t.Name(),
		ShopDomain:  testShop,
		OrderID:     payload.ID,
		OrderNumber: "1001",
	}
	if err := db.CreateDelivery(d); err != nil {
		t.Fatalf("seed delivery: %v", err)
	}
	return &Job{DeliveryID: d.DeliveryID, ShopDomain: testShop, Payload: payload}
}

func TestProcessHappyPath(t *testing.T) {
	var counters courierCounters
	courierSrv := fakeCourier(t, &counters, true, "JB123456")
	defer courierSrv.Close()
	shopifySrv := fakeShopify(t, 1, nil)
	defer shopifySrv.Close()

	p, db := testProcessor(t, courierSrv.URL, shopifySrv.URL, time.Minute)
	job := testJob(t, db)

	p.Process(context.Background(), job)

	if counters.create != 1 {
		t.Errorf("create calls = %d, want 1", counters.create)
	}

	shipments, err := db.ListShipments(10)
	if err != nil || len(shipments) != 1 {
		t.Fatalf("shipments = %v, err %v", shipments, err)
	}
	if shipments[0].Status != store.ShipmentTracked {
		t.Errorf("shipment status = %q, want tracked", shipments[0].Status)
	}
	if shipments[0].AWB != "JB123456" {
		t.Errorf("AWB = %q", shipments[0].AWB)
	}

	deliveries, _ := db.ListDeliveries(10)
	if len(deliveries) != 1 || deliveries[0].Status != store.DeliveryShipped {
		t.Errorf("delivery = %+v, want shipped", deliveries[0])
	}

	// Success arms the cooldown window.
	if d := p.guard.Delay("1001"); d == 0 {
		t.Error("cooldown should be armed after a successful booking")
	}

	pending, _ := db.ListPendingOutbox(10)
	types := map[string]bool{}
	for _, m := range pending {
		types[m.MsgType] = true
	}
	if !types["shipment.created"] || !types["tracking.updated"] {
		t.Errorf("outbox event types = %v", types)
	}
}

func TestProcessNoDefaultAddress(t *testing.T) {
	var counters courierCounters
	courierSrv := fakeCourier(t, &counters, false, "JB123456")
	defer courierSrv.Close()

	p, db := testProcessor(t, courierSrv.URL, "http://unused.invalid", time.Minute)
	job := testJob(t, db)

	p.Process(context.Background(), job)

	if counters.create != 0 {
		t.Errorf("create calls = %d, want 0 when no default address", counters.create)
	}

	shipments, _ := db.ListShipments(10)
	if len(shipments) != 1 || shipments[0].Status != store.ShipmentFailed {
		t.Errorf("shipment = %+v, want failed", shipments)
	}
	deliveries, _ := db.ListDeliveries(10)
	if deliveries[0].Status != store.DeliveryFailed {
		t.Errorf("delivery status = %q, want failed", deliveries[0].Status)
	}
}

func TestProcessMissingClientKey(t *testing.T) {
	var counters courierCounters
	courierSrv := fakeCourier(t, &counters, true, "JB123456")
	defer courierSrv.Close()

	p, db := testProcessor(t, courierSrv.URL, "http://unused.invalid", time.Minute)
	job := testJob(t, db)
	job.Payload.OrderStatusURL = "https://checkout.example.com/orders/tok"

	p.Process(context.Background(), job)

	if counters.address != 0 || counters.config != 0 || counters.create != 0 {
		t.Errorf("courier calls = %+v, want none without a client key", counters)
	}
	deliveries, _ := db.ListDeliveries(10)
	if deliveries[0].Status != store.DeliveryFailed {
		t.Errorf("delivery status = %q, want failed", deliveries[0].Status)
	}
}

func TestProcessSoftFailureNoAWB(t *testing.T) {
	var counters courierCounters
	courierSrv := fakeCourier(t, &counters, true, "")
	defer courierSrv.Close()

	p, db := testProcessor(t, courierSrv.URL, "http://unused.invalid", time.Minute)
	job := testJob(t, db)

	p.Process(context.Background(), job)

	shipments, _ := db.ListShipments(10)
	if len(shipments) != 1 || shipments[0].Status != store.ShipmentFailed {
		t.Errorf("shipment = %+v, want failed on missing AWB", shipments)
	}
	// A failed booking must not arm the cooldown window.
	if d := p.guard.Delay("1001"); d != 0 {
		t.Errorf("Delay = %v, want 0 after failed booking", d)
	}
}

func TestProcessWaitsOutCooldown(t *testing.T) {
	var counters courierCounters
	courierSrv := fakeCourier(t, &counters, true, "JB123456")
	defer courierSrv.Close()
	shopifySrv := fakeShopify(t, 1, nil)
	defer shopifySrv.Close()

	window := 200 * time.Millisecond
	p, db := testProcessor(t, courierSrv.URL, shopifySrv.URL, window)
	job := testJob(t, db)

	p.guard.RecordSuccess("1001", time.Now())
	start := time.Now()
	p.Process(context.Background(), job)

	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("pipeline ran after %v, want it to wait out the window", elapsed)
	}
	if counters.create != 1 {
		t.Errorf("create calls = %d, want 1 after the wait", counters.create)
	}
}

func TestProcessTrackingFailureKeepsBooking(t *testing.T) {
	var counters courierCounters
	courierSrv := fakeCourier(t, &counters, true, "JB123456")
	defer courierSrv.Close()
	shopifySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No fulfillment orders: propagation has nothing to attach to.
		json.NewEncoder(w).Encode(map[string]any{"fulfillment_orders": []any{}})
	}))
	defer shopifySrv.Close()

	p, db := testProcessor(t, courierSrv.URL, shopifySrv.URL, time.Minute)
	job := testJob(t, db)

	p.Process(context.Background(), job)

	// Booking stands even though propagation failed; they are separate
	// outcomes.
	shipments, _ := db.ListShipments(10)
	if shipments[0].Status != store.ShipmentBooked {
		t.Errorf("shipment status = %q, want booked", shipments[0].Status)
	}
	deliveries, _ := db.ListDeliveries(10)
	if deliveries[0].Status != store.DeliveryShipped {
		t.Errorf("delivery status = %q, want shipped with failure detail", deliveries[0].Status)
	}
}

func TestBuildShipmentRequestShape(t *testing.T) {
	bundle := courier.EnrichmentBundle{
		Address: &courier.Address{ContactPerson: "Warehouse A", Area: "Al Quoz", City: "Dubai", Country: "AE"},
	}
	f := &ShipmentFields{
		ClientKey:    "74521840950",
		OrderNumber:  "1001",
		Description:  "SKU: SKU-1, Qty: 1",
		Weight:       500,
		Pieces:       1,
		PaymentType:  "COD",
		CODAmount:    49.99,
		PickupDate:   "2025-06-02",
		DropoffName:  "Amira K",
		DropoffPhone: "+9715550001",
		DropoffArea:  "12 Marina Walk",
		DropoffCity:  "Dubai",
		Country:      "AE",
		ShipType:     "Express",
	}
	req := BuildShipmentRequest(f, bundle, "")

	if req.DeliveryType != "Next Day" || req.LoadType != "Non-document" {
		t.Errorf("defaults = %q / %q", req.DeliveryType, req.LoadType)
	}
	if req.TimeZone != "00:00" {
		t.Errorf("TimeZone = %q", req.TimeZone)
	}
	if req.CODAmount != "49.99" {
		t.Errorf("CODAmount = %q", req.CODAmount)
	}

	// Every documented wire key must be present, even when empty.
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire map[string]any
	json.Unmarshal(data, &wire)
	for _, key := range []string{
		"client_key", "delivery_type", "load_type", "consignment_type",
		"description", "weight", "payment_type", "cod_amount", "num_pieces",
		"customer_reference_number",
		"origin_address_name", "origin_address_mob_no_country_code",
		"origin_address_mobile_number", "origin_address_house_no",
		"origin_address_building_name", "origin_address_area",
		"origin_address_landmark", "origin_address_city",
		"origin_address_type", "origin_address_country",
		"destination_address_name", "destination_address_mob_no_country_code",
		"destination_address_mobile_number", "destination_address_country",
		"destination_address_house_no", "destination_address_building_name",
		"destination_address_area", "destination_address_landmark",
		"destination_address_city", "destination_address_type",
		"pickup_date", "time_zone", "Ship_type",
	} {
		if _, ok := wire[key]; !ok {
			t.Errorf("request body missing key %q", key)
		}
	}
}

func TestBuildShipmentRequestUsesConfiguration(t *testing.T) {
	bundle := courier.EnrichmentBundle{
		Address: &courier.Address{City: "Dubai"},
		Config:  &courier.Configuration{Success: true, ServiceType: "Same Day", CourierType: "Document"},
	}
	req := BuildShipmentRequest(&ShipmentFields{}, bundle, "04:00")
	if req.DeliveryType != "Same Day" || req.LoadType != "Document" {
		t.Errorf("configured types = %q / %q", req.DeliveryType, req.LoadType)
	}
	if req.TimeZone != "04:00" {
		t.Errorf("TimeZone = %q", req.TimeZone)
	}
}
