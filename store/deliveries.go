package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Delivery statuses follow the pipeline: a row is written as soon as a
// signed webhook is accepted and updated once processing resolves.
const (
	DeliveryReceived = "received"
	DeliveryShipped  = "shipped"
	DeliveryFailed   = "failed"
	DeliverySkipped  = "skipped"
)

type WebhookDelivery struct {
	ID          int64     `json:"id"`
	DeliveryID  string    `json:"delivery_id"`
	ShopDomain  string    `json:"shop_domain"`
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Payload     []byte    `json:"-"`
	Status      string    `json:"status"`
	Detail      string    `json:"detail"`
	ReceivedAt  time.Time `json:"received_at"`
}

func (db *DB) CreateDelivery(d *WebhookDelivery) error {
	id, err := db.insertID(`INSERT INTO webhook_deliveries (delivery_id, shop_domain, order_id, order_number, payload, status) VALUES (?, ?, ?, ?, ?, ?)`,
		d.DeliveryID, d.ShopDomain, d.OrderID, d.OrderNumber, d.Payload, DeliveryReceived)
	if err != nil {
		return fmt.Errorf("create delivery: %w", err)
	}
	d.ID = id
	d.Status = DeliveryReceived
	return nil
}

func (db *DB) UpdateDeliveryStatus(deliveryID, status, detail string) error {
	_, err := db.Exec(db.Q(`UPDATE webhook_deliveries SET status=?, detail=? WHERE delivery_id=?`),
		status, detail, deliveryID)
	return err
}

// LatestDelivery returns the most recently received webhook, or nil when
// nothing has been received yet.
func (db *DB) LatestDelivery() (*WebhookDelivery, error) {
	row := db.QueryRow(`SELECT id, delivery_id, shop_domain, order_id, order_number, payload, status, detail, received_at FROM webhook_deliveries ORDER BY id DESC LIMIT 1`)
	d, err := scanDelivery(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func (db *DB) ListDeliveries(limit int) ([]*WebhookDelivery, error) {
	rows, err := db.Query(db.Q(`SELECT id, delivery_id, shop_domain, order_id, order_number, payload, status, detail, received_at FROM webhook_deliveries ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*WebhookDelivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDelivery(row interface{ Scan(...any) error }) (*WebhookDelivery, error) {
	var d WebhookDelivery
	var receivedAt any
	err := row.Scan(&d.ID, &d.DeliveryID, &d.ShopDomain, &d.OrderID, &d.OrderNumber,
		&d.Payload, &d.Status, &d.Detail, &receivedAt)
	if err != nil {
		return nil, err
	}
	d.ReceivedAt = parseTime(receivedAt)
	return &d, nil
}
