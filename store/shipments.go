package store

import (
	"fmt"
	"time"
)

const (
	ShipmentPending = "pending"
	ShipmentBooked  = "booked"
	ShipmentTracked = "tracked"
	ShipmentFailed  = "failed"
)

type Shipment struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	ClientKey   string    `json:"client_key"`
	AWB         string    `json:"awb"`
	Status      string    `json:"status"`
	ErrorDetail string    `json:"error_detail"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (db *DB) CreateShipment(s *Shipment) error {
	if s.Status == "" {
		s.Status = ShipmentPending
	}
	id, err := db.insertID(`INSERT INTO shipments (order_id, order_number, client_key, awb, status, error_detail) VALUES (?, ?, ?, ?, ?, ?)`,
		s.OrderID, s.OrderNumber, s.ClientKey, s.AWB, s.Status, s.ErrorDetail)
	if err != nil {
		return fmt.Errorf("create shipment: %w", err)
	}
	s.ID = id
	return nil
}

func (db *DB) UpdateShipmentStatus(id int64, status, awb, detail string) error {
	_, err := db.Exec(db.Q(`UPDATE shipments SET status=?, awb=?, error_detail=?, updated_at=datetime('now','localtime') WHERE id=?`),
		status, awb, detail, id)
	return err
}

func (db *DB) ListShipments(limit int) ([]*Shipment, error) {
	rows, err := db.Query(db.Q(`SELECT id, order_id, order_number, client_key, awb, status, error_detail, created_at, updated_at FROM shipments ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Shipment
	for rows.Next() {
		var s Shipment
		var createdAt, updatedAt any
		if err := rows.Scan(&s.ID, &s.OrderID, &s.OrderNumber, &s.ClientKey, &s.AWB, &s.Status, &s.ErrorDetail, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		s.CreatedAt = parseTime(createdAt)
		s.UpdatedAt = parseTime(updatedAt)
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (db *DB) ListShipmentsByOrder(orderID int64) ([]*Shipment, error) {
	rows, err := db.Query(db.Q(`SELECT id, order_id, order_number, client_key, awb, status, error_detail, created_at, updated_at FROM shipments WHERE order_id=? ORDER BY id DESC`), orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Shipment
	for rows.Next() {
		var s Shipment
		var createdAt, updatedAt any
		if err := rows.Scan(&s.ID, &s.OrderID, &s.OrderNumber, &s.ClientKey, &s.AWB, &s.Status, &s.ErrorDetail, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		s.CreatedAt = parseTime(createdAt)
		s.UpdatedAt = parseTime(updatedAt)
		out = append(out, &s)
	}
	return out, rows.Err()
}
