package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published on the shipments topic.
const (
	MsgShipmentCreated = "shipment.created"
	MsgShipmentFailed  = "shipment.failed"
	MsgTrackingUpdated = "tracking.updated"
)

// Envelope wraps every published event with routing metadata.
type Envelope struct {
	MsgType   string    `json:"msg_type"`
	MsgID     string    `json:"msg_id"`
	Shop      string    `json:"shop"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEnvelope creates an outbound envelope with a new UUID and timestamp.
func NewEnvelope(msgType, shop string, payload any) *Envelope {
	return &Envelope{
		MsgType:   msgType,
		MsgID:     uuid.New().String(),
		Shop:      shop,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// Encode marshals an envelope to JSON.
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

type ShipmentCreated struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	ClientKey   string `json:"client_key"`
	AWB         string `json:"awb"`
}

type ShipmentFailed struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	ClientKey   string `json:"client_key"`
	Reason      string `json:"reason"`
}

type TrackingUpdated struct {
	OrderID int64  `json:"order_id"`
	AWB     string `json:"awb"`
	Action  string `json:"action"` // "updated" or "created"
}
