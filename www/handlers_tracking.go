package www

import (
	"encoding/json"
	"log"
	"net/http"
)

type updateTrackingRequest struct {
	OrderID        int64  `json:"orderId"`
	TrackingNumber string `json:"trackingNumber"`
}

// handleUpdateTracking lets the shop push a tracking number onto an order
// directly, outside the webhook pipeline.
func (h *Handlers) handleUpdateTracking(w http.ResponseWriter, r *http.Request) {
	var req updateTrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonOK(w, map[string]any{"success": false, "error": "invalid request body"})
		return
	}
	if req.OrderID == 0 || req.TrackingNumber == "" {
		h.jsonOK(w, map[string]any{"success": false, "error": "Missing orderId or trackingNumber"})
		return
	}

	sess := shopSession(r)
	client := h.processor.ShopClient(sess)
	outcome, err := h.processor.PropagateTracking(client, req.OrderID, req.TrackingNumber)
	if err != nil {
		log.Printf("www: update tracking for order %d: %v", req.OrderID, err)
		h.jsonOK(w, map[string]any{"success": false, "error": err.Error()})
		return
	}

	msg := "Tracking updated successfully"
	if outcome.Action == "created" {
		msg = "New fulfillment created & tracking added"
	}
	h.jsonOK(w, map[string]any{"success": true, "message": msg, "data": outcome})
}
