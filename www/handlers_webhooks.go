package www

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"shipgate/pipeline"
	"shipgate/shopify"
	"shipgate/store"
)

// handleOrderCreateWebhook is the intake for order-creation webhooks. The
// signature check runs on the raw body before anything else; once it
// passes, the delivery is always acknowledged with 200 so the platform
// does not retry-storm a handler with a broken downstream. Processing
// happens on its own goroutine.
func (h *Handlers) handleOrderCreateWebhook(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		h.jsonMessage(w, http.StatusBadRequest, false, "cannot read body")
		return
	}

	if !shopify.VerifyWebhookSignature(raw, r.Header.Get(shopify.HeaderHMAC), []byte(h.cfg.Shopify.APISecret)) {
		h.jsonMessage(w, http.StatusUnauthorized, false, "Unauthorized")
		return
	}

	shop := r.Header.Get(shopify.HeaderShopDomain)
	if shop == "" {
		log.Printf("www: webhook without shop header, tracking updates will fail")
	}

	var payload shopify.OrderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Authenticated but unparseable: record it for diagnosis,
		// mark it skipped, and acknowledge so the platform stops
		// redelivering a body this handler can never use.
		log.Printf("www: webhook payload decode: %v", err)
		delivery := &store.WebhookDelivery{
			DeliveryID: uuid.New().String(),
			ShopDomain: shop,
			Payload:    raw,
		}
		if err := h.db.CreateDelivery(delivery); err != nil {
			log.Printf("www: record delivery: %v", err)
		} else if err := h.db.UpdateDeliveryStatus(delivery.DeliveryID, store.DeliverySkipped, "payload decode failed"); err != nil {
			log.Printf("www: update delivery: %v", err)
		}
		h.jsonMessage(w, http.StatusOK, true, "Webhook received")
		return
	}

	delivery := &store.WebhookDelivery{
		DeliveryID:  uuid.New().String(),
		ShopDomain:  shop,
		OrderID:     payload.ID,
		OrderNumber: pipeline.FormatOrderNumber(payload.OrderNumber),
		Payload:     raw,
	}
	if err := h.db.CreateDelivery(delivery); err != nil {
		log.Printf("www: record delivery: %v", err)
	}

	go h.processor.Process(context.Background(), &pipeline.Job{
		DeliveryID: delivery.DeliveryID,
		ShopDomain: shop,
		Payload:    &payload,
	})

	h.jsonMessage(w, http.StatusOK, true, "Webhook received")
}

// handleLatestWebhook returns the most recent delivery, for poking at the
// live payload shape during integration work.
func (h *Handlers) handleLatestWebhook(w http.ResponseWriter, r *http.Request) {
	d, err := h.db.LatestDelivery()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if d == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    json.RawMessage(d.Payload),
	})
}
