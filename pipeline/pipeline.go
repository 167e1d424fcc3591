package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"shipgate/config"
	"shipgate/cooldown"
	"shipgate/courier"
	"shipgate/messaging"
	"shipgate/shopify"
	"shipgate/store"
)

// Job is one accepted webhook delivery handed to the processor. The
// signature has already been verified by the time a Job exists.
type Job struct {
	DeliveryID string
	ShopDomain string
	Payload    *shopify.OrderPayload
}

// Processor runs the webhook-to-shipment pipeline. Each job is handled on
// its own goroutine; the only cross-job state is the cooldown guard and
// the per-order tracking locks.
type Processor struct {
	cfg     *config.Config
	db      *store.DB
	courier *courier.Client
	guard   cooldown.Guard
	tf      *Transformer
	locks   *orderLocks
	now     func() time.Time
}

func NewProcessor(cfg *config.Config, db *store.DB, courierClient *courier.Client, guard cooldown.Guard, tf *Transformer) *Processor {
	return &Processor{
		cfg:     cfg,
		db:      db,
		courier: courierClient,
		guard:   guard,
		tf:      tf,
		locks:   newOrderLocks(),
		now:     time.Now,
	}
}

// Process runs the full pipeline for one delivery. All failures are
// terminal for the job and recovered here: the webhook was already
// acknowledged, so there is nobody left to signal.
func (p *Processor) Process(ctx context.Context, job *Job) {
	payload := job.Payload
	fields := p.tf.Transform(payload)

	log.Printf("pipeline: webhook for order %d (number %s), shop %q, client key %q",
		payload.ID, fields.OrderNumber, job.ShopDomain, fields.ClientKey)

	if fields.ClientKey == "" {
		// Without a client key there is no courier account to book
		// against; calling out with an unknown key would be worse than
		// stopping here.
		log.Printf("pipeline: order %d: no client key in order status URL, aborting", payload.ID)
		p.finishDelivery(job, store.DeliveryFailed, "missing client key in order status URL")
		return
	}

	rec := &store.Shipment{
		OrderID:     fields.OrderID,
		OrderNumber: fields.OrderNumber,
		ClientKey:   fields.ClientKey,
	}
	if err := p.db.CreateShipment(rec); err != nil {
		log.Printf("pipeline: record shipment: %v", err)
	}

	if wait := p.guard.Delay(fields.OrderNumber); wait > 0 {
		log.Printf("pipeline: order %s processed recently, waiting %s", fields.OrderNumber, wait)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.failShipment(job, rec, "cancelled during cooldown wait")
			return
		case <-timer.C:
		}
	}

	bundle := p.courier.FetchEnrichment(fields.ClientKey)
	if bundle.Address == nil {
		log.Printf("pipeline: order %s: no default address, shipment creation aborted", fields.OrderNumber)
		p.failShipment(job, rec, "no default address on courier account")
		return
	}

	req := BuildShipmentRequest(fields, bundle, p.cfg.Pipeline.TimeZoneField)
	awb, err := p.courier.CreateShipment(fields.ClientKey, req)
	if err != nil {
		log.Printf("pipeline: order %s: create shipment: %v", fields.OrderNumber, err)
		p.failShipment(job, rec, err.Error())
		return
	}

	p.guard.RecordSuccess(fields.OrderNumber, p.now())
	log.Printf("pipeline: order %s: shipment booked, AWB %s", fields.OrderNumber, awb)
	if err := p.db.UpdateShipmentStatus(rec.ID, store.ShipmentBooked, awb, ""); err != nil {
		log.Printf("pipeline: update shipment: %v", err)
	}
	p.emitEvent(messaging.MsgShipmentCreated, job.ShopDomain, messaging.ShipmentCreated{
		OrderID:     fields.OrderID,
		OrderNumber: fields.OrderNumber,
		ClientKey:   fields.ClientKey,
		AWB:         awb,
	})

	// Booking and tracking propagation are separately observable
	// outcomes; a propagation failure does not unwind the shipment.
	outcome, err := p.propagateForShop(job.ShopDomain, fields.OrderID, awb)
	if err != nil {
		log.Printf("pipeline: order %s: tracking propagation: %v", fields.OrderNumber, err)
		p.finishDelivery(job, store.DeliveryShipped, fmt.Sprintf("AWB %s booked, tracking update failed: %v", awb, err))
		return
	}
	if err := p.db.UpdateShipmentStatus(rec.ID, store.ShipmentTracked, awb, ""); err != nil {
		log.Printf("pipeline: update shipment: %v", err)
	}
	p.emitEvent(messaging.MsgTrackingUpdated, job.ShopDomain, messaging.TrackingUpdated{
		OrderID: fields.OrderID,
		AWB:     awb,
		Action:  outcome.Action,
	})
	p.finishDelivery(job, store.DeliveryShipped, "AWB "+awb)
}

// propagateForShop resolves the shop's offline session and pushes the
// tracking number to its fulfillment record.
func (p *Processor) propagateForShop(shopDomain string, orderID int64, awb string) (*TrackingOutcome, error) {
	if shopDomain == "" {
		return nil, fmt.Errorf("no shop header on webhook, cannot update tracking")
	}
	sess, err := p.db.GetShopSession(shopDomain)
	if err != nil {
		return nil, fmt.Errorf("load session for %s: %w", shopDomain, err)
	}
	return p.PropagateTracking(p.ShopClient(sess), orderID, awb)
}

// ShopClient builds an Admin API client for a stored shop session.
func (p *Processor) ShopClient(sess *store.ShopSession) *shopify.Client {
	base := p.cfg.Shopify.BaseURL
	if base == "" {
		base = shopify.AdminBaseURL(sess.ShopDomain, p.cfg.Shopify.APIVersion)
	}
	return shopify.NewClient(base, sess.AccessToken, p.cfg.Shopify.Timeout)
}

// BuildShipmentRequest assembles the courier booking body from the
// transformed order and the enrichment lookups. Missing configuration
// falls back to next-day, non-document service.
func BuildShipmentRequest(f *ShipmentFields, bundle courier.EnrichmentBundle, timeZone string) *courier.ShipmentRequest {
	deliveryType := "Next Day"
	loadType := "Non-document"
	if bundle.Config != nil {
		if bundle.Config.ServiceType != "" {
			deliveryType = bundle.Config.ServiceType
		}
		if bundle.Config.CourierType != "" {
			loadType = bundle.Config.CourierType
		}
	}
	if timeZone == "" {
		timeZone = "00:00"
	}
	addr := bundle.Address
	return &courier.ShipmentRequest{
		ClientKey:                      f.ClientKey,
		DeliveryType:                   deliveryType,
		LoadType:                       loadType,
		ConsignmentType:                "FORWARD",
		Description:                    f.Description,
		Weight:                         f.Weight,
		PaymentType:                    f.PaymentType,
		CODAmount:                      fmt.Sprintf("%.2f", f.CODAmount),
		NumPieces:                      f.Pieces,
		CustomerReferenceNumber:        f.OrderNumber,
		OriginAddressName:              addr.ContactPerson,
		OriginAddressMobileNumber:      addr.MobileNumber,
		OriginAddressHouseNo:           addr.HouseNo,
		OriginAddressBuildingName:      addr.BuildingName,
		OriginAddressArea:              addr.Area,
		OriginAddressLandmark:          addr.Landmark,
		OriginAddressCity:              addr.City,
		OriginAddressType:              "Normal",
		OriginAddressCountry:           addr.Country,
		DestinationAddressName:         f.DropoffName,
		DestinationAddressMobileNumber: f.DropoffPhone,
		DestinationAddressCountry:      f.Country,
		DestinationAddressArea:         f.DropoffArea,
		DestinationAddressCity:         f.DropoffCity,
		DestinationAddressType:         "Normal",
		PickupDate:                     f.PickupDate,
		TimeZone:                       timeZone,
		ShipType:                       f.ShipType,
	}
}

func (p *Processor) failShipment(job *Job, rec *store.Shipment, reason string) {
	if rec.ID != 0 {
		if err := p.db.UpdateShipmentStatus(rec.ID, store.ShipmentFailed, "", reason); err != nil {
			log.Printf("pipeline: update shipment: %v", err)
		}
	}
	p.emitEvent(messaging.MsgShipmentFailed, job.ShopDomain, messaging.ShipmentFailed{
		OrderID:     rec.OrderID,
		OrderNumber: rec.OrderNumber,
		ClientKey:   rec.ClientKey,
		Reason:      reason,
	})
	p.finishDelivery(job, store.DeliveryFailed, reason)
}

func (p *Processor) finishDelivery(job *Job, status, detail string) {
	if job.DeliveryID == "" {
		return
	}
	if err := p.db.UpdateDeliveryStatus(job.DeliveryID, status, detail); err != nil {
		log.Printf("pipeline: update delivery: %v", err)
	}
}

func (p *Processor) emitEvent(msgType, shop string, payload any) {
	data, err := messaging.NewEnvelope(msgType, shop, payload).Encode()
	if err != nil {
		log.Printf("pipeline: encode %s event: %v", msgType, err)
		return
	}
	if err := p.db.EnqueueOutbox(p.cfg.Messaging.EventsTopic, data, msgType, shop); err != nil {
		log.Printf("pipeline: enqueue %s event: %v", msgType, err)
	}
}
