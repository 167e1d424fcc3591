package pipeline

import (
	"fmt"
	"sync"

	"shipgate/shopify"
)

// TrackingCompany is the carrier label attached to fulfillments; the
// platform has no entry for this courier so the generic one is used.
const TrackingCompany = "Others"

// TrackingOutcome reports which path propagation took.
type TrackingOutcome struct {
	Action      string               `json:"action"` // "updated" or "created"
	Fulfillment *shopify.Fulfillment `json:"fulfillment,omitempty"`
}

func trackingURL(awb string) string {
	return "https://www.my-shipping-company.com?tracking_number=" + awb
}

// PropagateTracking attaches a tracking number to the order's fulfillment
// record: update the first existing fulfillment if there is one, create a
// new one against the first fulfillment order otherwise. The choice is
// made at call time, so concurrent calls for the same order are
// serialized with a per-order lock to keep two of them from both taking
// the create path.
func (p *Processor) PropagateTracking(client *shopify.Client, orderID int64, trackingNumber string) (*TrackingOutcome, error) {
	unlock := p.locks.lock(orderID)
	defer unlock()

	fulfillmentOrders, err := client.GetFulfillmentOrders(orderID)
	if err != nil {
		return nil, fmt.Errorf("list fulfillment orders: %w", err)
	}
	if len(fulfillmentOrders) == 0 {
		return nil, fmt.Errorf("no fulfillment orders found for order %d", orderID)
	}

	fulfillments, err := client.GetFulfillments(orderID)
	if err != nil {
		return nil, fmt.Errorf("list fulfillments: %w", err)
	}

	if len(fulfillments) > 0 {
		updated, err := client.UpdateFulfillmentTracking(fulfillments[0].ID, shopify.TrackingInfo{
			Number:  trackingNumber,
			Company: TrackingCompany,
		})
		if err != nil {
			return nil, fmt.Errorf("update tracking: %w", err)
		}
		return &TrackingOutcome{Action: "updated", Fulfillment: updated}, nil
	}

	created, err := client.CreateFulfillment(fulfillmentOrders[0].ID, shopify.TrackingInfo{
		Number:  trackingNumber,
		Company: TrackingCompany,
		URL:     trackingURL(trackingNumber),
	})
	if err != nil {
		return nil, fmt.Errorf("create fulfillment: %w", err)
	}
	return &TrackingOutcome{Action: "created", Fulfillment: created}, nil
}

// orderLocks hands out one mutex per order id. Entries are released when
// the last holder unlocks.
type orderLocks struct {
	mu sync.Mutex
	m  map[int64]*orderLock
}

type orderLock struct {
	sync.Mutex
	refs int
}

func newOrderLocks() *orderLocks {
	return &orderLocks{m: make(map[int64]*orderLock)}
}

func (l *orderLocks) lock(orderID int64) func() {
	l.mu.Lock()
	entry, ok := l.m[orderID]
	if !ok {
		entry = &orderLock{}
		l.m[orderID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()
	return func() {
		entry.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.m, orderID)
		}
		l.mu.Unlock()
	}
}
