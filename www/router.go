package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"shipgate/config"
	"shipgate/messaging"
	"shipgate/pipeline"
	"shipgate/store"
)

type Handlers struct {
	cfg       *config.Config
	db        *store.DB
	sessions  *sessions.CookieStore
	processor *pipeline.Processor
	msg       *messaging.Client
}

func NewRouter(cfg *config.Config, db *store.DB, processor *pipeline.Processor, msg *messaging.Client) http.Handler {
	h := &Handlers{
		cfg:       cfg,
		db:        db,
		sessions:  newSessionStore(cfg.Web.SessionSecret),
		processor: processor,
		msg:       msg,
	}

	h.ensureDefaultAdmin(db)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Webhook intake and diagnostics; the webhook endpoint authenticates
	// itself via the HMAC header, nothing else applies.
	r.Post("/api/webhooks/ordercreate", h.handleOrderCreateWebhook)
	r.Get("/api/webhooks/latest", h.handleLatestWebhook)
	r.Get("/api/health", h.apiHealthCheck)

	// Ops login
	r.Post("/api/admin/login", h.handleAdminLogin)
	r.Post("/api/admin/logout", h.handleAdminLogout)

	// Ops surface
	r.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/api/shipments", h.apiListShipments)
		r.Get("/api/deliveries", h.apiListDeliveries)
	})

	// Shop-authenticated API; the session cookie is set by the install
	// flow, which lives outside this service.
	r.Group(func(r chi.Router) {
		r.Use(h.requireShopSession)
		r.Post("/api/update-tracking", h.handleUpdateTracking)
		r.Get("/api/orders/all", h.apiAllOrders)
		r.Get("/api/shop/all", h.apiShopInfo)
	})

	return r
}
