package www

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

func (h *Handlers) apiListShipments(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	shipments, err := h.db.ListShipments(limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, shipments)
}

func (h *Handlers) apiListDeliveries(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	deliveries, err := h.db.ListDeliveries(limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, deliveries)
}

// apiAllOrders proxies the shop's orders, dropping cancelled ones.
func (h *Handlers) apiAllOrders(w http.ResponseWriter, r *http.Request) {
	client := h.processor.ShopClient(shopSession(r))
	orders, err := client.ListOrders("any")
	if err != nil {
		log.Printf("www: list orders: %v", err)
		h.jsonError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	filtered := orders[:0]
	for _, o := range orders {
		if o.CancelReason == nil {
			filtered = append(filtered, o)
		}
	}
	h.jsonOK(w, map[string]any{"success": true, "data": filtered})
}

func (h *Handlers) apiShopInfo(w http.ResponseWriter, r *http.Request) {
	client := h.processor.ShopClient(shopSession(r))
	shop, err := client.GetShop()
	if err != nil {
		log.Printf("www: fetch shop: %v", err)
		h.jsonError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]any{"success": true, "data": shop})
}

func (h *Handlers) apiHealthCheck(w http.ResponseWriter, r *http.Request) {
	dbOK := h.db.Ping() == nil
	msgOK := false
	if h.msg != nil {
		msgOK = h.msg.IsConnected()
	}
	h.jsonOK(w, map[string]any{
		"status":    "ok",
		"database":  dbOK,
		"courier":   h.cfg.Courier.BaseURL,
		"messaging": msgOK,
	})
}

func (h *Handlers) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.db.GetAdminUser(req.Username)
	if err != nil || !checkPassword(user.PasswordHash, req.Password) {
		h.jsonError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	session.Values["admin"] = true
	session.Values["username"] = req.Username
	if err := session.Save(r, w); err != nil {
		log.Printf("www: session save: %v", err)
	}
	h.jsonOK(w, map[string]any{"success": true})
}

func (h *Handlers) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, sessionName)
	session.Values["admin"] = false
	session.Values["username"] = ""
	session.Save(r, w)
	h.jsonOK(w, map[string]any{"success": true})
}

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}

func (h *Handlers) jsonMessage(w http.ResponseWriter, code int, success bool, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"success": success, "message": msg})
}
