package www

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"shipgate/store"
)

const sessionName = "shipgate-session"

type contextKey string

const shopSessionKey contextKey = "shopSession"

func newSessionStore(secret string) *sessions.CookieStore {
	if secret == "" {
		secret = "shipgate-default-secret-change-me"
	}
	s := sessions.NewCookieStore([]byte(secret))
	s.Options.HttpOnly = true
	s.Options.SameSite = http.SameSiteLaxMode
	return s
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *Handlers) isAdmin(r *http.Request) bool {
	session, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return false
	}
	auth, ok := session.Values["admin"].(bool)
	return ok && auth
}

func (h *Handlers) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.isAdmin(r) {
			h.jsonError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireShopSession resolves the calling shop to its stored offline
// token. The shop comes from the login session cookie when present, or
// the X-Shop-Domain header for token-holding backends.
func (h *Handlers) requireShopSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shop := ""
		if session, err := h.sessions.Get(r, sessionName); err == nil {
			shop, _ = session.Values["shop"].(string)
		}
		if shop == "" {
			shop = r.Header.Get("X-Shop-Domain")
		}
		if shop == "" {
			h.jsonError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		sess, err := h.db.GetShopSession(shop)
		if err != nil {
			h.jsonError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), shopSessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func shopSession(r *http.Request) *store.ShopSession {
	sess, _ := r.Context().Value(shopSessionKey).(*store.ShopSession)
	return sess
}

func (h *Handlers) ensureDefaultAdmin(db *store.DB) {
	exists, err := db.AdminUserExists()
	if err != nil || exists {
		return
	}
	hash, err := hashPassword("admin")
	if err != nil {
		return
	}
	db.CreateAdminUser("admin", hash)
}
