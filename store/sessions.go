package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ShopSession is the offline access token for an installed shop. Rows are
// written by the OAuth install callback; this service only reads them to
// call the Admin API on behalf of the shop.
type ShopSession struct {
	ID          int64     `json:"id"`
	ShopDomain  string    `json:"shop_domain"`
	AccessToken string    `json:"-"`
	Scope       string    `json:"scope"`
	InstalledAt time.Time `json:"installed_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var ErrNoSession = errors.New("no session for shop")

func (db *DB) UpsertShopSession(shopDomain, accessToken, scope string) error {
	_, err := db.Exec(db.Q(`INSERT INTO shop_sessions (shop_domain, access_token, scope) VALUES (?, ?, ?)
		ON CONFLICT (shop_domain) DO UPDATE SET access_token=excluded.access_token, scope=excluded.scope, updated_at=datetime('now','localtime')`),
		shopDomain, accessToken, scope)
	if err != nil {
		return fmt.Errorf("upsert shop session: %w", err)
	}
	return nil
}

func (db *DB) GetShopSession(shopDomain string) (*ShopSession, error) {
	var s ShopSession
	var installedAt, updatedAt any
	err := db.QueryRow(db.Q(`SELECT id, shop_domain, access_token, scope, installed_at, updated_at FROM shop_sessions WHERE shop_domain=?`), shopDomain).
		Scan(&s.ID, &s.ShopDomain, &s.AccessToken, &s.Scope, &installedAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	s.InstalledAt = parseTime(installedAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}

func (db *DB) DeleteShopSession(shopDomain string) error {
	_, err := db.Exec(db.Q(`DELETE FROM shop_sessions WHERE shop_domain=?`), shopDomain)
	return err
}
