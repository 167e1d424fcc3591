package store

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS shop_sessions (
    id           BIGSERIAL PRIMARY KEY,
    shop_domain  TEXT NOT NULL UNIQUE,
    access_token TEXT NOT NULL,
    scope        TEXT NOT NULL DEFAULT '',
    installed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS webhook_deliveries (
    id           BIGSERIAL PRIMARY KEY,
    delivery_id  TEXT NOT NULL UNIQUE,
    shop_domain  TEXT NOT NULL DEFAULT '',
    order_id     BIGINT NOT NULL DEFAULT 0,
    order_number TEXT NOT NULL DEFAULT '',
    payload      BYTEA,
    status       TEXT NOT NULL DEFAULT 'received',
    detail       TEXT NOT NULL DEFAULT '',
    received_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_deliveries_order ON webhook_deliveries(order_id);
CREATE INDEX IF NOT EXISTS idx_deliveries_status ON webhook_deliveries(status);

CREATE TABLE IF NOT EXISTS shipments (
    id             BIGSERIAL PRIMARY KEY,
    order_id       BIGINT NOT NULL DEFAULT 0,
    order_number   TEXT NOT NULL DEFAULT '',
    client_key     TEXT NOT NULL DEFAULT '',
    awb            TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT 'pending',
    error_detail   TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_shipments_order ON shipments(order_id);
CREATE INDEX IF NOT EXISTS idx_shipments_number ON shipments(order_number);

CREATE TABLE IF NOT EXISTS outbox (
    id         BIGSERIAL PRIMARY KEY,
    topic      TEXT NOT NULL,
    payload    BYTEA NOT NULL,
    msg_type   TEXT NOT NULL DEFAULT '',
    shop       TEXT NOT NULL DEFAULT '',
    retries    INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    sent_at    TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;

CREATE TABLE IF NOT EXISTS admin_users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
