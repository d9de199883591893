package tradelog

const schemaDDL = `
CREATE TABLE IF NOT EXISTS uploads (
	upload_id     TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	file_type     TEXT NOT NULL,
	file_hash     TEXT NOT NULL UNIQUE,
	trade_count   INTEGER NOT NULL DEFAULT 0,
	skipped_count INTEGER NOT NULL DEFAULT 0,
	created_time  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_uploads_created ON uploads(created_time);

CREATE TABLE IF NOT EXISTS trades (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	upload_id   TEXT REFERENCES uploads(upload_id),
	market      TEXT NOT NULL,
	market_slug TEXT NOT NULL,
	timestamp   TEXT NOT NULL,
	price       REAL NOT NULL DEFAULT 0,
	shares      REAL NOT NULL DEFAULT 0,
	cost        REAL NOT NULL DEFAULT 0,
	type        TEXT NOT NULL,
	action      TEXT NOT NULL,
	side        TEXT NOT NULL,
	pnl         REAL NOT NULL DEFAULT 0,
	tx_hash     TEXT,
	resolution  TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_trades_identity
	ON trades(market_slug, timestamp, price, shares, type, side);
CREATE INDEX IF NOT EXISTS idx_trades_slug ON trades(market_slug);
CREATE INDEX IF NOT EXISTS idx_trades_timestamp ON trades(timestamp);

CREATE VIEW IF NOT EXISTS v_market_pnl AS
SELECT
	t.market_slug,
	MAX(t.market) AS market,
	COUNT(*) AS trades,
	SUM(t.cost) AS volume,
	SUM(t.pnl) AS pnl,
	SUM(CASE WHEN t.pnl > 0 THEN 1 ELSE 0 END) AS wins,
	SUM(CASE WHEN t.pnl < 0 THEN 1 ELSE 0 END) AS losses,
	SUM(CASE WHEN (t.action = 'Buy' AND t.side = 'YES') OR (t.action = 'Sell' AND t.side = 'NO') THEN t.shares
	         ELSE -t.shares END) AS exposure,
	SUM(CASE WHEN t.action = 'Buy' THEN t.cost ELSE -t.cost END) AS cost_basis,
	MIN(t.timestamp) AS first_trade,
	MAX(t.timestamp) AS last_trade
FROM trades t
GROUP BY t.market_slug;
`
