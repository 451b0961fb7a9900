package storage

const schema = `
-- The 'kv' table holds every persisted record as a JSON document under its key.
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at DATETIME NOT NULL
);
`
