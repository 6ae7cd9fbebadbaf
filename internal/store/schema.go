package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    name                 TEXT PRIMARY KEY,
    value                INTEGER NOT NULL
);

INSERT OR IGNORE INTO meta (name, value) VALUES ('revision', 0);
`
