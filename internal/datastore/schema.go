package datastore

// CatalogSchema creates the catalog tables. Every statement is idempotent so
// it runs on each connect.
const CatalogSchema = `
CREATE TABLE IF NOT EXISTS genres (
	id      INTEGER PRIMARY KEY,
	name    TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS books (
	id          INTEGER PRIMARY KEY,
	isbn        TEXT,
	title       TEXT NOT NULL,
	author      TEXT,
	publisher   TEXT,
	price       INTEGER,
	c_code      TEXT,
	is_read     INTEGER NOT NULL DEFAULT 0,
	genre_id    INTEGER,
	FOREIGN KEY (genre_id) REFERENCES genres (id)
);

CREATE INDEX IF NOT EXISTS idx_books_genre_id ON books(genre_id);
`
