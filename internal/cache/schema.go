package cache

// SQL schemas for lookup cache tables.
// All cache tables use "cache_key" (the normalized ISBN) as the primary key.

// NDLCacheSchema defines the schema for National Diet Library SRU lookups
const NDLCacheSchema = `
CREATE TABLE IF NOT EXISTS ndl_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_ndl_cached_at ON ndl_cache(cached_at);
`

// GoogleBooksCacheSchema defines the schema for Google Books API lookups
const GoogleBooksCacheSchema = `
CREATE TABLE IF NOT EXISTS googlebooks_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_googlebooks_cached_at ON googlebooks_cache(cached_at);
`

// RakutenCacheSchema defines the schema for Rakuten Books API lookups
const RakutenCacheSchema = `
CREATE TABLE IF NOT EXISTS rakuten_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_rakuten_cached_at ON rakuten_cache(cached_at);
`

// Table names, one per cacheable provider.
const (
	NDLTable         = "ndl_cache"
	GoogleBooksTable = "googlebooks_cache"
	RakutenTable     = "rakuten_cache"
)

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	NDLCacheSchema,
	GoogleBooksCacheSchema,
	RakutenCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names
// Used to prevent SQL injection when interpolating table names
var ValidCacheTableNames = map[string]bool{
	NDLTable:         true,
	GoogleBooksTable: true,
	RakutenTable:     true,
}

// SourceTables maps the names accepted by the cache clear command to tables.
var SourceTables = map[string]string{
	"ndl":     NDLTable,
	"google":  GoogleBooksTable,
	"rakuten": RakutenTable,
}
