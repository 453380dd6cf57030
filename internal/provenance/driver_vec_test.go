//go:build sqlite_vec && cgo

package provenance

import _ "github.com/mattn/go-sqlite3"

// rawDriverName matches the store's driver so tests can reach behind it.
const rawDriverName = "sqlite3"
