//go:build !sqlite_vec

package provenance

import _ "modernc.org/sqlite"

// rawDriverName matches the store's driver so tests can reach behind it.
const rawDriverName = "sqlite"
