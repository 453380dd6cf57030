//go:build !sqlite_vec

package store

import (
	_ "modernc.org/sqlite"
)

// Default build: the pure-Go driver. Cosine distance comes from the compat
// function registered in vec_compat.go.
const driverName = "sqlite"
