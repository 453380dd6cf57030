//go:build sqlite_vec && cgo

package store

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// sqlite_vec build: the cgo driver with the sqlite-vec extension, which
// supplies vec_distance_cosine natively.
const driverName = "sqlite3"

func init() {
	// Register sqlite-vec as an auto-loadable extension for mattn/go-sqlite3.
	vec.Auto()
}
