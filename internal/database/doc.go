// Package database provides the PostgreSQL connection pool used by the
// level snapshot writer.
//
// Storage is optional. The level feed runs entirely in memory when
// database.enabled is false, and nothing here is touched.
package database
