// Package db runs PostgreSQL work through two retry policies: one for
// establishing the pool and one for every command sent over it. Both policies
// come from a strategy registry, keyed by the database-connection and
// database-command technologies.
package db
