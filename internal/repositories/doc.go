// Package repositories implements SQLite persistence for links.
//
// [LinkRepository] satisfies [models.LinkStore] over the spotify_github table created by the embedded migrations in
// package shared. Writes use INSERT OR REPLACE keyed on the integer identity, so saving a link twice leaves one row and
// the last write wins. A link is validated before every write; rows with missing credentials are never stored.
//
// The sync workers call the repository from many goroutines at once. SQLite serializes writers, so a file database
// should be opened with max_open_conns = 1 (the default configuration) to avoid "database is locked" errors.
package repositories
