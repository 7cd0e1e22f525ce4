// Package models defines the domain entities of the GitHub bio / Spotify link service and the persistence contract the sync engine consumes.
//
// The package contains two categories of types:
//
// 1. Persisted entities
//   - [Link] : one GitHub identity paired with one Spotify credential pair
//
// 2. Ephemeral values that never reach the database
//   - [TokenPair] : access and (optional, rotated) refresh token returned by Spotify's token endpoint
//   - [NowPlaying] : the track Spotify reports as currently playing
//   - [GithubIdentity] : the GitHub credentials carried inside the encrypted OAuth state parameter
//
// A [Link] is either fully present or absent: [Link.Validate] rejects partially initialized links and every [LinkStore] implementation must refuse to persist them.
// The [LinkStore] interface has replace-by-identity semantics for [LinkStore.Upsert], matching SQL REPLACE INTO.
package models
