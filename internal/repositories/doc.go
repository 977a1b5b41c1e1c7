// Package repositories provides SQLite-backed persistence for the moodlist CLI.
//
// Two concerns live here:
//   - [SessionRepository] : the opaque key/value store behind session.Store,
//     persisting catalog tokens across invocations
//   - [PlaylistRepository] : history of generated playlists and their
//     resolved tracks
//
// Schema is managed by the embedded migrations in internal/shared.
package repositories
