// Package models defines domain entities shared across the moodlist pipeline.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external service data
//   - [Track] : Catalog track metadata used for matching and selection
//   - [Playlist] : Basic playlist metadata from the catalog service
//   - [Guess] : A (song, artist) pair parsed from one recommendation line
//
// 2. Persistent Entities: Database-backed records of generated playlists
//   - [GeneratedPlaylist] : A saved run with its prompt and resolved tracks
package models
