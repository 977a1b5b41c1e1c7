// Package services contains HTTP clients for the external providers the
// moodlist pipeline consumes.
//
// Two provider contracts are defined:
//   - [Recommender] : chat completion endpoint returning free text
//   - [Catalog] : music catalog search, profile, and playlist management
//
// [SpotifyService] implements Catalog against the Spotify Web API and
// [OpenAIService] implements Recommender against the chat completions API.
// Both are black boxes from the pipeline's perspective; their failures
// surface as wrapped provider errors and are never retried here.
package services
