// package formatter provides functions to export a generated playlist to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/moodlist/moodlist/internal/models"
)

// ExportToCSV converts a generated playlist to CSV with columns: Position, ID, Title, Artist, Popularity, URI
func ExportToCSV(playlist *models.GeneratedPlaylist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Title", "Artist", "Popularity", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range playlist.Tracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.ID,
			track.Title,
			track.Artist,
			strconv.Itoa(track.Popularity),
			track.URI,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a generated playlist to Markdown.
func ExportToMarkdown(playlist *models.GeneratedPlaylist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", playlist.Name))

	if playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", playlist.Description))
	}
	if playlist.Prompt != "" {
		buf.WriteString(fmt.Sprintf("**Prompt**: %s\n\n", playlist.Prompt))
	}

	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(playlist.Tracks)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range playlist.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (popularity %d)\n", i+1, track.Artist, track.Title, track.Popularity))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a generated playlist to plain text.
func ExportToText(playlist *models.GeneratedPlaylist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", playlist.Name))
	if playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", playlist.Description))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(playlist.Tracks)))

	for i, track := range playlist.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a generated playlist to indented JSON.
func ExportToJSON(playlist *models.GeneratedPlaylist) ([]byte, error) {
	data, err := json.MarshalIndent(playlist, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal playlist: %w", err)
	}
	return append(data, '\n'), nil
}

// Export dispatches on format: csv, markdown (md), txt, or json.
func Export(playlist *models.GeneratedPlaylist, format string) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(playlist)
	case "markdown", "md":
		return ExportToMarkdown(playlist)
	case "txt", "text":
		return ExportToText(playlist)
	case "json":
		return ExportToJSON(playlist)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
