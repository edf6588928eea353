// package formatter exports track lists to CSV, Markdown or plain text files
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/audiobox/internal/models"
	"github.com/desertthunder/audiobox/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat resolves a --format value. An empty value is inferred from the extension of path,
// falling back to plain text.
func ParseFormat(value, path string) (Format, error) {
	if value == "" {
		value = strings.TrimPrefix(filepath.Ext(path), ".")
		if value == "" {
			return FormatText, nil
		}
	}

	switch strings.ToLower(value) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidInput, value)
	}
}

// ExportToCSV converts tracks to CSV with columns: ID, Title, Artist, Album, Duration, Preview, Cover
func ExportToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "Preview", "Cover"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			strconv.FormatFloat(track.Duration, 'f', 3, 64),
			track.AudioURL,
			track.Cover,
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

// ExportToMarkdown converts tracks to a Markdown list headed by title, linking previews where present.
func ExportToMarkdown(title string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))

	buf.WriteString("## Tracks\n\n")
	for i, track := range tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		name := track.Title
		if track.Playable() {
			name = fmt.Sprintf("[%s](%s)", track.Title, track.AudioURL)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.Artist, name, albumPart, shared.FormatDuration(track.Duration))
	}

	return buf.Bytes(), nil
}

// ExportToText converts tracks to plain text
func ExportToText(title string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", title)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))

	for i, track := range tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.Artist, track.Title)
	}

	return buf.Bytes(), nil
}

// Export renders tracks in the given format.
func Export(format Format, title string, tracks []models.Track) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(tracks)
	case FormatMarkdown:
		return ExportToMarkdown(title, tracks)
	case FormatText:
		return ExportToText(title, tracks)
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidInput, format)
	}
}

// WriteExport renders tracks and writes them to path, creating parent directories as needed.
func WriteExport(path string, format Format, title string, tracks []models.Track) error {
	data, err := Export(format, title, tracks)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return nil
}
