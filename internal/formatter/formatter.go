// package formatter renders dashboard views as plain text, Markdown or CSV and writes them to disk
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/spotboard/internal/models"
	"github.com/desertthunder/spotboard/internal/shared"
)

// Format is an output format for [Render].
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	CSV      Format = "csv"
	JSON     Format = "json"
)

// ParseFormat validates a format name; "md" is accepted for Markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", Text:
		return Text, nil
	case "md", Markdown:
		return Markdown, nil
	case CSV, JSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: format %q (want text, markdown, csv or json)", shared.ErrInvalidArgument, s)
	}
}

// Table is a titled grid of cells, the common shape of every view.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// TracksTable lists ranked tracks.
func TracksTable(title string, tracks []models.Track) Table {
	t := Table{Title: title, Headers: []string{"#", "Track", "Artists", "Album", "Duration", "Preview", "ID"}}
	for i, track := range tracks {
		rank := track.Rank
		if rank == 0 {
			rank = i + 1
		}
		preview := "-"
		if track.HasPreview() {
			preview = "yes"
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(rank),
			track.Name,
			shared.JoinNames(track.Artists),
			track.Album.Name,
			shared.FormatDuration(track.DurationMS),
			preview,
			track.ID,
		})
	}
	return t
}

// ArtistsTable lists ranked artists.
func ArtistsTable(title string, artists []models.Artist) Table {
	t := Table{Title: title, Headers: []string{"#", "Artist", "Genres", "Popularity", "Followers", "ID"}}
	for i, a := range artists {
		rank := a.Rank
		if rank == 0 {
			rank = i + 1
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(rank),
			a.Name,
			strings.Join(a.Genres, ", "),
			strconv.Itoa(a.Popularity),
			strconv.Itoa(a.Followers),
			a.ID,
		})
	}
	return t
}

// AlbumsTable lists album scores in ranking order.
func AlbumsTable(title string, scores []models.AlbumScore) Table {
	t := Table{Title: title, Headers: []string{"#", "Album", "Artists", "Score", "Top Track", "ID"}}
	for i, s := range scores {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			s.Album.Name,
			shared.JoinNames(s.Album.Artists),
			strconv.Itoa(s.Score),
			s.Representative.Name,
			s.Album.ID,
		})
	}
	return t
}

// PlaylistsTable lists playlists.
func PlaylistsTable(title string, playlists []models.Playlist) Table {
	t := Table{Title: title, Headers: []string{"#", "Playlist", "Owner", "Tracks", "Description", "ID"}}
	for i, p := range playlists {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			p.Name,
			p.Owner,
			strconv.Itoa(p.TrackCount),
			p.Description,
			p.ID,
		})
	}
	return t
}

// Render renders t in format. JSON is not a table format; callers marshal their own data.
func Render(t Table, format Format) ([]byte, error) {
	switch format {
	case Text, "":
		return ToText(t), nil
	case Markdown:
		return ToMarkdown(t, ""), nil
	case CSV:
		return ToCSV(t)
	default:
		return nil, fmt.Errorf("%w: cannot render table as %q", shared.ErrInvalidArgument, format)
	}
}

// ToCSV renders the headers and rows; the title is omitted.
func ToCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(t.Headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders a heading and a pipe table, with an optional cover image.
func ToMarkdown(t Table, imageFilename string) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", t.Title)
	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if len(t.Rows) == 0 {
		buf.WriteString("_Nothing found._\n")
		return buf.Bytes()
	}

	buf.WriteString("| " + strings.Join(escapeCells(t.Headers), " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(t.Headers)) + "\n")
	for _, row := range t.Rows {
		buf.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
	}

	return buf.Bytes()
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

// ToText renders a bordered table under the title.
func ToText(t Table) []byte {
	var buf bytes.Buffer
	buf.WriteString(t.Title + "\n")

	if len(t.Rows) == 0 {
		buf.WriteString("Nothing found.\n")
		return buf.Bytes()
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers...).
		Rows(t.Rows...)
	buf.WriteString(tbl.String())
	buf.WriteString("\n")

	return buf.Bytes()
}

// FeatureBars renders one bar per descriptor, e.g. "Energy           ████░ 81%".
func FeatureBars(f models.AudioFeatures, width int) string {
	if width <= 0 {
		width = 20
	}

	var b strings.Builder
	for _, m := range f.Metrics() {
		value := min(max(m.Value, 0), 1)
		filled := int(value*float64(width) + 0.5)
		fmt.Fprintf(&b, "%-16s %s%s %3d%%\n",
			m.Name,
			strings.Repeat("█", filled),
			strings.Repeat("░", width-filled),
			int(value*100+0.5),
		)
	}
	return b.String()
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// Slug turns a title into a file name stem.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "export"
	}
	return s
}

var extensions = map[Format]string{Text: ".txt", Markdown: ".md", CSV: ".csv"}

// WriteExport renders t and writes it to path.
//
// Defaults to {slug(title)}{ext} in the working directory.
func WriteExport(t Table, format Format, path string) (string, error) {
	if path == "" {
		path = Slug(t.Title) + extensions[format]
	}

	data, err := Render(t, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a view to Markdown in a dedicated directory.
//
// Directory name defaults to the title slug. imageURL is optional; when set the cover is
// downloaded next to README.md and a failed download is only a warning.
func WriteMarkdownExport(t Table, outputDir, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = Slug(t.Title)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, ToMarkdown(t, coverImageFilename), 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}
