// Package fetch implements the media-fetch side of the pipeline on top of
// yt-dlp, which covers every supported provider.
package fetch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/fetchdl/fetchdl/internal/config"
	"github.com/fetchdl/fetchdl/internal/domain"
	"github.com/fetchdl/fetchdl/internal/provider"
)

// YtDlp implements provider.Source by shelling out to yt-dlp. Every call
// downloads into a fresh temp directory, reads the files into memory and
// removes them afterwards.
type YtDlp struct {
	dir     string
	timeout time.Duration
	logger  *slog.Logger
}

// NewYtDlp creates a yt-dlp backed media source.
func NewYtDlp(cfg config.DownloadConfig, logger *slog.Logger) *YtDlp {
	return &YtDlp{
		dir:     cfg.Dir,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// mediaInfo is the slice of yt-dlp's info JSON the bot cares about.
// yt-dlp prints one JSON document per downloaded entry.
type mediaInfo struct {
	ID             string  `json:"id"`
	Type           string  `json:"_type"`
	WebpageURL     string  `json:"webpage_url"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Thumbnail      string  `json:"thumbnail"`
	Channel        string  `json:"channel"`
	ChannelURL     string  `json:"channel_url"`
	Uploader       string  `json:"uploader"`
	UploaderID     string  `json:"uploader_id"`
	DurationString string  `json:"duration_string"`
	ViewCount      float64 `json:"view_count"`
	LikeCount      float64 `json:"like_count"`
	Ext            string  `json:"ext"`
}

// entry pairs one parsed info document with the file it produced.
type entry struct {
	info mediaInfo
	path string
	ext  string
	data []byte
}

// FetchClip downloads a single media item.
func (y *YtDlp) FetchClip(ctx context.Context, url string, opts provider.Options) (*provider.RawClip, error) {
	entries, err := y.download(ctx, url, opts.AudioOnly)
	if err != nil {
		return nil, err
	}

	e := entries[0]
	return &provider.RawClip{
		Link:        firstNonEmpty(e.info.WebpageURL, url),
		Title:       e.info.Title,
		Description: e.info.Description,
		Thumbnail:   e.info.Thumbnail,
		Channel:     firstNonEmpty(e.info.Channel, e.info.Uploader),
		ChannelURL:  e.info.ChannelURL,
		Duration:    e.info.DurationString,
		ViewCount:   int64(e.info.ViewCount),
		LikeCount:   int64(e.info.LikeCount),
		Ext:         e.ext,
		TypeTag:     firstNonEmpty(e.info.Type, "video"),
		Data:        e.data,
	}, nil
}

// FetchGallery downloads an Instagram post. Carousels come back as one
// entry per slide.
func (y *YtDlp) FetchGallery(ctx context.Context, url string) ([]provider.RawGalleryItem, error) {
	entries, err := y.download(ctx, url, false)
	if err != nil {
		return nil, err
	}

	items := make([]provider.RawGalleryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, provider.RawGalleryItem{
			Link:     firstNonEmpty(e.info.WebpageURL, url),
			Filename: filepath.Base(e.path),
			Ext:      e.ext,
			Data:     e.data,
		})
	}

	return items, nil
}

// FetchPost downloads a TikTok post.
func (y *YtDlp) FetchPost(ctx context.Context, url string) (*provider.RawPost, error) {
	entries, err := y.download(ctx, url, false)
	if err != nil {
		return nil, err
	}

	post := &provider.RawPost{
		Link:     firstNonEmpty(entries[0].info.WebpageURL, url),
		Username: firstNonEmpty(entries[0].info.Uploader, entries[0].info.UploaderID),
	}
	for _, e := range entries {
		post.Items = append(post.Items, provider.RawPostItem{
			MediaLink: e.info.WebpageURL,
			FileName:  filepath.Base(e.path),
			Ext:       e.ext,
			TypeTag:   typeTag(e),
			Data:      e.data,
		})
	}

	return post, nil
}

// download runs yt-dlp into a fresh temp directory and returns the parsed
// entries with their file contents. The directory is always removed.
func (y *YtDlp) download(ctx context.Context, url string, audioOnly bool) ([]entry, error) {
	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	dir, err := os.MkdirTemp(y.dir, "fetchdl-*")
	if err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	defer os.RemoveAll(dir)

	dl := ytdlp.New().
		RestrictFilenames().
		ForceOverwrites().
		NoProgress().
		PrintJSON().
		Output(filepath.Join(dir, "%(id)s.%(ext)s"))

	if audioOnly {
		dl = dl.ExtractAudio().AudioFormat("mp3")
	} else {
		dl = dl.Format("b")
	}

	start := time.Now()
	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}

	infos, err := parseInfoLines(result.Stdout)
	if err != nil {
		return nil, err
	}

	entries, err := collectFiles(dir, infos)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrEmptyResult
	}

	var total int
	for _, e := range entries {
		total += len(e.data)
	}
	y.logger.Info("download finished",
		"url", url,
		"entries", len(entries),
		"bytes", total,
		"elapsed", time.Since(start),
	)

	return entries, nil
}

// parseInfoLines decodes the JSON documents yt-dlp printed, one per line.
func parseInfoLines(stdout string) ([]mediaInfo, error) {
	var infos []mediaInfo

	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var info mediaInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			continue
		}
		infos = append(infos, info)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read yt-dlp output: %w", err)
	}
	if len(infos) == 0 {
		return nil, domain.ErrEmptyResult
	}

	return infos, nil
}

// collectFiles matches downloaded files to info entries by ID. The output
// template is %(id)s.%(ext)s, so the base name without extension is the
// entry ID. The extension comes from the file on disk, not the info JSON:
// audio extraction rewrites it after the JSON was printed.
func collectFiles(dir string, infos []mediaInfo) ([]entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read download dir: %w", err)
	}

	byID := make(map[string]string, len(dirents))
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		id := strings.TrimSuffix(name, filepath.Ext(name))
		byID[id] = filepath.Join(dir, name)
	}

	var entries []entry
	for _, info := range infos {
		path, ok := byID[sanitizedID(info.ID)]
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read downloaded file: %w", err)
		}
		entries = append(entries, entry{
			info: info,
			path: path,
			ext:  strings.TrimPrefix(filepath.Ext(path), "."),
			data: data,
		})
	}

	return entries, nil
}

// sanitizedID mirrors what --restrict-filenames does to the ID in the
// output template.
func sanitizedID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}

func typeTag(e entry) string {
	// TikTok photo posts download as images; yt-dlp tags everything it
	// transcodes as a plain entry, so fall back to the extension.
	switch strings.ToLower(e.ext) {
	case "jpg", "jpeg", "png", "gif", "bmp", "webp":
		return "image"
	case "mp3", "m4a", "opus", "wav":
		return "audio"
	default:
		return firstNonEmpty(e.info.Type, "video")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
