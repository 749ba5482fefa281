package provider

import (
	"context"
)

// Options configures a fetch.
type Options struct {
	// AudioOnly requests audio-only extraction. Honored by the
	// single-item providers; gallery and post fetches ignore it.
	AudioOnly bool
}

// Source fetches raw media for an already classified URL. Implementations
// wrap the external download tooling; they return the provider's native
// shape untouched and leave normalization to the dispatcher.
type Source interface {
	// FetchClip retrieves a single media item (YouTube, Facebook,
	// Twitter, Reddit, SoundCloud, Dailymotion, Twitch).
	FetchClip(ctx context.Context, url string, opts Options) (*RawClip, error)

	// FetchGallery retrieves an Instagram post, which may carry several
	// images and videos.
	FetchGallery(ctx context.Context, url string) ([]RawGalleryItem, error)

	// FetchPost retrieves a TikTok post with its media entries.
	FetchPost(ctx context.Context, url string) (*RawPost, error)
}

// RawClip is the native shape of a single-item download.
type RawClip struct {
	Link        string
	Title       string
	Description string
	Thumbnail   string
	Channel     string
	ChannelURL  string
	Duration    string
	ViewCount   int64
	LikeCount   int64
	Ext         string
	// TypeTag is the provider's own item classification, commonly
	// "video".
	TypeTag string
	Data    []byte
}

// RawGalleryItem is one entry of an Instagram post. The provider reports
// no type tag; classification is by extension.
type RawGalleryItem struct {
	Link     string
	Filename string
	Ext      string
	Data     []byte
}

// RawPost is a TikTok post.
type RawPost struct {
	Link     string
	Username string
	Items    []RawPostItem
}

// RawPostItem is one media entry of a TikTok post, classified by the
// provider's per-item type tag.
type RawPostItem struct {
	MediaLink string
	FileName  string
	Ext       string
	TypeTag   string
	Data      []byte
}
