package provider

import (
	"context"

	"github.com/fetchdl/fetchdl/internal/domain"
)

// handlerFunc fetches and normalizes one provider kind.
type handlerFunc func(ctx context.Context, url string, opts Options) (*domain.FetchResult, error)

// Dispatcher routes a URL to its provider handler and normalizes every
// provider's native response into the canonical FetchResult. It never
// lets a provider failure escape: callers always get a result or a
// *domain.FetchError.
type Dispatcher struct {
	source   Source
	handlers map[domain.URLKind]handlerFunc
}

// NewDispatcher creates a dispatcher over the given media source.
func NewDispatcher(source Source) *Dispatcher {
	d := &Dispatcher{source: source}

	d.handlers = map[domain.URLKind]handlerFunc{
		domain.KindYouTube:     d.clipHandler(domain.KindYouTube),
		domain.KindInstagram:   d.fetchInstagram,
		domain.KindTikTok:      d.fetchTikTok,
		domain.KindFacebook:    d.clipHandler(domain.KindFacebook),
		domain.KindTwitter:     d.clipHandler(domain.KindTwitter),
		domain.KindReddit:      d.clipHandler(domain.KindReddit),
		domain.KindSoundCloud:  d.clipHandler(domain.KindSoundCloud),
		domain.KindDailymotion: d.clipHandler(domain.KindDailymotion),
		domain.KindTwitch:      d.clipHandler(domain.KindTwitch),
	}

	return d
}

// Fetch classifies the URL, invokes the matching handler and returns the
// normalized result. Unsupported URLs fail immediately without touching
// the source.
func (d *Dispatcher) Fetch(ctx context.Context, url string, opts Options) (*domain.FetchResult, error) {
	kind := Classify(url)

	handler, ok := d.handlers[kind]
	if !ok {
		return nil, domain.NewFetchError(domain.KindUnsupported, "classify", domain.ErrUnsupportedURL)
	}

	return handler(ctx, url, opts)
}

// clipHandler builds the handler for a single-item provider. All of them
// share the same normalization: one payload item, audio extension check,
// provider type tag otherwise.
func (d *Dispatcher) clipHandler(kind domain.URLKind) handlerFunc {
	return func(ctx context.Context, url string, opts Options) (*domain.FetchResult, error) {
		clip, err := d.source.FetchClip(ctx, url, opts)
		if err != nil {
			return nil, domain.NewFetchError(kind, "fetch", err)
		}
		if clip == nil || len(clip.Data) == 0 {
			return nil, domain.NewFetchError(kind, "fetch", domain.ErrEmptyResult)
		}

		item := domain.MediaItem{
			Link:        clip.Link,
			Title:       clip.Title,
			Description: clip.Description,
			Thumbnail:   clip.Thumbnail,
			Channel:     clip.Channel,
			ChannelURL:  clip.ChannelURL,
			Duration:    clip.Duration,
			ViewCount:   clip.ViewCount,
			LikeCount:   clip.LikeCount,
			Ext:         clip.Ext,
			Delivery:    classifyClip(clip, opts),
			Data:        clip.Data,
		}

		return &domain.FetchResult{Kind: kind, Items: []domain.MediaItem{item}}, nil
	}
}

func (d *Dispatcher) fetchInstagram(ctx context.Context, url string, opts Options) (*domain.FetchResult, error) {
	items, err := d.source.FetchGallery(ctx, url)
	if err != nil {
		return nil, domain.NewFetchError(domain.KindInstagram, "fetch", err)
	}
	if len(items) == 0 {
		return nil, domain.NewFetchError(domain.KindInstagram, "fetch", domain.ErrEmptyResult)
	}

	result := &domain.FetchResult{Kind: domain.KindInstagram}
	for _, it := range items {
		result.Items = append(result.Items, domain.MediaItem{
			Link:     it.Link,
			Ext:      it.Ext,
			Delivery: classifyExt(it.Ext),
			Data:     it.Data,
		})
	}

	return result, nil
}

func (d *Dispatcher) fetchTikTok(ctx context.Context, url string, opts Options) (*domain.FetchResult, error) {
	post, err := d.source.FetchPost(ctx, url)
	if err != nil {
		return nil, domain.NewFetchError(domain.KindTikTok, "fetch", err)
	}
	if post == nil || len(post.Items) == 0 {
		return nil, domain.NewFetchError(domain.KindTikTok, "fetch", domain.ErrEmptyResult)
	}

	result := &domain.FetchResult{Kind: domain.KindTikTok}
	for _, it := range post.Items {
		result.Items = append(result.Items, domain.MediaItem{
			Link:     post.Link,
			Username: post.Username,
			Ext:      it.Ext,
			Delivery: classifyTag(it.TypeTag),
			Data:     it.Data,
		})
	}

	return result, nil
}
