package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/fetchdl/fetchdl/internal/domain"
	"github.com/fetchdl/fetchdl/internal/format"
	"github.com/fetchdl/fetchdl/pkg/telegram"
)

type sentMedia struct {
	chatID   string
	filename string
	opts     *telegram.MediaOptions
}

// fakeSender records sends and can fail specific video sends.
type fakeSender struct {
	texts    []string
	videos   []sentMedia
	photos   []sentMedia
	audios   []sentMedia
	videoErr map[int]error // keyed by call index
}

func (s *fakeSender) SendMessage(ctx context.Context, chatID, text string, opts *telegram.SendOptions) (*telegram.Message, error) {
	s.texts = append(s.texts, text)
	return &telegram.Message{MessageID: 1}, nil
}

func (s *fakeSender) SendVideo(ctx context.Context, chatID string, data []byte, filename string, opts *telegram.MediaOptions) (*telegram.Message, error) {
	idx := len(s.videos)
	s.videos = append(s.videos, sentMedia{chatID, filename, opts})
	if err, ok := s.videoErr[idx]; ok {
		return nil, err
	}
	return &telegram.Message{MessageID: 2}, nil
}

func (s *fakeSender) SendPhoto(ctx context.Context, chatID string, data []byte, filename string, opts *telegram.MediaOptions) (*telegram.Message, error) {
	s.photos = append(s.photos, sentMedia{chatID, filename, opts})
	return &telegram.Message{MessageID: 3}, nil
}

func (s *fakeSender) SendAudio(ctx context.Context, chatID string, data []byte, filename string, opts *telegram.MediaOptions) (*telegram.Message, error) {
	s.audios = append(s.audios, sentMedia{chatID, filename, opts})
	return &telegram.Message{MessageID: 4}, nil
}

func newTestPipeline(sender *fakeSender) *Pipeline {
	return New(sender, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDeliver_RoutesByDeliveryKind(t *testing.T) {
	sender := &fakeSender{}
	p := newTestPipeline(sender)

	result := &domain.FetchResult{
		Kind: domain.KindReddit,
		Items: []domain.MediaItem{
			{Ext: "mp4", Delivery: domain.DeliverVideo, Data: []byte("v")},
			{Ext: "jpg", Delivery: domain.DeliverImage, Data: []byte("i")},
			{Ext: "mp3", Delivery: domain.DeliverAudio, Data: []byte("a")},
		},
	}

	sent, err := p.Deliver(context.Background(), "42", 7, result, "")
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if sent != 3 {
		t.Errorf("sent = %d, want 3", sent)
	}
	if len(sender.videos) != 1 || len(sender.photos) != 1 || len(sender.audios) != 1 {
		t.Errorf("sends = %d/%d/%d video/photo/audio, want 1/1/1",
			len(sender.videos), len(sender.photos), len(sender.audios))
	}
	if !strings.HasSuffix(sender.videos[0].filename, ".mp4") {
		t.Errorf("video filename = %q, want .mp4 suffix", sender.videos[0].filename)
	}
}

func TestDeliver_UnknownKindIsSkipped(t *testing.T) {
	sender := &fakeSender{}
	p := newTestPipeline(sender)

	result := &domain.FetchResult{
		Kind: domain.KindInstagram,
		Items: []domain.MediaItem{
			{Ext: "txt", Delivery: domain.DeliverUnknown, Data: []byte("x")},
			{Ext: "jpg", Delivery: domain.DeliverImage, Data: []byte("i")},
		},
	}

	sent, err := p.Deliver(context.Background(), "42", 7, result, "")
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	// The skipped item must not inflate the sent count.
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
	if len(sender.texts) != 0 {
		t.Errorf("a skip is not a failure, no notice expected: %v", sender.texts)
	}
	if len(sender.photos) != 1 {
		t.Errorf("photo sends = %d, want 1", len(sender.photos))
	}
	if len(sender.videos)+len(sender.audios) != 0 {
		t.Error("no video or audio sends expected")
	}
}

func TestDeliver_ItemFailureContinues(t *testing.T) {
	sender := &fakeSender{videoErr: map[int]error{0: errors.New("file too large")}}
	p := newTestPipeline(sender)

	result := &domain.FetchResult{
		Kind: domain.KindTwitter,
		Items: []domain.MediaItem{
			{Ext: "mp4", Delivery: domain.DeliverVideo, Data: []byte("a")},
			{Ext: "mp4", Delivery: domain.DeliverVideo, Data: []byte("b")},
		},
	}

	sent, err := p.Deliver(context.Background(), "42", 7, result, "")
	if err == nil {
		t.Error("expected first send error to be reported")
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1 (second item still delivered)", sent)
	}
	if len(sender.videos) != 2 {
		t.Errorf("video attempts = %d, want 2", len(sender.videos))
	}
	if len(sender.texts) != 1 || !strings.Contains(sender.texts[0], "file too large") {
		t.Errorf("failure notice = %v, want one quoting the error", sender.texts)
	}
}

func TestDeliver_AudioButtonOnEligibleKinds(t *testing.T) {
	sender := &fakeSender{}
	p := newTestPipeline(sender)

	result := &domain.FetchResult{
		Kind:  domain.KindYouTube,
		Items: []domain.MediaItem{{Ext: "mp4", Delivery: domain.DeliverVideo, Data: []byte("v")}},
	}

	if _, err := p.Deliver(context.Background(), "42", 7, result, "res-1"); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	markup := sender.videos[0].opts.Markup
	if markup == nil {
		t.Fatal("expected inline keyboard on a youtube video")
	}
	button := markup.InlineKeyboard[0][0]
	if button.CallbackData != format.AudioCallback("res-1") {
		t.Errorf("CallbackData = %q", button.CallbackData)
	}
}

func TestDeliver_NoButtonWithoutResolvedID(t *testing.T) {
	sender := &fakeSender{}
	p := newTestPipeline(sender)

	result := &domain.FetchResult{
		Kind:  domain.KindYouTube,
		Items: []domain.MediaItem{{Ext: "mp4", Delivery: domain.DeliverVideo, Data: []byte("v")}},
	}

	if _, err := p.Deliver(context.Background(), "42", 7, result, ""); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if sender.videos[0].opts.Markup != nil {
		t.Error("no markup expected when the resolved record is missing")
	}
}

func TestDeliver_NoButtonOnExcludedKinds(t *testing.T) {
	for _, kind := range []domain.URLKind{domain.KindInstagram, domain.KindTikTok, domain.KindSoundCloud} {
		sender := &fakeSender{}
		p := newTestPipeline(sender)

		result := &domain.FetchResult{
			Kind:  kind,
			Items: []domain.MediaItem{{Ext: "mp4", Delivery: domain.DeliverVideo, Data: []byte("v")}},
		}

		if _, err := p.Deliver(context.Background(), "42", 7, result, "res-1"); err != nil {
			t.Fatalf("%s: Deliver failed: %v", kind, err)
		}
		if sender.videos[0].opts.Markup != nil {
			t.Errorf("%s: audio button must not be offered", kind)
		}
	}
}

func TestUploadName(t *testing.T) {
	got := uploadName(domain.MediaItem{Ext: "mkv"}, "mp4")
	if !strings.HasSuffix(got, ".mkv") {
		t.Errorf("uploadName = %q, want .mkv suffix", got)
	}

	got = uploadName(domain.MediaItem{}, "mp4")
	if !strings.HasSuffix(got, ".mp4") {
		t.Errorf("uploadName = %q, want fallback .mp4 suffix", got)
	}
}
