// Package pipeline is the single delivery path from a normalized fetch
// result to the chat. Both the queue worker and the interactive callback
// handler go through it; neither carries its own send logic.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fetchdl/fetchdl/internal/domain"
	"github.com/fetchdl/fetchdl/internal/format"
	"github.com/fetchdl/fetchdl/pkg/telegram"
)

// Sender is the chat-delivery collaborator. *telegram.Client satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, chatID, text string, opts *telegram.SendOptions) (*telegram.Message, error)
	SendVideo(ctx context.Context, chatID string, data []byte, filename string, opts *telegram.MediaOptions) (*telegram.Message, error)
	SendPhoto(ctx context.Context, chatID string, data []byte, filename string, opts *telegram.MediaOptions) (*telegram.Message, error)
	SendAudio(ctx context.Context, chatID string, data []byte, filename string, opts *telegram.MediaOptions) (*telegram.Message, error)
}

// Pipeline formats and sends fetch results.
type Pipeline struct {
	sender Sender
	logger *slog.Logger
}

// New creates a delivery pipeline.
func New(sender Sender, logger *slog.Logger) *Pipeline {
	return &Pipeline{sender: sender, logger: logger}
}

// Deliver sends every item of result to chatID, replying to replyTo. A
// failure sending one item is logged and does not abort the remaining
// items. resolvedID, when non-empty, is referenced by the "audio only"
// button on kinds that carry one. Returns how many items were actually
// sent and the first send error, for observability only; items with no
// matching send operation are logged and skipped without counting.
func (p *Pipeline) Deliver(ctx context.Context, chatID string, replyTo int, result *domain.FetchResult, resolvedID string) (int, error) {
	var sent int
	var firstErr error

	var markup *telegram.InlineKeyboardMarkup
	if resolvedID != "" && format.WantsAudioButton(result.Kind) {
		markup = telegram.SingleButton("🔊 Audio Only", format.AudioCallback(resolvedID))
	}

	for i, item := range result.Items {
		if item.Delivery != domain.DeliverVideo && item.Delivery != domain.DeliverImage && item.Delivery != domain.DeliverAudio {
			p.logger.Warn("unknown media type, skipping",
				"chat_id", chatID,
				"kind", result.Kind,
				"item", i,
				"ext", item.Ext,
			)
			continue
		}
		if err := p.sendItem(ctx, chatID, replyTo, item, result.Kind, markup); err != nil {
			p.logger.Error("send media failed",
				"chat_id", chatID,
				"kind", result.Kind,
				"item", i,
				"delivery", item.Delivery,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
			// Best effort; the user still learns this item failed.
			text := fmt.Sprintf("❌ Please try again later: %v", err)
			if _, err := p.sender.SendMessage(ctx, chatID, text, &telegram.SendOptions{ReplyTo: replyTo}); err != nil {
				p.logger.Error("send failure notice failed", "chat_id", chatID, "error", err)
			}
			continue
		}
		sent++
	}

	return sent, firstErr
}

func (p *Pipeline) sendItem(ctx context.Context, chatID string, replyTo int, item domain.MediaItem, kind domain.URLKind, markup *telegram.InlineKeyboardMarkup) error {
	caption := format.Caption(item, kind)

	switch item.Delivery {
	case domain.DeliverVideo:
		opts := &telegram.MediaOptions{
			Caption:   caption,
			Thumbnail: item.Thumbnail,
			ReplyTo:   replyTo,
			Markup:    markup,
		}
		_, err := p.sender.SendVideo(ctx, chatID, item.Data, uploadName(item, "mp4"), opts)
		return err
	case domain.DeliverImage:
		opts := &telegram.MediaOptions{Caption: caption, ReplyTo: replyTo}
		_, err := p.sender.SendPhoto(ctx, chatID, item.Data, uploadName(item, "jpg"), opts)
		return err
	case domain.DeliverAudio:
		opts := &telegram.MediaOptions{Caption: caption, ReplyTo: replyTo}
		_, err := p.sender.SendAudio(ctx, chatID, item.Data, uploadName(item, "mp3"), opts)
		return err
	default:
		return fmt.Errorf("unhandled delivery kind %q", item.Delivery)
	}
}

// uploadName builds a fresh upload filename; Telegram wants one but
// nothing downstream depends on it.
func uploadName(item domain.MediaItem, fallbackExt string) string {
	ext := item.Ext
	if ext == "" {
		ext = fallbackExt
	}
	return uuid.NewString() + "." + ext
}
