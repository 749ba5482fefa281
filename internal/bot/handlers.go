package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/fetchdl/fetchdl/internal/domain"
	"github.com/fetchdl/fetchdl/internal/format"
	"github.com/fetchdl/fetchdl/internal/provider"
	"github.com/fetchdl/fetchdl/pkg/telegram"
)

// urlPattern is deliberately permissive; classification happens later in
// the dispatcher. First match wins when a message has several URLs.
var urlPattern = regexp.MustCompile(`https?://\S+`)

const usersBatchSize = 10

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}

	chatID := msg.Chat.IDString()

	user := domain.User{
		ID:           chatID,
		Username:     msg.From.Username,
		FirstName:    msg.From.FirstName,
		IsBot:        msg.From.IsBot,
		ChatType:     msg.Chat.Type,
		LanguageCode: msg.From.LanguageCode,
	}
	if err := b.store.UpsertUser(ctx, user); err != nil {
		b.logger.Error("upsert user failed", "user_id", chatID, "error", err)
	}

	switch command(msg.Text) {
	case "start":
		b.handleStart(ctx, msg)
		return
	case "users":
		b.handleUsers(ctx, msg)
		return
	}

	b.handleIntake(ctx, msg)
}

// handleIntake is the producer side of the queue contract: validate the
// message carries a URL, persist the job, acknowledge.
func (b *Bot) handleIntake(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.IDString()

	url := urlPattern.FindString(msg.Text)
	if url == "" {
		// Groups see all traffic; only nag in private chats.
		if msg.Chat.Type == "private" {
			b.reply(ctx, chatID, msg.MessageID, "❌ Please provide a valid URL.")
		}
		return
	}

	id, err := b.store.EnqueueRequest(ctx, chatID, url, msg.MessageID)
	if err != nil {
		b.logger.Error("enqueue failed", "user_id", chatID, "error", err)
		b.reply(ctx, chatID, msg.MessageID, "❌ Could not accept your request, please try again.")
		return
	}

	b.logger.Info("request enqueued", "request_id", id, "user_id", chatID, "url", url)
	b.reply(ctx, chatID, msg.MessageID, "⏳ Please wait while the content is being downloaded and sent.")
}

func (b *Bot) handleStart(ctx context.Context, msg *telegram.Message) {
	text := welcome(msg.From.LanguageCode, msg.From.FirstName, msg.From.Username)
	b.reply(ctx, msg.Chat.IDString(), 0, text)
}

// handleUsers lists every known user in batches so no single message
// outgrows the cap.
func (b *Bot) handleUsers(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.IDString()

	users, err := b.store.Users(ctx)
	if err != nil {
		b.logger.Error("list users failed", "error", err)
		b.reply(ctx, chatID, msg.MessageID, fmt.Sprintf("❌ Error fetching users: %v", err))
		return
	}

	for i := 0; i < len(users); i += usersBatchSize {
		end := i + usersBatchSize
		if end > len(users) {
			end = len(users)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "👥 Total number of users: %d\n\n", len(users))
		for j, u := range users[i:end] {
			fmt.Fprintf(&sb, "%d. User ID: %s\n", j+1, u.ID)
			fmt.Fprintf(&sb, "👤 Username: @%s\n", orDash(u.Username))
			fmt.Fprintf(&sb, "📛 First Name: %s\n", orDash(u.FirstName))
			fmt.Fprintf(&sb, "💬 Chat Type: %s\n", orDash(u.ChatType))
			fmt.Fprintf(&sb, "🌐 Language Code: %s\n\n", orDash(u.LanguageCode))
		}

		b.reply(ctx, chatID, 0, format.Truncate(sb.String()))
	}
}

// handleCallback serves the "audio only" button: re-resolve the stored
// URL, fetch audio, deliver. It runs outside the worker loop and shares
// only the store with it.
func (b *Bot) handleCallback(ctx context.Context, cb telegram.CallbackQuery) {
	if !strings.HasPrefix(cb.Data, format.CallbackPrefix) {
		return
	}
	resolvedID := strings.TrimPrefix(cb.Data, format.CallbackPrefix)

	if err := b.api.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		b.logger.Error("answer callback failed", "error", err)
	}

	rec, err := b.store.ResolvedURL(ctx, resolvedID)
	if err != nil {
		b.logger.Warn("resolved url lookup failed", "resolved_id", resolvedID, "error", err)
		b.reply(ctx, cb.From.IDString(), 0, "❌ This download is no longer available.")
		return
	}

	chatID := rec.UserID
	replyTo := 0
	if cb.Message != nil {
		replyTo = cb.Message.MessageID
	}

	waiting, err := b.api.SendMessage(ctx, chatID, "⏳ Please wait while the audio is being downloaded and sent.", nil)
	if err != nil {
		b.logger.Error("send waiting message failed", "chat_id", chatID, "error", err)
	}

	result, err := b.fetcher.Fetch(ctx, rec.URL, provider.Options{AudioOnly: true})
	if err != nil {
		b.reply(ctx, chatID, replyTo, fmt.Sprintf("❌ Error downloading audio: %v", err))
	} else {
		// No fresh resolved-URL record: the delivery is already audio,
		// so it carries no button.
		sent, deliverErr := b.pipeline.Deliver(ctx, chatID, replyTo, result, "")
		b.logger.Info("audio callback delivered", "chat_id", chatID, "kind", result.Kind, "sent", sent, "delivery_error", deliverErr)
	}

	if waiting != nil {
		if err := b.api.DeleteMessage(ctx, chatID, waiting.MessageID); err != nil {
			b.logger.Error("delete waiting message failed", "chat_id", chatID, "error", err)
		}
	}
}

func (b *Bot) reply(ctx context.Context, chatID string, replyTo int, text string) {
	if _, err := b.api.SendMessage(ctx, chatID, text, &telegram.SendOptions{ReplyTo: replyTo}); err != nil {
		b.logger.Error("send reply failed", "chat_id", chatID, "error", err)
	}
}

// command extracts a bot command name from message text, tolerating the
// @botname suffix used in groups.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	cmd = strings.TrimPrefix(cmd, "/")
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
