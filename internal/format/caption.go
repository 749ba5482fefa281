// Package format turns normalized media items into Telegram-ready
// captions and decides which interactive controls a delivery carries.
package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fetchdl/fetchdl/internal/domain"
)

// MaxCaptionLength is the hard cap Telegram enforces on message text.
const MaxCaptionLength = 4096

// truncationMarker is kept visible at the end of any caption that was cut.
const truncationMarker = "... (truncated)"

// attribution is appended to every caption.
const attribution = "\n\n©️ fetchdl"

// CallbackPrefix is the payload prefix of the "audio only" button. The
// suffix is a resolved-URL record ID, never the raw URL.
const CallbackPrefix = "download_audio:"

// Caption builds the per-kind HTML caption for one media item, appends
// the attribution suffix and truncates to MaxCaptionLength.
func Caption(item domain.MediaItem, kind domain.URLKind) string {
	var b strings.Builder

	switch kind {
	case domain.KindYouTube:
		fmt.Fprintf(&b, "<b>🎥 Title:</b> %s\n", item.Title)
		fmt.Fprintf(&b, "<b>📝 Description:</b> %s\n", item.Description)
		fmt.Fprintf(&b, "<b>👁‍🗨 Views:</b> %d\n", item.ViewCount)
		fmt.Fprintf(&b, "<b>👍 Likes:</b> %d\n", item.LikeCount)
		fmt.Fprintf(&b, "<b>📺 Channel:</b> <a href=%q>%s</a>\n", item.ChannelURL, item.Channel)
		fmt.Fprintf(&b, "<b>⏱ Duration:</b> %s\n", item.Duration)
	case domain.KindInstagram:
		fmt.Fprintf(&b, "<b>📸 Link:</b> <a href=%q>Instagram Post</a>", item.Link)
	case domain.KindTikTok:
		fmt.Fprintf(&b, "<b>🎵 Username:</b> %s\n", item.Username)
		fmt.Fprintf(&b, "<b>📹 Link:</b> <a href=%q>TikTok Post</a>", item.Link)
	case domain.KindFacebook:
		fmt.Fprintf(&b, "<b>📘 Title:</b> %s\n", item.Title)
		fmt.Fprintf(&b, "<b>📝 Description:</b> %s\n", item.Description)
		fmt.Fprintf(&b, "<b>🔗 Link:</b> <a href=%q>Facebook Post</a>", item.Link)
	case domain.KindTwitter:
		fmt.Fprintf(&b, "<b>🐦 Title:</b> %s\n", item.Title)
		fmt.Fprintf(&b, "<b>📝 Description:</b> %s\n", item.Description)
		fmt.Fprintf(&b, "<b>🔗 Link:</b> <a href=%q>Twitter Post</a>", item.Link)
	case domain.KindReddit:
		fmt.Fprintf(&b, "<b>👾 Title:</b> %s\n", item.Title)
		fmt.Fprintf(&b, "<b>🔗 Link:</b> <a href=%q>Reddit Post</a>", item.Link)
	case domain.KindSoundCloud:
		fmt.Fprintf(&b, "<b>🔊 Title:</b> %s\n", item.Title)
		fmt.Fprintf(&b, "<b>📝 Description:</b> %s\n", item.Description)
		fmt.Fprintf(&b, "<b>🔗 Link:</b> <a href=%q>SoundCloud Track</a>", item.Link)
	case domain.KindDailymotion:
		fmt.Fprintf(&b, "<b>📺 Title:</b> %s\n", item.Title)
		fmt.Fprintf(&b, "<b>📝 Description:</b> %s\n", item.Description)
		fmt.Fprintf(&b, "<b>🔗 Link:</b> <a href=%q>Dailymotion Video</a>", item.Link)
	case domain.KindTwitch:
		fmt.Fprintf(&b, "<b>🎮 Title:</b> %s\n", item.Title)
		fmt.Fprintf(&b, "<b>📝 Description:</b> %s\n", item.Description)
		fmt.Fprintf(&b, "<b>🔗 Link:</b> <a href=%q>Twitch Stream</a>", item.Link)
	}

	b.WriteString(attribution)
	return Truncate(b.String())
}

// Truncate cuts text to MaxCaptionLength, keeping a visible truncation
// marker at the end when it does. Shorter text passes through unchanged.
// The cut never lands inside a multi-byte rune: Telegram rejects invalid
// UTF-8 outright.
func Truncate(text string) string {
	if len(text) <= MaxCaptionLength {
		return text
	}

	cut := MaxCaptionLength - len(truncationMarker)
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	return text[:cut] + truncationMarker
}

// WantsAudioButton reports whether deliveries of this kind carry the
// "audio only" button. Multi-item and already-audio-native kinds do not.
func WantsAudioButton(kind domain.URLKind) bool {
	switch kind {
	case domain.KindInstagram, domain.KindTikTok, domain.KindSoundCloud:
		return false
	default:
		return true
	}
}

// AudioCallback builds the callback payload for a resolved-URL record.
func AudioCallback(resolvedID string) string {
	return CallbackPrefix + resolvedID
}
