package provider

import (
	"strings"

	"github.com/fetchdl/fetchdl/internal/domain"
)

// Extension sets used for delivery-kind classification.
var (
	audioExtensions = map[string]bool{
		"mp3": true, "wav": true, "ogg": true, "flac": true,
		"aac": true, "m4a": true, "opus": true,
	}
	imageExtensions = map[string]bool{
		"jpg": true, "jpeg": true, "png": true, "gif": true, "bmp": true,
	}
	videoExtensions = map[string]bool{
		"mp4": true, "avi": true, "mov": true, "mkv": true, "wmv": true,
	}
)

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// classifyClip decides the delivery kind of a single-item download. The
// audio extension check wins over whatever the provider reports; an
// audio-only fetch is audio no matter what came back.
func classifyClip(clip *RawClip, opts Options) domain.DeliveryKind {
	if opts.AudioOnly {
		return domain.DeliverAudio
	}
	if audioExtensions[normalizeExt(clip.Ext)] {
		return domain.DeliverAudio
	}

	switch clip.TypeTag {
	case "video", "":
		return domain.DeliverVideo
	case "audio":
		return domain.DeliverAudio
	case "image":
		return domain.DeliverImage
	default:
		return domain.DeliverVideo
	}
}

// classifyExt classifies an item by file extension alone (Instagram).
func classifyExt(ext string) domain.DeliveryKind {
	e := normalizeExt(ext)
	switch {
	case imageExtensions[e]:
		return domain.DeliverImage
	case videoExtensions[e]:
		return domain.DeliverVideo
	case audioExtensions[e]:
		return domain.DeliverAudio
	default:
		return domain.DeliverUnknown
	}
}

// classifyTag classifies an item by the provider's type tag (TikTok).
func classifyTag(tag string) domain.DeliveryKind {
	switch strings.ToLower(tag) {
	case "video":
		return domain.DeliverVideo
	case "image", "photo":
		return domain.DeliverImage
	case "audio", "music":
		return domain.DeliverAudio
	default:
		return domain.DeliverUnknown
	}
}
