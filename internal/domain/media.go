package domain

// URLKind identifies which provider a URL belongs to.
type URLKind string

const (
	KindYouTube     URLKind = "YouTube"
	KindInstagram   URLKind = "Instagram"
	KindTikTok      URLKind = "TikTok"
	KindFacebook    URLKind = "Facebook"
	KindTwitter     URLKind = "Twitter"
	KindReddit      URLKind = "Reddit"
	KindSoundCloud  URLKind = "SoundCloud"
	KindDailymotion URLKind = "Dailymotion"
	KindTwitch      URLKind = "Twitch"
	KindUnsupported URLKind = "Unsupported"
)

// String returns the string representation of the URLKind.
func (k URLKind) String() string {
	return string(k)
}

// DeliveryKind classifies a media item by which send operation applies to it.
type DeliveryKind string

const (
	DeliverVideo   DeliveryKind = "video"
	DeliverImage   DeliveryKind = "image"
	DeliverAudio   DeliveryKind = "audio"
	DeliverUnknown DeliveryKind = "unknown"
)

// MediaItem is one deliverable piece of media with its display metadata.
// Fields beyond Link, Ext, Delivery and Data are provider-dependent and may
// be empty.
type MediaItem struct {
	Link        string
	Title       string
	Description string
	Thumbnail   string
	Channel     string
	ChannelURL  string
	Username    string
	Duration    string
	ViewCount   int64
	LikeCount   int64
	Ext         string
	Delivery    DeliveryKind
	Data        []byte
}

// FetchResult is the canonical shape every provider fetch is normalized
// into: the classified kind plus an ordered list of items. Single-item
// providers produce a one-element list.
type FetchResult struct {
	Kind  URLKind
	Items []MediaItem
}
