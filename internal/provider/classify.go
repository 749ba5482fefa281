package provider

import (
	"net/url"
	"strings"

	"github.com/fetchdl/fetchdl/internal/domain"
)

// kindPatterns is the fixed classification rule set, checked in order.
// First matching host wins. Adding a provider means adding one entry here
// and one handler in the dispatch table, never touching the loop.
var kindPatterns = []struct {
	kind  domain.URLKind
	hosts []string
}{
	{domain.KindYouTube, []string{"youtube.com", "youtu.be"}},
	{domain.KindInstagram, []string{"instagram.com", "instagr.am"}},
	{domain.KindTikTok, []string{"tiktok.com"}},
	{domain.KindFacebook, []string{"facebook.com", "fb.watch", "fb.com"}},
	{domain.KindTwitter, []string{"twitter.com", "x.com"}},
	{domain.KindReddit, []string{"reddit.com", "redd.it"}},
	{domain.KindSoundCloud, []string{"soundcloud.com"}},
	{domain.KindDailymotion, []string{"dailymotion.com", "dai.ly"}},
	{domain.KindTwitch, []string{"twitch.tv"}},
}

// Classify maps a URL to exactly one provider kind, or KindUnsupported.
func Classify(rawURL string) domain.URLKind {
	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.KindUnsupported
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return domain.KindUnsupported
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return domain.KindUnsupported
	}

	for _, p := range kindPatterns {
		for _, h := range p.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return p.kind
			}
		}
	}

	return domain.KindUnsupported
}
