package bot

import "strings"

// welcomeTemplates holds the /start greeting per language code, with
// {first_name} and {username} placeholders. English is the fallback.
var welcomeTemplates = map[string]string{
	"en": "👋 Welcome {first_name} (@{username})!\n\n" +
		"Send me a link from YouTube, Instagram, TikTok, Facebook, Twitter, Reddit, " +
		"SoundCloud, Dailymotion or Twitch and I will fetch the media for you.\n\n" +
		"⏳ Downloads are queued and processed in order.",
	"ar": "👋 أهلاً {first_name} (@{username})!\n\n" +
		"أرسل لي رابطاً من يوتيوب أو انستغرام أو تيك توك أو فيسبوك أو تويتر أو ريديت " +
		"أو ساوند كلاود أو ديلي موشن أو تويتش وسأحمّل لك الوسائط.\n\n" +
		"⏳ تتم معالجة الطلبات بالترتيب.",
}

func welcome(lang, firstName, username string) string {
	tpl, ok := welcomeTemplates[lang]
	if !ok {
		tpl = welcomeTemplates["en"]
	}
	msg := strings.ReplaceAll(tpl, "{first_name}", firstName)
	return strings.ReplaceAll(msg, "{username}", username)
}
