package moderation

import "regexp"

// Default pattern sets. Operators extend or replace these through validator
// options; the defaults cover the common solicitation shapes seen in
// discussion feeds.
var defaultSpamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bhttps?://\S+`),
	regexp.MustCompile(`(?i)\bwww\.[a-z0-9-]+\.[a-z]{2,}\S*`),
	regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`),
	regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`),
	regexp.MustCompile(`(?i)\b(?:buy cheap|limited (?:time )?offer|work from home|earn \$?\d|fast cash|casino|lottery|giveaway)\b`),
	regexp.MustCompile(`(?i)\b(?:telegram|whatsapp|kakao|wechat)\b\s*[:@]?\s*\S+`),
}

var defaultBannedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:fuck(?:er|ing)?|shit(?:ty)?|bitch|asshole|bastard|cunt)\b`),
	regexp.MustCompile(`(?i)\b(?:nigg(?:a|er)s?|fag(?:got)?s?|retard(?:ed)?s?)\b`),
	regexp.MustCompile(`(?i)\b(?:kill yourself|kys)\b`),
}
