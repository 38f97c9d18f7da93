package moderation

import (
	"regexp"
	"strings"
)

// Image content never counts toward spam or length checks. The sanitizer
// strips inline embeds first, then bare links to known image hosts or files
// with image extensions, so a photo attached to an otherwise clean answer
// does not trip the URL patterns.
var (
	imgTagPattern      = regexp.MustCompile(`(?is)<img\b[^>]*>`)
	markdownImgPattern = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	imageFilePattern   = regexp.MustCompile(`(?i)\bhttps?://\S+\.(?:png|jpe?g|gif|webp|svg|bmp|heic)(?:\?\S*)?`)
	imageHostPattern   = regexp.MustCompile(`(?i)\bhttps?://(?:[a-z0-9-]+\.)*(?:imgur\.com|gyazo\.com|giphy\.com|cloudinary\.com|unsplash\.com|githubusercontent\.com)/\S*`)
)

var htmlTagPattern = regexp.MustCompile(`(?s)<[^>]*>`)

var spaceRuns = regexp.MustCompile(`\s+`)

// Sanitize returns text with image embeds and image URLs removed. Spam
// patterns run against this copy.
func Sanitize(text string) string {
	out := imgTagPattern.ReplaceAllString(text, " ")
	out = markdownImgPattern.ReplaceAllString(out, " ")
	out = imageFilePattern.ReplaceAllString(out, " ")
	out = imageHostPattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(spaceRuns.ReplaceAllString(out, " "))
}

// PlainText strips markup and collapses whitespace; length checks count the
// runes of this form.
func PlainText(text string) string {
	out := imgTagPattern.ReplaceAllString(text, " ")
	out = markdownImgPattern.ReplaceAllString(out, " ")
	out = htmlTagPattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(spaceRuns.ReplaceAllString(out, " "))
}
