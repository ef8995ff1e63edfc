package provider

import (
	"strings"

	"golang.org/x/text/language"
)

// NormalizeLanguage validates an upstream language token and returns its
// ISO 639-1 base code (e.g. "eng"→"en", "zh-CN"→"zh"). Returns "" for
// junk tokens and for fanart.tv's "00" textless marker, so untagged
// candidates rank in the neutral tier.
func NormalizeLanguage(token string) string {
	token = strings.TrimSpace(token)
	if token == "" || token == "00" || strings.EqualFold(token, "none") {
		return ""
	}
	tag, err := language.Parse(token)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}
