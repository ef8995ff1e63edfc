package langdetect

// runeRange is an inclusive Unicode code point interval.
type runeRange struct {
	lo, hi rune
}

// Hangul ranges: syllables, Jamo, compatibility Jamo, Jamo extended A/B.
var hangulRanges = []runeRange{
	{0xAC00, 0xD7AF},
	{0x1100, 0x11FF},
	{0x3130, 0x318F},
	{0xA960, 0xA97F},
	{0xD7B0, 0xD7FF},
}

// Kana ranges: Hiragana, Katakana, Katakana phonetic extensions. Kanji is
// deliberately absent here; see detectByScript.
var kanaRanges = []runeRange{
	{0x3040, 0x309F},
	{0x30A0, 0x30FF},
	{0x31F0, 0x31FF},
}

// CJK ideograph ranges: unified block, extensions A through E, and the
// compatibility block.
var cjkRanges = []runeRange{
	{0x4E00, 0x9FFF},
	{0x3400, 0x4DBF},
	{0x20000, 0x2A6DF},
	{0x2A700, 0x2B73F},
	{0x2B740, 0x2B81F},
	{0x2B820, 0x2CEAF},
	{0xF900, 0xFAFF},
}

func containsAnyRange(s string, ranges []runeRange) bool {
	for _, r := range s {
		for _, rr := range ranges {
			if r >= rr.lo && r <= rr.hi {
				return true
			}
		}
	}
	return false
}

// detectByScript classifies a title by the scripts it contains. Hangul is
// tested before kana, kana before ideographs: Hangul never overlaps the
// ideograph ranges, but kanji co-occurs with kana in Japanese titles, so
// Korean and Japanese must be ruled out before anything is called Chinese.
// A title written purely in kanji classifies as Chinese; that ambiguity is
// inherent to script inspection and is left as-is.
func detectByScript(title string) string {
	if title == "" {
		return ""
	}
	if containsAnyRange(title, hangulRanges) {
		return Korean
	}
	if containsAnyRange(title, kanaRanges) {
		return Japanese
	}
	if containsAnyRange(title, cjkRanges) {
		return Chinese
	}
	return ""
}
