package langdetect

// Supported detection results. English doubles as the universal fallback.
const (
	Japanese = "ja"
	Korean   = "ko"
	Chinese  = "zh"
	Spanish  = "es"
	French   = "fr"
	German   = "de"
	Italian  = "it"
	English  = "en"
)

// keywordRule maps a set of lower-case keywords to a language code.
// Rules are consulted in slice order; within a rule, any keyword matching
// as a substring counts.
type keywordRule struct {
	lang     string
	keywords []string
}

// studioRules match network / production company names.
var studioRules = []keywordRule{
	{Japanese, []string{
		"nhk", "fuji", "toei", "mappa", "kyoto animation", "studio ghibli",
		"madhouse", "bones", "shaft", "aniplex", "tv tokyo", "ufotable",
		"wit studio", "production i.g",
	}},
	{Korean, []string{"sbs", "kbs", "mbc", "tvn", "jtbc", "ocn"}},
	{Chinese, []string{"cctv", "youku", "iqiyi", "tencent", "bilibili"}},
	{Spanish, []string{"televisa", "antena 3", "telecinco"}},
	{French, []string{"canal+", "tf1", "gaumont"}},
	{German, []string{"zdf", "ard", "constantin film"}},
	{Italian, []string{"rai", "mediaset"}},
}

// tagRules match free-form user tags.
var tagRules = []keywordRule{
	{Japanese, []string{"japanese", "japan"}},
	{Korean, []string{"korean", "korea"}},
	{Chinese, []string{"chinese", "china", "mandarin"}},
	{Spanish, []string{"spanish", "spain"}},
	{French, []string{"french", "france"}},
	{German, []string{"german", "germany"}},
	{Italian, []string{"italian", "italy"}},
}

// genreRules match genre labels. Only the CJK dramas carry a language
// signal strong enough to act on.
var genreRules = []keywordRule{
	{Japanese, []string{"anime", "j-drama"}},
	{Korean, []string{"k-drama", "korean"}},
	{Chinese, []string{"c-drama", "chinese"}},
}

// locationRules match production country / region names. English-speaking
// regions resolve to the fallback code explicitly so a US production does
// not fall through to script detection on a stylized title.
var locationRules = []keywordRule{
	{Japanese, []string{"japan"}},
	{Korean, []string{"south korea", "korea"}},
	{Chinese, []string{"china", "hong kong", "taiwan"}},
	{English, []string{"united states", "usa", "america"}},
	{English, []string{"united kingdom", "uk", "britain"}},
	{Spanish, []string{"spain"}},
	{French, []string{"france"}},
	{German, []string{"germany"}},
	{Italian, []string{"italy"}},
}

// supported reports whether code is one of the values this package emits.
func supported(code string) bool {
	switch code {
	case Japanese, Korean, Chinese, Spanish, French, German, Italian, English:
		return true
	}
	return false
}
