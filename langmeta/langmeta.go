// Package langmeta provides the language metadata registry (English and
// native names, emoji flags, language family) used to label translation
// files and to pick a target language.
package langmeta

import (
	"sort"
	"strings"
)

// Meta describes language display metadata.
type Meta struct {
	Code   string
	Name   string
	Native string
	Flag   string
	Family string
}

// Label returns "flag Name" for display.
func (m Meta) Label() string {
	if m.Flag == "" {
		return m.Name
	}
	return m.Flag + " " + m.Name
}

// UnknownName and UnknownFlag label codes that are not in the registry.
const (
	UnknownName = "Unknown"
	UnknownFlag = "🏳️"
)

// Registry contains canonical language metadata keyed by code.
// Locale variants are resolved in Resolve() via normalization and base fallback.
var Registry = map[string]Meta{
	// European
	"en": {Name: "English", Native: "English", Flag: "🇬🇧", Family: "Germanic"},
	"ro": {Name: "Romanian", Native: "Română", Flag: "🇷🇴", Family: "Romance"},
	"hu": {Name: "Hungarian", Native: "Magyar", Flag: "🇭🇺", Family: "Uralic"},
	"fr": {Name: "French", Native: "Français", Flag: "🇫🇷", Family: "Romance"},
	"de": {Name: "German", Native: "Deutsch", Flag: "🇩🇪", Family: "Germanic"},
	"es": {Name: "Spanish", Native: "Español", Flag: "🇪🇸", Family: "Romance"},
	"it": {Name: "Italian", Native: "Italiano", Flag: "🇮🇹", Family: "Romance"},
	"pt": {Name: "Portuguese", Native: "Português", Flag: "🇵🇹", Family: "Romance"},
	"nl": {Name: "Dutch", Native: "Nederlands", Flag: "🇳🇱", Family: "Germanic"},
	"pl": {Name: "Polish", Native: "Polski", Flag: "🇵🇱", Family: "Slavic"},
	"cs": {Name: "Czech", Native: "Čeština", Flag: "🇨🇿", Family: "Slavic"},
	"sk": {Name: "Slovak", Native: "Slovenčina", Flag: "🇸🇰", Family: "Slavic"},
	"uk": {Name: "Ukrainian", Native: "Українська", Flag: "🇺🇦", Family: "Slavic"},
	"bg": {Name: "Bulgarian", Native: "Български", Flag: "🇧🇬", Family: "Slavic"},
	"el": {Name: "Greek", Native: "Ελληνικά", Flag: "🇬🇷", Family: "Hellenic"},
	"fi": {Name: "Finnish", Native: "Suomi", Flag: "🇫🇮", Family: "Uralic"},

	// Asian
	"zh": {Name: "Chinese", Native: "中文", Flag: "🇨🇳", Family: "Sino-Tibetan"},
	"ja": {Name: "Japanese", Native: "日本語", Flag: "🇯🇵", Family: "Japonic"},
	"ko": {Name: "Korean", Native: "한국어", Flag: "🇰🇷", Family: "Koreanic"},
	"hi": {Name: "Hindi", Native: "हिन्दी", Flag: "🇮🇳", Family: "Indo-European"},
	"ar": {Name: "Arabic", Native: "العربية", Flag: "🇸🇦", Family: "Semitic"},
	"he": {Name: "Hebrew", Native: "עברית", Flag: "🇮🇱", Family: "Semitic"},
	"th": {Name: "Thai", Native: "ไทย", Flag: "🇹🇭", Family: "Tai-Kadai"},
	"vi": {Name: "Vietnamese", Native: "Tiếng Việt", Flag: "🇻🇳", Family: "Austroasiatic"},
	"id": {Name: "Indonesian", Native: "Bahasa Indonesia", Flag: "🇮🇩", Family: "Austronesian"},

	// Others
	"ru": {Name: "Russian", Native: "Русский", Flag: "🇷🇺", Family: "Slavic"},
	"tr": {Name: "Turkish", Native: "Türkçe", Flag: "🇹🇷", Family: "Turkic"},
	"sv": {Name: "Swedish", Native: "Svenska", Flag: "🇸🇪", Family: "Germanic"},
	"no": {Name: "Norwegian", Native: "Norsk", Flag: "🇳🇴", Family: "Germanic"},
	"da": {Name: "Danish", Native: "Dansk", Flag: "🇩🇰", Family: "Germanic"},

	// Regional variants
	"en-US": {Name: "English (US)", Native: "English (US)", Flag: "🇺🇸", Family: "Germanic"},
	"pt-BR": {Name: "Portuguese (Brazil)", Native: "Português (Brasil)", Flag: "🇧🇷", Family: "Romance"},
	"zh-TW": {Name: "Chinese (Taiwan)", Native: "繁體中文", Flag: "🇹🇼", Family: "Sino-Tibetan"},
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Lookup returns the registry entry for an exact code, after normalizing
// case and separators ("PT_br" finds "pt-BR").
func Lookup(lang string) (Meta, bool) {
	code := canonicalize(lang)
	m, ok := Registry[code]
	if !ok {
		return Meta{}, false
	}
	m.Code = code
	return m, true
}

// Resolve returns best-effort language metadata for language codes,
// supporting variants like pt_BR, pt-BR, and locale fallbacks. Unknown codes
// get the placeholder name and flag; they are never an error.
func Resolve(lang string) Meta {
	if m, ok := Lookup(lang); ok {
		m.Code = lang
		return m
	}
	normalized := canonicalize(lang)
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if m, ok := Registry[parts[0]]; ok {
			m.Code = lang
			return m
		}
	}
	return Meta{Code: lang, Name: UnknownName, Native: UnknownName, Flag: UnknownFlag}
}

// Match returns the registry entries whose English name contains query,
// ignoring case, skipping the exclude code. Results are sorted by code.
func Match(query, exclude string) []Meta {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Meta
	for code, m := range Registry {
		if code == exclude {
			continue
		}
		if strings.Contains(strings.ToLower(m.Name), q) {
			m.Code = code
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// All returns every registry entry sorted by code.
func All() []Meta {
	out := make([]Meta, 0, len(Registry))
	for code, m := range Registry {
		m.Code = code
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
