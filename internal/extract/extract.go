// Package extract pulls hyperlinks out of raw document text.
//
// Extraction is a tolerant regex scan rather than a markup parse, so broken
// or partial HTML still yields its links.
package extract

import (
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// space matches ASCII whitespace, vertical tab, every Unicode separator and BOM.
const space = `\s\v\p{Z}\x{FEFF}`

var (
	hrefRe = regexp.MustCompile(`(?i)href[` + space + `]*=[` + space + `]*['"]([^'"]+)['"]`)
	bareRe = regexp.MustCompile(`(?i)((?:https?:)?//[^"'` + space + `<>]+)`)
	wwwRe  = regexp.MustCompile(`(?i)\b(www\.[^"'` + space + `<>]+)`)
)

// specialSchemes have hierarchical URLs whose empty path serializes as "/".
var specialSchemes = map[string]bool{
	"http": true, "https": true, "ws": true, "wss": true, "ftp": true, "file": true,
}

// stripTabNewline drops ASCII tab, LF and CR anywhere in an href value.
var stripTabNewline = strings.NewReplacer("\t", "", "\n", "", "\r", "")

// Links returns every distinct URL found in text, sorted ascending.
//
// Three passes run over the whole text: quoted href attribute values
// (resolved against baseURL), bare http(s):// or // tokens (kept as-is),
// and bare www. tokens (prefixed with https://). A href value that cannot
// be resolved is skipped. The result is never nil.
func Links(text, baseURL string) []string {
	found := make(map[string]struct{})

	base, baseErr := url.Parse(baseURL)
	if baseErr != nil || !base.IsAbs() {
		base = nil
	}

	for _, m := range hrefRe.FindAllStringSubmatch(text, -1) {
		if resolved, ok := resolve(base, m[1]); ok {
			found[resolved] = struct{}{}
		}
	}

	for _, m := range bareRe.FindAllStringSubmatch(text, -1) {
		found[m[1]] = struct{}{}
	}

	for _, m := range wwwRe.FindAllStringSubmatch(text, -1) {
		found["https://"+m[1]] = struct{}{}
	}

	out := make([]string, 0, len(found))
	for link := range found {
		out = append(out, link)
	}
	slices.Sort(out)
	return out
}

// resolve resolves ref against base. A nil base only admits absolute refs.
// Surrounding control characters and spaces are trimmed first.
func resolve(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimFunc(stripTabNewline.Replace(ref), func(r rune) bool { return r <= ' ' })

	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if !u.IsAbs() {
		if base == nil {
			return "", false
		}
		u = base.ResolveReference(u)
	}
	return canonical(u), true
}

// canonical lowercases the host and gives special schemes a root path.
func canonical(u *url.URL) string {
	if u.Host != "" {
		u.Host = strings.ToLower(u.Host)
		if u.Path == "" && u.Opaque == "" && specialSchemes[u.Scheme] {
			u.Path = "/"
		}
	}
	return u.String()
}
