package multiblog

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SlugVersion identifies the Slugify transform. Slugs are never stored: they
// are recomputed from titles on every read, so changing Slugify changes every
// public article URL and breaks existing external links. Bump this whenever
// the output of Slugify changes for any input.
const SlugVersion = 1

// Slugify converts a title to a URL-safe slug. It is pure and
// case-insensitive: diacritics are folded, letters and digits are kept,
// apostrophes are dropped and every other run of characters becomes a
// single hyphen.
func Slugify(s string) string {
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prev = false
		case r == '\'' || r == '’':
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NormalizePosts converts raw documents into posts. Documents without a title
// or a route are dropped. The result is ordered by publication date, newest
// first; undated posts keep their source order at the end.
func NormalizePosts(docs []RawDocument) []Post {
	posts, _ := normalize(docs)
	return posts
}

// normalize returns the posts and the number of documents it dropped.
func normalize(docs []RawDocument) ([]Post, int) {
	posts := make([]Post, 0, len(docs))
	dropped := 0
	for _, doc := range docs {
		p, ok := normalizeDocument(doc)
		if !ok {
			dropped++
			continue
		}
		posts = append(posts, p)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].PublishedAt, posts[j].PublishedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
	return posts, dropped
}

func normalizeDocument(doc RawDocument) (Post, bool) {
	title := stringField(doc, "title")
	route := stringField(doc, "route")
	if title == "" || route == "" {
		return Post{}, false
	}
	return Post{
		ID:            stringField(doc, "id"),
		Title:         title,
		Route:         route,
		Slug:          Slugify(title),
		PublishedAt:   timeField(doc, "published"),
		Summary:       stringField(doc, "summary"),
		CoverImageURL: coverImage(doc["coverImage"]),
		Categories:    listField(doc, "categories"),
	}, true
}

func stringField(doc RawDocument, key string) string {
	switch v := doc[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	case []string:
		if len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// listField reads a list of labels. Comma-separated strings are split.
func listField(doc RawDocument, key string) []string {
	var vals []string
	switch v := doc[key].(type) {
	case string:
		vals = strings.Split(v, ",")
	case []string:
		vals = v
	case []any:
		for _, item := range v {
			switch it := item.(type) {
			case string:
				vals = append(vals, it)
			case map[string]any:
				if name, ok := it["name"].(string); ok {
					vals = append(vals, name)
				}
			}
		}
	}
	return FilterEmpty(vals)
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func timeField(doc RawDocument, key string) time.Time {
	switch v := doc[key].(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	case float64:
		return time.UnixMilli(int64(v)).UTC()
	case int64:
		return time.UnixMilli(v).UTC()
	}
	return time.Time{}
}

// coverImage takes the first element of a cover image list. Elements are
// either URLs or objects with a "url" key.
func coverImage(v any) string {
	switch c := v.(type) {
	case string:
		return strings.TrimSpace(c)
	case []string:
		if len(c) > 0 {
			return strings.TrimSpace(c[0])
		}
	case []map[string]any:
		if len(c) > 0 {
			return coverImage(c[0])
		}
	case []any:
		if len(c) > 0 {
			return coverImage(c[0])
		}
	case map[string]any:
		if u, ok := c["url"].(string); ok {
			return strings.TrimSpace(u)
		}
	}
	return ""
}
