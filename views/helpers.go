package views

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// cardCategories is how many categories an article card shows.
const cardCategories = 2

// GridClass returns the CSS classes of an article grid with cols columns on
// large screens.
func GridClass(cols int) string {
	base := "grid gap-10 sm:grid-cols-2 auto-rows-max"
	if cols == 3 {
		return base + " lg:grid-cols-3"
	}
	return base + " lg:grid-cols-2"
}

// CardClass returns the CSS classes of an article card. Cards without a cover
// image get a border instead.
func CardClass(hasCover bool) string {
	base := "flex flex-col overflow-hidden cursor-pointer group"
	if !hasCover {
		base += " border p-6 rounded-lg hover:bg-gray-100 transition"
	}
	return base
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	base := "inline-flex items-center rounded border border-ink bg-stone-100 px-2.5 py-1 text-[11px] font-semibold uppercase tracking-[0.12em]"
	if active {
		base += " bg-ink text-white"
	}
	return base
}

// RouteLabel turns a route segment into a navigation label:
// "engineering-notes" becomes "Engineering Notes".
func RouteLabel(route string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(route, "-", " "))
}

// FormatDate formats a publication date for display; the zero time yields "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// CardCategories returns the categories shown on an article card.
func CardCategories(categories []string) []string {
	if len(categories) > cardCategories {
		return categories[:cardCategories]
	}
	return categories
}

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}
