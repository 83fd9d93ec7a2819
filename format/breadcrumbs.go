package format

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Breadcrumb struct {
	Label string
	Path  string
	// OnClick is nil for the current (non-clickable) crumb.
	OnClick func()
}

func (b Breadcrumb) Clickable() bool { return b.OnClick != nil }

type BreadcrumbOptions struct {
	ClickableLast bool
}

var dashes = regexp.MustCompile(`[-_]+`)

// BuildBreadcrumbs turns a slash separated path into labelled crumbs, each
// navigating to its prefix. Surrounding slashes are ignored.
func BuildBreadcrumbs(path string, navigate func(string), opts BreadcrumbOptions) []Breadcrumb {
	clean := strings.Trim(path, "/")
	if clean == "" {
		return nil
	}
	segments := strings.Split(clean, "/")

	crumbs := make([]Breadcrumb, 0, len(segments))
	prefix := ""
	for i, seg := range segments {
		prefix += "/" + seg
		crumb := Breadcrumb{Label: humanizeSegment(seg), Path: prefix}
		if (opts.ClickableLast || i < len(segments)-1) && navigate != nil {
			to := prefix
			crumb.OnClick = func() { navigate(to) }
		}
		crumbs = append(crumbs, crumb)
	}
	return crumbs
}

func humanizeSegment(segment string) string {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		decoded = segment
	}
	words := strings.Fields(dashes.ReplaceAllString(decoded, " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
