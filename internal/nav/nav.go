package nav

import (
	"path"
	"strings"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/gallery"
	LabelKey string // i18n key, e.g. "nav.gallery"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/", LabelKey: "nav.home"},
	{Path: "/about", LabelKey: "nav.about"},
	{Path: "/team", LabelKey: "nav.team"},
	{Path: "/schedule", LabelKey: "nav.schedule"},
	{Path: "/gallery", LabelKey: "nav.gallery"},
	{Path: "/contact", LabelKey: "nav.contact"},
}

// Footer links to the legal pages.
var Footer = []Item{
	{Path: "/legal/privacy", LabelKey: "legal.privacy"},
	{Path: "/legal/imprint", LabelKey: "legal.imprint"},
	{Path: "/legal/terms", LabelKey: "legal.terms"},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	return render(Main, currentPath)
}

// BuildFooter renders the footer links.
func BuildFooter(currentPath string) []RenderedItem {
	return render(Footer, currentPath)
}

func render(items []Item, currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	out := make([]RenderedItem, 0, len(items))
	for _, it := range items {
		out = append(out, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
		})
	}
	return out
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries from the current path: Home, then the section, then
// any deeper segments with a prettified label.
func Breadcrumbs(currentPath string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	clean := path.Clean(currentPath)
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	if parts[0] == "" {
		return crumbs
	}

	href := ""
	for i, seg := range parts {
		href += "/" + seg
		crumbs = append(crumbs, Crumb{
			Href:     href,
			LabelKey: labelKeyFor(href),
			Label:    titleFromSegment(seg),
			Active:   i == len(parts)-1,
		})
	}
	return crumbs
}

func labelKeyFor(href string) string {
	for _, items := range [][]Item{Main, Footer} {
		for _, it := range items {
			if it.Path == href {
				return it.LabelKey
			}
		}
	}
	return ""
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	r := []rune(s)
	// ASCII is sufficient for slugs here
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
