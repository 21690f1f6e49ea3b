package handlers

import (
	"net/url"
	"strings"

	"github.com/northgate-sc/clubweb/internal/content"
	"github.com/northgate-sc/clubweb/internal/nav"
	"github.com/northgate-sc/clubweb/internal/seo"
)

// Site is the club information shared by every page.
type Site struct {
	Name      string
	BaseURL   string
	Sport     string
	Logo      string
	SameAs    []string
	Languages []string
}

// Club converts the site into its structured-data form.
func (s Site) Club() seo.Club {
	return seo.Club{Name: s.Name, URL: s.BaseURL, Logo: s.AbsURL(s.Logo), Sport: s.Sport, SameAs: s.SameAs}
}

// AbsURL resolves a site-relative path against BaseURL. Absolute URLs pass through.
func (s Site) AbsURL(p string) string {
	if p == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(s.BaseURL, "/") + p
}

// LanguageLink switches the page language through the hl parameter.
type LanguageLink struct {
	Lang   string
	Href   string
	Active bool
}

// PageData is the view model for every page rendered with the shared layout.
type PageData struct {
	Title     string
	Lang      string
	Site      Site
	SEO       seo.Meta
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Footer      []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Languages   []LanguageLink

	// Template picks the body template; one of "home", "page", "gallery", "error".
	Template string
	Content  *content.Page
	Gallery  *GalleryView
	Error    *ErrorView
}

// ErrorView is the body of a not found or unavailable page.
type ErrorView struct {
	Status     int
	MessageKey string
}

// NewPageData fills the layout fields for path in lang. Title and body are left to the caller.
func NewPageData(site Site, lang, path string) PageData {
	if path == "" {
		path = "/"
	}
	canonical := site.AbsURL(path)
	pd := PageData{
		Lang:        lang,
		Site:        site,
		Path:        path,
		Nav:         nav.Build(path),
		Footer:      nav.BuildFooter(path),
		Breadcrumbs: nav.Breadcrumbs(path),
		SEO: seo.Meta{
			Canonical: canonical,
			Robots:    "index,follow",
			OG: seo.OpenGraph{
				Type:     "website",
				URL:      canonical,
				SiteName: site.Name,
				Image:    site.AbsURL(site.Logo),
			},
			Twitter: seo.Twitter{Card: "summary_large_image", Image: site.AbsURL(site.Logo)},
		},
	}
	for _, l := range site.Languages {
		href := withQuery(path, "hl", l)
		pd.Languages = append(pd.Languages, LanguageLink{Lang: l, Href: href, Active: l == lang})
		pd.SEO.Alternates = append(pd.SEO.Alternates, seo.Alternate{Href: site.AbsURL(href), Hreflang: l})
	}
	return pd
}

// SetTitle sets the document title and mirrors it into the social previews.
func (pd *PageData) SetTitle(title, description string) {
	pd.Title = title
	pd.SEO.Title = title
	if pd.Site.Name != "" && title != pd.Site.Name {
		pd.SEO.Title = title + " | " + pd.Site.Name
	}
	pd.SEO.Description = description
	pd.SEO.OG.Title = pd.SEO.Title
	pd.SEO.OG.Description = description
}

// AddJSONLD appends a structured-data block. Payloads that fail to encode are skipped.
func (pd *PageData) AddJSONLD(v any) {
	if s := seo.JSON(v); s != "" {
		pd.SEO.JSONLD = append(pd.SEO.JSONLD, s)
	}
}

// BreadcrumbJSONLD builds the BreadcrumbList for pd's crumbs using t for labels.
func (pd *PageData) BreadcrumbJSONLD(t func(key string) string) map[string]any {
	items := make([]seo.BreadcrumbItem, 0, len(pd.Breadcrumbs))
	for _, c := range pd.Breadcrumbs {
		name := c.Label
		if c.LabelKey != "" {
			name = t(c.LabelKey)
		}
		items = append(items, seo.BreadcrumbItem{Name: name, Item: pd.Site.AbsURL(c.Href)})
	}
	return seo.BreadcrumbList(items)
}

// BuildContentPage renders a markdown page into the shared layout.
func BuildContentPage(site Site, lang, path string, page content.Page) PageData {
	pd := NewPageData(site, lang, path)
	pd.Template = "page"
	pd.Content = &page
	title := page.Title
	if page.SEO.Title != "" {
		title = page.SEO.Title
	}
	desc := page.Summary
	if page.SEO.Description != "" {
		desc = page.SEO.Description
	}
	pd.SetTitle(title, desc)
	pd.Title = page.Title
	if page.SEO.OGImage != "" {
		pd.SEO.OG.Image = site.AbsURL(page.SEO.OGImage)
		pd.SEO.Twitter.Image = pd.SEO.OG.Image
	}
	if page.Kind != "" {
		pd.SEO.OG.Type = "article"
	}
	return pd
}

func withQuery(path, key, value string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
