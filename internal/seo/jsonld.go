package seo

import (
	"encoding/json"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Club describes the organisation behind the site.
type Club struct {
	Name   string
	URL    string
	Logo   string
	Sport  string
	SameAs []string
}

// SportsOrganization returns the schema.org payload for the club.
func SportsOrganization(c Club) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "SportsOrganization",
		"name":     c.Name,
	}
	if c.URL != "" {
		m["url"] = c.URL
	}
	if c.Logo != "" {
		m["logo"] = c.Logo
	}
	if c.Sport != "" {
		m["sport"] = c.Sport
	}
	if len(c.SameAs) > 0 {
		m["sameAs"] = c.SameAs
	}
	return m
}

// WebSite returns a minimal WebSite schema.
func WebSite(name, url, lang string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if lang != "" {
		m["inLanguage"] = lang
	}
	return m
}

// Image is one picture of an ImageGallery.
type Image struct {
	URL     string
	Caption string
}

// ImageGallery describes the gallery page. Images keep the order they are displayed in.
func ImageGallery(name, url string, images []Image) map[string]any {
	el := make([]map[string]any, 0, len(images))
	for _, img := range images {
		obj := map[string]any{
			"@type":      "ImageObject",
			"contentUrl": img.URL,
		}
		if img.Caption != "" {
			obj["caption"] = img.Caption
		}
		el = append(el, obj)
	}
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "ImageGallery",
		"name":     name,
		"image":    el,
	}
	if url != "" {
		m["url"] = url
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Article returns a minimal Article schema payload for content pages.
func Article(headline, url, lang, dateModified string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Article",
		"headline": headline,
	}
	if url != "" {
		m["url"] = url
	}
	if lang != "" {
		m["inLanguage"] = lang
	}
	if dateModified != "" {
		m["dateModified"] = dateModified
	}
	return m
}
