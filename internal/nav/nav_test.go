package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildMarksActiveSection(t *testing.T) {
	t.Parallel()

	items := Build("/gallery")
	var active []string
	for _, it := range items {
		if it.Active {
			active = append(active, it.Href)
		}
	}
	require.Equal(t, []string{"/gallery"}, active, "home must only be active on /")
	require.True(t, Build("/")[0].Active)
}

func TestBreadcrumbs(t *testing.T) {
	t.Parallel()

	require.Len(t, Breadcrumbs("/"), 1)

	crumbs := Breadcrumbs("/legal/privacy")
	require.Equal(t, []Crumb{
		{Href: "/", LabelKey: "nav.home"},
		{Href: "/legal", Label: "Legal"},
		{Href: "/legal/privacy", LabelKey: "legal.privacy", Label: "Privacy", Active: true},
	}, crumbs)

	crumbs = Breadcrumbs("/gallery")
	require.Equal(t, "nav.gallery", crumbs[1].LabelKey)
	require.True(t, crumbs[1].Active)
}
