package gallery

import "strings"

// Category is one of the fixed photo categories a manifest may contain.
type Category string

const (
	CategoryCommunity Category = "Community"
	CategoryMatch     Category = "Match"
	CategoryPlayers   Category = "Players"
	CategoryTeam      Category = "Team"
	CategoryTraining  Category = "Training"
)

// All is the filter sentinel selecting every category.
const All = "all"

var categories = []Category{
	CategoryCommunity,
	CategoryMatch,
	CategoryPlayers,
	CategoryTeam,
	CategoryTraining,
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory matches name against the fixed set without regard to case.
func ParseCategory(name string) (Category, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, c := range categories {
		if strings.EqualFold(string(c), name) {
			return c, true
		}
	}
	return "", false
}

// IsAll reports whether filter selects the aggregate view.
func IsAll(filter string) bool {
	filter = strings.TrimSpace(filter)
	return filter == "" || strings.EqualFold(filter, All)
}

func (c Category) String() string { return string(c) }

// Slug is the lowercase form used in URLs and i18n keys.
func (c Category) Slug() string { return strings.ToLower(string(c)) }
