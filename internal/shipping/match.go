package shipping

import (
	"regexp"
	"sort"
	"strings"

	"github.com/borncamp/adboard-manager/internal/entity"
)

// SortProfiles orders profiles by (priority ASC, creation sequence ASC).
// The secondary key makes matching deterministic when priorities tie,
// independent of whatever order the storage backend returned rows in.
func SortProfiles(profiles []entity.ShippingProfile) []entity.ShippingProfile {
	sorted := make([]entity.ShippingProfile, len(profiles))
	copy(sorted, profiles)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].Seq < sorted[j].Seq
	})
	return sorted
}

// Matches reports whether the condition is satisfied by the line item.
func Matches(cond *entity.MatchCondition, li *entity.LineItem) bool {
	value := fieldValue(cond.Field, li)

	if cond.Operator == entity.MatchOperatorRegex {
		pattern := cond.Value
		if !cond.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			// invalid pattern never matches
			return false
		}
		return re.MatchString(value)
	}

	match := cond.Value
	if !cond.CaseSensitive {
		value = strings.ToLower(value)
		match = strings.ToLower(match)
	}

	switch cond.Operator {
	case entity.MatchOperatorContains:
		return strings.Contains(value, match)
	case entity.MatchOperatorEquals:
		return value == match
	case entity.MatchOperatorStartsWith:
		return strings.HasPrefix(value, match)
	case entity.MatchOperatorEndsWith:
		return strings.HasSuffix(value, match)
	}
	return false
}

// Match returns the first active profile, in (priority, creation) order,
// whose condition the line item satisfies. First match wins; there is no
// best-match scoring. Returns nil when no active profile matches.
func Match(li *entity.LineItem, profiles []entity.ShippingProfile) *entity.ShippingProfile {
	sorted := SortProfiles(profiles)
	for i := range sorted {
		p := &sorted[i]
		if !p.IsActive {
			continue
		}
		if Matches(&p.Match, li) {
			return p
		}
	}
	return nil
}

// MatchOrDefault behaves like Match but falls back to the first active
// profile flagged is_default when nothing matches. Returns nil when there
// is no match and no default.
func MatchOrDefault(li *entity.LineItem, profiles []entity.ShippingProfile) *entity.ShippingProfile {
	if p := Match(li, profiles); p != nil {
		return p
	}
	sorted := SortProfiles(profiles)
	for i := range sorted {
		if sorted[i].IsActive && sorted[i].IsDefault {
			return &sorted[i]
		}
	}
	return nil
}

func fieldValue(f entity.MatchField, li *entity.LineItem) string {
	switch f {
	case entity.MatchFieldProductTitle:
		return li.ProductTitle
	case entity.MatchFieldVariantTitle:
		return li.VariantTitle
	}
	return ""
}
