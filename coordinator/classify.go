package coordinator

import "strings"

// TierCategory is the on-chain ticket category a tier is registered under.
type TierCategory uint8

const (
	CategoryVIP     TierCategory = 0
	CategoryPremium TierCategory = 1
	CategoryGeneral TierCategory = 2
)

// String returns the category name.
func (c TierCategory) String() string {
	switch c {
	case CategoryVIP:
		return "vip"
	case CategoryPremium:
		return "premium"
	default:
		return "general"
	}
}

// classificationRules map tier-name substrings to categories, evaluated top
// to bottom. The order matters: "premium vip lounge" must classify as VIP.
var classificationRules = []struct {
	substring string
	category  TierCategory
}{
	{"vip", CategoryVIP},
	{"premium", CategoryPremium},
}

// ClassifyTier maps a tier name to its on-chain category by case-insensitive
// substring match. Unmatched names fall through to the general category;
// classification never fails.
func ClassifyTier(name string) TierCategory {
	lower := strings.ToLower(name)
	for _, rule := range classificationRules {
		if strings.Contains(lower, rule.substring) {
			return rule.category
		}
	}
	return CategoryGeneral
}
