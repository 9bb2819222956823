// Package matching decides whether a donation's category and subcategory
// are acceptable to an organization, based on the organization's accepted
// and rejected category lists and its per-category subcategory preferences.
package matching

import (
	"slices"

	"givelocal/pkg/types"
)

type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"

	// DecisionUndecided means the organization has not configured anything
	// for the category. The UI renders this as "Setting up categories...".
	DecisionUndecided Decision = "undecided"
)

// Match applies the organization's preferences to a candidate
// category/subcategory pair:
//
//  1. A rejected category loses outright, subcategory notwithstanding.
//  2. An accepted category wins, unless the specific subcategory is on the
//     category's rejected list (fine-grained override).
//  3. Otherwise a subcategory on the accepted list wins,
//  4. one on the rejected list loses,
//  5. and anything else is undecided.
func Match(org *types.Organization, category, subcategory string) Decision {
	if slices.Contains(org.RejectedCategories, category) {
		return DecisionRejected
	}

	pref := findPreference(org.SubcategoryPreferences, category)

	if slices.Contains(org.AcceptedCategories, category) {
		if pref != nil && subcategory != "" && slices.Contains(pref.RejectedSubcategories, subcategory) {
			return DecisionRejected
		}
		return DecisionAccepted
	}

	if pref != nil && subcategory != "" {
		if slices.Contains(pref.AcceptedSubcategories, subcategory) {
			return DecisionAccepted
		}
		if slices.Contains(pref.RejectedSubcategories, subcategory) {
			return DecisionRejected
		}
	}

	return DecisionUndecided
}

func findPreference(prefs types.SubcategoryPreferenceList, category string) *types.SubcategoryPreference {
	for i := range prefs {
		if prefs[i].Category == category {
			return &prefs[i]
		}
	}
	return nil
}
