package matching

import (
	"slices"

	"givelocal/pkg/types"
)

// The toggle operations below mutate an organization's preference lists in
// place. The invariant they maintain: no category or subcategory ever sits
// on both the accept and reject side at the same granularity. Accepting
// removes from the rejected list and vice versa.

func AcceptCategory(org *types.Organization, category string) {
	org.RejectedCategories = remove(org.RejectedCategories, category)
	org.AcceptedCategories = appendUnique(org.AcceptedCategories, category)
}

func RejectCategory(org *types.Organization, category string) {
	org.AcceptedCategories = remove(org.AcceptedCategories, category)
	org.RejectedCategories = appendUnique(org.RejectedCategories, category)
}

// ClearCategory returns the category to the undecided state at both
// granularities.
func ClearCategory(org *types.Organization, category string) {
	org.AcceptedCategories = remove(org.AcceptedCategories, category)
	org.RejectedCategories = remove(org.RejectedCategories, category)
	ClearSubcategories(org, category)
}

func AcceptSubcategory(org *types.Organization, category, subcategory string) {
	pref := ensurePreference(org, category)
	pref.RejectedSubcategories = remove(pref.RejectedSubcategories, subcategory)
	pref.AcceptedSubcategories = appendUnique(pref.AcceptedSubcategories, subcategory)
}

func RejectSubcategory(org *types.Organization, category, subcategory string) {
	pref := ensurePreference(org, category)
	pref.AcceptedSubcategories = remove(pref.AcceptedSubcategories, subcategory)
	pref.RejectedSubcategories = appendUnique(pref.RejectedSubcategories, subcategory)
}

// AcceptAllSubcategories marks the category's full subcategory list as
// accepted and empties the rejected list.
func AcceptAllSubcategories(org *types.Organization, category string, subcategories []string) {
	pref := ensurePreference(org, category)
	pref.AcceptedSubcategories = slices.Clone(subcategories)
	pref.RejectedSubcategories = []string{}
}

// RejectAllSubcategories is the mirror of AcceptAllSubcategories.
func RejectAllSubcategories(org *types.Organization, category string, subcategories []string) {
	pref := ensurePreference(org, category)
	pref.RejectedSubcategories = slices.Clone(subcategories)
	pref.AcceptedSubcategories = []string{}
}

// ClearSubcategories empties both lists for the category, dropping the
// preference entry entirely.
func ClearSubcategories(org *types.Organization, category string) {
	prefs := org.SubcategoryPreferences
	for i := range prefs {
		if prefs[i].Category == category {
			org.SubcategoryPreferences = append(prefs[:i], prefs[i+1:]...)
			return
		}
	}
}

func ensurePreference(org *types.Organization, category string) *types.SubcategoryPreference {
	for i := range org.SubcategoryPreferences {
		if org.SubcategoryPreferences[i].Category == category {
			return &org.SubcategoryPreferences[i]
		}
	}

	org.SubcategoryPreferences = append(org.SubcategoryPreferences, types.SubcategoryPreference{
		Category:              category,
		AcceptedSubcategories: []string{},
		RejectedSubcategories: []string{},
	})
	return &org.SubcategoryPreferences[len(org.SubcategoryPreferences)-1]
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

func remove(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item == v {
			continue
		}
		out = append(out, item)
	}
	return out
}
