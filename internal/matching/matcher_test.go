package matching

import (
	"testing"

	"givelocal/pkg/types"

	"github.com/stretchr/testify/assert"
)

func org() *types.Organization {
	return &types.Organization{
		AcceptedCategories: []string{"Furniture"},
		RejectedCategories: []string{"Electronics"},
		SubcategoryPreferences: types.SubcategoryPreferenceList{
			{
				Category:              "Clothing",
				AcceptedSubcategories: []string{"Jackets"},
				RejectedSubcategories: []string{"Shoes"},
			},
			{
				Category:              "Furniture",
				AcceptedSubcategories: []string{},
				RejectedSubcategories: []string{"Mattresses"},
			},
		},
	}
}

func TestMatchRejectedCategoryWinsOutright(t *testing.T) {
	o := org()

	assert.Equal(t, DecisionRejected, Match(o, "Electronics", ""))
	assert.Equal(t, DecisionRejected, Match(o, "Electronics", "Laptops"))

	// Even an explicitly accepted subcategory cannot override a category
	// level rejection.
	AcceptSubcategory(o, "Electronics", "Laptops")
	RejectCategory(o, "Electronics")
	assert.Equal(t, DecisionRejected, Match(o, "Electronics", "Laptops"))
}

func TestMatchAcceptedCategory(t *testing.T) {
	o := org()

	assert.Equal(t, DecisionAccepted, Match(o, "Furniture", ""))
	assert.Equal(t, DecisionAccepted, Match(o, "Furniture", "Sofas"))
}

func TestMatchSubcategoryOverridesAcceptedCategory(t *testing.T) {
	o := org()

	assert.Equal(t, DecisionRejected, Match(o, "Furniture", "Mattresses"))
}

func TestMatchSubcategoryPreferencesWithoutCategoryDecision(t *testing.T) {
	o := org()

	assert.Equal(t, DecisionAccepted, Match(o, "Clothing", "Jackets"))
	assert.Equal(t, DecisionRejected, Match(o, "Clothing", "Shoes"))
	assert.Equal(t, DecisionUndecided, Match(o, "Clothing", "Scarves"))
	assert.Equal(t, DecisionUndecided, Match(o, "Clothing", ""))
}

func TestMatchUnconfiguredCategory(t *testing.T) {
	o := org()

	assert.Equal(t, DecisionUndecided, Match(o, "Books", ""))
	assert.Equal(t, DecisionUndecided, Match(o, "Books", "Textbooks"))
}

func TestCategoryToggleExclusivity(t *testing.T) {
	o := &types.Organization{}

	AcceptCategory(o, "Furniture")
	RejectCategory(o, "Furniture")
	AcceptCategory(o, "Furniture")
	RejectCategory(o, "Furniture")

	assert.NotContains(t, o.AcceptedCategories, "Furniture")
	assert.Contains(t, o.RejectedCategories, "Furniture")
}

func TestAcceptCategoryIdempotent(t *testing.T) {
	o := &types.Organization{}

	AcceptCategory(o, "Furniture")
	AcceptCategory(o, "Furniture")

	assert.Equal(t, []string{"Furniture"}, o.AcceptedCategories)
}

func TestSubcategoryToggleExclusivity(t *testing.T) {
	o := &types.Organization{}

	AcceptSubcategory(o, "Clothing", "Shoes")
	RejectSubcategory(o, "Clothing", "Shoes")
	AcceptSubcategory(o, "Clothing", "Shoes")

	pref := findPreference(o.SubcategoryPreferences, "Clothing")
	assert.NotNil(t, pref)
	assert.Contains(t, pref.AcceptedSubcategories, "Shoes")
	assert.NotContains(t, pref.RejectedSubcategories, "Shoes")
}

func TestAcceptAllSubcategories(t *testing.T) {
	o := &types.Organization{}
	subs := []string{"Jackets", "Shoes", "Scarves"}

	RejectSubcategory(o, "Clothing", "Jackets")
	AcceptAllSubcategories(o, "Clothing", subs)

	pref := findPreference(o.SubcategoryPreferences, "Clothing")
	assert.Equal(t, subs, pref.AcceptedSubcategories)
	assert.Empty(t, pref.RejectedSubcategories)
}

func TestRejectAllSubcategories(t *testing.T) {
	o := &types.Organization{}
	subs := []string{"Jackets", "Shoes"}

	AcceptSubcategory(o, "Clothing", "Jackets")
	RejectAllSubcategories(o, "Clothing", subs)

	pref := findPreference(o.SubcategoryPreferences, "Clothing")
	assert.Equal(t, subs, pref.RejectedSubcategories)
	assert.Empty(t, pref.AcceptedSubcategories)
}

func TestClearCategoryReturnsToUndecided(t *testing.T) {
	o := &types.Organization{}

	AcceptCategory(o, "Clothing")
	AcceptSubcategory(o, "Clothing", "Jackets")
	ClearCategory(o, "Clothing")

	assert.Equal(t, DecisionUndecided, Match(o, "Clothing", "Jackets"))
	assert.Empty(t, o.AcceptedCategories)
	assert.Empty(t, o.RejectedCategories)
	assert.Nil(t, findPreference(o.SubcategoryPreferences, "Clothing"))
}

func TestClearSubcategoriesKeepsOtherCategories(t *testing.T) {
	o := &types.Organization{}

	AcceptSubcategory(o, "Clothing", "Jackets")
	AcceptSubcategory(o, "Furniture", "Sofas")
	ClearSubcategories(o, "Clothing")

	assert.Nil(t, findPreference(o.SubcategoryPreferences, "Clothing"))
	assert.NotNil(t, findPreference(o.SubcategoryPreferences, "Furniture"))
}

func TestToggleSequencesNeverViolateExclusivity(t *testing.T) {
	o := &types.Organization{}
	ops := []func(){
		func() { AcceptCategory(o, "Clothing") },
		func() { RejectCategory(o, "Clothing") },
		func() { AcceptSubcategory(o, "Clothing", "Shoes") },
		func() { RejectSubcategory(o, "Clothing", "Shoes") },
		func() { AcceptCategory(o, "Clothing") },
		func() { AcceptSubcategory(o, "Clothing", "Shoes") },
		func() { RejectCategory(o, "Clothing") },
		func() { RejectSubcategory(o, "Clothing", "Shoes") },
	}

	for _, op := range ops {
		op()

		for _, c := range o.AcceptedCategories {
			assert.NotContains(t, o.RejectedCategories, c)
		}
		for _, pref := range o.SubcategoryPreferences {
			for _, s := range pref.AcceptedSubcategories {
				assert.NotContains(t, pref.RejectedSubcategories, s)
			}
		}
	}
}
