// Package model defines the budget categories, accounts, percentages and
// income profile shared by every calculation package.
package model

import "fmt"

// Category is one of the four main allocation targets.
type Category int

// Main categories in display and tie-break order.
const (
	Fixed Category = iota
	Flexible
	Savings
	Charity
	numCategories
)

// Categories lists every main category in display order.
var Categories = [numCategories]Category{Fixed, Flexible, Savings, Charity}

var categoryKeys = [numCategories]string{"fixed", "flexible", "savings", "charity"}

var categoryLabels = [numCategories]string{"Fixed", "Flexible", "Savings", "Charity"}

var categoryLabelsFull = [numCategories]string{
	"Fixed (Bills & Rent)",
	"Flexible (Spending)",
	"Savings",
	"Charity",
}

// Key returns the persisted key for the category.
func (c Category) Key() string {
	if c < 0 || c >= numCategories {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryKeys[c]
}

// Label returns the short display label.
func (c Category) Label() string {
	if c < 0 || c >= numCategories {
		return c.Key()
	}
	return categoryLabels[c]
}

// LabelFull returns the long display label.
func (c Category) LabelFull() string {
	if c < 0 || c >= numCategories {
		return c.Key()
	}
	return categoryLabelsFull[c]
}

func (c Category) String() string { return c.Key() }

// Account returns the account backed by this category. Savings has no
// account of its own; its sub-categories do.
func (c Category) Account() (AccountKey, bool) {
	switch c {
	case Fixed:
		return FixedAccount, true
	case Flexible:
		return FlexibleAccount, true
	case Charity:
		return CharityAccount, true
	default:
		return 0, false
	}
}

// ParseCategory resolves a persisted key or label to a Category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if s == categoryKeys[c] || s == categoryLabels[c] {
			return c, true
		}
	}
	return 0, false
}

// SavingsCategory subdivides the Savings main category.
type SavingsCategory int

// Savings sub-categories in display and tie-break order.
const (
	RainyDay SavingsCategory = iota
	Retirement
	HSA
	BigPurchases
	numSavingsCategories
)

// SavingsCategories lists every savings sub-category in display order.
var SavingsCategories = [numSavingsCategories]SavingsCategory{RainyDay, Retirement, HSA, BigPurchases}

var savingsKeys = [numSavingsCategories]string{"rainyDay", "retirement", "hsa", "bigPurchases"}

var savingsLabels = [numSavingsCategories]string{"Rainy Day", "Retirement", "HSA", "Big Purchases"}

var savingsLabelsFull = [numSavingsCategories]string{
	"Rainy Day Fund",
	"Retirement",
	"Health Savings (HSA)",
	"Big Purchases",
}

// Key returns the persisted key for the sub-category.
func (s SavingsCategory) Key() string {
	if s < 0 || s >= numSavingsCategories {
		return fmt.Sprintf("savings(%d)", int(s))
	}
	return savingsKeys[s]
}

// Label returns the short display label.
func (s SavingsCategory) Label() string {
	if s < 0 || s >= numSavingsCategories {
		return s.Key()
	}
	return savingsLabels[s]
}

// LabelFull returns the long display label.
func (s SavingsCategory) LabelFull() string {
	if s < 0 || s >= numSavingsCategories {
		return s.Key()
	}
	return savingsLabelsFull[s]
}

func (s SavingsCategory) String() string { return s.Key() }

// Account returns the account holding this sub-category's balance.
func (s SavingsCategory) Account() AccountKey {
	return AccountKey(int(RainyDayAccount) + int(s))
}

// ParseSavingsCategory resolves a persisted key or label to a SavingsCategory.
func ParseSavingsCategory(s string) (SavingsCategory, bool) {
	for _, sc := range SavingsCategories {
		if s == savingsKeys[sc] || s == savingsLabels[sc] {
			return sc, true
		}
	}
	return 0, false
}
