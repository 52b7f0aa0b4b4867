// Package visibility is the single place that decides which price, if any, a
// viewer may see. Callers building viewer-facing output go through PriceFor,
// VariantDisplay or RangeDisplay and never read price tiers directly.
package visibility

import (
	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	"github.com/shopspring/decimal"
)

// DisplayKind tells the client which affordance to render.
type DisplayKind string

const (
	DisplayPrice      DisplayKind = "price"
	DisplayRange      DisplayKind = "range"
	DisplayInquire    DisplayKind = "inquire"
	DisplaySeePrice   DisplayKind = "see_price"
	DisplayRestricted DisplayKind = "restricted"
)

const (
	currencyPrefix = "R$ "
	rangeSeparator = " – "

	labelInquire    = "inquire"
	labelSeePrice   = "see price"
	labelRestricted = "restricted"
)

// PriceTiers holds the two price columns of a reference.
type PriceTiers struct {
	Representative decimal.Decimal
	Sacoleira      decimal.Decimal
}

// Price is the outcome of the policy for one variant. A restricted price
// carries no amount.
type Price struct {
	amount     decimal.Decimal
	restricted bool
}

// Restricted reports whether the viewer may not see any number.
func (p Price) Restricted() bool {
	return p.restricted
}

// Amount returns the visible amount. ok is false for restricted prices.
func (p Price) Amount() (amount decimal.Decimal, ok bool) {
	if p.restricted {
		return decimal.Zero, false
	}
	return p.amount, true
}

// Display is the viewer-facing rendering of a price. Label is the only field
// that may contain a number, and only for roles allowed to see prices.
type Display struct {
	Kind  DisplayKind `json:"kind"`
	Label string      `json:"label"`
}

// CanSeePrices reports whether role is entitled to any price tier.
func CanSeePrices(role enums.Role) bool {
	switch role {
	case enums.RoleSacoleira, enums.RoleRepresentative, enums.RoleAdmin:
		return true
	case enums.RoleGuest:
		return false
	default:
		return false
	}
}

// PriceFor maps a viewer role to the tier it is entitled to see.
func PriceFor(role enums.Role, tiers PriceTiers) Price {
	switch role {
	case enums.RoleGuest:
		return Price{restricted: true}
	case enums.RoleSacoleira:
		return Price{amount: tiers.Sacoleira}
	case enums.RoleRepresentative, enums.RoleAdmin:
		return Price{amount: tiers.Representative}
	default:
		return Price{restricted: true}
	}
}

// VariantDisplay renders the price of a single variant.
func VariantDisplay(role enums.Role, tiers PriceTiers) Display {
	price := PriceFor(role, tiers)
	amount, ok := price.Amount()
	if !ok {
		return Display{Kind: DisplayRestricted, Label: labelRestricted}
	}
	if !amount.IsPositive() {
		return Display{Kind: DisplayInquire, Label: labelInquire}
	}
	return Display{Kind: DisplayPrice, Label: FormatBRL(amount)}
}

// RangeDisplay renders the summary price of a product from its variants' tiers.
// Variants without a positive price for the role are ignored.
func RangeDisplay(role enums.Role, variants []PriceTiers) Display {
	if !CanSeePrices(role) {
		return Display{Kind: DisplaySeePrice, Label: labelSeePrice}
	}

	var (
		min, max decimal.Decimal
		found    bool
	)
	for _, tiers := range variants {
		amount, ok := PriceFor(role, tiers).Amount()
		if !ok || !amount.IsPositive() {
			continue
		}
		if !found {
			min, max, found = amount, amount, true
			continue
		}
		if amount.LessThan(min) {
			min = amount
		}
		if amount.GreaterThan(max) {
			max = amount
		}
	}

	switch {
	case !found:
		return Display{Kind: DisplayInquire, Label: labelInquire}
	case min.Equal(max):
		return Display{Kind: DisplayPrice, Label: FormatBRL(min)}
	default:
		return Display{Kind: DisplayRange, Label: FormatBRL(min) + rangeSeparator + FormatBRL(max)}
	}
}

// FormatBRL renders an amount as "R$ 30.00".
func FormatBRL(amount decimal.Decimal) string {
	return currencyPrefix + amount.StringFixed(2)
}
