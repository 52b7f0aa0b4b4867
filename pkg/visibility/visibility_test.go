package visibility

import (
	"strings"
	"testing"

	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	"github.com/shopspring/decimal"
)

func tiers(representative, sacoleira int64) PriceTiers {
	return PriceTiers{
		Representative: decimal.NewFromInt(representative),
		Sacoleira:      decimal.NewFromInt(sacoleira),
	}
}

func TestPriceForRoleTable(t *testing.T) {
	v := tiers(50, 40)

	if !PriceFor(enums.RoleGuest, v).Restricted() {
		t.Fatal("guest must be restricted")
	}
	if _, ok := PriceFor(enums.RoleGuest, v).Amount(); ok {
		t.Fatal("restricted price must not expose an amount")
	}

	cases := map[enums.Role]int64{
		enums.RoleSacoleira:      40,
		enums.RoleRepresentative: 50,
		enums.RoleAdmin:          50,
	}
	for role, want := range cases {
		amount, ok := PriceFor(role, v).Amount()
		if !ok {
			t.Fatalf("%s should see a price", role)
		}
		if !amount.Equal(decimal.NewFromInt(want)) {
			t.Fatalf("%s expected %d got %s", role, want, amount)
		}
	}
}

func TestPriceForUnknownRoleIsRestricted(t *testing.T) {
	for _, role := range []enums.Role{"", "OWNER", "admin"} {
		if !PriceFor(role, tiers(10, 10)).Restricted() {
			t.Fatalf("role %q must be restricted", role)
		}
		if CanSeePrices(role) {
			t.Fatalf("role %q must not see prices", role)
		}
	}
}

func TestVariantDisplay(t *testing.T) {
	if got := VariantDisplay(enums.RoleSacoleira, tiers(50, 40)); got.Kind != DisplayPrice || got.Label != "R$ 40.00" {
		t.Fatalf("unexpected sacoleira display %+v", got)
	}
	if got := VariantDisplay(enums.RoleGuest, tiers(50, 40)); got.Kind != DisplayRestricted || strings.ContainsAny(got.Label, "0123456789") {
		t.Fatalf("unexpected guest display %+v", got)
	}
	if got := VariantDisplay(enums.RoleSacoleira, tiers(50, 0)); got.Kind != DisplayInquire {
		t.Fatalf("zero tier should ask to inquire, got %+v", got)
	}
}

func TestRangeDisplayCollapsesEqualPrices(t *testing.T) {
	got := RangeDisplay(enums.RoleRepresentative, []PriceTiers{tiers(30, 20), tiers(30, 25)})
	if got.Kind != DisplayPrice || got.Label != "R$ 30.00" {
		t.Fatalf("unexpected display %+v", got)
	}
}

func TestRangeDisplayShowsMinAndMax(t *testing.T) {
	got := RangeDisplay(enums.RoleRepresentative, []PriceTiers{tiers(50, 1), tiers(30, 1), tiers(40, 1)})
	if got.Kind != DisplayRange || got.Label != "R$ 30.00 – R$ 50.00" {
		t.Fatalf("unexpected display %+v", got)
	}
}

func TestRangeDisplayIgnoresZeroPrices(t *testing.T) {
	got := RangeDisplay(enums.RoleSacoleira, []PriceTiers{tiers(50, 0), tiers(50, 35)})
	if got.Label != "R$ 35.00" {
		t.Fatalf("zero-priced variant should be ignored, got %+v", got)
	}
}

func TestRangeDisplayInquireWhenNothingPriced(t *testing.T) {
	if got := RangeDisplay(enums.RoleAdmin, nil); got.Kind != DisplayInquire || got.Label != "inquire" {
		t.Fatalf("expected inquire for no variants, got %+v", got)
	}
	if got := RangeDisplay(enums.RoleAdmin, []PriceTiers{tiers(0, 10)}); got.Kind != DisplayInquire {
		t.Fatalf("expected inquire when every tier is zero, got %+v", got)
	}
}

func TestRangeDisplayGuestSeesCallToAction(t *testing.T) {
	for _, variants := range [][]PriceTiers{nil, {tiers(50, 40)}} {
		got := RangeDisplay(enums.RoleGuest, variants)
		if got.Kind != DisplaySeePrice || got.Label != "see price" {
			t.Fatalf("unexpected guest display %+v", got)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	if got := FormatBRL(decimal.RequireFromString("39.9")); got != "R$ 39.90" {
		t.Fatalf("unexpected format %q", got)
	}
}
