package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/atacado-catalog/pkg/db/models"
	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-catalog/pkg/errors"
	"github.com/angelmondragon/atacado-catalog/pkg/pagination"
	"github.com/angelmondragon/atacado-catalog/pkg/visibility"
)

func newTestService(t *testing.T, store *fakeStore) (Service, *SnapshotCache) {
	t.Helper()
	cache := newTestCache(store, nil, nil)
	svc, err := NewService(ServiceParams{Snapshots: cache})
	require.NoError(t, err)
	return svc, cache
}

func scenarioStore() *fakeStore {
	return &fakeStore{
		references: []models.Reference{
			{ID: "r1", Code: "V01", SizeRange: enums.SizeRangePToGG, PriceRepresentative: price(50), PriceSacoleira: price(40), Colors: `[{"name":"Black","hex":"#000"}]`},
			{ID: "r-thirty-a", Code: "TRA", SizeRange: enums.SizeRangePToGG, PriceRepresentative: price(30), PriceSacoleira: price(30), Colors: `[]`},
			{ID: "r-thirty-b", Code: "TRB", SizeRange: enums.SizeRangeG1ToG3, PriceRepresentative: price(30), PriceSacoleira: price(30), Colors: `[]`},
			{ID: "r-fifty", Code: "FIF", SizeRange: enums.SizeRangeG1ToG3, PriceRepresentative: price(50), PriceSacoleira: price(50), Colors: `[]`},
		},
		products: []models.Product{
			{ID: "scenario-a", Name: "Vestido", ReferenceIDs: `["r1","ghost"]`, CategoryIDs: `["c-dress"]`, CreatedAt: 7},
			{ID: "same-price", Name: "Blusa", ReferenceIDs: `["r-thirty-a","r-thirty-b"]`, CreatedAt: 6},
			{ID: "price-range", Name: "Saia", ReferenceIDs: `["r-thirty-a","r-fifty"]`, CreatedAt: 5},
		},
		categories: []models.Category{{ID: "c-dress", Name: "Vestidos"}},
	}
}

func findItem(t *testing.T, items []ItemDTO, id string) ItemDTO {
	t.Helper()
	for _, item := range items {
		if item.ID == id {
			return item
		}
	}
	t.Fatalf("item %s not found", id)
	return ItemDTO{}
}

func TestScenarioA_DanglingReferenceDropped(t *testing.T) {
	svc, _ := newTestService(t, scenarioStore())

	detail, err := svc.GetProduct(context.Background(), enums.RoleAdmin, "scenario-a")
	require.NoError(t, err)
	require.Len(t, detail.Variants, 1)
	assert.Equal(t, "V01", detail.Variants[0].Reference)
	assert.Equal(t, 1, detail.VariantCount)
}

func TestScenarioB_SacoleiraPriceAndGuestCallToAction(t *testing.T) {
	svc, _ := newTestService(t, scenarioStore())
	ctx := context.Background()

	page, err := svc.ListCatalog(ctx, enums.RoleSacoleira, ListInput{})
	require.NoError(t, err)
	assert.Equal(t, "R$ 40.00", findItem(t, page.Items, "scenario-a").Price.Label)

	detail, err := svc.GetProduct(ctx, enums.RoleSacoleira, "scenario-a")
	require.NoError(t, err)
	assert.Equal(t, "R$ 40.00", detail.Variants[0].Price.Label)

	guestPage, err := svc.ListCatalog(ctx, enums.RoleGuest, ListInput{})
	require.NoError(t, err)
	guestItem := findItem(t, guestPage.Items, "scenario-a")
	assert.Equal(t, visibility.DisplaySeePrice, guestItem.Price.Kind)
	assert.Equal(t, "see price", guestItem.Price.Label)

	guestDetail, err := svc.GetProduct(ctx, enums.RoleGuest, "scenario-a")
	require.NoError(t, err)
	assert.Equal(t, visibility.DisplayRestricted, guestDetail.Variants[0].Price.Kind)

	for _, payload := range []any{guestPage, guestDetail} {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body := string(raw)
		for _, leak := range []string{"R$", "40", "50", "30", "price_representative", "price_sacoleira"} {
			assert.False(t, strings.Contains(body, leak), "guest payload leaks %q: %s", leak, body)
		}
	}
}

func TestScenarioC_RangeCollapsesOrSpans(t *testing.T) {
	svc, _ := newTestService(t, scenarioStore())

	page, err := svc.ListCatalog(context.Background(), enums.RoleRepresentative, ListInput{})
	require.NoError(t, err)

	assert.Equal(t, "R$ 30.00", findItem(t, page.Items, "same-price").Price.Label)
	spanning := findItem(t, page.Items, "price-range").Price
	assert.Equal(t, visibility.DisplayRange, spanning.Kind)
	assert.Equal(t, "R$ 30.00 – R$ 50.00", spanning.Label)
}

func TestScenarioD_UnknownCategoryIsEmpty(t *testing.T) {
	svc, _ := newTestService(t, scenarioStore())

	page, err := svc.ListCatalog(context.Background(), enums.RoleAdmin, ListInput{Filter: Filter{Category: "Dresses"}})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
}

func TestScenarioE_DeletedReferenceDisappearsFromLinkedProducts(t *testing.T) {
	store := scenarioStore()
	svc, cache := newTestService(t, store)
	ctx := context.Background()

	before, err := svc.GetProduct(ctx, enums.RoleAdmin, "price-range")
	require.NoError(t, err)
	require.Len(t, before.Variants, 2)

	store.deleteReference("r-thirty-a")
	cache.Invalidate(ctx)

	for _, id := range []string{"same-price", "price-range"} {
		detail, err := svc.GetProduct(ctx, enums.RoleAdmin, id)
		require.NoError(t, err)
		require.Len(t, detail.Variants, 1, id)
		assert.NotEqual(t, "TRA", detail.Variants[0].Reference)
	}

	page, err := svc.ListCatalog(ctx, enums.RoleRepresentative, ListInput{})
	require.NoError(t, err)
	assert.Equal(t, "R$ 50.00", findItem(t, page.Items, "price-range").Price.Label)
}

func TestListCatalogPaginates(t *testing.T) {
	svc, _ := newTestService(t, scenarioStore())
	ctx := context.Background()

	first, err := svc.ListCatalog(ctx, enums.RoleAdmin, ListInput{Page: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, 3, first.Total)
	require.NotEmpty(t, first.NextCursor)
	assert.Equal(t, "scenario-a", first.Items[0].ID)

	second, err := svc.ListCatalog(ctx, enums.RoleAdmin, ListInput{Page: pagination.Params{Limit: 2, Cursor: first.NextCursor}})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "price-range", second.Items[0].ID)
	assert.Empty(t, second.NextCursor)

	_, err = svc.ListCatalog(ctx, enums.RoleAdmin, ListInput{Page: pagination.Params{Cursor: "%%"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestItemDTOSummarizesVariants(t *testing.T) {
	svc, _ := newTestService(t, scenarioStore())

	detail, err := svc.GetProduct(context.Background(), enums.RoleAdmin, "same-price")
	require.NoError(t, err)
	assert.Equal(t, []string{"TRA", "TRB"}, detail.ReferenceCodes)
	require.Len(t, detail.SizeRanges, 2)
	assert.Equal(t, "P ao GG", detail.SizeRanges[0].Label)
	assert.Nil(t, detail.CoverImage)

	dress, err := svc.GetProduct(context.Background(), enums.RoleAdmin, "scenario-a")
	require.NoError(t, err)
	require.NotNil(t, dress.PrimaryCategory)
	assert.Equal(t, "Vestidos", dress.PrimaryCategory.Name)
	assert.Equal(t, []Color{{Name: "Black", Hex: "#000"}}, dress.Colors)
}

func TestGetProductNotFound(t *testing.T) {
	svc, _ := newTestService(t, scenarioStore())
	_, err := svc.GetProduct(context.Background(), enums.RoleAdmin, "nope")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListCategoriesOrdered(t *testing.T) {
	store := scenarioStore()
	store.categories = []models.Category{
		{ID: "b", Name: "Blusas", OrderIndex: 2},
		{ID: "a", Name: "Acessórios", OrderIndex: 2},
		{ID: "v", Name: "Vestidos", OrderIndex: 0},
	}
	svc, _ := newTestService(t, store)

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	var names []string
	for _, c := range categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Vestidos", "Acessórios", "Blusas"}, names)
}
