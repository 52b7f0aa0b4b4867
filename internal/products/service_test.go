package product

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/atacado-catalog/internal/catalog"
	"github.com/angelmondragon/atacado-catalog/pkg/db/dbtest"
	"github.com/angelmondragon/atacado-catalog/pkg/db/models"
	pkgerrors "github.com/angelmondragon/atacado-catalog/pkg/errors"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
	"github.com/angelmondragon/atacado-catalog/pkg/metrics"
	"github.com/angelmondragon/atacado-catalog/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *Repository, *dbtest.Invalidations) {
	t.Helper()
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	inv := &dbtest.Invalidations{}
	svc, err := NewService(ServiceParams{Repo: repo, Invalidator: inv, Limits: pagination.Limits{Default: 2, Max: 10}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, inv
}

func stringPtr(v string) *string { return &v }
func intPtr(v int) *int          { return &v }

func TestCreateProductKeepsOrderAndDuplicates(t *testing.T) {
	svc, repo, inv := newTestService(t)
	ctx := context.Background()

	dto, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:            "  Conjunto Linho ",
		Images:          []string{"/api/uploads/a.png", " ", "/api/uploads/b.png"},
		CoverImageIndex: 1,
		ReferenceIDs:    []string{"r2", "r1", "r2", "ghost"},
		CategoryIDs:     []string{"c1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Name != "Conjunto Linho" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if len(dto.Images) != 2 || dto.Images[1] != "/api/uploads/b.png" {
		t.Fatalf("unexpected images %v", dto.Images)
	}
	want := []string{"r2", "r1", "r2", "ghost"}
	if len(dto.ReferenceIDs) != len(want) {
		t.Fatalf("expected %v, got %v", want, dto.ReferenceIDs)
	}
	for i := range want {
		if dto.ReferenceIDs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, dto.ReferenceIDs)
		}
	}
	if inv.Count != 1 {
		t.Fatalf("expected one invalidation, got %d", inv.Count)
	}

	stored, err := repo.FindByID(ctx, dto.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.ReferenceIDs != `["r2","r1","r2","ghost"]` {
		t.Fatalf("unexpected stored reference ids %s", stored.ReferenceIDs)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, inv := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, CreateProductInput{Name: " "}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Saia", Images: []string{"a"}, CoverImageIndex: 3})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for cover index, got %v", err)
	}
	if inv.Count != 0 {
		t.Fatalf("expected no invalidation, got %d", inv.Count)
	}

	dto, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Saia", CoverImageIndex: 4})
	if err != nil {
		t.Fatalf("create without images: %v", err)
	}
	if dto.CoverImageIndex != 0 {
		t.Fatalf("expected cover index reset without images, got %d", dto.CoverImageIndex)
	}
}

func TestUpdateProductPartial(t *testing.T) {
	svc, _, inv := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:         "Vestido",
		Fabric:       "Viscose",
		Images:       []string{"a", "b"},
		ReferenceIDs: []string{"r1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	refs := []string{"r3"}
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{
		Name:            stringPtr("Vestido Midi"),
		CoverImageIndex: intPtr(1),
		ReferenceIDs:    &refs,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Vestido Midi" || updated.Fabric != "Viscose" {
		t.Fatalf("unexpected scalar fields %+v", updated)
	}
	if updated.CoverImageIndex != 1 || len(updated.Images) != 2 {
		t.Fatalf("unexpected images %+v", updated)
	}
	if len(updated.ReferenceIDs) != 1 || updated.ReferenceIDs[0] != "r3" {
		t.Fatalf("unexpected reference ids %v", updated.ReferenceIDs)
	}

	images := []string{"only"}
	if _, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Images: &images}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected shrinking images below cover index to fail, got %v", err)
	}
	if inv.Count != 2 {
		t.Fatalf("expected two invalidations, got %d", inv.Count)
	}

	if _, err := svc.UpdateProduct(ctx, "missing", UpdateProductInput{}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetFeaturedAndDelete(t *testing.T) {
	svc, _, inv := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Blusa"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	featured, err := svc.SetFeatured(ctx, created.ID, true)
	if err != nil {
		t.Fatalf("set featured: %v", err)
	}
	if !featured.IsFeatured {
		t.Fatal("expected product to be featured")
	}

	if err := svc.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if inv.Count != 3 {
		t.Fatalf("expected three invalidations, got %d", inv.Count)
	}
	if _, err := svc.SetFeatured(ctx, created.ID, false); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.DeleteProduct(ctx, created.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListProductsPagesFeaturedFirst(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	rows := []models.Product{
		{ID: "p-old", Name: "Old", CreatedAt: 1000},
		{ID: "p-new", Name: "New", CreatedAt: 3000},
		{ID: "p-feat", Name: "Featured", IsFeatured: true, CreatedAt: 500},
		{ID: "p-mid", Name: "Middle", CreatedAt: 2000},
	}
	for i := range rows {
		if err := repo.Create(ctx, &rows[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	first, err := svc.ListProducts(ctx, ListProductsInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if first.Total != 4 || len(first.Items) != 2 {
		t.Fatalf("unexpected first page %+v", first)
	}
	if first.Items[0].ID != "p-feat" || first.Items[1].ID != "p-new" {
		t.Fatalf("unexpected order %s, %s", first.Items[0].ID, first.Items[1].ID)
	}
	if first.NextCursor == "" {
		t.Fatal("expected next cursor")
	}

	second, err := svc.ListProducts(ctx, ListProductsInput{Pagination: pagination.Params{Cursor: first.NextCursor}})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(second.Items) != 2 || second.Items[0].ID != "p-mid" || second.Items[1].ID != "p-old" {
		t.Fatalf("unexpected second page %+v", second.Items)
	}
	if second.NextCursor != "" {
		t.Fatalf("expected last page, got cursor %q", second.NextCursor)
	}

	search, err := svc.ListProducts(ctx, ListProductsInput{Query: "FEAT"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if search.Total != 1 || search.Items[0].ID != "p-feat" {
		t.Fatalf("unexpected search result %+v", search)
	}

	if _, err := svc.ListProducts(ctx, ListProductsInput{Pagination: pagination.Params{Cursor: "%%"}}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected invalid cursor error, got %v", err)
	}
}

func TestProductsWithEqualTimestampsKeepInsertionOrder(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	// Ids sort the opposite way to insertion so an id tie-break would show.
	rows := []models.Product{
		{ID: "p-c", Name: "C", CreatedAt: 1000},
		{ID: "p-b", Name: "B", CreatedAt: 1000},
		{ID: "p-feat", Name: "Featured", IsFeatured: true, CreatedAt: 1000},
		{ID: "p-a", Name: "A", CreatedAt: 1000},
	}
	for i := range rows {
		if err := repo.Create(ctx, &rows[i]); err != nil {
			t.Fatalf("seed %s: %v", rows[i].ID, err)
		}
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(all))
	}
	for i, row := range all {
		if row.ID != rows[i].ID || row.Seq != int64(i+1) {
			t.Fatalf("row %d: got %s seq %d, want %s seq %d", i, row.ID, row.Seq, rows[i].ID, i+1)
		}
	}

	want := []string{"p-feat", "p-c", "p-b", "p-a"}
	page, _, err := repo.ListPage(ctx, "", 0, 10)
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	for i, row := range page {
		if row.ID != want[i] {
			t.Fatalf("page position %d: got %s, want %s", i, row.ID, want[i])
		}
	}

	var got []string
	cursor := ""
	for {
		listed, err := svc.ListProducts(ctx, ListProductsInput{Pagination: pagination.Params{Cursor: cursor}})
		if err != nil {
			t.Fatalf("list products: %v", err)
		}
		for _, item := range listed.Items {
			got = append(got, item.ID)
		}
		if listed.NextCursor == "" {
			break
		}
		cursor = listed.NextCursor
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("admin grid order %v, want %v", got, want)
	}
}

func TestFromModelToleratesMalformedLists(t *testing.T) {
	var logs bytes.Buffer
	reg := prometheus.NewRegistry()
	report := catalog.FieldReporter{
		Logger:  logger.New(logger.Options{ServiceName: "products-test", Output: &logs}),
		Metrics: metrics.NewCatalogMetrics(reg),
	}

	dto := FromModel(context.Background(), report, &models.Product{ID: "p1", Name: "X", Images: "not json", ReferenceIDs: `"[\"r1\"]"`})
	if len(dto.Images) != 0 {
		t.Fatalf("expected empty images, got %v", dto.Images)
	}
	if len(dto.ReferenceIDs) != 1 || dto.ReferenceIDs[0] != "r1" {
		t.Fatalf("expected double-encoded list to decode, got %v", dto.ReferenceIDs)
	}
	if dto.CategoryIDs == nil {
		t.Fatal("expected empty, non-nil category ids")
	}

	out := logs.String()
	if strings.Count(out, "catalog.malformed_field") != 1 {
		t.Fatalf("expected one malformed field warning, got %q", out)
	}
	if !strings.Contains(out, `"entity_id":"p1"`) || !strings.Contains(out, `"field":"images"`) {
		t.Fatalf("warning does not name the row and field: %q", out)
	}
	if got := malformedCount(t, reg, "images"); got != 1 {
		t.Fatalf("expected malformed images counter 1, got %v", got)
	}
}

func TestServiceReportsMalformedStoredLists(t *testing.T) {
	var logs bytes.Buffer
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	svc, err := NewService(ServiceParams{
		Repo:        repo,
		Invalidator: &dbtest.Invalidations{},
		Logger:      logger.New(logger.Options{ServiceName: "products-test", Output: &logs}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	if err := repo.Create(ctx, &models.Product{ID: "p-bad", Name: "Broken", CategoryIDs: "[1,", Images: "[]", ReferenceIDs: "[]"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	dto, err := svc.GetProduct(ctx, "p-bad")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(dto.CategoryIDs) != 0 {
		t.Fatalf("expected empty category ids, got %v", dto.CategoryIDs)
	}
	if !strings.Contains(logs.String(), `"field":"category_ids"`) {
		t.Fatalf("expected malformed category_ids warning, got %q", logs.String())
	}
}

func malformedCount(t *testing.T, reg *prometheus.Registry, field string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != "catalog_malformed_fields_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "field" && lp.GetValue() == field {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}
