package catalog

import (
	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	"github.com/angelmondragon/atacado-catalog/pkg/visibility"
)

// CategoryDTO is the public category shape.
type CategoryDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OrderIndex int    `json:"order_index"`
}

// CategoryRefDTO is the badge shown on a product card.
type CategoryRefDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SizeRangeDTO pairs the enum value with its storefront label.
type SizeRangeDTO struct {
	Value enums.SizeRange `json:"value"`
	Label string          `json:"label"`
}

// ItemDTO is one product card in a listing. It never carries raw prices.
type ItemDTO struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Fabric          string             `json:"fabric"`
	CoverImage      *string            `json:"cover_image"`
	Images          []string           `json:"images"`
	PrimaryCategory *CategoryRefDTO    `json:"primary_category"`
	Categories      []string           `json:"categories"`
	IsFeatured      bool               `json:"is_featured"`
	SizeRanges      []SizeRangeDTO     `json:"size_ranges"`
	ReferenceCodes  []string           `json:"reference_codes"`
	Colors          []Color            `json:"colors"`
	VariantCount    int                `json:"variant_count"`
	Price           visibility.Display `json:"price"`
	CreatedAt       int64              `json:"created_at"`
}

// VariantDTO is a variant as shown on the product page.
type VariantDTO struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Reference string             `json:"reference"`
	SizeRange SizeRangeDTO       `json:"size_range"`
	Colors    []Color            `json:"colors"`
	Price     visibility.Display `json:"price"`
}

// ProductDetailDTO is the product page payload.
type ProductDetailDTO struct {
	ItemDTO
	CoverImageIndex int          `json:"cover_image_index"`
	Variants        []VariantDTO `json:"variants"`
}

func newCategoryDTO(c Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, OrderIndex: c.OrderIndex}
}

func newSizeRangeDTO(s enums.SizeRange) SizeRangeDTO {
	return SizeRangeDTO{Value: s, Label: s.Label()}
}

func newItemDTO(item Item, snap *Snapshot) ItemDTO {
	p := item.Product
	dto := ItemDTO{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Fabric:         p.Fabric,
		Images:         append([]string{}, p.Images...),
		Categories:     []string{},
		IsFeatured:     p.IsFeatured,
		SizeRanges:     []SizeRangeDTO{},
		ReferenceCodes: []string{},
		Colors:         []Color{},
		VariantCount:   len(item.Variants),
		Price:          item.Price,
		CreatedAt:      p.CreatedAt,
	}
	if cover, ok := p.CoverImage(); ok {
		dto.CoverImage = &cover
	}

	categories := snap.CategoryNames(p.CategoryIDs)
	for _, c := range categories {
		dto.Categories = append(dto.Categories, c.Name)
	}
	// the primary badge comes from the first listed id, even when later ids are unknown
	if len(p.CategoryIDs) > 0 {
		if c, ok := snap.CategoriesByID[p.CategoryIDs[0]]; ok {
			dto.PrimaryCategory = &CategoryRefDTO{ID: c.ID, Name: c.Name}
		}
	}

	seenSizes := map[enums.SizeRange]bool{}
	seenCodes := map[string]bool{}
	seenColors := map[Color]bool{}
	for _, v := range item.Variants {
		if v.SizeRange != "" && !seenSizes[v.SizeRange] {
			seenSizes[v.SizeRange] = true
			dto.SizeRanges = append(dto.SizeRanges, newSizeRangeDTO(v.SizeRange))
		}
		if v.Reference != "" && !seenCodes[v.Reference] {
			seenCodes[v.Reference] = true
			dto.ReferenceCodes = append(dto.ReferenceCodes, v.Reference)
		}
		for _, color := range v.Colors {
			if !seenColors[color] {
				seenColors[color] = true
				dto.Colors = append(dto.Colors, color)
			}
		}
	}
	return dto
}

func newProductDetailDTO(item Item, snap *Snapshot, role enums.Role) ProductDetailDTO {
	detail := ProductDetailDTO{
		ItemDTO:  newItemDTO(item, snap),
		Variants: make([]VariantDTO, 0, len(item.Variants)),
	}
	if idx, ok := item.Product.CoverIndex(); ok {
		detail.CoverImageIndex = idx
	}
	for _, v := range item.Variants {
		detail.Variants = append(detail.Variants, VariantDTO{
			ID:        v.ID,
			Name:      v.Name,
			Reference: v.Reference,
			SizeRange: newSizeRangeDTO(v.SizeRange),
			Colors:    append([]Color{}, v.Colors...),
			Price:     visibility.VariantDisplay(role, v.Tiers()),
		})
	}
	return detail
}
