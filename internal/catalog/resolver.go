package catalog

// Resolve materializes the product's variants from referencesByID, in the
// order of product.ReferenceIDs. IDs without a matching reference are skipped
// and repeated IDs yield repeated variants.
func Resolve(product Product, referencesByID map[string]Reference) []Variant {
	variants := make([]Variant, 0, len(product.ReferenceIDs))
	for _, id := range product.ReferenceIDs {
		ref, ok := referencesByID[id]
		if !ok {
			continue
		}
		variants = append(variants, Variant{
			ID:                  ref.ID,
			Name:                ref.Name,
			Reference:           ref.Code,
			SizeRange:           ref.SizeRange,
			PriceRepresentative: ref.PriceRepresentative,
			PriceSacoleira:      ref.PriceSacoleira,
			Colors:              append([]Color(nil), ref.Colors...),
		})
	}
	return variants
}
