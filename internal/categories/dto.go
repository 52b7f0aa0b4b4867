package categories

import "github.com/angelmondragon/atacado-catalog/pkg/db/models"

// CategoryDTO is the admin shape of a category.
type CategoryDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OrderIndex int    `json:"order_index"`
	CreatedAt  int64  `json:"created_at"`
}

func FromModel(c *models.Category) *CategoryDTO {
	if c == nil {
		return nil
	}
	return &CategoryDTO{
		ID:         c.ID,
		Name:       c.Name,
		OrderIndex: c.OrderIndex,
		CreatedAt:  c.CreatedAt,
	}
}

func fromModels(rows []models.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
