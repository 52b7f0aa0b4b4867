package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/atacado-catalog/api/responses"
	"github.com/angelmondragon/atacado-catalog/api/validators"
	product "github.com/angelmondragon/atacado-catalog/internal/products"
	pkgerrors "github.com/angelmondragon/atacado-catalog/pkg/errors"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
	"github.com/angelmondragon/atacado-catalog/pkg/pagination"
)

type createProductRequest struct {
	Name            string   `json:"name" validate:"required"`
	Description     string   `json:"description"`
	Fabric          string   `json:"fabric"`
	CategoryIDs     []string `json:"category_ids"`
	Images          []string `json:"images"`
	CoverImageIndex int      `json:"cover_image_index" validate:"min=0"`
	IsFeatured      bool     `json:"is_featured"`
	ReferenceIDs    []string `json:"reference_ids"`
}

func (p createProductRequest) toInput() product.CreateProductInput {
	return product.CreateProductInput{
		Name:            p.Name,
		Description:     p.Description,
		Fabric:          p.Fabric,
		CategoryIDs:     p.CategoryIDs,
		Images:          p.Images,
		CoverImageIndex: p.CoverImageIndex,
		IsFeatured:      p.IsFeatured,
		ReferenceIDs:    p.ReferenceIDs,
	}
}

type updateProductRequest struct {
	Name            *string   `json:"name,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Fabric          *string   `json:"fabric,omitempty"`
	CategoryIDs     *[]string `json:"category_ids,omitempty"`
	Images          *[]string `json:"images,omitempty"`
	CoverImageIndex *int      `json:"cover_image_index,omitempty" validate:"omitempty,min=0"`
	IsFeatured      *bool     `json:"is_featured,omitempty"`
	ReferenceIDs    *[]string `json:"reference_ids,omitempty"`
}

func (p updateProductRequest) toInput() product.UpdateProductInput {
	return product.UpdateProductInput{
		Name:            p.Name,
		Description:     p.Description,
		Fabric:          p.Fabric,
		CategoryIDs:     p.CategoryIDs,
		Images:          p.Images,
		CoverImageIndex: p.CoverImageIndex,
		IsFeatured:      p.IsFeatured,
		ReferenceIDs:    p.ReferenceIDs,
	}
}

type featuredRequest struct {
	IsFeatured *bool `json:"is_featured" validate:"required"`
}

// AdminListProducts pages through every product in catalog order.
func AdminListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		page, err := svc.ListProducts(r.Context(), product.ListProductsInput{
			Query: validators.QueryText(r, "q", maxSearchLength),
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(query.Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminGetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AdminCreateProduct handles product creation.
func AdminCreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, dto)
	}
}

func AdminUpdateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateProduct(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AdminDeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// AdminSetProductFeatured toggles the storefront highlight for a product.
func AdminSetProductFeatured(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload featuredRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.SetFeatured(r.Context(), id, *payload.IsFeatured)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
