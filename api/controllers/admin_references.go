package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/atacado-catalog/api/responses"
	"github.com/angelmondragon/atacado-catalog/api/validators"
	"github.com/angelmondragon/atacado-catalog/internal/catalog"
	"github.com/angelmondragon/atacado-catalog/internal/references"
	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-catalog/pkg/errors"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
)

type createReferenceRequest struct {
	Code                string           `json:"code" validate:"required"`
	Name                string           `json:"name"`
	CategoryID          *string          `json:"category_id,omitempty"`
	SizeRange           string           `json:"size_range" validate:"required"`
	PriceRepresentative *decimal.Decimal `json:"price_representative" validate:"required"`
	PriceSacoleira      *decimal.Decimal `json:"price_sacoleira" validate:"required"`
	Colors              []catalog.Color  `json:"colors"`
}

func (p createReferenceRequest) toInput() (references.CreateReferenceInput, error) {
	sizeRange, err := enums.ParseSizeRange(p.SizeRange)
	if err != nil {
		return references.CreateReferenceInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid size_range")
	}
	return references.CreateReferenceInput{
		Code:                p.Code,
		Name:                p.Name,
		CategoryID:          p.CategoryID,
		SizeRange:           sizeRange,
		PriceRepresentative: *p.PriceRepresentative,
		PriceSacoleira:      *p.PriceSacoleira,
		Colors:              p.Colors,
	}, nil
}

type updateReferenceRequest struct {
	Code                *string          `json:"code,omitempty"`
	Name                *string          `json:"name,omitempty"`
	CategoryID          *string          `json:"category_id,omitempty"`
	SizeRange           *string          `json:"size_range,omitempty"`
	PriceRepresentative *decimal.Decimal `json:"price_representative,omitempty"`
	PriceSacoleira      *decimal.Decimal `json:"price_sacoleira,omitempty"`
	Colors              *[]catalog.Color `json:"colors,omitempty"`
}

func (p updateReferenceRequest) toInput() (references.UpdateReferenceInput, error) {
	input := references.UpdateReferenceInput{
		Code:                p.Code,
		Name:                p.Name,
		CategoryID:          p.CategoryID,
		PriceRepresentative: p.PriceRepresentative,
		PriceSacoleira:      p.PriceSacoleira,
		Colors:              p.Colors,
	}
	if p.SizeRange != nil {
		sizeRange, err := enums.ParseSizeRange(*p.SizeRange)
		if err != nil {
			return references.UpdateReferenceInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid size_range")
		}
		input.SizeRange = &sizeRange
	}
	return input, nil
}

func AdminListReferences(svc references.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reference service unavailable"))
			return
		}

		search := validators.QueryText(r, "q", maxSearchLength)
		list, err := svc.ListReferences(r.Context(), search)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminGetReference(svc references.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reference service unavailable"))
			return
		}

		id, err := pathID(r, "referenceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ref, err := svc.GetReference(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ref)
	}
}

func AdminCreateReference(svc references.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reference service unavailable"))
			return
		}

		var payload createReferenceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ref, err := svc.CreateReference(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, ref)
	}
}

func AdminUpdateReference(svc references.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reference service unavailable"))
			return
		}

		id, err := pathID(r, "referenceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateReferenceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ref, err := svc.UpdateReference(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ref)
	}
}

func AdminDeleteReference(svc references.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reference service unavailable"))
			return
		}

		id, err := pathID(r, "referenceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteReference(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// pathID reads a required chi URL parameter.
func pathID(r *http.Request, name string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, name))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}
