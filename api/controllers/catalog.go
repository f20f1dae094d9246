package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dataflexhq/dataflex-backend/api/responses"
	"github.com/dataflexhq/dataflex-backend/api/validators"
	"github.com/dataflexhq/dataflex-backend/internal/catalog"
	pkgerrors "github.com/dataflexhq/dataflex-backend/pkg/errors"
	"github.com/dataflexhq/dataflex-backend/pkg/logger"
)

type serviceRequest struct {
	Name             string  `json:"name" validate:"required,min=2"`
	Description      *string `json:"description,omitempty"`
	CommissionAmount string  `json:"commission_amount" validate:"required"`
	Active           bool    `json:"active"`
}

type bundleRequest struct {
	Network        string `json:"network" validate:"required"`
	Name           string `json:"name" validate:"required,min=2"`
	VolumeMB       int    `json:"volume_mb" validate:"required,min=1"`
	Price          string `json:"price" validate:"required"`
	CommissionRate string `json:"commission_rate" validate:"required"`
	Active         bool   `json:"active"`
}

func (b serviceRequest) toInput() (catalog.ServiceInput, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(b.CommissionAmount))
	if err != nil {
		return catalog.ServiceInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid commission amount")
	}
	return catalog.ServiceInput{
		Name:             strings.TrimSpace(b.Name),
		Description:      b.Description,
		CommissionAmount: amount,
		Active:           b.Active,
	}, nil
}

func (b bundleRequest) toInput() (catalog.BundleInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(b.Price))
	if err != nil {
		return catalog.BundleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(b.CommissionRate))
	if err != nil {
		return catalog.BundleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid commission rate")
	}
	return catalog.BundleInput{
		Network:        strings.TrimSpace(b.Network),
		Name:           strings.TrimSpace(b.Name),
		VolumeMB:       b.VolumeMB,
		Price:          price,
		CommissionRate: rate,
		Active:         b.Active,
	}, nil
}

// CatalogServices lists referable services. Agents only see active entries;
// admins can pass all=true.
func CatalogServices(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		all, err := validators.ParseQueryBool(r, "all", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		services, err := svc.ListServices(r.Context(), !all)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, services)
	}
}

func CatalogBundles(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		all, err := validators.ParseQueryBool(r, "all", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bundles, err := svc.ListBundles(r.Context(), !all)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bundles)
	}
}

func AdminServiceCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body serviceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateService(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func AdminServiceUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.UUIDParam(r, "serviceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body serviceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateService(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

func AdminServiceDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.UUIDParam(r, "serviceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteService(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func AdminBundleCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body bundleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateBundle(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func AdminBundleUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.UUIDParam(r, "bundleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body bundleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateBundle(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

func AdminBundleDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.UUIDParam(r, "bundleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteBundle(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
