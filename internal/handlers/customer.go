package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/diewo77/acme-dashboard/httpx"
	"github.com/diewo77/acme-dashboard/internal/actions"
	"github.com/diewo77/acme-dashboard/internal/cache"
	"github.com/diewo77/acme-dashboard/internal/services"
	"github.com/juju/errors"
)

// CustomerPages caches customer listing pages.
type CustomerPages = cache.Pages[services.Page[services.CustomerRow]]

type CustomerHandler struct {
	flow    *actions.Controller
	listing *services.ListingService
	pages   *CustomerPages
}

func NewCustomerHandler(flow *actions.Controller, listing *services.ListingService, pages *CustomerPages) *CustomerHandler {
	return &CustomerHandler{flow: flow, listing: listing, pages: pages}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, http.StatusOK, actions.Outcome{})
}

func (h *CustomerHandler) list(w http.ResponseWriter, r *http.Request, status int, out actions.Outcome) {
	query, page := listParams(r)
	result, err := h.pages.Load(r.Context(), actions.CustomersPath, fmt.Sprintf("%s|%d", query, page),
		func(ctx context.Context) (services.Page[services.CustomerRow], error) {
			return h.listing.Customers(ctx, query, page)
		})
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, status, result)
		return
	}
	render(w, r, status, "customers/index.html", map[string]any{
		"Title":   "Customers",
		"Page":    result,
		"Outcome": out,
	})
}

func customerForm(title, action string) map[string]any {
	return map[string]any{
		"Title":   title,
		"Action":  action,
		"Submit":  title,
		"Values":  url.Values{},
		"Outcome": actions.Outcome{},
	}
}

func (h *CustomerHandler) New(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "customers/form.html", customerForm("Create Customer", actions.CustomersPath))
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	out := h.flow.CreateCustomer(r.Context(), formValues(r))
	submitted(w, r, out, "customers/form.html", customerForm("Create Customer", actions.CustomersPath))
}

func (h *CustomerHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, err := h.listing.CustomerByID(r.Context(), id)
	if errors.Is(err, errors.NotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, c)
		return
	}
	data := customerForm("Edit Customer", actions.CustomersPath+"/"+id)
	data["Values"] = url.Values{
		"name":      {c.Name},
		"email":     {c.Email},
		"image_url": {c.ImageURL},
	}
	render(w, r, http.StatusOK, "customers/form.html", data)
}

// Update rewrites the customer named by the route.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	out := h.flow.UpdateCustomer(r.Context(), id, formValues(r))
	submitted(w, r, out, "customers/form.html", customerForm("Edit Customer", actions.CustomersPath+"/"+id))
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	out := h.flow.DeleteCustomer(r.Context(), r.PathValue("id"))
	deleted(w, r, out, h.list)
}
