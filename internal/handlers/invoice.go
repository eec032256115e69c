package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/diewo77/acme-dashboard/httpx"
	"github.com/diewo77/acme-dashboard/internal/actions"
	"github.com/diewo77/acme-dashboard/internal/cache"
	"github.com/diewo77/acme-dashboard/internal/models"
	"github.com/diewo77/acme-dashboard/internal/services"
	"github.com/juju/errors"
)

// InvoicePages caches invoice listing pages.
type InvoicePages = cache.Pages[services.Page[services.InvoiceRow]]

type InvoiceHandler struct {
	flow    *actions.Controller
	listing *services.ListingService
	pages   *InvoicePages
}

func NewInvoiceHandler(flow *actions.Controller, listing *services.ListingService, pages *InvoicePages) *InvoiceHandler {
	return &InvoiceHandler{flow: flow, listing: listing, pages: pages}
}

func (h *InvoiceHandler) load(ctx context.Context, query string, page int) (services.Page[services.InvoiceRow], error) {
	return h.pages.Load(ctx, actions.InvoicesPath, fmt.Sprintf("%s|%d", query, page),
		func(ctx context.Context) (services.Page[services.InvoiceRow], error) {
			return h.listing.Invoices(ctx, query, page)
		})
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, http.StatusOK, actions.Outcome{})
}

func (h *InvoiceHandler) list(w http.ResponseWriter, r *http.Request, status int, out actions.Outcome) {
	query, page := listParams(r)
	result, err := h.load(r.Context(), query, page)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, status, result)
		return
	}
	render(w, r, status, "invoices/index.html", map[string]any{
		"Title":   "Invoices",
		"Page":    result,
		"Outcome": out,
	})
}

// formData builds the template data shared by the create and edit pages.
func (h *InvoiceHandler) formData(ctx context.Context, title, action, submit string) (map[string]any, error) {
	customers, err := h.listing.CustomerOptions(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"Title":     title,
		"Action":    action,
		"Submit":    submit,
		"Customers": customers,
		"Statuses":  models.InvoiceStatuses,
		"Values":    url.Values{},
		"Outcome":   actions.Outcome{},
	}, nil
}

func (h *InvoiceHandler) New(w http.ResponseWriter, r *http.Request) {
	data, err := h.formData(r.Context(), "Create Invoice", actions.InvoicesPath, "Create Invoice")
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, "invoices/form.html", data)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	out := h.flow.CreateInvoice(r.Context(), formValues(r))
	var data map[string]any
	if !out.Redirected() && !httpx.WantsJSON(r) {
		var err error
		if data, err = h.formData(r.Context(), "Create Invoice", actions.InvoicesPath, "Create Invoice"); err != nil {
			serverError(w, r, err)
			return
		}
	}
	submitted(w, r, out, "invoices/form.html", data)
}

func (h *InvoiceHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	inv, err := h.listing.InvoiceByID(r.Context(), id)
	if errors.Is(err, errors.NotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, inv)
		return
	}
	data, err := h.formData(r.Context(), "Edit Invoice", actions.InvoicesPath+"/"+id, "Edit Invoice")
	if err != nil {
		serverError(w, r, err)
		return
	}
	data["Values"] = url.Values{
		"customerId": {inv.CustomerID},
		"amount":     {inv.FormattedAmount()},
		"status":     {string(inv.Status)},
	}
	render(w, r, http.StatusOK, "invoices/form.html", data)
}

// Update rewrites the invoice named by the route; the form cannot pick a
// different record.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	out := h.flow.UpdateInvoice(r.Context(), id, formValues(r))
	var data map[string]any
	if !out.Redirected() && !httpx.WantsJSON(r) {
		var err error
		if data, err = h.formData(r.Context(), "Edit Invoice", actions.InvoicesPath+"/"+id, "Edit Invoice"); err != nil {
			serverError(w, r, err)
			return
		}
	}
	submitted(w, r, out, "invoices/form.html", data)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	out := h.flow.DeleteInvoice(r.Context(), r.PathValue("id"))
	deleted(w, r, out, h.list)
}
