package handlers

import (
	"net/http"

	"github.com/diewo77/acme-dashboard/httpx"
	"github.com/diewo77/acme-dashboard/internal/services"
)

type DashboardHandler struct {
	invoices *services.InvoiceService
}

func NewDashboardHandler(invoices *services.InvoiceService) *DashboardHandler {
	return &DashboardHandler{invoices: invoices}
}

func (h *DashboardHandler) Landing(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "index.html", nil)
}

// Overview shows the summary cards.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	summary, err := h.invoices.GetSummary(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, summary)
		return
	}
	render(w, r, http.StatusOK, "dashboard.html", map[string]any{
		"Title":   "Dashboard",
		"Summary": summary,
	})
}
