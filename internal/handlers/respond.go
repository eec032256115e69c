// Package handlers is the HTTP face of the dashboard. Handlers parse the
// request, hand the form to the actions controller and render whatever
// outcome comes back, as HTML or JSON depending on the Accept header.
package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/diewo77/acme-dashboard/httpx"
	"github.com/diewo77/acme-dashboard/internal/actions"
	"github.com/diewo77/acme-dashboard/view"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("acme.http")

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

// formValues parses the posted body. A malformed body is treated as empty
// so validation reports every field.
func formValues(r *http.Request) url.Values {
	if err := r.ParseForm(); err != nil {
		logger.Warningf("parsing form for %s: %v", r.URL.Path, err)
		return url.Values{}
	}
	return r.PostForm
}

func listParams(r *http.Request) (string, int) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	return q.Get("query"), page
}

func render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if err := view.Render(w, r, status, name, data); err != nil {
		logger.Errorf("rendering %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// submitted writes the outcome of a create/update/signup submission. On a
// soft failure the form page is rendered again with the submitted values.
func submitted(w http.ResponseWriter, r *http.Request, out actions.Outcome, page string, data map[string]any) {
	if out.Redirected() {
		if httpx.WantsJSON(r) {
			httpx.JSON(w, http.StatusOK, redirectResponse{Redirect: out.Redirect})
			return
		}
		http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusUnprocessableEntity, out)
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["Outcome"] = out
	data["Values"] = r.PostForm
	render(w, r, http.StatusUnprocessableEntity, page, data)
}

// deleted writes the acknowledgement of a delete. HTML clients get the
// refreshed listing through list.
func deleted(w http.ResponseWriter, r *http.Request, out actions.Outcome, list func(http.ResponseWriter, *http.Request, int, actions.Outcome)) {
	status := http.StatusOK
	if out.Failed {
		status = http.StatusUnprocessableEntity
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, status, out)
		return
	}
	list(w, r, status, out)
}
