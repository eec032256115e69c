package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/acme-dashboard/auth"
	"github.com/diewo77/acme-dashboard/internal/db"
	"github.com/diewo77/acme-dashboard/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupE2EDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:e2e_"+t.Name()+"?mode=memory&cache=shared&_foreign_keys=on"), db.GormConfig(false))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(dbi); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbi
}

func sessionFor(t *testing.T, uid string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	auth.CreateSession(rec, uid)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatalf("no session cookie")
	return nil
}

func TestDashboardRequiresLogin(t *testing.T) {
	app := NewApp(setupE2EDB(t), time.Minute, prometheus.NewRegistry())

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestCustomerFlowE2E(t *testing.T) {
	dbi := setupE2EDB(t)
	u := models.User{Email: "e2e@example.com", Password: "hash"}
	if err := dbi.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	app := NewApp(dbi, time.Minute, prometheus.NewRegistry())
	sess := sessionFor(t, u.ID)

	// listing is cached before the write
	req := httptest.NewRequest(http.MethodGet, "/dashboard/customers", nil)
	req.AddCookie(sess)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "No customers found.") {
		t.Fatalf("empty listing: %d", rr.Code)
	}

	form := url.Values{"name": {"Jo"}, "email": {"j@x.com"}, "image_url": {"https://x/y.png"}}
	req = httptest.NewRequest(http.MethodPost, "/dashboard/customers", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(sess)
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/dashboard/customers" {
		t.Fatalf("create: %d %q body=%s", rr.Code, rr.Header().Get("Location"), rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/dashboard/customers", nil)
	req.AddCookie(sess)
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if !strings.Contains(rr.Body.String(), "j@x.com") {
		t.Fatalf("new customer missing from listing: %s", rr.Body.String())
	}

	// submission counter is exported
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `dashboard_submissions_total{entity="Customer",operation="Create",result="redirected"} 1`
	if !strings.Contains(rr.Body.String(), want) {
		t.Fatalf("metrics missing %q", want)
	}
}

func TestLandingPage(t *testing.T) {
	app := NewApp(setupE2EDB(t), time.Minute, prometheus.NewRegistry())
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Welcome to Acme.") {
		t.Fatalf("landing: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"serve", "migrate"} {
		if c, _, err := cmd.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("missing %s command", name)
		}
	}
}
