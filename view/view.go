// Package view renders the html/template pages under templates/.
package view

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/diewo77/acme-dashboard/auth"
	"github.com/diewo77/acme-dashboard/internal/models"
	"github.com/diewo77/acme-dashboard/validation"
)

var (
	baseDir  string
	once     sync.Once
	devMode  bool
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

var partials = []string{
	"errors.html",
	"pagination.html",
	"search.html",
}

// SetDev turns template caching off so edits show up on reload.
func SetDev(dev bool) { devMode = dev }

// SetBaseDir overrides the template base directory.
func SetBaseDir(path string) {
	if path == "" {
		return
	}
	baseDir = filepath.Clean(path)
	once = sync.Once{}
}

// ResetForTests clears caches and forces base dir detection to rerun.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
	baseDir = ""
	once = sync.Once{}
}

func detectBase() {
	candidates := []string{"templates", "../templates", "../../templates", "../../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Join(c, "layout.html")); err == nil && !fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the helpers available to every page.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"year":  func() int { return time.Now().Year() },
		"money": models.FormatAmount,
		"add":   func(a, b int) int { return a + b },
		"sub":   func(a, b int) int { return a - b },
		// pages returns 1..n for pagination links
		"pages": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
		"fieldErrors": func(v validation.Violations, field string) []string {
			if v == nil {
				return nil
			}
			return v[field]
		},
		// dict creates a map from key-value pairs for passing to sub-templates.
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

func parse(name string) (*template.Template, error) {
	mainPath := filepath.Join(baseDir, name)
	content, err := os.ReadFile(mainPath)
	if err != nil {
		return nil, err
	}
	// full documents (landing, login) are not wrapped in the layout
	if bytes.Contains(bytes.ToLower(content), []byte("<!doctype")) {
		return template.New(filepath.Base(name)).Funcs(Funcs()).ParseFiles(mainPath)
	}
	files := []string{filepath.Join(baseDir, "layout.html"), mainPath}
	for _, p := range partials {
		pp := filepath.Join(baseDir, "partials", p)
		if fi, err := os.Stat(pp); err == nil && !fi.IsDir() {
			files = append(files, pp)
		}
	}
	return template.New("layout.html").Funcs(Funcs()).ParseFiles(files...)
}

func lookup(name string) (*template.Template, error) {
	if !devMode {
		tplCache.RLock()
		t, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok {
			return t, nil
		}
	}
	t, err := parse(name)
	if err != nil {
		return nil, err
	}
	if !devMode {
		tplCache.Lock()
		tplCache.m[name] = t
		tplCache.Unlock()
	}
	return t, nil
}

// Render executes the page name (relative to templates/, e.g.
// "invoices/form.html") with data and the given status code.
func Render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	if baseDir == "" {
		once.Do(detectBase)
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		_, loggedIn := auth.UserIDFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
	}
	t, err := lookup(name)
	if err != nil {
		return err
	}
	if t == nil {
		return errors.New("template not found: " + name)
	}
	// render to a buffer so a failing template never sends a partial page
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
