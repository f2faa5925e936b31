package transport

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/nkaumov/kurs-zakat/internal"
)

//go:embed views/*.html
var viewsFS embed.FS

const layoutView = "layout.html"

// Renderer holds one parsed template set per page, each combined with the
// shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	entries, err := fs.ReadDir(viewsFS, "views")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == layoutView || !strings.HasSuffix(name, ".html") {
			continue
		}
		tpl, err := template.New(layoutView).Funcs(viewFuncs).ParseFS(viewsFS, "views/"+layoutView, "views/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse view %s: %w", name, err)
		}
		pages[name] = tpl
	}
	return &Renderer{pages: pages}, nil
}

// MustNewRenderer panics when the embedded views fail to parse.
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render buffers the page so a template failure never leaks a half-written
// response.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, view string, data map[string]any) error {
	tpl, ok := rn.pages[view]
	if !ok {
		return fmt.Errorf("unknown view %q", view)
	}

	page := make(map[string]any, len(data)+3)
	for k, v := range data {
		page[k] = v
	}
	if id, ok := internal.IdentityFromContext(r.Context()); ok {
		page["Identity"] = id
	}
	page["CSRFField"] = csrf.TemplateField(r)
	if _, ok := page["Title"]; !ok {
		page["Title"] = "Staff"
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, layoutView, page); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var viewFuncs = template.FuncMap{
	"cell": func(grid map[int64]map[int]int, employeeID int64, day int) string {
		if days, ok := grid[employeeID]; ok {
			if h, ok := days[day]; ok {
				return strconv.Itoa(h)
			}
		}
		return ""
	},
	"monthName": func(m int) string {
		if m < 1 || m > 12 {
			return strconv.Itoa(m)
		}
		return time.Month(m).String()
	},
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	"months": func() []int {
		return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	},
}
