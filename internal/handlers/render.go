package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"

	"github.com/crucial707/studybuddy/internal/session"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

//go:embed content/features.yaml
var featuresYAML []byte

// mdRenderer escapes raw HTML in its input; notes are user text.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Feature is one entry of the landing-page catalogue.
type Feature struct {
	Page     string   `yaml:"page"`
	Icon     string   `yaml:"icon"`
	Title    string   `yaml:"title"`
	Summary  string   `yaml:"summary"`
	Points   []string `yaml:"points"`
	Workflow []string `yaml:"workflow"`
}

// LoadFeatures parses the embedded feature catalogue.
func LoadFeatures() ([]Feature, error) {
	var doc struct {
		Features []Feature `yaml:"features"`
	}
	if err := yaml.Unmarshal(featuresYAML, &doc); err != nil {
		return nil, err
	}
	return doc.Features, nil
}

// Static serves the embedded stylesheet under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// view is the data every template receives. Data holds the page-specific payload.
type view struct {
	Title   string
	Session session.Session
	Menu    []PageID
	Active  PageID
	Flash   string
	Error   string
	Data    any

	csrfField template.HTML
}

func (v view) CSRFField() template.HTML { return v.csrfField }

func markdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

var funcs = template.FuncMap{
	"markdown": markdown,
	"add":      func(a, b int) int { return a + b },
	"percent":  func(p float64) string { return formatPercent(p) },
	"dict": func(kv ...any) map[string]any {
		m := make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			k, _ := kv[i].(string)
			m[k] = kv[i+1]
		}
		return m
	},
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	},
}

// pageTemplates holds each page template parsed together with the layout and partials,
// keyed by file name.
var pageTemplates = mustParsePages()

func mustParsePages() map[string]*template.Template {
	files, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(files))
	for _, f := range files {
		name := path.Base(f)
		if name == "layout.html" || name == "partials.html" {
			continue
		}
		out[name] = template.Must(template.New("layout.html").Funcs(funcs).
			ParseFS(templatesFS, "templates/layout.html", "templates/partials.html", f))
	}
	return out
}

// renderTemplate executes templates/<name> inside the layout. Pages set v.Title,
// v.Active and v.Data; the session, menu and CSRF field are filled in here.
func renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, v view) {
	v.Session = session.FromContext(r.Context())
	v.csrfField = csrf.TemplateField(r)
	if v.Session.LoggedIn {
		v.Menu = AllPages()
	}

	t, ok := pageTemplates[name]
	if !ok {
		slog.Error("template missing", "template", name)
		http.Error(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		slog.Error("template execute", "template", name, "error", err)
		http.Error(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
