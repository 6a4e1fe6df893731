package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// HiddenField is one original request parameter carried through a form.
type HiddenField struct {
	Name  string
	Value string
}

// ConsentPage is everything a consent renderer gets. Fields replays the
// original authorization request plus the consent ticket.
type ConsentPage struct {
	ClientID    string
	ClientName  string
	SubjectName string
	Scopes      []string
	Action      string
	Fields      []HiddenField
}

// ConsentRenderer draws the consent prompt. The page must post Fields back
// to Action along with authorize=Authorize or cancel=Cancel.
type ConsentRenderer interface {
	RenderConsent(w http.ResponseWriter, page ConsentPage) error
}

// LoginPage is the data for the sign-in form.
type LoginPage struct {
	Action   string
	ReturnTo string
	Username string
	Error    string
}

// ForbiddenPage explains that the authorization gate refused the user.
type ForbiddenPage struct {
	ClientName   string
	SubjectName  string
	LogoutAction string
	ReturnTo     string
}

// Pages renders the built-in HTML pages.
type Pages struct {
	login     *template.Template
	consent   *template.Template
	forbidden *template.Template
}

// NewPages parses the embedded templates. Each page gets its own set so
// they can all define "title" and "content".
func NewPages() (*Pages, error) {
	parse := func(file string) (*template.Template, error) {
		return template.ParseFS(templateFS, "templates/layout.html", "templates/"+file)
	}

	var (
		p   Pages
		err error
	)
	if p.login, err = parse("login.html"); err != nil {
		return nil, err
	}
	if p.consent, err = parse("consent.html"); err != nil {
		return nil, err
	}
	if p.forbidden, err = parse("forbidden.html"); err != nil {
		return nil, err
	}
	return &p, nil
}

// MustPages is NewPages for package-level defaults; the templates are
// embedded, so a failure is a build defect.
func MustPages() *Pages {
	p, err := NewPages()
	if err != nil {
		panic("oidc: parse embedded templates: " + err.Error())
	}
	return p
}

func (p *Pages) RenderConsent(w http.ResponseWriter, page ConsentPage) error {
	return render(w, http.StatusOK, p.consent, page)
}

func (p *Pages) RenderLogin(w http.ResponseWriter, status int, page LoginPage) error {
	return render(w, status, p.login, page)
}

func (p *Pages) RenderForbidden(w http.ResponseWriter, page ForbiddenPage) error {
	return render(w, http.StatusForbidden, p.forbidden, page)
}

// render executes into a buffer first so a template error never leaves a
// half-written page behind.
func render(w http.ResponseWriter, status int, t *template.Template, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Frame-Options", "DENY")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
