// Package web serves the BiblioVault landing page
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"bibliovault/internal/api/middleware"
	"bibliovault/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Page names
const (
	pageHome     = "home"
	pageNotFound = "notfound"
)

// Action is a button shown on a page. Actions carry no behaviour.
type Action struct {
	Label string
	Style string
}

// Page is the view model rendered into the layout
type Page struct {
	Title       string
	Description string
	Headline    string
	Tagline     string
	Subtitle    string
	Actions     []Action
}

// LandingPage returns the fixed content of the landing page
func LandingPage(appName string) Page {
	return Page{
		Title:       appName + " - Your Personal Library Vault",
		Description: "Organize your book collection, track reading progress, and manage book borrowing",
		Headline:    appName,
		Tagline:     "Your Personal Library Vault",
		Subtitle:    "Secure, Organized, Accessible",
		Actions: []Action{
			{Label: "Get Started", Style: "primary"},
			{Label: "Learn More", Style: "secondary"},
		},
	}
}

// NotFoundPage returns the content of the 404 page
func NotFoundPage(appName string) Page {
	return Page{
		Title:       "404: This page could not be found.",
		Description: LandingPage(appName).Description,
		Headline:    "This page could not be found.",
	}
}

// Renderer holds one parsed template set per page
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}

	for _, name := range []string{pageHome, pageNotFound} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = tmpl
	}

	return r, nil
}

// Render writes page name with data and the given status
func (r *Renderer) Render(c *gin.Context, status int, name string, data Page) {
	tmpl, ok := r.pages[name]
	if !ok {
		c.String(http.StatusInternalServerError, "unknown page %q", name)
		return
	}
	c.Render(status, render.HTML{Template: tmpl, Name: "layout", Data: data})
}

// NewRouter builds the landing page server
func NewRouter(cfg *config.Config, metrics *middleware.Metrics) (*gin.Engine, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded static files: %w", err)
	}

	landing := LandingPage(cfg.App.Name)
	notFound := NotFoundPage(cfg.App.Name)

	r := gin.Default()
	r.Use(middleware.Security())
	r.Use(metrics.Middleware())
	r.Use(middleware.Compression(middleware.NewCompressionConfig(cfg.Compression)))

	r.GET("/metrics", metrics.Handler())

	static := r.Group("/static", func(c *gin.Context) {
		// browser caches an hour
		c.Header("Cache-Control", "public, max-age=3600")
		c.Next()
	})
	static.StaticFS("/", http.FS(assets))

	home := func(c *gin.Context) {
		renderer.Render(c, http.StatusOK, pageHome, landing)
	}
	r.GET("/", home)
	r.HEAD("/", home)

	r.NoRoute(func(c *gin.Context) {
		renderer.Render(c, http.StatusNotFound, pageNotFound, notFound)
	})

	return r, nil
}
