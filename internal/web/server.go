// Package web serves the Polymarket pages and the JSON API over gin.
package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/liamashdown/polyview/internal/catalog"
	"github.com/liamashdown/polyview/internal/polymarket/gammaapi"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options tune what the list pages ask for
type Options struct {
	PageLimit           int
	HomeCompetitiveOnly bool
}

// Server holds the handlers. It keeps no state between requests.
type Server struct {
	source catalog.Source
	opts   Options
	log    *logrus.Logger
	now    func() time.Time
}

// NewServer creates the handler set
func NewServer(source catalog.Source, opts Options, log *logrus.Logger) *Server {
	if opts.PageLimit <= 0 {
		opts.PageLimit = gammaapi.DefaultLimit
	}
	return &Server{
		source: source,
		opts:   opts,
		log:    log,
		now:    time.Now,
	}
}

// Router builds the gin engine with every page and API route mounted
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log), pageMetrics())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/", s.HomePage)
	r.GET("/active", s.ActivePage)
	r.GET("/resolved", s.ResolvedPage)
	r.GET("/markets/:ref", s.MarketPage)
	r.GET("/events/:slug", s.EventPage)

	api := r.Group("/api")
	{
		api.GET("/markets", s.ListMarkets)
		api.GET("/markets/:id", s.GetMarketByID)
		api.GET("/markets/slug/:slug", s.GetMarketBySlug)
		api.GET("/events", s.ListEvents)
		api.GET("/events/slug/:slug", s.GetEventBySlug)
	}

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "not_found.html", pageData("Page not found", "", gin.H{"Kind": "page"}))
	})
	return r
}

// logFailure records a failed upstream read once, at the edge
func (s *Server) logFailure(c *gin.Context, err error, what string) {
	fields := logrus.Fields{
		"route": c.FullPath(),
		"what":  what,
	}
	var upstream *gammaapi.UpstreamError
	if errors.As(err, &upstream) {
		fields["upstream_status"] = upstream.StatusCode
		fields["endpoint"] = upstream.Endpoint
	}
	s.log.WithFields(fields).WithError(err).Error("Failed to load from Polymarket")
}
