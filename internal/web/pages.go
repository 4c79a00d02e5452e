package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/liamashdown/polyview/internal/polymarket/gammaapi"
	"github.com/liamashdown/polyview/internal/view"
)

// HomePage lists the top active markets by volume, competitive ones only
// unless disabled.
func (s *Server) HomePage(c *gin.Context) {
	params := gammaapi.ListParams{
		Limit:   s.opts.PageLimit,
		OrderBy: gammaapi.OrderByVolume,
		Status:  gammaapi.StatusActive,
	}
	if s.opts.HomeCompetitiveOnly {
		competitive := true
		params.Competitive = &competitive
	}
	s.renderMarketList(c, "Trending Markets", "home", params)
}

// ActivePage lists the top active markets by volume
func (s *Server) ActivePage(c *gin.Context) {
	s.renderMarketList(c, "Active Markets", "active", gammaapi.ListParams{
		Limit:   s.opts.PageLimit,
		OrderBy: gammaapi.OrderByVolume,
		Status:  gammaapi.StatusActive,
	})
}

// ResolvedPage lists the top resolved markets by volume
func (s *Server) ResolvedPage(c *gin.Context) {
	s.renderMarketList(c, "Resolved Markets", "resolved", gammaapi.ListParams{
		Limit:   s.opts.PageLimit,
		OrderBy: gammaapi.OrderByVolume,
		Status:  gammaapi.StatusResolved,
	})
}

func (s *Server) renderMarketList(c *gin.Context, title, nav string, params gammaapi.ListParams) {
	markets, err := s.source.ListMarkets(c.Request.Context(), params)
	if err != nil {
		s.renderError(c, err, "markets")
		return
	}

	c.HTML(http.StatusOK, "markets.html", pageData(title, nav, gin.H{
		"Cards": view.NewMarketCards(markets, s.now()),
	}))
}

// MarketPage shows one market. A numeric ref is tried as a market id first,
// then as a slug; anything else is a slug.
func (s *Server) MarketPage(c *gin.Context) {
	ref := c.Param("ref")
	ctx := c.Request.Context()

	var (
		market *gammaapi.MarketDetail
		err    error
	)
	if isMarketID(ref) {
		market, err = s.source.GetMarketByID(ctx, ref)
		if gammaapi.IsNotFound(err) {
			market, err = s.source.GetMarketBySlug(ctx, ref)
		}
	} else {
		market, err = s.source.GetMarketBySlug(ctx, ref)
	}
	if err != nil {
		s.renderError(c, err, "market")
		return
	}

	page := view.NewMarketPage(*market, s.now())
	c.HTML(http.StatusOK, "market.html", pageData(page.Question, "", gin.H{"Market": page}))
}

// EventPage shows one event with its aggregate prices and markets
func (s *Server) EventPage(c *gin.Context) {
	event, err := s.source.GetEventBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.renderError(c, err, "event")
		return
	}

	page := view.NewEventPage(*event, s.now())
	c.HTML(http.StatusOK, "event.html", pageData(page.Title, "", gin.H{"Event": page}))
}

// renderError picks the not-found page or the upstream error page
func (s *Server) renderError(c *gin.Context, err error, what string) {
	if gammaapi.IsNotFound(err) {
		c.HTML(http.StatusNotFound, "not_found.html", pageData("Not found", "", gin.H{"Kind": what}))
		return
	}

	s.logFailure(c, err, what)
	c.HTML(http.StatusBadGateway, "error.html", pageData("Polymarket unavailable", "", gin.H{"Kind": what}))
}

// pageData is the template context; the layout reads Title and Nav
func pageData(title, nav string, data gin.H) gin.H {
	data["Title"] = title
	data["Nav"] = nav
	return data
}

func isMarketID(ref string) bool {
	_, err := strconv.ParseUint(ref, 10, 64)
	return err == nil
}
