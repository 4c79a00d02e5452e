package web

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/liamashdown/polyview/internal/polymarket/gammaapi"
	"github.com/liamashdown/polyview/internal/view"
)

// MarketQuery are the filters of GET /api/markets
type MarketQuery struct {
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Order       string `form:"order" binding:"omitempty,oneof=volume created"`
	Status      string `form:"status" binding:"omitempty,oneof=active resolved all"`
	Competitive *bool  `form:"competitive"`
}

// EventQuery are the filters of GET /api/events
type EventQuery struct {
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=active resolved all"`
}

// ListMarkets returns market cards ordered descending by volume or creation
func (s *Server) ListMarkets(c *gin.Context) {
	var q MarketQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ValidationErrorResponse(c, err.Error())
		return
	}
	if q.Limit == 0 {
		q.Limit = s.opts.PageLimit
	}

	markets, err := s.source.ListMarkets(c.Request.Context(), gammaapi.ListParams{
		Limit:       q.Limit,
		OrderBy:     gammaapi.OrderBy(q.Order),
		Status:      gammaapi.Status(q.Status),
		Competitive: q.Competitive,
	})
	if err != nil {
		s.apiError(c, err, "Markets")
		return
	}

	cards := view.NewMarketCards(markets, s.now())
	ListResponse(c, "Markets retrieved successfully", cards, len(cards))
}

// ListEvents returns event cards ordered by volume
func (s *Server) ListEvents(c *gin.Context) {
	var q EventQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ValidationErrorResponse(c, err.Error())
		return
	}
	if q.Limit == 0 {
		q.Limit = s.opts.PageLimit
	}

	events, err := s.source.ListEvents(c.Request.Context(), gammaapi.EventListParams{
		Limit:  q.Limit,
		Status: gammaapi.Status(q.Status),
	})
	if err != nil {
		s.apiError(c, err, "Events")
		return
	}

	cards := make([]view.EventCard, 0, len(events))
	for _, e := range events {
		cards = append(cards, view.NewEventCard(e))
	}
	ListResponse(c, "Events retrieved successfully", cards, len(cards))
}

// GetMarketByID returns one market by its numeric id
func (s *Server) GetMarketByID(c *gin.Context) {
	id := c.Param("id")
	if !isMarketID(id) {
		ValidationErrorResponse(c, "id must be numeric")
		return
	}

	market, err := s.source.GetMarketByID(c.Request.Context(), id)
	if err != nil {
		s.apiError(c, err, "Market")
		return
	}
	SuccessResponse(c, 200, "Market retrieved successfully", view.NewMarketPage(*market, s.now()))
}

// GetMarketBySlug returns one market by slug
func (s *Server) GetMarketBySlug(c *gin.Context) {
	market, err := s.source.GetMarketBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.apiError(c, err, "Market")
		return
	}
	SuccessResponse(c, 200, "Market retrieved successfully", view.NewMarketPage(*market, s.now()))
}

// GetEventBySlug returns one event, with its aggregate, by slug
func (s *Server) GetEventBySlug(c *gin.Context) {
	event, err := s.source.GetEventBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.apiError(c, err, "Event")
		return
	}
	SuccessResponse(c, 200, "Event retrieved successfully", view.NewEventPage(*event, s.now()))
}

func (s *Server) apiError(c *gin.Context, err error, resource string) {
	switch {
	case gammaapi.IsNotFound(err):
		NotFoundResponse(c, resource)
	case errors.Is(err, gammaapi.ErrInvalidParams):
		ValidationErrorResponse(c, err.Error())
	default:
		s.logFailure(c, err, resource)
		UpstreamErrorResponse(c)
	}
}
