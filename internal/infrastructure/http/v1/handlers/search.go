package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"arpscout/internal/core/apperror"
	"arpscout/internal/domain/arp"
	"arpscout/internal/infrastructure/http/v1/dto"
	"arpscout/internal/infrastructure/http/v1/middleware"
)

var errNoSession = errors.New("session not started before search")

// SearchHandler handles the paginated item search of the caller's session.
type SearchHandler struct {
	*BaseHandler
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(base *BaseHandler) *SearchHandler {
	return &SearchHandler{BaseHandler: base}
}

// RegisterRoutes mounts the search endpoints. rg must run middleware.Session;
// start creates the session and runs only before a new search.
func (h *SearchHandler) RegisterRoutes(rg *gin.RouterGroup, start gin.HandlerFunc) {
	rg.GET("", h.Current)
	rg.POST("", start, h.Search)
	rg.POST("/next", h.Next)
	rg.POST("/previous", h.Previous)
	rg.POST("/page/:page", h.GoTo)
}

// Search handles POST /search
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pager := middleware.GetPager(c)
	if pager == nil {
		h.Error(c, apperror.NewInternal(errNoSession))
		return
	}
	page, err := pager.Search(c.Request.Context(), req.Filters(), req.Options())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSearchPage(page, pager.State(), true))
}

// Current handles GET /search and returns the last loaded page.
func (h *SearchHandler) Current(c *gin.Context) {
	pager := middleware.GetPager(c)
	if pager == nil {
		h.noSession(c)
		return
	}
	h.OK(c, dto.FromSearchPage(pager.Last(), pager.State(), false))
}

// Next handles POST /search/next
func (h *SearchHandler) Next(c *gin.Context) {
	h.navigate(c, func(ctx context.Context, p *arp.Pager) (*arp.SearchPage, bool, error) {
		return p.Next(ctx)
	})
}

// Previous handles POST /search/previous
func (h *SearchHandler) Previous(c *gin.Context) {
	h.navigate(c, func(ctx context.Context, p *arp.Pager) (*arp.SearchPage, bool, error) {
		return p.Previous(ctx)
	})
}

// GoTo handles POST /search/page/:page
func (h *SearchHandler) GoTo(c *gin.Context) {
	target, ok := h.ParseIntParam(c, "page")
	if !ok {
		return
	}
	h.navigate(c, func(ctx context.Context, p *arp.Pager) (*arp.SearchPage, bool, error) {
		return p.GoTo(ctx, target)
	})
}

func (h *SearchHandler) navigate(c *gin.Context, move func(context.Context, *arp.Pager) (*arp.SearchPage, bool, error)) {
	pager := middleware.GetPager(c)
	if pager == nil {
		h.noSession(c)
		return
	}
	page, moved, err := move(c.Request.Context(), pager)
	if err != nil {
		h.Error(c, err)
		return
	}
	if !moved {
		page = pager.Last()
	}
	h.OK(c, dto.FromSearchPage(page, pager.State(), moved))
}

// noSession answers reads and moves of a caller without a live session: there
// is nothing loaded, so nothing moves.
func (h *SearchHandler) noSession(c *gin.Context) {
	h.OK(c, dto.FromSearchPage(nil, arp.PageState{}, false))
}
