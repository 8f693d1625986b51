package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "arpscout/internal/core/context"
	"arpscout/internal/domain/arp"
	"arpscout/internal/infrastructure/cache"
)

// HeaderSessionID carries the navigation session between requests.
const HeaderSessionID = "X-Session-ID"

const pagerKey = "pager"

// Session binds the caller's live navigation session from X-Session-ID.
// Unknown or expired ids are left unbound; no session is created here.
func Session(sessions *cache.SessionCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderSessionID)
		if pager, ok := sessions.Lookup(id); ok {
			bindSession(c, id, pager)
		}
		c.Next()
	}
}

// StartSession makes sure the request has a session, creating one when the
// header is missing, malformed or expired. Mount it only on routes that start
// a new search.
func StartSession(sessions *cache.SessionCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetPager(c) == nil {
			id, pager := sessions.Acquire(c.GetHeader(HeaderSessionID))
			bindSession(c, id, pager)
		}
		c.Next()
	}
}

// GetPager returns the Pager bound to the request, or nil when there is none.
func GetPager(c *gin.Context) *arp.Pager {
	p, _ := c.Get(pagerKey)
	pager, _ := p.(*arp.Pager)
	return pager
}

func bindSession(c *gin.Context, id string, pager *arp.Pager) {
	c.Request = c.Request.WithContext(appctx.WithSessionID(c.Request.Context(), id))
	c.Set(pagerKey, pager)
	c.Header(HeaderSessionID, id)
}
