package handlers

import (
	"github.com/gin-gonic/gin"

	"arpscout/internal/domain/arp"
	"arpscout/internal/domain/supplier"
	"arpscout/internal/infrastructure/http/v1/dto"
)

// LookupHandler serves the per-row actions: balance, agreement detail and supplier.
type LookupHandler struct {
	*BaseHandler
	service   *arp.Service
	suppliers *supplier.Resolver
}

// NewLookupHandler creates a new lookup handler.
func NewLookupHandler(base *BaseHandler, service *arp.Service, suppliers *supplier.Resolver) *LookupHandler {
	return &LookupHandler{
		BaseHandler: base,
		service:     service,
		suppliers:   suppliers,
	}
}

// RegisterRoutes mounts the lookup endpoints.
func (h *LookupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/balance", h.Balance)
	rg.GET("/agreements/:unit/:number", h.Agreement)
	rg.GET("/suppliers/:taxId", h.Supplier)
}

// Balance handles GET /balance
func (h *LookupHandler) Balance(c *gin.Context) {
	var req dto.BalanceRequest
	if !h.BindQuery(c, &req) {
		return
	}

	summary, err := h.service.CheckBalance(c.Request.Context(), req.Query())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBalanceSummary(summary))
}

// Agreement handles GET /agreements/:unit/:number
func (h *LookupHandler) Agreement(c *gin.Context) {
	var req dto.AgreementRequest
	if !h.BindQuery(c, &req) {
		return
	}

	agreement, err := h.service.Agreement(c.Request.Context(), arp.AgreementQuery{
		ManagingUnitCode: c.Param("unit"),
		AgreementNumber:  c.Param("number"),
		ValidityFrom:     req.ValidityFrom,
		ValidityTo:       req.ValidityTo,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, agreement)
}

// Supplier handles GET /suppliers/:taxId
func (h *LookupHandler) Supplier(c *gin.Context) {
	rec, err := h.suppliers.Resolve(c.Request.Context(), c.Param("taxId"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSupplierRecord(rec, c.Query("name")))
}
