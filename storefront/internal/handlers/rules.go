package handlers

import (
	"net/http"

	"op_trader/pricing/rpc"

	"github.com/gin-gonic/gin"
)

// RulesHandler proxies a seller's pricing rules to the pricing service,
// which owns their validation.
type RulesHandler struct {
	pricing rpc.PricingServiceClient
}

func (h *RulesHandler) Get(c *gin.Context) {
	resp, err := h.pricing.GetRules(c.Request.Context(), &rpc.GetRulesRequest{SellerID: c.Param("seller")})
	if err != nil {
		writePricingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RulesHandler) Put(c *gin.Context) {
	var req struct {
		Rules []*rpc.Rule `json:"rules" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	resp, err := h.pricing.SetRules(c.Request.Context(), &rpc.SetRulesRequest{
		SellerID: c.Param("seller"),
		Rules:    req.Rules,
	})
	if err != nil {
		writePricingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
