package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"op_trader/pricing/rpc"
	"op_trader/storefront/internal/labels"
	"op_trader/storefront/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const defaultCurrency = "usd"

type ListingRepository interface {
	ListBySeller(ctx context.Context, sellerID string) ([]store.Listing, error)
	GetListing(ctx context.Context, sellerID, id string) (*store.Listing, error)
	UpdatePrice(ctx context.Context, sellerID, id string, u store.PriceUpdate) error
	CreateFromCollection(ctx context.Context, sellerID string, collectionItemIDs []string) ([]string, error)
	DeleteListing(ctx context.Context, sellerID, id string) error
}

type CollectionReader interface {
	ListCollection(ctx context.Context, sellerID string) ([]store.CollectionItem, error)
}

// Renderer turns ZPL into a printable document.
type Renderer interface {
	Render(ctx context.Context, zpl string) ([]byte, error)
	ContentType() string
}

type ListingHandler struct {
	listings   ListingRepository
	collection CollectionReader
	pricing    rpc.PricingServiceClient
	renderer   Renderer
	logger     *slog.Logger
}

type listingView struct {
	ID                 string  `json:"id"`
	ItemID             string  `json:"item_id"`
	Name               string  `json:"name"`
	SetCode            string  `json:"set_code"`
	CardNumber         string  `json:"card_number"`
	GradingService     string  `json:"grading_service"`
	Grade              string  `json:"grade"`
	PricingMode        string  `json:"pricing_mode"`
	FixedPriceCents    *int64  `json:"fixed_price_cents"`
	MarketMultiplier   *string `json:"market_multiplier"`
	MarketRoundToCents *int64  `json:"market_round_to_cents"`
	CostCents          *int64  `json:"cost_cents"`
	Quantity           int     `json:"quantity"`
	Status             string  `json:"status"`

	MarketValueCents   *int64 `json:"market_value_cents"`
	PriceCents         *int64 `json:"price_cents"`
	InternalPriceCents *int64 `json:"internal_price_cents"`
	MatchedRuleIndex   *int32 `json:"matched_rule_index"`
	Price              string `json:"price"`
	MarketValue        string `json:"market_value"`
}

// List returns the seller's listings priced in the requested currency.
func (h *ListingHandler) List(c *gin.Context) {
	sellerID := c.Param("seller")
	currency := strings.ToLower(c.DefaultQuery("currency", defaultCurrency))

	ls, err := h.listings.ListBySeller(c.Request.Context(), sellerID)
	if err != nil {
		h.logger.Error("list listings failed", "seller_id", sellerID, "err", err)
		writeError(c, http.StatusInternalServerError, "failed to load listings")
		return
	}

	resp, err := h.quote(c.Request.Context(), sellerID, currency, ls)
	if err != nil {
		h.logger.Warn("quote listings failed", "seller_id", sellerID, "err", err)
		writePricingError(c, err)
		return
	}

	views := make([]listingView, 0, len(ls))
	for _, l := range ls {
		views = append(views, newListingView(l, resp.quotes[l.ID]))
	}
	body := gin.H{"currency": resp.currency, "listings": views}
	if resp.ratesAsOf != "" {
		body["rates_as_of"] = resp.ratesAsOf
	}
	c.JSON(http.StatusOK, body)
}

type priceRequest struct {
	PricingMode        string  `json:"pricing_mode" binding:"required,oneof=fixed market"`
	FixedPriceCents    *int64  `json:"fixed_price_cents"`
	MarketMultiplier   *string `json:"market_multiplier"`
	MarketRoundToCents *int64  `json:"market_round_to_cents"`
	Quantity           *int    `json:"quantity"`
}

func (r priceRequest) toUpdate() (store.PriceUpdate, string) {
	u := store.PriceUpdate{Mode: r.PricingMode}
	switch r.PricingMode {
	case store.ModeFixed:
		if r.FixedPriceCents == nil || *r.FixedPriceCents <= 0 {
			return u, "fixed_price_cents must be positive"
		}
		u.FixedPriceCents = r.FixedPriceCents
	case store.ModeMarket:
		if r.MarketMultiplier != nil {
			m, err := decimal.NewFromString(*r.MarketMultiplier)
			if err != nil || !m.IsPositive() {
				return u, "market_multiplier must be a positive decimal"
			}
			u.MarketMultiplier = &m
		}
		if r.MarketRoundToCents != nil {
			if *r.MarketRoundToCents <= 0 {
				return u, "market_round_to_cents must be positive"
			}
			if r.MarketMultiplier == nil {
				return u, "market_round_to_cents needs market_multiplier"
			}
			u.MarketRoundToCents = r.MarketRoundToCents
		}
	}
	if r.Quantity != nil && *r.Quantity < 0 {
		return u, "quantity must not be negative"
	}
	u.Quantity = r.Quantity
	return u, ""
}

// UpdatePrice is the inline price edit.
func (h *ListingHandler) UpdatePrice(c *gin.Context) {
	sellerID, id := c.Param("seller"), c.Param("id")

	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	update, problem := req.toUpdate()
	if problem != "" {
		writeError(c, http.StatusBadRequest, problem)
		return
	}

	if err := h.listings.UpdatePrice(c.Request.Context(), sellerID, id, update); err != nil {
		h.writeStoreError(c, "update price", err)
		return
	}

	l, err := h.listings.GetListing(c.Request.Context(), sellerID, id)
	if err == nil && l == nil {
		err = store.ErrListingNotFound
	}
	if err != nil {
		h.writeStoreError(c, "reload listing", err)
		return
	}

	currency := strings.ToLower(c.DefaultQuery("currency", defaultCurrency))
	var quote *rpc.Quote
	if resp, err := h.quote(c.Request.Context(), sellerID, currency, []store.Listing{*l}); err != nil {
		// The edit is saved; the caller refreshes the price on the next list.
		h.logger.Warn("quote after edit failed", "listing_id", id, "err", err)
	} else {
		quote = resp.quotes[id]
	}
	c.JSON(http.StatusOK, newListingView(*l, quote))
}

func (h *ListingHandler) Delete(c *gin.Context) {
	if err := h.listings.DeleteListing(c.Request.Context(), c.Param("seller"), c.Param("id")); err != nil {
		h.writeStoreError(c, "delete listing", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type bulkRequest struct {
	CollectionItemIDs []string `json:"collection_item_ids" binding:"required,min=1,max=500,dive,required"`
}

// BulkList lists the selected collection items in market mode.
func (h *ListingHandler) BulkList(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	ids, err := h.listings.CreateFromCollection(c.Request.Context(), c.Param("seller"), req.CollectionItemIDs)
	switch {
	case errors.Is(err, store.ErrCollectionMismatch), errors.Is(err, store.ErrNoCollectionItems):
		writeError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("bulk list failed", "seller_id", c.Param("seller"), "err", err)
		writeError(c, http.StatusInternalServerError, "failed to create listings")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"listing_ids": ids})
}

func (h *ListingHandler) Collection(c *gin.Context) {
	items, err := h.collection.ListCollection(c.Request.Context(), c.Param("seller"))
	if err != nil {
		h.logger.Error("list collection failed", "seller_id", c.Param("seller"), "err", err)
		writeError(c, http.StatusInternalServerError, "failed to load collection")
		return
	}
	type itemView struct {
		ID             string `json:"id"`
		ItemID         string `json:"item_id"`
		Name           string `json:"name"`
		SetCode        string `json:"set_code"`
		CardNumber     string `json:"card_number"`
		GradingService string `json:"grading_service"`
		Grade          string `json:"grade"`
		Quantity       int    `json:"quantity"`
		CostCents      *int64 `json:"cost_cents"`
		Source         string `json:"source"`
	}
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		out = append(out, itemView{it.ID, it.ItemID, it.Name, it.SetCode, it.CardNumber,
			it.GradingService, it.Grade, it.Quantity, it.CostCents, it.Source})
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

type labelRequest struct {
	ListingIDs []string `json:"listing_ids" binding:"required,min=1,max=200,dive,required"`
	Currency   string   `json:"currency"`
}

// Labels prints the selected listings as ZPL, or as a rendered document with
// ?format=pdf.
func (h *ListingHandler) Labels(c *gin.Context) {
	sellerID := c.Param("seller")
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	format := c.DefaultQuery("format", "zpl")
	if format != "zpl" && format != "pdf" {
		writeError(c, http.StatusBadRequest, "format must be zpl or pdf")
		return
	}
	if format == "pdf" && h.renderer == nil {
		writeError(c, http.StatusServiceUnavailable, "label rendering is not configured")
		return
	}

	ls := make([]store.Listing, 0, len(req.ListingIDs))
	for _, id := range req.ListingIDs {
		l, err := h.listings.GetListing(c.Request.Context(), sellerID, id)
		if err != nil {
			h.writeStoreError(c, "load listing", err)
			return
		}
		if l == nil {
			writeError(c, http.StatusNotFound, "listing "+id+" not found")
			return
		}
		ls = append(ls, *l)
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = defaultCurrency
	}
	resp, err := h.quote(c.Request.Context(), sellerID, currency, ls)
	if err != nil {
		writePricingError(c, err)
		return
	}

	batch := labels.NewBatch(toLabels(ls, resp.quotes))
	c.Header("X-Label-Batch", batch.ID)
	if format == "zpl" {
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(batch.ZPL))
		return
	}

	doc, err := h.renderer.Render(c.Request.Context(), batch.ZPL)
	if err != nil {
		h.logger.Warn("label render failed", "batch_id", batch.ID, "err", err)
		writeError(c, http.StatusBadGateway, "label renderer failed")
		return
	}
	c.Data(http.StatusOK, h.renderer.ContentType(), doc)
}

func (h *ListingHandler) writeStoreError(c *gin.Context, op string, err error) {
	if errors.Is(err, store.ErrListingNotFound) {
		writeError(c, http.StatusNotFound, "listing not found")
		return
	}
	h.logger.Error(op+" failed", "seller_id", c.Param("seller"), "listing_id", c.Param("id"), "err", err)
	writeError(c, http.StatusInternalServerError, "failed to "+op)
}

type quoteResult struct {
	currency  string
	ratesAsOf string
	quotes    map[string]*rpc.Quote
}

func (h *ListingHandler) quote(ctx context.Context, sellerID, currency string, ls []store.Listing) (quoteResult, error) {
	req := &rpc.QuoteListingsRequest{
		SellerID:        sellerID,
		DisplayCurrency: currency,
		Listings:        make([]*rpc.ListingInput, 0, len(ls)),
	}
	for _, l := range ls {
		req.Listings = append(req.Listings, toListingInput(l))
	}

	resp, err := h.pricing.QuoteListings(ctx, req)
	if err != nil {
		return quoteResult{}, err
	}
	out := quoteResult{currency: resp.DisplayCurrency, quotes: make(map[string]*rpc.Quote, len(resp.Quotes))}
	if resp.RatesAsOf != nil {
		out.ratesAsOf = resp.RatesAsOf.AsTime().Format(time.RFC3339)
	}
	for _, q := range resp.Quotes {
		out.quotes[q.ListingID] = q
	}
	return out, nil
}

func toListingInput(l store.Listing) *rpc.ListingInput {
	in := &rpc.ListingInput{
		ListingID:          l.ID,
		ItemID:             l.ItemID,
		GradingService:     l.GradingService,
		Grade:              l.Grade,
		PricingMode:        l.PricingMode,
		FixedPriceCents:    l.FixedPriceCents,
		MarketRoundToCents: l.MarketRoundToCents,
		CostCents:          l.CostCents,
		Quantity:           int32(l.Quantity),
	}
	if l.MarketMultiplier != nil {
		s := l.MarketMultiplier.String()
		in.MarketMultiplier = &s
	}
	return in
}

func newListingView(l store.Listing, q *rpc.Quote) listingView {
	v := listingView{
		ID:                 l.ID,
		ItemID:             l.ItemID,
		Name:               l.Name,
		SetCode:            l.SetCode,
		CardNumber:         l.CardNumber,
		GradingService:     l.GradingService,
		Grade:              l.Grade,
		PricingMode:        l.PricingMode,
		FixedPriceCents:    l.FixedPriceCents,
		MarketRoundToCents: l.MarketRoundToCents,
		CostCents:          l.CostCents,
		Quantity:           l.Quantity,
		Status:             l.Status,
	}
	if l.MarketMultiplier != nil {
		s := l.MarketMultiplier.String()
		v.MarketMultiplier = &s
	}
	if q != nil {
		v.MarketValueCents = q.MarketValueCents
		v.PriceCents = q.DisplayCents
		v.InternalPriceCents = q.InternalCents
		v.MatchedRuleIndex = q.MatchedRuleIndex
		v.Price = q.Formatted
		v.MarketValue = q.FormattedMarket
	}
	return v
}

func toLabels(ls []store.Listing, quotes map[string]*rpc.Quote) []labels.Label {
	out := make([]labels.Label, 0, len(ls))
	for _, l := range ls {
		lb := labels.Label{
			ListingID:  l.ID,
			Name:       l.Name,
			SetCode:    l.SetCode,
			CardNumber: l.CardNumber,
			Quantity:   l.Quantity,
		}
		if g := strings.ToLower(l.GradingService); g != "" && g != "ungraded" {
			lb.Grade = strings.TrimSpace(strings.ToUpper(g) + " " + l.Grade)
		}
		if q, ok := quotes[l.ID]; ok {
			lb.Price = q.Formatted
		}
		out = append(out, lb)
	}
	return out
}
