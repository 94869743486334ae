package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"op_trader/pricing/rpc"
	"op_trader/storefront/internal/jobs"
	"op_trader/storefront/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func cents(v int64) *int64 { return &v }

type fakeListings struct {
	listings map[string]store.Listing
	updates  []store.PriceUpdate
	created  [][]string
	err      error
}

func newFakeListings(ls ...store.Listing) *fakeListings {
	f := &fakeListings{listings: make(map[string]store.Listing)}
	for _, l := range ls {
		f.listings[l.ID] = l
	}
	return f
}

func (f *fakeListings) ListBySeller(_ context.Context, sellerID string) ([]store.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []store.Listing
	for _, id := range []string{"lst-1", "lst-2", "lst-3"} {
		if l, ok := f.listings[id]; ok && l.SellerID == sellerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeListings) GetListing(_ context.Context, sellerID, id string) (*store.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	l, ok := f.listings[id]
	if !ok || l.SellerID != sellerID {
		return nil, nil
	}
	return &l, nil
}

func (f *fakeListings) UpdatePrice(_ context.Context, sellerID, id string, u store.PriceUpdate) error {
	l, ok := f.listings[id]
	if !ok || l.SellerID != sellerID {
		return store.ErrListingNotFound
	}
	f.updates = append(f.updates, u)
	l.PricingMode = u.Mode
	l.FixedPriceCents = u.FixedPriceCents
	l.MarketMultiplier = u.MarketMultiplier
	l.MarketRoundToCents = u.MarketRoundToCents
	if u.Quantity != nil {
		l.Quantity = *u.Quantity
	}
	f.listings[id] = l
	return nil
}

func (f *fakeListings) CreateFromCollection(_ context.Context, _ string, ids []string) ([]string, error) {
	for _, id := range ids {
		if !strings.HasPrefix(id, "ci-") {
			return nil, store.ErrCollectionMismatch
		}
	}
	f.created = append(f.created, ids)
	out := make([]string, len(ids))
	for i := range ids {
		out[i] = "new-" + ids[i]
	}
	return out, nil
}

func (f *fakeListings) DeleteListing(_ context.Context, sellerID, id string) error {
	l, ok := f.listings[id]
	if !ok || l.SellerID != sellerID {
		return store.ErrListingNotFound
	}
	delete(f.listings, id)
	return nil
}

type fakeCollection struct {
	items []store.CollectionItem
}

func (f *fakeCollection) ListCollection(context.Context, string) ([]store.CollectionItem, error) {
	return f.items, nil
}

// fakePricing quotes every listing at its fixed price, or 1000 cents.
type fakePricing struct {
	lastQuote *rpc.QuoteListingsRequest
	lastSet   *rpc.SetRulesRequest
	err       error
}

func (f *fakePricing) QuoteListings(_ context.Context, in *rpc.QuoteListingsRequest, _ ...grpc.CallOption) (*rpc.QuoteListingsResponse, error) {
	f.lastQuote = in
	if f.err != nil {
		return nil, f.err
	}
	resp := &rpc.QuoteListingsResponse{
		DisplayCurrency: in.DisplayCurrency,
		RatesAsOf:       timestamppb.New(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)),
	}
	for _, l := range in.Listings {
		price := int64(1000)
		if l.FixedPriceCents != nil {
			price = *l.FixedPriceCents
		}
		resp.Quotes = append(resp.Quotes, &rpc.Quote{
			ListingID:     l.ListingID,
			InternalCents: cents(price),
			DisplayCents:  cents(price),
			Formatted:     fmt.Sprintf("$%d.%02d", price/100, price%100),
		})
	}
	return resp, nil
}

func (f *fakePricing) GetRules(_ context.Context, in *rpc.GetRulesRequest, _ ...grpc.CallOption) (*rpc.GetRulesResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &rpc.GetRulesResponse{
		SellerID:  in.SellerID,
		Rules:     []*rpc.Rule{{Multiplier: "1.4", RoundToCents: 100}},
		IsDefault: true,
	}, nil
}

func (f *fakePricing) SetRules(_ context.Context, in *rpc.SetRulesRequest, _ ...grpc.CallOption) (*rpc.SetRulesResponse, error) {
	f.lastSet = in
	if len(in.Rules) == 0 {
		return nil, status.Error(codes.InvalidArgument, "rule set has no rules")
	}
	return &rpc.SetRulesResponse{SellerID: in.SellerID, Rules: in.Rules}, nil
}

func (f *fakePricing) FormatAmounts(context.Context, *rpc.FormatAmountsRequest, ...grpc.CallOption) (*rpc.FormatAmountsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "")
}

func (f *fakePricing) GetRates(context.Context, *emptypb.Empty, ...grpc.CallOption) (*rpc.GetRatesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "")
}

type fakeJobs struct {
	jobs       []jobs.Job
	enqueueErr error
}

func (f *fakeJobs) Enqueue(_ context.Context, pipeline, sellerID string, payload json.RawMessage) (*jobs.Job, error) {
	if f.enqueueErr != nil {
		return nil, f.enqueueErr
	}
	j := jobs.NewJob(pipeline, sellerID, payload)
	f.jobs = append(f.jobs, *j)
	return j, nil
}

func (f *fakeJobs) Get(_ context.Context, sellerID string, id uuid.UUID) (*jobs.Job, error) {
	for _, j := range f.jobs {
		if j.ID == id && j.SellerID == sellerID {
			return &j, nil
		}
	}
	return nil, jobs.ErrJobNotFound
}

func (f *fakeJobs) List(_ context.Context, sellerID string, _ int) ([]jobs.Job, error) {
	var out []jobs.Job
	for _, j := range f.jobs {
		if j.SellerID == sellerID {
			out = append(out, j)
		}
	}
	return out, nil
}

type fakeRenderer struct {
	got string
	err error
}

func (f *fakeRenderer) Render(_ context.Context, zpl string) ([]byte, error) {
	f.got = zpl
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF"), nil
}

func (f *fakeRenderer) ContentType() string { return "application/pdf" }

type testEnv struct {
	listings *fakeListings
	pricing  *fakePricing
	jobs     *fakeJobs
	renderer *fakeRenderer
	router   *gin.Engine
}

func newTestEnv() *testEnv {
	env := &testEnv{
		listings: newFakeListings(
			store.Listing{ID: "lst-1", SellerID: "s1", ItemID: "op01-024", Name: "Luffy", SetCode: "OP01", CardNumber: "024",
				GradingService: "psa", Grade: "10", PricingMode: store.ModeMarket, Quantity: 2, Status: store.StatusActive},
			store.Listing{ID: "lst-2", SellerID: "s1", ItemID: "op01-016", Name: "Nami", SetCode: "OP01", CardNumber: "016",
				GradingService: "ungraded", PricingMode: store.ModeFixed, FixedPriceCents: cents(2500), Quantity: 1, Status: store.StatusActive},
			store.Listing{ID: "lst-3", SellerID: "s2", ItemID: "op01-001", Name: "Zoro", PricingMode: store.ModeFixed, FixedPriceCents: cents(100)},
		),
		pricing:  &fakePricing{},
		jobs:     &fakeJobs{},
		renderer: &fakeRenderer{},
	}
	env.router = NewRouter(Deps{
		Listings:   env.listings,
		Collection: &fakeCollection{items: []store.CollectionItem{{ID: "ci-1", ItemID: "op01-024", Quantity: 3}}},
		Pricing:    env.pricing,
		Jobs:       env.jobs,
		Labels:     env.renderer,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return env
}

func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	return body.Error
}

func TestHealthz(t *testing.T) {
	rec := newTestEnv().do(http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestListListings(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodGet, "/api/sellers/s1/listings?currency=AUD", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var body struct {
		Currency  string        `json:"currency"`
		RatesAsOf string        `json:"rates_as_of"`
		Listings  []listingView `json:"listings"`
	}
	decode(t, rec, &body)
	if body.Currency != "aud" {
		t.Errorf("currency = %q, want aud", body.Currency)
	}
	if body.RatesAsOf != "2026-10-01T00:00:00Z" {
		t.Errorf("rates_as_of = %q", body.RatesAsOf)
	}
	if len(body.Listings) != 2 {
		t.Fatalf("len(listings) = %d, want 2", len(body.Listings))
	}
	nami := body.Listings[1]
	if nami.PriceCents == nil || *nami.PriceCents != 2500 || nami.Price == "" {
		t.Errorf("nami price = %v %q", nami.PriceCents, nami.Price)
	}

	q := env.pricing.lastQuote
	if q.SellerID != "s1" || q.DisplayCurrency != "aud" || len(q.Listings) != 2 {
		t.Errorf("quote request = %+v", q)
	}
	if q.Listings[0].GradingService != "psa" || q.Listings[0].Grade != "10" {
		t.Errorf("listing input = %+v", q.Listings[0])
	}
}

func TestListListingsErrors(t *testing.T) {
	tests := []struct {
		name       string
		pricingErr error
		storeErr   error
		want       int
	}{
		{"bad currency", status.Error(codes.InvalidArgument, "unknown currency"), nil, http.StatusBadRequest},
		{"bad stored rules", status.Error(codes.FailedPrecondition, "invalid rules"), nil, http.StatusConflict},
		{"pricing down", status.Error(codes.Unavailable, "connection refused"), nil, http.StatusServiceUnavailable},
		{"pricing internal", status.Error(codes.Internal, "db"), nil, http.StatusBadGateway},
		{"store down", nil, errors.New("db gone"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.pricing.err = tt.pricingErr
			env.listings.err = tt.storeErr
			rec := env.do(http.MethodGet, "/api/sellers/s1/listings", "")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if errorMessage(t, rec) == "" {
				t.Error("error body missing")
			}
		})
	}
}

func TestUpdatePrice(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPatch, "/api/sellers/s1/listings/lst-1/price",
		`{"pricing_mode":"fixed","fixed_price_cents":4200,"quantity":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var view listingView
	decode(t, rec, &view)
	if view.PricingMode != store.ModeFixed || view.PriceCents == nil || *view.PriceCents != 4200 {
		t.Errorf("view = %+v", view)
	}
	if len(env.listings.updates) != 1 {
		t.Fatalf("updates = %d, want one write for price and quantity", len(env.listings.updates))
	}
	if q := env.listings.updates[0].Quantity; q == nil || *q != 5 {
		t.Errorf("update quantity = %v, want 5", q)
	}
	if view.Quantity != 5 {
		t.Errorf("view quantity = %d, want 5", view.Quantity)
	}
}

func TestUpdatePriceMarketMultiplier(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPatch, "/api/sellers/s1/listings/lst-2/price",
		`{"pricing_mode":"market","market_multiplier":"1.25","market_round_to_cents":500}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	u := env.listings.updates[0]
	if u.MarketMultiplier == nil || u.MarketMultiplier.String() != "1.25" || *u.MarketRoundToCents != 500 {
		t.Errorf("update = %+v", u)
	}
	if u.FixedPriceCents != nil {
		t.Error("market update kept a fixed price")
	}
	if u.Quantity != nil {
		t.Errorf("update quantity = %d, want unchanged", *u.Quantity)
	}
	if got := env.listings.listings["lst-2"].Quantity; got != 1 {
		t.Errorf("quantity = %d, want 1 kept", got)
	}
}

func TestUpdatePriceValidation(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"not json", "lst-1", `{`, http.StatusBadRequest},
		{"missing mode", "lst-1", `{"fixed_price_cents":100}`, http.StatusBadRequest},
		{"unknown mode", "lst-1", `{"pricing_mode":"auction"}`, http.StatusBadRequest},
		{"fixed without price", "lst-1", `{"pricing_mode":"fixed"}`, http.StatusBadRequest},
		{"zero fixed price", "lst-1", `{"pricing_mode":"fixed","fixed_price_cents":0}`, http.StatusBadRequest},
		{"bad multiplier", "lst-1", `{"pricing_mode":"market","market_multiplier":"abc"}`, http.StatusBadRequest},
		{"negative multiplier", "lst-1", `{"pricing_mode":"market","market_multiplier":"-1"}`, http.StatusBadRequest},
		{"round-to without multiplier", "lst-1", `{"pricing_mode":"market","market_round_to_cents":100}`, http.StatusBadRequest},
		{"negative quantity", "lst-1", `{"pricing_mode":"market","quantity":-1}`, http.StatusBadRequest},
		{"other seller's listing", "lst-3", `{"pricing_mode":"market"}`, http.StatusNotFound},
		{"missing listing", "nope", `{"pricing_mode":"market"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			rec := env.do(http.MethodPatch, "/api/sellers/s1/listings/"+tt.path+"/price", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestUpdatePriceSurvivesPricingOutage(t *testing.T) {
	env := newTestEnv()
	env.pricing.err = status.Error(codes.Unavailable, "down")
	rec := env.do(http.MethodPatch, "/api/sellers/s1/listings/lst-1/price", `{"pricing_mode":"market"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var view listingView
	decode(t, rec, &view)
	if view.PriceCents != nil {
		t.Errorf("PriceCents = %d, want nil", *view.PriceCents)
	}
}

func TestDeleteListing(t *testing.T) {
	env := newTestEnv()
	if rec := env.do(http.MethodDelete, "/api/sellers/s1/listings/lst-1", ""); rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec := env.do(http.MethodDelete, "/api/sellers/s1/listings/lst-1", ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestBulkList(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/api/sellers/s1/listings/bulk", `{"collection_item_ids":["ci-1","ci-2"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var body struct {
		ListingIDs []string `json:"listing_ids"`
	}
	decode(t, rec, &body)
	if len(body.ListingIDs) != 2 {
		t.Errorf("listing_ids = %v", body.ListingIDs)
	}

	for name, payload := range map[string]string{
		"empty":         `{"collection_item_ids":[]}`,
		"blank id":      `{"collection_item_ids":[""]}`,
		"foreign item":  `{"collection_item_ids":["other"]}`,
		"missing field": `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			if rec := env.do(http.MethodPost, "/api/sellers/s1/listings/bulk", payload); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCollection(t *testing.T) {
	rec := newTestEnv().do(http.MethodGet, "/api/sellers/s1/collection", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"ci-1"`) {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestLabelsZPL(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/api/sellers/s1/labels", `{"listing_ids":["lst-1","lst-2"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	zpl := rec.Body.String()
	if strings.Count(zpl, "^XA") != 2 {
		t.Errorf("expected two label blocks:\n%s", zpl)
	}
	for _, want := range []string{"^FDPSA 10^FS", "^PQ2", "^FDQA,lst-2^FS"} {
		if !strings.Contains(zpl, want) {
			t.Errorf("ZPL missing %q", want)
		}
	}
	if rec.Header().Get("X-Label-Batch") == "" {
		t.Error("X-Label-Batch header missing")
	}
	if env.pricing.lastQuote.DisplayCurrency != "usd" {
		t.Errorf("labels quoted in %q, want usd", env.pricing.lastQuote.DisplayCurrency)
	}
}

func TestLabelsPDF(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/api/sellers/s1/labels?format=pdf", `{"listing_ids":["lst-2"],"currency":"aud"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("body = %q", rec.Body)
	}
	if !strings.HasPrefix(env.renderer.got, "^XA") {
		t.Errorf("renderer got %q", env.renderer.got)
	}
}

func TestLabelsErrors(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		body      string
		renderErr error
		want      int
	}{
		{"bad format", "?format=png", `{"listing_ids":["lst-1"]}`, nil, http.StatusBadRequest},
		{"no ids", "", `{"listing_ids":[]}`, nil, http.StatusBadRequest},
		{"foreign listing", "", `{"listing_ids":["lst-3"]}`, nil, http.StatusNotFound},
		{"renderer fails", "?format=pdf", `{"listing_ids":["lst-1"]}`, errors.New("boom"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.renderer.err = tt.renderErr
			rec := env.do(http.MethodPost, "/api/sellers/s1/labels"+tt.query, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestLabelsWithoutRenderer(t *testing.T) {
	env := newTestEnv()
	env.router = NewRouter(Deps{
		Listings: env.listings,
		Pricing:  env.pricing,
		Jobs:     env.jobs,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	rec := env.do(http.MethodPost, "/api/sellers/s1/labels?format=pdf", `{"listing_ids":["lst-1"]}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestRulesProxy(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodGet, "/api/sellers/s1/rules", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	var got rpc.GetRulesResponse
	decode(t, rec, &got)
	if !got.IsDefault || len(got.Rules) != 1 || got.SellerID != "s1" {
		t.Errorf("GET body = %+v", got)
	}

	rec = env.do(http.MethodPut, "/api/sellers/s1/rules",
		`{"rules":[{"threshold_cents":10000,"multiplier":"1.2","round_to_cents":500},{"multiplier":"1.5","round_to_cents":100}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body %s", rec.Code, rec.Body)
	}
	set := env.pricing.lastSet
	if set.SellerID != "s1" || len(set.Rules) != 2 || *set.Rules[0].ThresholdCents != 10000 || set.Rules[1].ThresholdCents != nil {
		t.Errorf("SetRules request = %+v", set)
	}

	rec = env.do(http.MethodPut, "/api/sellers/s1/rules", `{"rules":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty rules status = %d, want 400", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "rule set has no rules" {
		t.Errorf("error = %q", msg)
	}
}

func TestCreateJob(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodPost, "/api/sellers/s1/jobs",
		`{"pipeline":"collection_import","seller_id":"s2","payload":{"platform":"collectr","csv":"x"}}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var job jobs.Job
	decode(t, rec, &job)
	if job.Status != jobs.StatusQueued || job.Pipeline != jobs.PipelineCollectionImport {
		t.Errorf("job = %+v", job)
	}
	if job.SellerID != "s1" {
		t.Errorf("SellerID = %q, want the seller from the path", job.SellerID)
	}
}

func TestCreateJobErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		body string
		want int
	}{
		{"missing pipeline", nil, `{"payload":{}}`, http.StatusBadRequest},
		{"unknown pipeline", jobs.ErrUnknownPipeline, `{"pipeline":"x","payload":{}}`, http.StatusBadRequest},
		{"invalid payload", jobs.ErrInvalidPayload, `{"pipeline":"x","payload":{}}`, http.StatusBadRequest},
		{"broker down", errors.New("amqp closed"), `{"pipeline":"x","payload":{}}`, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.jobs.enqueueErr = tt.err
			if rec := env.do(http.MethodPost, "/api/sellers/s1/jobs", tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestListAndGetJobs(t *testing.T) {
	env := newTestEnv()
	queued := jobs.NewJob(jobs.PipelineMarketPriceImport, "s1", json.RawMessage(`{}`))
	foreign := jobs.NewJob(jobs.PipelineCollectionImport, "s2", json.RawMessage(`{}`))
	env.jobs.jobs = []jobs.Job{*queued, *foreign}

	rec := env.do(http.MethodGet, "/api/sellers/s1/jobs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var feed jobFeed
	decode(t, rec, &feed)
	if len(feed.Groups) != 1 || !feed.Groups[0].Active || feed.Groups[0].Pipeline != jobs.PipelineMarketPriceImport {
		t.Errorf("groups = %+v", feed.Groups)
	}
	if feed.PollIntervalMS != jobs.ActivePollInterval.Milliseconds() {
		t.Errorf("poll_interval_ms = %d", feed.PollIntervalMS)
	}

	if rec := env.do(http.MethodGet, "/api/sellers/s1/jobs?limit=0", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, want 400", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/sellers/s1/jobs/"+queued.ID.String(), ""); rec.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/sellers/s1/jobs/"+foreign.ID.String(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("other seller's job status = %d, want 404", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/sellers/s1/jobs/"+uuid.NewString(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown job status = %d, want 404", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/sellers/s1/jobs/not-a-uuid", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestJobFeedWebsocket(t *testing.T) {
	env := newTestEnv()
	done := jobs.NewJob(jobs.PipelineCollectionImport, "s1", json.RawMessage(`{}`))
	done.Status = jobs.StatusCompleted
	foreign := jobs.NewJob(jobs.PipelineMarketPriceImport, "s2", json.RawMessage(`{}`))
	env.jobs.jobs = []jobs.Job{*done, *foreign}

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/sellers/s1/jobs/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var feed jobFeed
	if err := conn.ReadJSON(&feed); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(feed.Groups) != 1 || feed.Groups[0].Active || feed.Groups[0].Pipeline != jobs.PipelineCollectionImport {
		t.Errorf("groups = %+v", feed.Groups)
	}
	if feed.PollIntervalMS != jobs.IdlePollInterval.Milliseconds() {
		t.Errorf("poll_interval_ms = %d, want idle", feed.PollIntervalMS)
	}
}
