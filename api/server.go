// Package api provides the HTTP REST facade for stockval.
//
// It exposes the stock dashboard passthrough endpoints (price series,
// overview, annual statements), the static company list, and the POST
// endpoint that triggers a DCF valuation for a symbol.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/valuehound/stockval/internal/alphavantage"
	"github.com/valuehound/stockval/internal/config"
	"github.com/valuehound/stockval/internal/valuation"
	"github.com/valuehound/stockval/pkg/models"
)

// marginOfSafetyFactor discounts the model price before it is compared to
// the market.
var marginOfSafetyFactor = decimal.New(9, -1) // 0.9

// companyList is the static selection offered on the frontend home page.
var companyList = []models.Company{
	{Symbol: "IBM", Name: "International Business Machines"},
	{Symbol: "MSFT", Name: "Microsoft"},
	{Symbol: "GOOG", Name: "Alphabet (Google)"},
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	av     *alphavantage.Client
	market valuation.MarketConstants
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) (*Server, error) {
	riskFree, err := cfg.Market.RiskFreeRateDecimal()
	if err != nil {
		return nil, err
	}
	riskPremium, err := cfg.Market.MarketRiskPremiumDecimal()
	if err != nil {
		return nil, err
	}

	av := alphavantage.NewClient(alphavantage.Options{
		BaseURL:    cfg.AlphaVantage.BaseURL,
		APIKey:     cfg.AlphaVantage.APIKey,
		Timeout:    time.Duration(cfg.AlphaVantage.TimeoutSec) * time.Second,
		CacheTTL:   time.Duration(cfg.AlphaVantage.CacheTTLSec) * time.Second,
		RatePerMin: cfg.AlphaVantage.RatePerMin,
	})

	srv := &Server{
		cfg: cfg,
		av:  av,
		market: valuation.MarketConstants{
			RiskFreeRate:      riskFree,
			MarketRiskPremium: riskPremium,
		},
	}
	srv.router = srv.buildRouter()
	return srv, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-done
	zap.L().Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/companies", s.handleCompanies)

		r.Route("/stockDashboard/{symbol}", func(r chi.Router) {
			r.Get("/stocks", s.handleStocks)
			r.Get("/overview", s.handleOverview)
			r.Get("/incomeStatement", s.handleIncomeStatement)
			r.Get("/balanceSheet", s.handleBalanceSheet)
			r.Get("/cashFlowStatement", s.handleCashFlowStatement)
		})

		r.Post("/{symbol}/dcfData", s.handleDCF)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// growthRatesRequest is the body for POST /api/{symbol}/dcfData. The field
// name matches the frontend payload. Rates are decimal strings; the final
// element is the terminal growth rate.
type growthRatesRequest struct {
	GrowthRates []string `json:"GrowthRates"`
}

// dcfResponse is the valuation result envelope.
type dcfResponse struct {
	Message string          `json:"message"`
	Value   decimal.Decimal `json:"value"`
	Margin  decimal.Decimal `json:"margin"`
}

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, companyList)
}

func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	points, err := s.av.MonthlyAdjusted(r.Context(), symbol)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	overview, err := s.av.Overview(r.Context(), symbol)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleIncomeStatement(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	statements, err := s.av.IncomeStatements(r.Context(), symbol)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statements)
}

func (s *Server) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	sheets, err := s.av.BalanceSheets(r.Context(), symbol)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sheets)
}

func (s *Server) handleCashFlowStatement(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	flows, err := s.av.CashFlows(r.Context(), symbol)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flows)
}

// handleDCF runs the full valuation: fetch the four record kinds, assemble
// the WACC inputs, discount projected free cash flows at the computed WACC
// and answer with the intrinsic price per share.
func (s *Server) handleDCF(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	var req growthRatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.GrowthRates) < 2 {
		writeError(w, http.StatusBadRequest, "GrowthRates must hold at least two elements (explicit years plus terminal)")
		return
	}

	growthRates := make([]decimal.Decimal, 0, len(req.GrowthRates))
	for _, rate := range req.GrowthRates {
		d, err := decimal.NewFromString(rate)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid growth rate %q", rate))
			return
		}
		growthRates = append(growthRates, d)
	}

	var (
		sheets     []models.BalanceSheet
		statements []models.IncomeStatement
		flows      []models.CashFlow
		overview   models.Overview
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		sheets, err = s.av.BalanceSheets(ctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		statements, err = s.av.IncomeStatements(ctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		flows, err = s.av.CashFlows(ctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		overview, err = s.av.Overview(ctx, symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		s.writeDomainError(w, err)
		return
	}

	latestBS, err := valuation.LatestBalanceSheet(sheets)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	latestIS, err := valuation.LatestIncomeStatement(statements)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	latestCF, err := valuation.LatestCashFlow(flows)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	waccInputs, err := valuation.AssembleWACCInputs(latestIS, latestBS, overview, s.market)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	wacc, err := valuation.ComputeWACC(waccInputs)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	dcfInputs, err := valuation.AssembleDCFInputs(latestCF, latestBS, overview, growthRates, wacc)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	price, err := valuation.ComputeDCFPricePerShare(dcfInputs)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	zap.L().Info("valuation computed",
		zap.String("symbol", symbol),
		zap.String("wacc", wacc.String()),
		zap.String("price", price.String()),
	)

	writeJSON(w, http.StatusOK, dcfResponse{
		Message: fmt.Sprintf("Computed DCF for %s: %s", symbol, price),
		Value:   price,
		Margin:  price.Mul(marginOfSafetyFactor).Round(2),
	})
}

// ============================================================
// Helpers
// ============================================================

// writeDomainError maps the error taxonomy onto HTTP statuses: invalid
// inputs and missing data are client errors, upstream failures are a bad
// gateway, everything else is internal.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var (
		invalid  *valuation.ErrInvalidInput
		missing  *valuation.ErrMissingData
		upstream *alphavantage.ErrUpstreamHTTP
	)
	switch {
	case errors.As(err, &invalid) || errors.As(err, &missing):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &upstream):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to write JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
