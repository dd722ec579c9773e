package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/stonks/internal/dashboard"
	"github.com/seenimoa/stonks/internal/market"
)

// param returns a path parameter, unescaping it when chi routed on the
// raw path.
func param(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, market.Invalid("%s must be an integer", name)
	}
	return n, nil
}

// ════════════════════════════════════════════════════════════════════
// Meta
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, map[string]any{
		"name":    Name,
		"version": Version,
		"status":  "operational",
		"endpoints": map[string]string{
			"quote":     "/api/v1/{class}/{id}",
			"history":   "/api/v1/{class}/{id}/history",
			"technical": "/api/v1/{class}/{id}/technical",
			"search":    "/api/v1/search/{query}",
			"macro":     "/api/v1/macro/{name}",
			"analyze":   "/api/v1/analyze",
			"forecast":  "/api/v1/forecast/{class}/{id}",
			"invest":    "/api/v1/invest",
			"sentiment": "/api/v1/sentiment/{query}",
			"scan":      "/api/v1/macro/scan",
			"ws":        "/api/v1/ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, map[string]any{
		"status":     "healthy",
		"version":    Version,
		"ws_clients": s.hub.ClientCount(),
	})
}

// ════════════════════════════════════════════════════════════════════
// Quotes & history
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.dash.Quote(r.Context(), param(r, "class"), param(r, "id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeData(w, q)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h, err := s.dash.History(r.Context(), param(r, "class"), param(r, "id"), q.Get("period"), q.Get("interval"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeData(w, h)
}

func (s *Server) handleTechnical(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dash.Technical(r.Context(), param(r, "class"), param(r, "id"), r.URL.Query().Get("period"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeData(w, snap)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, s.dash.Market().Search(r.Context(), param(r, "query")))
}

// ════════════════════════════════════════════════════════════════════
// Macro indicators
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleMacroList(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, s.dash.Market().Indicators())
}

func (s *Server) handleMacroRegions(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, s.dash.Market().IndicatorsByRegion())
}

func (s *Server) handleMacro(w http.ResponseWriter, r *http.Request) {
	m, err := s.dash.Market().Macro(r.Context(), param(r, "name"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeData(w, m)
}

// ════════════════════════════════════════════════════════════════════
// Analytics
// ════════════════════════════════════════════════════════════════════

// AnalyzeRequest is the body for POST /api/v1/analyze.
type AnalyzeRequest struct {
	Assets []market.AssetRef `json:"assets"`
	Period string            `json:"period"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		s.writeErr(w, r, err)
		return
	}
	res, err := s.dash.Analyze(r.Context(), req.Assets, req.Period)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeData(w, res)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	sims, err := queryInt(r, "simulations")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	f, err := s.dash.Forecast(r.Context(), dashboard.ForecastRequest{
		Class:       param(r, "class"),
		ID:          param(r, "id"),
		Days:        days,
		Simulations: sims,
		Lookback:    r.URL.Query().Get("lookback"),
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeData(w, f)
}

func (s *Server) handleInvest(w http.ResponseWriter, r *http.Request) {
	var req dashboard.InvestRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		s.writeErr(w, r, err)
		return
	}
	res, err := s.dash.Invest(r.Context(), req)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeData(w, res)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	typ := strings.TrimSpace(r.URL.Query().Get("type"))
	rep, err := s.dash.Sentiment(r.Context(), param(r, "query"), typ)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeData(w, rep)
}
