package http

import (
	"net/http"
)

const (
	statsCacheKey      = "portfolio"
	houseStatsCacheKey = "houses"
)

// handlePortfolioStats serves the dashboard counters, cached until the
// next data change.
func (s *Server) handlePortfolioStats(w http.ResponseWriter, r *http.Request) {
	now, err := referenceTime(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month parameter")
		return
	}

	// Only the default view is cached; historical months bypass it.
	cacheable := r.URL.Query().Get("month") == ""
	if cacheable {
		if stats, found := s.statsCache.Get(statsCacheKey); found {
			respondJSON(w, http.StatusOK, toPortfolioStatsJSON(stats))
			return
		}
	}

	stats, err := s.portfolio.PortfolioStats(r.Context(), now)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	if cacheable {
		s.statsCache.Set(statsCacheKey, stats)
	}
	respondJSON(w, http.StatusOK, toPortfolioStatsJSON(stats))
}

func (s *Server) handleAllHouseStats(w http.ResponseWriter, r *http.Request) {
	now, err := referenceTime(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month parameter")
		return
	}

	cacheable := r.URL.Query().Get("month") == ""
	if cacheable {
		if stats, found := s.houseStatsCache.Get(houseStatsCacheKey); found {
			respondHouseStats(w, stats)
			return
		}
	}

	stats, err := s.portfolio.AllHouseStats(r.Context(), now)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	if cacheable {
		s.houseStatsCache.Set(houseStatsCacheKey, stats)
	}
	respondHouseStats(w, stats)
}

// handleDashboard returns the portfolio counters together with the
// per-house rollups, the payload the dashboard screen renders in one go.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now, err := referenceTime(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month parameter")
		return
	}

	stats, err := s.portfolio.PortfolioStats(r.Context(), now)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	houses, err := s.portfolio.AllHouseStats(r.Context(), now)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	out := dashboardJSON{
		Stats:  toPortfolioStatsJSON(stats),
		Houses: make([]houseStatsJSON, 0, len(houses)),
	}
	for _, hs := range houses {
		out.Houses = append(out.Houses, toHouseStatsJSON(hs))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleOverdue(w http.ResponseWriter, r *http.Request) {
	now, err := referenceTime(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month parameter")
		return
	}

	entries, err := s.status.OverdueTenants(r.Context(), now)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	out := make([]overdueJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toOverdueJSON(e))
	}
	respondJSON(w, http.StatusOK, out)
}

// handleChanges exposes the change bus version counter. Clients poll it
// and refetch when the number moves.
func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	var version uint64
	if s.bus != nil {
		version = s.bus.Version()
	}
	respondJSON(w, http.StatusOK, changesJSON{Version: version})
}
