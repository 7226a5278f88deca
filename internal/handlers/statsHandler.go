package handlers

import (
	"net/http"
	"strconv"
)

// StatsSummaryHandler aggregates the recent query run logs.
// @Summary      Query statistics summary
// @Description  Aggregates run logs over the window into volume, latency percentiles, error, retrieval and session breakdowns.
// @Tags         Stats
// @Produce      json
// @Param        days  query     int  false  "Window size in days (default 7)"
// @Success      200   {object}  metrics.Summary
// @Failure      500   {object}  api.ErrorResponse
// @Router       /stats/summary [get]
func StatsSummaryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	summary, err := handlerInstance.recorder.GetSummary(r.Context(), days)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Run log store error")
		return
	}
	writeJsonResponse(w, http.StatusOK, summary)
}
