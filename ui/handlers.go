package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"abtest/adapters/excel"
	"abtest/app"
	"abtest/domain/experiment"
	"abtest/internal/errors"
	"abtest/internal/report"
	"abtest/ports"
)

// AnalyzeRequest is the JSON form of an analysis or share request. Plain-text
// bodies are accepted too, with the seed taken from the query string.
type AnalyzeRequest struct {
	Input string `json:"input"`
	Seed  uint64 `json:"seed,omitempty"`
}

// DecodeRequest carries a share token
type DecodeRequest struct {
	Token string `json:"token"`
	Seed  uint64 `json:"seed,omitempty"`
}

// ShareResponse describes a stored share
type ShareResponse struct {
	Share    *ports.SharedAnalysis `json:"share"`
	URL      string                `json:"url"`
	Metrics  []*experiment.Metric  `json:"metrics"`
	Analysis *app.AnalysisResult   `json:"analysis,omitempty"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze parses the input and returns the full analysis as JSON
func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	result, ok := a.analyzeRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAnalyzeReport returns the analysis rendered as HTML
func (a *App) handleAnalyzeReport(w http.ResponseWriter, r *http.Request) {
	result, ok := a.analyzeRequest(w, r)
	if !ok {
		return
	}
	writeHTML(w, report.HTML("A/B test results", result.Metrics))
}

// handleAnalyzeWorkbook returns the analysis as an xlsx download
func (a *App) handleAnalyzeWorkbook(w http.ResponseWriter, r *http.Request) {
	result, ok := a.analyzeRequest(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := excel.NewResultWriter().Write(&buf, result.Metrics); err != nil {
		a.writeError(w, errors.Wrap(err, "failed to build workbook"))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="analysis-%s.xlsx"`, result.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleCreateShare stores the input and returns its share ID and token
func (a *App) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	req, ok := a.readAnalyzeRequest(w, r)
	if !ok {
		return
	}
	set, err := a.analysis.ParseText(req.Input)
	if err != nil {
		a.writeError(w, err)
		return
	}

	share, err := a.shares.Create(r.Context(), set)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ShareResponse{
		Share:   share,
		URL:     "/api/share/" + share.ID.String(),
		Metrics: set.Metrics(),
	})
}

// handleRecentShares lists recently stored shares
func (a *App) handleRecentShares(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	shares, err := a.shares.Recent(r.Context(), limit)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"shares": shares})
}

// handleGetShare resolves a stored share and re-runs its analysis
func (a *App) handleGetShare(w http.ResponseWriter, r *http.Request) {
	set, share, err := a.shares.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	result, err := a.analysis.AnalyzeSet(r.Context(), set, querySeed(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ShareResponse{
		Share:    share,
		URL:      "/api/share/" + share.ID.String(),
		Metrics:  set.Metrics(),
		Analysis: result,
	})
}

// handleShareReport renders a stored share as HTML
func (a *App) handleShareReport(w http.ResponseWriter, r *http.Request) {
	set, share, err := a.shares.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	result, err := a.analysis.AnalyzeSet(r.Context(), set, querySeed(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeHTML(w, report.HTML("Shared analysis "+share.ID.String(), result.Metrics))
}

// handleDecodeShare analyzes the metrics carried by a token without storing anything
func (a *App) handleDecodeShare(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	body := http.MaxBytesReader(w, r.Body, a.maxInputBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		a.writeError(w, errors.InvalidInput("invalid JSON body: "+err.Error()))
		return
	}

	set, err := a.shares.Decode(req.Token)
	if err != nil {
		a.writeError(w, err)
		return
	}
	result, err := a.analysis.AnalyzeSet(r.Context(), set, req.Seed)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ShareResponse{Metrics: set.Metrics(), Analysis: result})
}

func (a *App) analyzeRequest(w http.ResponseWriter, r *http.Request) (*app.AnalysisResult, bool) {
	req, ok := a.readAnalyzeRequest(w, r)
	if !ok {
		return nil, false
	}
	result, err := a.analysis.AnalyzeText(r.Context(), req.Input, req.Seed)
	if err != nil {
		a.writeError(w, err)
		return nil, false
	}
	return result, true
}

// readAnalyzeRequest accepts either a JSON AnalyzeRequest or the raw text
func (a *App) readAnalyzeRequest(w http.ResponseWriter, r *http.Request) (AnalyzeRequest, bool) {
	// JSON escaping can inflate the body, so allow some headroom over the input limit
	body := http.MaxBytesReader(w, r.Body, 2*a.maxInputBytes+1024)
	raw, err := io.ReadAll(body)
	if err != nil {
		a.writeError(w, errors.InvalidInput("request body too large or unreadable"))
		return AnalyzeRequest{}, false
	}

	var req AnalyzeRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.Unmarshal(raw, &req); err != nil {
			a.writeError(w, errors.InvalidInput("invalid JSON body: "+err.Error()))
			return AnalyzeRequest{}, false
		}
	} else {
		req.Input = string(raw)
	}
	if req.Seed == 0 {
		req.Seed = querySeed(r)
	}
	return req, true
}

func querySeed(r *http.Request) uint64 {
	seed, err := strconv.ParseUint(r.URL.Query().Get("seed"), 10, 64)
	if err != nil {
		return 0
	}
	return seed
}

// writeError maps application error codes to HTTP statuses. Input errors
// carry their message verbatim.
func (a *App) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeValidationError:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed: %v", err)
		message = "internal server error"
	}
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  errors.GetCode(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
