// ABOUTME: HTTP handlers, one per explorer operation plus chart and health endpoints
// ABOUTME: Handlers decode, delegate to core.Explorer and map errors to status codes
package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/harper/flowscope/internal/catalog"
	"github.com/harper/flowscope/internal/render"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cat := s.explorer.Catalog()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"records":   cat.Len(),
		"dimension": cat.Dimension(),
	})
}

func (s *Server) handleCases(w http.ResponseWriter, r *http.Request) {
	var req CasesRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	ranges, err := req.Ranges()
	if err != nil {
		WriteError(w, err)
		return
	}
	cases, err := s.explorer.ListCases(r.Context(), ranges)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string][]catalog.CaseSummary{"cases": cases})
}

func (s *Server) handleCoordinates(w http.ResponseWriter, r *http.Request) {
	var req CoordinatesRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	preq, err := req.ProjectionRequest()
	if err != nil {
		WriteError(w, err)
		return
	}
	resp, err := s.explorer.ComputeProjection(r.Context(), preq)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetRecordDescription(w http.ResponseWriter, r *http.Request) {
	var req RecordDescriptionRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, err)
		return
	}
	if err := s.explorer.SetRecordDescription(r.Context(), req.FileName, *req.Description); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Description updated successfully"})
}

func (s *Server) handleSetCaseDescription(w http.ResponseWriter, r *http.Request) {
	var req CaseDescriptionRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	component, err := req.Parse()
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := s.explorer.SetCaseDescription(r.Context(), req.CaseName, component, *req.Description); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Case description updated successfully"})
}

func (s *Server) handleDescribeRecord(w http.ResponseWriter, r *http.Request) {
	var req DescribeRecordRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	component, err := req.Parse()
	if err != nil {
		WriteError(w, err)
		return
	}
	desc, err := s.explorer.DescribeRecord(r.Context(), req.SelectionID, *req.Index, component)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, desc)
}

func (s *Server) handleDescribeCase(w http.ResponseWriter, r *http.Request) {
	var req DescribeCaseRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	component, err := req.Parse()
	if err != nil {
		WriteError(w, err)
		return
	}
	desc, err := s.explorer.DescribeCase(r.Context(), req.SelectionID, req.CaseName, component, req.CaseIndices)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, desc)
}

func (s *Server) handleChartHTML(w http.ResponseWriter, r *http.Request) {
	s.writeChart(w, r, render.FormatHTML, "text/html; charset=utf-8")
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	s.writeChart(w, r, render.FormatPNG, "image/png")
}

// writeChart renders into a buffer first so render errors still produce a JSON error
func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, format render.Format, contentType string) {
	sel, err := s.explorer.Selection(r.PathValue("id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	chart := render.FromResult(sel.Title(), sel.Result, sel.SourceIDs())

	var buf bytes.Buffer
	if err := render.Write(&buf, chart, format); err != nil {
		WriteError(w, fmt.Errorf("rendering chart: %w", err))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
