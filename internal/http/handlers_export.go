package http

import (
	"fmt"
	"log/slog"
	"net/http"
)

const (
	excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType   = "application/pdf"
)

func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	f, errs := ParseFilter(r.URL.Query())
	if !errs.empty() {
		writeValidationError(w, errs)
		return
	}

	data, filename, err := s.transactions.ExportExcel(r.Context(), UserID(r.Context()), f)
	if err != nil {
		slog.ErrorContext(r.Context(), "Excel export failed", "error", err)
		writeInternalError(w)
		return
	}
	writeAttachment(w, excelContentType, filename, data)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	f, errs := ParseFilter(r.URL.Query())
	if !errs.empty() {
		writeValidationError(w, errs)
		return
	}

	data, filename, err := s.transactions.ExportPDF(r.Context(), UserID(r.Context()), f)
	if err != nil {
		slog.ErrorContext(r.Context(), "PDF export failed", "error", err)
		writeInternalError(w)
		return
	}
	writeAttachment(w, pdfContentType, filename, data)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
