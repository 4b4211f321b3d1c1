package viewer

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/encoding/json"

	"github.com/Easy-Infra-Ltd/policyrisk/src/analysis"
	"github.com/Easy-Infra-Ltd/policyrisk/src/curation"
	"github.com/Easy-Infra-Ltd/policyrisk/src/presentation"
)

type errorResponse struct {
	Error string `json:"error"`
}

type stateResponse struct {
	Busy       bool   `json:"busy"`
	Error      string `json:"error,omitempty"`
	AnalysisID string `json:"analysis_id,omitempty"`
	HasMD      bool   `json:"has_md"`
	HasReport  bool   `json:"has_report"`
	CanJSON    bool   `json:"can_download_json"`
	CanMD      bool   `json:"can_download_md"`
}

type analyzeResponse struct {
	Applied bool               `json:"applied"`
	Report  *presentation.View `json:"report,omitempty"`
}

type evidenceResponse struct {
	Rank                 int                     `json:"rank"`
	Evidence             []curation.CuratedQuote `json:"evidence"`
	InsufficientEvidence bool                    `json:"insufficient_evidence"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := s.backend.Health(r.Context()); err != nil {
		s.logger.Warn("analysis service unhealthy", "error", err)
		status = "unreachable"
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "analysis_service": status})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	st := s.session.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{
		Busy:       st.Busy,
		Error:      st.Err,
		AnalysisID: st.AnalysisID,
		HasMD:      st.HasMD,
		HasReport:  st.Report != nil,
		CanJSON:    s.session.CanDownload(analysis.DownloadJSON),
		CanMD:      s.session.CanDownload(analysis.DownloadMarkdown),
	})
}

// POST /api/analyze
// Body: multipart form with a "file" part holding the PDF.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("file is required: %w", err))
		return
	}
	defer file.Close()

	applied, err := s.session.Analyze(r.Context(), s.backend, header.Filename, file)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	if !applied {
		writeJSON(w, http.StatusAccepted, analyzeResponse{Applied: false})
		return
	}

	v, ok := s.session.View(s.catalog)
	if !ok {
		st := s.session.Snapshot()
		writeError(w, http.StatusBadGateway, errors.New(st.Err))
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Applied: true, Report: &v})
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	v, ok := s.session.View(s.catalog)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no report loaded"))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleReportMarkdown(w http.ResponseWriter, _ *http.Request) {
	v, ok := s.session.View(s.catalog)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no report loaded"))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if err := presentation.RenderMarkdown(w, v, s.catalog); err != nil {
		s.logger.Error("rendering markdown", "error", err)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.session.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/findings/{index}/evidence
// index is the 1-based rank shown in the report.
func (s *Server) handleEvidence(w http.ResponseWriter, r *http.Request) {
	rank, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid finding index %q", chi.URLParam(r, "index")))
		return
	}

	quotes, ok := s.session.Evidence(rank - 1)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no finding with rank %d", rank))
		return
	}
	writeJSON(w, http.StatusOK, evidenceResponse{
		Rank:                 rank,
		Evidence:             quotes,
		InsufficientEvidence: len(quotes) == 0,
	})
}

// GET /api/download/{kind}
// Streams the document of the current analysis from the analysis service.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	kind, err := analysis.ParseDownloadKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.session.CanDownload(kind) {
		writeError(w, http.StatusConflict, fmt.Errorf("%s document is not available for the current analysis", kind))
		return
	}

	id := s.session.Snapshot().AnalysisID
	dw := &deferredWriter{
		w:           w,
		contentType: contentType(kind),
		filename:    analysis.DownloadFilename(kind, id),
	}
	if _, err := s.backend.Download(r.Context(), kind, id, dw); err != nil {
		if !dw.started {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		s.logger.Error("download interrupted", "kind", kind, "analysis_id", id, "error", err)
		return
	}
	if !dw.started {
		dw.start()
	}
}

// deferredWriter holds back the download headers until the first byte
// arrives, so a failure before any content can still become an error
// response.
type deferredWriter struct {
	w           http.ResponseWriter
	contentType string
	filename    string
	started     bool
}

func (d *deferredWriter) start() {
	d.started = true
	d.w.Header().Set("Content-Type", d.contentType)
	d.w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, d.filename))
	d.w.WriteHeader(http.StatusOK)
}

func (d *deferredWriter) Write(p []byte) (int, error) {
	if !d.started {
		d.start()
	}
	return d.w.Write(p)
}

func contentType(kind analysis.DownloadKind) string {
	if kind == analysis.DownloadMarkdown {
		return "text/markdown; charset=utf-8"
	}
	return "application/json"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
