// Package session holds the report currently shown to a reviewer and
// enforces last-write-wins ordering between overlapping analyze requests.
package session

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Easy-Infra-Ltd/policyrisk/src/analysis"
	"github.com/Easy-Infra-Ltd/policyrisk/src/curation"
	"github.com/Easy-Infra-Ltd/policyrisk/src/presentation"
	"github.com/Easy-Infra-Ltd/policyrisk/src/report"
)

// Analyzer submits a document for analysis. *analysis.Client implements it.
type Analyzer interface {
	Analyze(ctx context.Context, filename string, body io.Reader) (*report.AnalysisResult, error)
}

// Ticket identifies one analyze request in initiation order.
type Ticket uint64

// State is a snapshot of what is on screen.
type State struct {
	Report     *report.RiskReport
	AnalysisID string
	HasMD      bool
	// Err is the single user-visible message of the last failed request.
	Err  string
	Busy bool
	// Ticket is the request whose outcome is displayed; zero before any.
	Ticket Ticket
}

// Session is safe for concurrent use.
type Session struct {
	curator     *curation.Curator
	maxFindings int
	logger      *slog.Logger

	mu       sync.Mutex
	issued   Ticket
	inFlight int
	state    State
	// evidence caches curated quotes per finding index for the current report.
	evidence map[int][]curation.CuratedQuote
}

// New creates an empty session. maxFindings <= 0 uses the report default.
func New(curator *curation.Curator, maxFindings int, logger *slog.Logger) *Session {
	if maxFindings <= 0 {
		maxFindings = report.DefaultTopFindings
	}
	return &Session{
		curator:     curator,
		maxFindings: maxFindings,
		logger:      logger.With("area", "session"),
		evidence:    make(map[int][]curation.CuratedQuote),
	}
}

// Begin registers a new analyze request and returns its ticket. Any
// previously shown error is cleared; the previous report stays visible
// until this request completes.
func (s *Session) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	s.inFlight++
	s.state.Err = ""
	return s.issued
}

// Complete applies the outcome of the request identified by t. Outcomes of
// anything but the most recently issued ticket are discarded and Complete
// returns false.
func (s *Session) Complete(t Ticket, res *report.AnalysisResult, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight > 0 {
		s.inFlight--
	}
	if t != s.issued {
		s.logger.Debug("discarding stale analysis", "ticket", t, "latest", s.issued)
		return false
	}

	if err == nil && res == nil {
		err = report.ErrMissingRisk
	}
	if err == nil {
		err = res.Validate()
	}

	clear(s.evidence)
	if err != nil {
		s.logger.Warn("analysis failed", "ticket", t, "err", err)
		s.state = State{Err: err.Error(), Ticket: t}
		return true
	}

	s.state = State{
		Report:     res.Risk,
		AnalysisID: res.AnalysisID,
		HasMD:      res.HasMD,
		Ticket:     t,
	}
	s.logger.Info("report loaded", "ticket", t, "analysis_id", res.AnalysisID)
	return true
}

// Analyze runs one request through a and applies its outcome. It returns
// whether the outcome was applied and the request's own error.
func (s *Session) Analyze(ctx context.Context, a Analyzer, filename string, body io.Reader) (bool, error) {
	t := s.Begin()
	res, err := a.Analyze(ctx, filename, body)
	return s.Complete(t, res, err), err
}

// Load shows a report that did not come from an analyze request, such as a
// saved JSON document. analysisID may be empty, in which case nothing is
// downloadable. Requests still in flight are invalidated.
func (s *Session) Load(rep *report.RiskReport, analysisID string, hasMD bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	clear(s.evidence)
	s.state = State{Report: rep, AnalysisID: analysisID, HasMD: hasMD, Ticket: s.issued}
}

// Reset clears the displayed state. Requests still in flight are
// invalidated.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	clear(s.evidence)
	s.state = State{}
}

// Snapshot returns the current state. The report is shared and must be
// treated as read-only.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Busy = s.inFlight > 0
	return st
}

// Evidence returns the curated quotes of the finding at index (0-based,
// within the displayed top findings). ok is false when there is no report
// or the index is out of range.
func (s *Session) Evidence(index int) ([]curation.CuratedQuote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	top := s.state.Report.Top(s.maxFindings)
	if index < 0 || index >= len(top) {
		return nil, false
	}
	if cached, ok := s.evidence[index]; ok {
		return cached, true
	}
	quotes := s.curator.Curate(top[index].EvidenceQuotes)
	s.evidence[index] = quotes
	return quotes, true
}

// Finding returns the view of one displayed finding.
func (s *Session) Finding(index int) (presentation.FindingView, bool) {
	s.mu.Lock()
	top := s.state.Report.Top(s.maxFindings)
	s.mu.Unlock()

	if index < 0 || index >= len(top) {
		return presentation.FindingView{}, false
	}
	return presentation.NewFindingView(index+1, top[index], s.curator), true
}

// View builds the full view model of the displayed report.
func (s *Session) View(cat *presentation.Catalog) (presentation.View, bool) {
	st := s.Snapshot()
	if st.Report == nil {
		return presentation.View{}, false
	}
	v := presentation.BuildView(st.Report, s.curator, presentation.Options{
		MaxFindings: s.maxFindings,
		Catalog:     cat,
	})
	v.AnalysisID = st.AnalysisID
	v.HasMD = st.HasMD
	return v, true
}

// CanDownload reports whether a document of the given kind is available:
// JSON needs an analysis_id, Markdown additionally needs has_md.
func (s *Session) CanDownload(kind analysis.DownloadKind) bool {
	st := s.Snapshot()
	if st.AnalysisID == "" {
		return false
	}
	switch kind {
	case analysis.DownloadJSON:
		return true
	case analysis.DownloadMarkdown:
		return st.HasMD
	default:
		return false
	}
}
