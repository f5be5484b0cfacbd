package ui

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gobanner/adapters/excel"
	"gobanner/app"
	"gobanner/domain/banner"
	"gobanner/domain/core"
	"gobanner/domain/decision"
	"gobanner/domain/run"
	"gobanner/domain/survey"
	"gobanner/internal/config"
	"gobanner/internal/errors"
	"gobanner/ports"
)

// startRequest is the JSON body of POST /api/runs
type startRequest struct {
	Dataset   survey.Document `json:"dataset"`
	Banner    banner.Spec     `json:"banner"`
	Decisions decision.Record `json:"decisions"`
}

// decisionRequest answers a pending decision either by option ids or with a full record.
// An empty request accepts the recommended options.
type decisionRequest struct {
	Options []string         `json:"options,omitempty"`
	Record  *decision.Record `json:"record,omitempty"`
}

// runResponse is a pipeline result with its ledger status
type runResponse struct {
	Status run.Status `json:"status"`
	*app.Result
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	if err := s.runSem.Acquire(r.Context(), 1); err != nil {
		writeError(w, err)
		return
	}
	defer s.runSem.Release(1)

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	var (
		req app.Request
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		req, err = s.readUpload(r)
	} else {
		req, err = readJSONRun(r)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runs.Start(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRunResponse(res))
}

// readJSONRun decodes a JSON run request. A partial banner object is decoded
// over the banner defaults.
func readJSONRun(r *http.Request) (app.Request, error) {
	body := startRequest{Banner: banner.NewSpec()}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return app.Request{}, errors.InvalidInput(fmt.Sprintf("invalid request body: %v", err))
	}
	ds, err := body.Dataset.Dataset()
	if err != nil {
		return app.Request{}, err
	}
	return app.Request{Dataset: ds, Banner: body.Banner, Decisions: body.Decisions}, nil
}

// readUpload reads a multipart upload: a "data" file, an optional "labels" CSV,
// and either a "plan" YAML field or a comma separated "banners" field. A plan
// brings its own recoding rules and requested rows.
func (s *Server) readUpload(r *http.Request) (app.Request, error) {
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		return app.Request{}, errors.InvalidInput(fmt.Sprintf("invalid upload: %v", err))
	}

	data, header, err := r.FormFile("data")
	if err != nil {
		return app.Request{}, errors.InvalidInput("upload has no data file")
	}
	defer data.Close()

	reader, closeLabels, err := readerFor(r, header)
	if err != nil {
		return app.Request{}, err
	}
	defer closeLabels()

	ds, err := reader.Read(r.Context(), data)
	if err != nil {
		return app.Request{}, err
	}
	s.logger.Info("[Server] Read %s upload %s (%d respondents)", reader.Format(), header.Filename, ds.RowCount())

	req := app.Request{Dataset: ds, Banner: banner.NewSpec()}
	if raw := r.FormValue("plan"); raw != "" {
		plan, err := config.ParsePlan([]byte(raw))
		if err != nil {
			return app.Request{}, err
		}
		req.Banner = plan.Banner
		req.Decisions = plan.Decisions
		req.Recoding = &plan.Recoding
		req.RequestedRows = plan.Rows.Requested
	} else if banners := r.FormValue("banners"); banners != "" {
		for _, name := range strings.Split(banners, ",") {
			if name = strings.TrimSpace(name); name != "" {
				req.Banner.Variables = append(req.Banner.Variables, name)
			}
		}
	}
	return req, nil
}

func readerFor(r *http.Request, header *multipart.FileHeader) (ports.DatasetReader, func(), error) {
	noop := func() {}
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		reader := &excel.CSVReader{}
		labels, _, err := r.FormFile("labels")
		if err == nil {
			reader.Labels = labels
			return reader, func() { labels.Close() }, nil
		}
		return reader, noop, nil
	case ".json":
		return &excel.JSONReader{}, noop, nil
	case ".xlsx", ".xlsm":
		return excel.NewWorkbookReader(excel.DefaultReaderConfig(), nil), noop, nil
	}
	return nil, noop, errors.InvalidInput(fmt.Sprintf("unsupported file type %q", filepath.Ext(header.Filename)))
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	var filters ports.RunFilters
	q := r.URL.Query()
	if status := q.Get("status"); status != "" {
		st := run.Status(status)
		filters.Status = &st
	}
	filters.Limit = queryInt(q.Get("limit"), 50)
	filters.Offset = queryInt(q.Get("offset"), 0)

	runs, err := s.runs.List(r.Context(), filters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs, "count": len(runs)})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	entry, err := s.runs.Get(r.Context(), runID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	id := runID(r)
	res, ok := s.runs.Result(id)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", core.ErrRunNotFound, id))
		return
	}
	if !res.Suspended() {
		writeError(w, errors.ValidationError(fmt.Sprintf("run %s has no pending decision", id)))
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, errors.InvalidInput(fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	var answer decision.Record
	if req.Record != nil {
		answer = *req.Record
	} else {
		var err error
		if answer, err = app.Answer(res.Pending, req.Options...); err != nil {
			writeError(w, errors.WithCode(errors.CodeInvalidInput, err))
			return
		}
	}

	next, err := s.runs.Resume(r.Context(), id, answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRunResponse(next))
}

func (s *Server) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	res, ok := s.completed(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "banner-"+string(res.RunID)+".xlsx"))
	if err := s.exporter.Export(w, *res.Table, *res.Verification); err != nil {
		s.logger.Error("[Server] Workbook export for %s failed: %v", res.RunID, err)
	}
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	id := runID(r)
	res, ok := s.runs.Result(id)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", core.ErrRunNotFound, id))
		return
	}
	if res.Audit == nil {
		writeError(w, fmt.Errorf("%w: run %s has not reached the audit stage", core.ErrDecisionRequired, id))
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, res.Audit.Markdown())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(res.Audit.HTML())
}

func (s *Server) handleVerification(w http.ResponseWriter, r *http.Request) {
	res, ok := s.completed(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, res.Verification)
		return
	}
	data, err := res.Verification.YAML()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(data)
}

// completed returns the in-process result of a finished run or writes the error
func (s *Server) completed(w http.ResponseWriter, r *http.Request) (*app.Result, bool) {
	id := runID(r)
	res, ok := s.runs.Result(id)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", core.ErrRunNotFound, id))
		return nil, false
	}
	if res.Table == nil || res.Verification == nil {
		writeError(w, fmt.Errorf("%w: run %s is not complete", core.ErrDecisionRequired, id))
		return nil, false
	}
	return res, true
}

func newRunResponse(res *app.Result) runResponse {
	status := run.StatusCompleted
	if res.Suspended() {
		status = run.StatusSuspended
	}
	return runResponse{Status: status, Result: res}
}

func runID(r *http.Request) core.RunID {
	return core.RunID(chi.URLParam(r, "id"))
}

func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps domain and application errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	case core.IsDecisionRequired(err):
		return http.StatusConflict
	case core.IsFatalInputError(err):
		return http.StatusUnprocessableEntity
	case stderrors.Is(err, core.ErrInvalidDecision):
		return http.StatusBadRequest
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeFatalInput:
		return http.StatusUnprocessableEntity
	case errors.CodeInvalidInput, errors.CodeValidationError, errors.CodeConfigInvalid:
		return http.StatusBadRequest
	case errors.CodeDecisionRequired:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
