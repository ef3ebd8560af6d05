// Package httpx serves the queue monitor's JSON API.
package httpx

import (
	"net/http"
	"time"

	"github.com/target/mmk-queue-monitor/internal/domain/filter"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/observability/metrics"
	"github.com/target/mmk-queue-monitor/internal/service"
	"github.com/target/mmk-queue-monitor/internal/validation"
)

// JobHandlers provides HTTP handlers for job history searches.
type JobHandlers struct {
	Svc *service.JobSearchService
	// Location interprets the pushed date range. Nil means time.Local.
	Location *time.Location
	Metrics  *metrics.Recorder
}

type jobSearchResponse struct {
	*model.PushPage
	Errors validation.Errors `json:"errors,omitempty"`
}

type groupResponse struct {
	Items  []model.NamedCount `json:"items"`
	Errors validation.Errors  `json:"errors,omitempty"`
}

// parseFilter reads the filter fields. Field errors are returned for display;
// the filter itself already fails closed on them.
func (h *JobHandlers) parseFilter(r *http.Request) (*filter.JobFilter, validation.Errors) {
	f := filter.FromValues(r.URL.Query(), filter.WithLocation(h.Location))
	errs := f.Validate()
	if len(errs) == 0 {
		return f, nil
	}
	return f, errs
}

// Search handles GET /api/jobs.
func (h *JobHandlers) Search(w http.ResponseWriter, r *http.Request) {
	limit, offset, pageErrs := ParsePage(r, model.MaxPushPageSize)
	if pageErrs != nil {
		WriteValidation(w, pageErrs)
		return
	}
	f, errs := h.parseFilter(r)

	page, err := h.Svc.Search(r.Context(), f, model.PushListOptions{Limit: limit, Offset: offset})
	h.Metrics.Operation("search_jobs", err)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, jobSearchResponse{PushPage: page, Errors: errs})
}

// Classes handles GET /api/jobs/classes.
func (h *JobHandlers) Classes(w http.ResponseWriter, r *http.Request) {
	f, errs := h.parseFilter(r)
	items, err := h.Svc.SearchClasses(r.Context(), f)
	h.writeGroups(w, r, groupResponse{Items: items, Errors: errs}, err)
}

// Senders handles GET /api/jobs/senders.
func (h *JobHandlers) Senders(w http.ResponseWriter, r *http.Request) {
	f, errs := h.parseFilter(r)
	items, err := h.Svc.SearchSenders(r.Context(), f)
	h.writeGroups(w, r, groupResponse{Items: items, Errors: errs}, err)
}

func (h *JobHandlers) writeGroups(w http.ResponseWriter, r *http.Request, resp groupResponse, err error) {
	h.Metrics.Operation("group_jobs", err)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if resp.Items == nil {
		resp.Items = []model.NamedCount{}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// FilterOptions handles GET /api/jobs/filter.
func (h *JobHandlers) FilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.Svc.FilterOptions(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, opts)
}

// Get handles GET /api/jobs/{id}.
func (h *JobHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: err})
		return
	}
	details, err := h.Svc.GetJob(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, details)
}

// Stop handles POST /api/jobs/{id}/stop.
func (h *JobHandlers) Stop(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: err})
		return
	}
	err = h.Svc.StopJob(r.Context(), id)
	h.Metrics.Operation("stop_job", err)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
