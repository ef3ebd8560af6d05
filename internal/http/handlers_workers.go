package httpx

import (
	"net/http"

	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/observability/metrics"
	"github.com/target/mmk-queue-monitor/internal/service"
)

// WorkerHandlers provides HTTP handlers for queue workers.
type WorkerHandlers struct {
	Svc     *service.WorkerService
	Metrics *metrics.Recorder
}

type workerListResponse struct {
	Items  []*service.WorkerView `json:"items"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// List handles GET /api/workers.
func (h *WorkerHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, errs := ParsePage(r, model.MaxWorkerPageSize)
	if errs != nil {
		WriteValidation(w, errs)
		return
	}
	opts := model.WorkerListOptions{
		Sender:     r.URL.Query().Get("sender"),
		ActiveOnly: parseBoolQuery(r, "active", false),
		Limit:      limit,
		Offset:     offset,
	}.Normalize()

	workers, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	resp := workerListResponse{Items: make([]*service.WorkerView, 0, len(workers)), Limit: opts.Limit, Offset: opts.Offset}
	for _, wk := range workers {
		view, err := wk.View(r.Context())
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		resp.Items = append(resp.Items, view)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/workers/{id}.
func (h *WorkerHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: err})
		return
	}
	wk, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	h.writeView(w, r, wk)
}

// Stop handles POST /api/workers/{id}/stop.
func (h *WorkerHandlers) Stop(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: err})
		return
	}
	wk, err := h.Svc.Stop(r.Context(), id)
	h.Metrics.Operation("stop_worker", err)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	h.writeView(w, r, wk)
}

func (h *WorkerHandlers) writeView(w http.ResponseWriter, r *http.Request, wk *service.Worker) {
	view, err := wk.View(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}
