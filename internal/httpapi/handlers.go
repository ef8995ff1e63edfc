package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/MimeLyc/artwork-curator/internal/config"
	"github.com/MimeLyc/artwork-curator/internal/jobs"
	"github.com/MimeLyc/artwork-curator/internal/media"
)

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	_, sources, err := s.curator.ListItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

type itemResponse struct {
	media.Item
	InProgress bool        `json:"in_progress"`
	JobStatus  jobs.Status `json:"job_status,omitempty"`
	JobSource  string      `json:"job_source,omitempty"`
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	items, _, err := s.curator.ListItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	activeJobs := inProgressJobsByItem(s.queue.List())
	ret := make([]itemResponse, 0, len(items))
	for _, item := range items {
		resp := itemResponse{Item: item}
		if job, ok := activeJobs[item.Path]; ok {
			resp.InProgress = true
			resp.JobStatus = job.Status
			resp.JobSource = job.Source
		}
		ret = append(ret, resp)
	}
	writeJSON(w, http.StatusOK, ret)
}

func inProgressJobsByItem(jobList []*jobs.ArtworkJob) map[string]*jobs.ArtworkJob {
	ret := make(map[string]*jobs.ArtworkJob)
	for _, job := range jobList {
		if job == nil || job.Payload.ItemPath == "" {
			continue
		}
		if job.Status != jobs.StatusPending && job.Status != jobs.StatusRunning {
			continue
		}
		existing, ok := ret[job.Payload.ItemPath]
		if !ok || preferInProgressJob(job, existing) {
			ret[job.Payload.ItemPath] = job
		}
	}
	return ret
}

func preferInProgressJob(next, current *jobs.ArtworkJob) bool {
	nextRank := inProgressRank(next.Status)
	currentRank := inProgressRank(current.Status)
	if nextRank != currentRank {
		return nextRank > currentRank
	}
	return next.UpdatedAt.After(current.UpdatedAt)
}

func inProgressRank(status jobs.Status) int {
	switch status {
	case jobs.StatusRunning:
		return 2
	case jobs.StatusPending:
		return 1
	default:
		return 0
	}
}

type enqueueJobRequest struct {
	Source   string `json:"source"`
	ItemPath string `json:"item_path"`
	NFOPath  string `json:"nfo_path"`
	Force    bool   `json:"force"`
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.queue.List())
	case http.MethodPost:
		var req enqueueJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if req.Source == "" {
			req.Source = "manual"
		}
		if req.ItemPath == "" {
			writeError(w, http.StatusBadRequest, "item_path is required")
			return
		}

		job, created := s.queue.Enqueue(jobs.EnqueueRequest{
			Source:    req.Source,
			DedupeKey: "refresh:" + req.ItemPath,
			Payload: jobs.JobPayload{
				ItemPath: req.ItemPath,
				NFOPath:  req.NFOPath,
				Force:    req.Force,
			},
		})
		code := http.StatusCreated
		if !created {
			code = http.StatusOK
		}
		writeJSON(w, code, map[string]any{
			"created": created,
			"job":     job,
		})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type refreshRequest struct {
	Source string `json:"source"`
	Force  bool   `json:"force"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req := refreshRequest{Source: "manual"}
	if r.Body != nil {
		// An empty body means a default full refresh.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Source == "" {
		req.Source = "manual"
	}

	queued, err := s.curator.RefreshLibrary(r.Context(), req.Source, req.Force)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"queued": queued,
	})
}

type selectRequest struct {
	Item       media.Item        `json:"item"`
	Candidates []media.Image     `json:"candidates"`
	Types      []media.ImageType `json:"types"`
}

// handleSelect runs the selection engine over caller-supplied
// candidates. Nothing is downloaded or persisted.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if len(req.Types) == 0 {
		req.Types = media.ImageTypes()
	}

	selected := s.curator.Select(req.Item, req.Candidates, req.Types)
	writeJSON(w, http.StatusOK, map[string]any{
		"selected": selected,
	})
}

func (s *Server) handleSelections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	itemPath := r.URL.Query().Get("item")
	if itemPath == "" {
		writeError(w, http.StatusBadRequest, "item query parameter is required")
		return
	}

	records, err := s.curator.Selections(r.Context(), itemPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.curator.InvalidateLibrary()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"ok": true,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status, err := s.curator.Status()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotImplemented, "settings store is not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		settings, err := s.settings.GetRuntimeSettings()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var req config.RuntimeSettings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		saved, err := s.settings.UpdateRuntimeSettings(req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if s.apply != nil {
			if err := s.apply(saved); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
