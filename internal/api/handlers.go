package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"yashubustudio/boqmatch/boqio"
	"yashubustudio/boqmatch/classify"
	"yashubustudio/boqmatch/geometry"
	"yashubustudio/boqmatch/layers"
	"yashubustudio/boqmatch/reconcile"
)

type reconcileRequest struct {
	Drawing boqio.Drawing    `json:"drawing"`
	Items   []boqio.LineItem `json:"items"`
}

type profilesResponse struct {
	Source        string             `json:"source,omitempty"`
	UnitScale     geometry.UnitScale `json:"unit_scale"`
	ScaleSource   boqio.ScaleSource  `json:"scale_source"`
	Stats         geometry.Stats     `json:"stats"`
	Profiles      []layers.Snapshot  `json:"profiles"`
	BlockProfiles []layers.Snapshot  `json:"block_profiles,omitempty"`
	Warnings      []geometry.Warning `json:"warnings,omitempty"`
}

type classifyRequest struct {
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Section     string `json:"section"`
}

type classifyResponse struct {
	Intent     classify.Intent           `json:"intent"`
	Subtype    classify.Subtype          `json:"subtype"`
	Discipline classify.DisciplineResult `json:"discipline"`
}

// handleReconcile runs the pipeline on a posted drawing and item list. The
// report is JSON unless ?format=csv is given.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if !s.decode(w, r, &req) {
		return
	}
	for i := range req.Items {
		if req.Items[i].RowIndex == 0 {
			req.Items[i].RowIndex = i + 1
		}
	}

	rep, err := s.svc.Run(r.Context(), req.Drawing.Drawing, req.Items)
	if err != nil {
		if errors.Is(err, reconcile.ErrNoItems) {
			jsonError(w, "items are required", http.StatusBadRequest)
			return
		}
		s.log.Warn("reconcile failed", zap.Error(err))
		jsonError(w, "reconcile failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		if err := reconcile.WriteCSV(w, rep); err != nil {
			s.log.Warn("write csv", zap.Error(err))
		}
		return
	}
	writeJSON(w, rep)
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	var d boqio.Drawing
	if !s.decode(w, r, &d) {
		return
	}
	prof := s.svc.Profile(d.Drawing)
	writeJSON(w, profilesResponse{
		Source:        prof.Source,
		UnitScale:     prof.Scale,
		ScaleSource:   prof.ScaleSource,
		Stats:         prof.Resolved.Stats,
		Profiles:      layers.Snapshots(prof.Layers.Layers()),
		BlockProfiles: layers.Snapshots(prof.Layers.Blocks()),
		Warnings:      prof.Resolved.Warnings,
	})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Description == "" && req.Unit == "" {
		jsonError(w, "description or unit is required", http.StatusBadRequest)
		return
	}
	cls := s.svc.Classifier()
	intent := cls.Intent(req.Unit, req.Description)
	writeJSON(w, classifyResponse{
		Intent:     intent,
		Subtype:    cls.Subtype(intent.Kind, req.Description),
		Discipline: cls.Discipline(req.Section, req.Description, nil),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
