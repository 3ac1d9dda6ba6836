package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/costcalc/internal/export"
	"github.com/Simplici0/costcalc/internal/pricing"
	"github.com/Simplici0/costcalc/internal/store"
)

type server struct {
	store *store.Store
}

type workspaceResponse struct {
	Workspace pricing.Workspace `json:"workspace"`
	Result    pricing.Result    `json:"result"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/workspace", s.handleWorkspace)
		r.Post("/reset", s.handleReset)

		r.Post("/services", s.handleAddService)
		r.Patch("/services/{id}", s.handleUpdateService)
		r.Put("/services/{id}/costs/{scenarioID}", s.handleSetCost)
		r.Delete("/services/{id}", s.handleRemoveService)

		r.Post("/scenarios", s.handleAddScenario)
		r.Delete("/scenarios/{id}", s.handleRemoveScenario)

		r.Patch("/media/{id}", s.handleUpdateMedia)
		r.Put("/params", s.handleUpdateParams)

		r.Get("/export.xlsx", s.handleExport(export.FormatXLSX))
		r.Get("/export.csv", s.handleExport(export.FormatCSV))
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) writeWorkspace(w http.ResponseWriter, r *http.Request, status int) {
	ws, err := s.store.Snapshot(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, status, workspaceResponse{Workspace: ws, Result: ws.Compute()})
}

func (s *server) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	s.writeWorkspace(w, r, http.StatusOK)
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reset(r.Context()); err != nil {
		writeStoreError(w, r, err)
		return
	}
	slog.Info("workspace reset")
	s.writeWorkspace(w, r, http.StatusOK)
}

func (s *server) handleAddService(w http.ResponseWriter, r *http.Request) {
	var req addServiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidKind)
		return
	}

	if _, err := s.store.AddService(r.Context(), req.Name, pricing.Kind(req.Kind)); err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.writeWorkspace(w, r, http.StatusCreated)
}

func (s *server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateServiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			name = store.DefaultServiceName
		}
		if err := s.store.RenameService(r.Context(), id, name); err != nil {
			writeStoreError(w, r, err)
			return
		}
	}
	if req.Kind != nil {
		if err := s.store.SetServiceKind(r.Context(), id, pricing.Kind(*req.Kind)); err != nil {
			writeStoreError(w, r, err)
			return
		}
	}
	s.writeWorkspace(w, r, http.StatusOK)
}

func (s *server) handleSetCost(w http.ResponseWriter, r *http.Request) {
	var req setCostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.store.SetServiceCost(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "scenarioID"), float64(req.Cost))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.writeWorkspace(w, r, http.StatusOK)
}

func (s *server) handleRemoveService(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveService(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.writeWorkspace(w, r, http.StatusOK)
}

func (s *server) handleAddScenario(w http.ResponseWriter, r *http.Request) {
	var req addScenarioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidScenario)
		return
	}
	if userCount := float64(req.UserCount); userCount != math.Trunc(userCount) || userCount > math.MaxInt32 {
		writeError(w, http.StatusBadRequest, msgInvalidScenario)
		return
	}

	scenario, err := s.store.AddScenario(r.Context(), store.NewScenario{
		Name:      req.Name,
		UserCount: int(req.UserCount),
		Color:     req.Color,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	slog.Info("scenario added", "scenario_id", scenario.ID, "user_count", scenario.UserCount)
	s.writeWorkspace(w, r, http.StatusCreated)
}

func (s *server) handleRemoveScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.RemoveScenario(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	slog.Info("scenario removed", "scenario_id", id)
	s.writeWorkspace(w, r, http.StatusOK)
}

func (s *server) handleUpdateMedia(w http.ResponseWriter, r *http.Request) {
	var req updateMediaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	patch := store.MediaPatch{
		TypeLabel:                   trimmed(req.TypeLabel),
		MaxUnitsPerCustomerPerMonth: req.MaxUnitsPerCustomerPerMonth.ptr(),
		Duration:                    trimmed(req.Duration),
		UnitSizeGB:                  req.UnitSizeGB.ptr(),
	}
	if _, err := s.store.PatchMedia(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.writeWorkspace(w, r, http.StatusOK)
}

func (s *server) handleUpdateParams(w http.ResponseWriter, r *http.Request) {
	var req paramsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := store.ParamsPatch{
		ActiveUserPercent:      req.ActiveUserPercent.ptr(),
		MonthlyMintUpdateCount: req.MonthlyMintUpdateCount.ptr(),
		CertifiedUserPercent:   req.CertifiedUserPercent.ptr(),
	}
	if req.IdentityFormula != nil {
		formula := pricing.IdentityFormula(*req.IdentityFormula)
		patch.IdentityFormula = &formula
	}
	if _, err := s.store.PatchParams(r.Context(), patch); err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.writeWorkspace(w, r, http.StatusOK)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func (s *server) handleExport(format export.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := s.store.Snapshot(r.Context())
		if err != nil {
			writeStoreError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := export.Write(&buf, format, ws.Compute()); err != nil {
			writeStoreError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
		if _, err := w.Write(buf.Bytes()); err != nil {
			slog.Warn("failed to write export", "format", format, "error", err)
		}
	}
}
