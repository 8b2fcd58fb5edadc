package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Warn("failed to write response", "err", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	httpErr := toHttpError(err)
	if httpErr.Status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", httpErr.Status, "err", err)
	}
	writeJSON(w, httpErr.Status, errorBody{Error: httpErr.Message})
}

// Handler serves the JSON api:
//   - GET /api/subjects?department=&year=
//   - GET /api/departments
func (s Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/subjects", s.handleSubjects)
	mux.HandleFunc("GET /api/departments", s.handleDepartments)
	return mux
}

func (s Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	payload, err := s.Subjects(r.Context(), query.Get("department"), query.Get("year"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s Server) handleDepartments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Departments)
}
