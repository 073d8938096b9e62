package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/internal/aggregator"
	"github.com/trungle/activity-dashboard/internal/model"
	"github.com/trungle/activity-dashboard/internal/registrar"
	"github.com/trungle/activity-dashboard/pkg/log"
)

const dateLayout = "2006-01-02"

// Registrar is the slice of the registrar the handler needs.
type Registrar interface {
	Register(ctx context.Context, name string) (*registrar.Result, error)
}

// RepoLister is the slice of the data store the handler reads directly.
type RepoLister interface {
	ListRepos(ctx context.Context) ([]model.Repo, error)
}

// Handler manages the dashboard API requests
type Handler struct {
	Logger     log.Logger
	Config     *cfg.Config
	Store      RepoLister
	Aggregator *aggregator.Aggregator
	Registrar  Registrar
}

// NewHandler creates a new dashboard API handler
func NewHandler(logger log.Logger, config *cfg.Config, st RepoLister, agg *aggregator.Aggregator, reg Registrar) (*Handler, error) {
	return &Handler{
		Logger:     logger,
		Config:     config,
		Store:      st,
		Aggregator: agg,
		Registrar:  reg,
	}, nil
}

// RegisterRoutes sets up the HTTP routes for the dashboard API
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/addRepo", h.addRepo)
	mux.HandleFunc("/api/activity", h.getActivity)
	mux.HandleFunc("/api/repos", h.getRepos)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error(context.Background(), "Failed to encode JSON response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// addRepo registers a new repository to track. Error mapping: 400 for a
// missing or malformed name, 404 when GitHub does not know the
// repository, 500 when the ingestion step fails (its captured output is
// the error text).
func (h *Handler) addRepo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		RepoName string `json:"repoName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.RepoName == "" {
		h.writeError(w, http.StatusBadRequest, "repoName is required")
		return
	}

	result, err := h.Registrar.Register(r.Context(), body.RepoName)
	if err != nil {
		var validationErr *registrar.ValidationError
		var notFoundErr *registrar.NotFoundError
		switch {
		case errors.As(err, &validationErr):
			h.writeError(w, http.StatusBadRequest, validationErr.Error())
		case errors.As(err, &notFoundErr):
			h.writeError(w, http.StatusNotFound, notFoundErr.Error())
		default:
			h.Logger.Error(r.Context(), "Registration of %s failed: %v", body.RepoName, err)
			h.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// getActivity runs one aggregation cycle for the requested filters and
// returns the merged feed.
func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.Aggregator.Refresh(r.Context(), filter)
	if err != nil {
		h.Logger.Error(r.Context(), "Aggregation failed: %v", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []aggregator.ActivityRecord{}
	}

	h.writeJSON(w, http.StatusOK, records)
}

// getRepos returns the repository registry
func (h *Handler) getRepos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	repos, err := h.Store.ListRepos(r.Context())
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch repositories: %v", err)
		h.writeError(w, http.StatusInternalServerError, "failed to fetch repositories")
		return
	}

	type repository struct {
		ID        uint   `json:"id"`
		Name      string `json:"name"`
		CreatedAt string `json:"createdAt"`
	}
	out := make([]repository, 0, len(repos))
	for _, repo := range repos {
		out = append(out, repository{
			ID:        repo.ID,
			Name:      repo.Name,
			CreatedAt: repo.CreatedAt.Format(dateLayout),
		})
	}

	h.writeJSON(w, http.StatusOK, out)
}

// parseFilter builds the aggregation filter from query parameters:
// repos (comma separated, "all" or empty selects everything), range,
// start/end (YYYY-MM-DD, required together for range=custom), author
// (exact) and authors (comma separated).
func parseFilter(r *http.Request) (aggregator.Filter, error) {
	f := aggregator.Filter{Active: true}

	reposParam := strings.TrimSpace(r.URL.Query().Get("repos"))
	if reposParam == "" || reposParam == "all" {
		f.Scope = aggregator.ScopeAll()
	} else {
		f.Scope = aggregator.ScopeSet(splitCSV(reposParam)...)
	}

	f.Range = aggregator.ParseDateRange(r.URL.Query().Get("range"))
	if f.Range == aggregator.RangeCustom {
		start, err := parseDate(r.URL.Query().Get("start"))
		if err != nil {
			return f, errors.New("custom range requires a valid start date (YYYY-MM-DD)")
		}
		end, err := parseDate(r.URL.Query().Get("end"))
		if err != nil {
			return f, errors.New("custom range requires a valid end date (YYYY-MM-DD)")
		}
		f.Start = start
		f.End = end
	}

	f.Author = strings.TrimSpace(r.URL.Query().Get("author"))
	if authorsParam := strings.TrimSpace(r.URL.Query().Get("authors")); authorsParam != "" {
		f.Authors = splitCSV(authorsParam)
	}

	return f, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, errors.New("missing date")
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
