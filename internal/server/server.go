package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/rentcheck/internal/calculator"
	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/internal/listing"
	"github.com/iwvelando/rentcheck/internal/navigation"
	"github.com/iwvelando/rentcheck/internal/report"
	"github.com/iwvelando/rentcheck/pkg/constants"
	"github.com/iwvelando/rentcheck/pkg/datetime"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Options tunes the handler. Zero values select the defaults.
type Options struct {
	MaxUploadSize int64
	Version       string
	CacheTTL      time.Duration
	// Clock supplies the reference time when a request has no today parameter.
	Clock func() time.Time
	// Today pins the reference date for every request without a today parameter.
	Today *datetime.Date
}

type handler struct {
	logger        *zap.Logger
	ledger        *ledger.Ledger
	builder       *report.Builder
	cache         *cache.Cache
	maxUploadSize int64
	version       string
	clock         func() time.Time
	today         *datetime.Date
}

// NewHandler constructs the HTTP handler that serves the dashboard API for one ledger.
func NewHandler(logger *zap.Logger, l *ledger.Ledger, builder *report.Builder, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL()
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	h := &handler{
		logger:        logger,
		ledger:        l,
		builder:       builder,
		cache:         cache.New(ttl, 2*ttl),
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		clock:         clock,
		today:         opts.Today,
	}

	mux := http.NewServeMux()

	// Dashboard screens computed from the loaded ledger
	mux.HandleFunc("GET /api/summary", h.handleSummary)
	mux.HandleFunc("GET /api/properties", h.handleProperties)
	mux.HandleFunc("GET /api/properties/{id}", h.handleProperty)
	mux.HandleFunc("GET /api/properties/{id}/letter", h.handleLetter)
	mux.HandleFunc("GET /api/properties/{id}/listing", h.handleListing)
	mux.HandleFunc("GET /api/leases", h.handleLeases)
	mux.HandleFunc("GET /api/leases/{id}/document", h.handleLeaseDocument)
	mux.HandleFunc("GET /api/expenses", h.handleExpenses)
	mux.HandleFunc("GET /api/tax", h.handleTax)
	mux.HandleFunc("GET /api/alerts", h.handleAlerts)
	mux.HandleFunc("GET /api/listing", h.handleListing)

	// View-state transitions
	mux.HandleFunc("POST /api/navigation", h.handleNavigation)

	// Ledger upload for validation; nothing is stored
	mux.HandleFunc("POST /api/ledger", h.handleLedgerUpload)

	// Version endpoint for UI metadata
	mux.HandleFunc("GET /api/version", h.handleVersion)

	return mux
}

// referenceTime resolves the today query parameter, the pinned date or the clock.
func (h *handler) referenceTime(r *http.Request) (time.Time, error) {
	if raw := strings.TrimSpace(r.URL.Query().Get("today")); raw != "" {
		d, err := datetime.ParseDate(raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid today parameter %q: expected YYYY-MM-DD", raw)
		}
		return d.Time(), nil
	}
	if h.today != nil {
		return h.today.Time(), nil
	}
	return h.clock(), nil
}

func (h *handler) referenceDate(r *http.Request) (datetime.Date, error) {
	now, err := h.referenceTime(r)
	if err != nil {
		return datetime.Date{}, err
	}
	return datetime.DateOf(now), nil
}

// cacheKey identifies a response by route, sorted query and reference date.
func cacheKey(r *http.Request, ref string) string {
	query := r.URL.Query()
	query.Del("today")
	return r.URL.Path + "?" + query.Encode() + "@" + ref
}

// serveCached writes the memoised result of compute for the request.
func (h *handler) serveCached(w http.ResponseWriter, r *http.Request, ref, op string, compute func() (interface{}, error)) {
	key := cacheKey(r, ref)
	if payload, ok := h.cache.Get(key); ok {
		h.logger.Debug("cache hit",
			zap.String("op", op),
			zap.String("key", key),
		)
		h.writeJSON(w, http.StatusOK, payload)
		return
	}

	payload, err := compute()
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	h.cache.SetDefault(key, payload)
	h.writeJSON(w, http.StatusOK, payload)
}

// statusFor maps domain failures to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrUnknownPropertyReference),
		errors.Is(err, ledger.ErrUnknownLease),
		errors.Is(err, listing.ErrNoListing):
		return http.StatusNotFound
	case errors.Is(err, calculator.ErrInvalidAmount),
		errors.Is(err, calculator.ErrDivisionByZero):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	today, err := h.referenceDate(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleSummary")
		return
	}
	h.serveCached(w, r, today.String(), "server.handleSummary", func() (interface{}, error) {
		return h.builder.Dashboard(h.ledger, today)
	})
}

func (h *handler) handleProperties(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "", "server.handleProperties", func() (interface{}, error) {
		return h.builder.Properties(h.ledger)
	})
}

func (h *handler) handleProperty(w http.ResponseWriter, r *http.Request) {
	today, err := h.referenceDate(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleProperty")
		return
	}
	id := r.PathValue("id")
	h.serveCached(w, r, today.String(), "server.handleProperty", func() (interface{}, error) {
		return h.builder.Property(h.ledger, id, today)
	})
}

func (h *handler) handleLetter(w http.ResponseWriter, r *http.Request) {
	today, err := h.referenceDate(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleLetter")
		return
	}
	id := r.PathValue("id")

	if r.URL.Query().Get("download") != "" {
		letter, err := h.builder.Letter(h.ledger, id, today)
		if err != nil {
			h.respondErrorWithOp(w, statusFor(err), err.Error(), "server.handleLetter")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", letter.FileName))
		w.WriteHeader(http.StatusOK)
		if _, err := io.WriteString(w, letter.Text); err != nil {
			h.logger.Error("failed to write letter", zap.String("op", "server.handleLetter"), zap.Error(err))
		}
		return
	}

	h.serveCached(w, r, today.String(), "server.handleLetter", func() (interface{}, error) {
		return h.builder.Letter(h.ledger, id, today)
	})
}

func (h *handler) handleLeases(w http.ResponseWriter, r *http.Request) {
	today, err := h.referenceDate(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleLeases")
		return
	}
	h.serveCached(w, r, today.String(), "server.handleLeases", func() (interface{}, error) {
		return h.builder.Leases(h.ledger, today), nil
	})
}

func (h *handler) handleLeaseDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.serveCached(w, r, "", "server.handleLeaseDocument", func() (interface{}, error) {
		return h.builder.Lease(h.ledger, id)
	})
}

func (h *handler) handleExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := expenseFilter(r.URL.Query())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleExpenses")
		return
	}
	h.serveCached(w, r, "", "server.handleExpenses", func() (interface{}, error) {
		return h.builder.Expenses(h.ledger, filter)
	})
}

func expenseFilter(query url.Values) (calculator.ExpenseFilter, error) {
	filter := calculator.ExpenseFilter{PropertyID: strings.TrimSpace(query.Get("property"))}
	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		category, err := ledger.ParseCategory(raw)
		if err != nil {
			return calculator.ExpenseFilter{}, err
		}
		filter.Category = category
	}
	if raw := strings.TrimSpace(query.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return calculator.ExpenseFilter{}, fmt.Errorf("invalid year parameter %q", raw)
		}
		filter.Year = year
	}
	return filter, nil
}

// taxYear is the year parameter, or the last closed calendar year.
func (h *handler) taxYear(r *http.Request) (int, error) {
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid year parameter %q", raw)
		}
		return year, nil
	}
	today, err := h.referenceDate(r)
	if err != nil {
		return 0, err
	}
	return today.Year() - 1, nil
}

func (h *handler) handleTax(w http.ResponseWriter, r *http.Request) {
	year, err := h.taxYear(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleTax")
		return
	}
	h.serveCached(w, r, strconv.Itoa(year), "server.handleTax", func() (interface{}, error) {
		return h.builder.Tax(h.ledger, year)
	})
}

func (h *handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	now, err := h.referenceTime(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleAlerts")
		return
	}
	// Alert timestamps carry minutes; ages are computed at that resolution.
	minute := now.Truncate(time.Minute)
	h.serveCached(w, r, minute.Format(time.RFC3339), "server.handleAlerts", func() (interface{}, error) {
		return h.builder.Alerts(h.ledger, minute), nil
	})
}

func (h *handler) handleListing(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("property"))
	}
	if id == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing property parameter", "server.handleListing")
		return
	}
	tab := r.URL.Query().Get("tab")
	h.serveCached(w, r, "", "server.handleListing", func() (interface{}, error) {
		return h.builder.Listing(h.ledger, id, tab)
	})
}

type navigationResponse struct {
	State navigation.State `json:"state"`
	Error string           `json:"error,omitempty"`
}

func (h *handler) handleNavigation(w http.ResponseWriter, r *http.Request) {
	var req navigation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode navigation request: %v", err), "server.handleNavigation")
		return
	}

	action, err := req.ToAction()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleNavigation")
		return
	}

	next, err := navigation.Reduce(req.State, action)
	switch {
	case errors.Is(err, navigation.ErrMissingProperty):
		// The fallback state is usable; the client is told why it landed there.
		h.writeJSON(w, http.StatusOK, navigationResponse{State: next, Error: err.Error()})
	case err != nil:
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleNavigation")
	default:
		h.writeJSON(w, http.StatusOK, navigationResponse{State: next})
	}
}

type ledgerUploadResponse struct {
	report.Validation
	Duration string `json:"duration"`
}

func (h *handler) handleLedgerUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	data, err := h.readUpload(w, r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), "server.handleLedgerUpload")
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleLedgerUpload")
		return
	}

	validation, _ := h.builder.Check(bytes.NewReader(data))
	status := http.StatusOK
	if !validation.Valid {
		status = http.StatusUnprocessableEntity
	}

	h.logger.Debug("ledger upload checked",
		zap.String("op", "server.handleLedgerUpload"),
		zap.Bool("valid", validation.Valid),
		zap.Int("problems", len(validation.Problems)),
	)
	h.writeJSON(w, status, ledgerUploadResponse{Validation: validation, Duration: time.Since(start).String()})
}

// readUpload returns the ledger bytes from a multipart "file" field or the raw body.
func (h *handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to parse upload: %v", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing file upload: %v", err)
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty ledger upload")
	}
	return data, nil
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		h.logger.Error("api request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
