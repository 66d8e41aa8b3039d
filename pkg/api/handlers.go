package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/plantops/sentinel/pkg/compliance"
	"github.com/plantops/sentinel/pkg/features"
)

// maxBodyBytes bounds JSON request bodies. Tabular uploads get a larger
// allowance since one file carries a whole fleet snapshot.
const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 32 << 20
)

type predictSingleRequest struct {
	Features  []float64 `json:"features"`
	ProductID string    `json:"product_id"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// HandlePredictSingle scores one pre-encoded reading.
//
// POST /predict-single
func (s *Service) HandlePredictSingle(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteBadRequest(w, "failed to read request body")
		return
	}
	if _, err := validateJSON(s.schemas.predictSingle, raw); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	var req predictSingleRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	var values [features.NumFeatures]float64
	copy(values[:], req.Features)

	result, err := s.PredictEncoded(r.Context(), values, req.ProductID)
	if err != nil {
		var nerr *features.NormalizationError
		if errors.As(err, &nerr) {
			WriteBadRequest(w, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "prediction failed", "error", err)
		WriteInternal(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// HandlePredictFile scores a tabular telemetry upload and ranks the rows
// by criticality. The multipart field name is "file".
//
// POST /predict-file
func (s *Service) HandlePredictFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	if ext := filepath.Ext(header.Filename); !strings.EqualFold(ext, ".csv") {
		WriteBadRequest(w, fmt.Sprintf("unsupported file format %q, expected a .csv upload", header.Filename))
		return
	}

	rows, err := parseTelemetryCSV(file)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	results, err := s.PredictBatch(r.Context(), rows)
	if err != nil {
		var nerr *features.NormalizationError
		if errors.As(err, &nerr) {
			WriteBadRequest(w, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "batch prediction failed", "error", err)
		WriteInternal(w, err)
		return
	}
	if results == nil {
		results = []PredictionResult{}
	}
	s.writeJSON(w, http.StatusOK, results)
}

// HandleCheckCompliance evaluates proposed maintenance actions against the
// published rule corpus. Results come back in submission order, each
// carrying its per-action report and the shared consolidated report.
//
// POST /check-compliance
func (s *Service) HandleCheckCompliance(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteBadRequest(w, "failed to read request body")
		return
	}
	if _, err := validateJSON(s.schemas.checkCompliance, raw); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	var actions []compliance.MaintenanceAction
	if err := json.Unmarshal(raw, &actions); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	results, err := s.CheckCompliance(r.Context(), actions)
	if err != nil {
		var verr *compliance.ValidationError
		if errors.As(err, &verr) {
			WriteBadRequest(w, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "compliance evaluation failed", "error", err)
		WriteInternal(w, err)
		return
	}
	if results == nil {
		results = []compliance.ComplianceResult{}
	}
	s.writeJSON(w, http.StatusOK, results)
}

// HandleHealth reports liveness.
//
// GET /health
func (s *Service) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.clock().UTC(),
	})
}

// Routes builds the service mux. The limiter, when non-nil, wraps every
// route.
func (s *Service) Routes(limiter *GlobalRateLimiter) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict-single", s.HandlePredictSingle)
	mux.HandleFunc("POST /predict-file", s.HandlePredictFile)
	mux.HandleFunc("POST /check-compliance", s.HandleCheckCompliance)
	mux.HandleFunc("GET /health", s.HandleHealth)

	if limiter == nil {
		return mux
	}
	return limiter.Middleware(mux)
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", "error", err)
	}
}
