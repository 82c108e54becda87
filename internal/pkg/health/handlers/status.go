package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/performance"
)

// StatusSource reports the progress of the current run.
type StatusSource interface {
	GetStatus() performance.Status
}

// HandleStatus serves the run status as JSON on /status.
func HandleStatus(src StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := json.NewEncoder(w).Encode(src.GetStatus()); err != nil {
			http.Error(w, fmt.Sprintf("failed to encode status: %v", err), http.StatusInternalServerError)
			return
		}
	}
}
