package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"sniper-dashboard/logging"
)

// Query limits for the scan journal
const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// getIntParam parses an integer query parameter. A missing value yields
// defaultVal; a malformed or out-of-range value is an error.
func getIntParam(r *http.Request, key string, defaultVal, minVal, maxVal int) (int, error) {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultVal, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	if val < minVal || val > maxVal {
		return 0, fmt.Errorf("%s must be between %d and %d", key, minVal, maxVal)
	}
	return val, nil
}

// respondJSON writes v as a JSON body with the given status
func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.WithComponent("api").WithError(err).Warn("Failed to encode response")
	}
}

// respondWithError logs the error and sends a JSON error response
// Use this to avoid exposing internal errors while still logging them
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	entry := logging.WithComponent("api").WithField("status", code)
	if err != nil {
		entry = entry.WithError(err)
	}
	if code >= http.StatusInternalServerError {
		entry.Warn(message)
	} else {
		entry.Debug(message)
	}
	respondJSON(w, code, map[string]string{"error": message})
}
