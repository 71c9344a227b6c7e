package utils

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger().Errorw("encode response failed", "error", err)
	}
}

// Error writes a `{"message": ...}` error body with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}
