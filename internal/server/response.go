package server

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in error envelopes.
const (
	CodeBadRequest = "BAD_REQUEST"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeInternal   = "INTERNAL"
)

// Response is the JSON envelope of every reply.
type Response struct {
	Status string         `json:"status"`
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError describes a failed request.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, Response{Status: "ok", Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Response{Status: "error", Error: &ResponseError{Code: code, Message: message}})
}
