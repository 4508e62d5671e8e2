package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizbook/internal/apperror"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func writeSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter) {
	writeSuccess(w, MessageResponse{Message: "Success"}, http.StatusOK)
}

// writeServiceError answers with the status of the error's kind. Internal
// failures are logged and hidden behind a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperror.KindInternal {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	WriteError(w, appErr.Message, appErr.Kind.Status())
}
