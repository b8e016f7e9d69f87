package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/ligue-leadsync/internal/usecase"
)

// Response is the {success, ...} envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func writeFail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Success: false, Message: msg})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), Response{
		Success: false,
		Message: err.Error(),
		Code:    usecase.ErrorCode(err),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrBusy),
		errors.Is(err, usecase.ErrActionPending),
		errors.Is(err, usecase.ErrNoPendingAction),
		errors.Is(err, usecase.ErrStaleView):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, usecase.ErrWrongAuthKind),
		errors.Is(err, usecase.ErrIndexOutOfView):
		return http.StatusBadRequest
	}

	switch usecase.ErrorCode(err) {
	case usecase.CodeCredentialsInvalid:
		return http.StatusUnprocessableEntity
	case usecase.CodeNotConnected:
		return http.StatusConflict
	case usecase.CodeProviderRejected, usecase.CodeNetworkError,
		usecase.CodeFetchFailed, usecase.CodeActionFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
