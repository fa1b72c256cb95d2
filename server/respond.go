package server

import (
	"batepapo/domain"
	"batepapo/errors"
	"batepapo/requests"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
)

type participantResponse struct {
	Name          string `json:"name"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
}

type messageResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

func toParticipantResponse(p domain.Participant) participantResponse {
	return participantResponse{
		Name:          p.Name,
		LastHeartbeat: p.LastHeartbeat.UnixMilli(),
	}
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Type: string(m.Type),
		Time: m.At.Format("15:04:05"),
	}
}

func respondJSON(w http.ResponseWriter, log *slog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", "err", err)
	}
}

// respondError maps an error onto the taxonomy-driven status code and a JSON
// body. Validation failures carry field-level detail; store failures stay
// generic so no internals leak to the caller.
func respondError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := statusFor(err)

	var valErr *requests.ValidationError
	if stderrors.As(err, &valErr) {
		respondJSON(w, log, status, map[string]any{
			"error":  "invalid request",
			"fields": valErr.Fields,
		})
		return
	}

	if status == http.StatusInternalServerError {
		log.Error("Request failed", "err", err)
		respondJSON(w, log, status, map[string]string{"error": "internal error"})
		return
	}

	respondJSON(w, log, status, map[string]string{"error": err.Error()})
}

// statusFor is the single error-to-status mapping for every handler, so the
// same logical failure always yields the same code.
func statusFor(err error) int {
	var valErr *requests.ValidationError
	switch {
	case stderrors.As(err, &valErr):
		return http.StatusUnprocessableEntity
	case stderrors.Is(err, errors.ErrMissingIdentity):
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrDuplicateName):
		return http.StatusConflict
	case stderrors.Is(err, errors.ErrParticipantNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
