package server

import (
	"batepapo/errors"
	"batepapo/requests"
	"encoding/json"
	"net/http"
	"strconv"
)

const defaultSearchLimit = 50

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req requests.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, s.log, http.StatusUnprocessableEntity, map[string]string{"error": "invalid request body"})
		return
	}
	if valErr := requests.ValidateRegister(req); valErr != nil {
		respondError(w, s.log, valErr)
		return
	}

	participant, err := s.presence.Register(req.Name)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	respondJSON(w, s.log, http.StatusCreated, toParticipantResponse(participant))
}

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := s.presence.List()
	if err != nil {
		respondError(w, s.log, err)
		return
	}

	out := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, toParticipantResponse(p))
	}
	respondJSON(w, s.log, http.StatusOK, out)
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get(identityHeader)
	if user == "" {
		respondError(w, s.log, errors.ErrMissingIdentity)
		return
	}

	var req requests.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, s.log, http.StatusUnprocessableEntity, map[string]string{"error": "invalid request body"})
		return
	}
	if valErr := requests.ValidatePostMessage(req); valErr != nil {
		respondError(w, s.log, valErr)
		return
	}

	message, err := s.messages.Post(user, req)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	respondJSON(w, s.log, http.StatusCreated, toMessageResponse(message))
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get(identityHeader)
	if user == "" {
		respondError(w, s.log, errors.ErrMissingIdentity)
		return
	}

	query := requests.HistoryQuery{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondJSON(w, s.log, http.StatusBadRequest, map[string]string{"error": "limit must be a number"})
			return
		}
		query.Limit = &limit
	}
	if valErr := requests.ValidateHistory(query); valErr != nil {
		respondError(w, s.log, valErr)
		return
	}

	messages, err := s.messages.History(user, query.Limit)
	if err != nil {
		respondError(w, s.log, err)
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageResponse(m))
	}
	respondJSON(w, s.log, http.StatusOK, out)
}

func (s *Server) handleSearchMessages(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get(identityHeader)
	if user == "" {
		respondError(w, s.log, errors.ErrMissingIdentity)
		return
	}

	terms := r.URL.Query().Get("q")
	if terms == "" {
		respondJSON(w, s.log, http.StatusBadRequest, map[string]string{"error": "q query parameter is required"})
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondJSON(w, s.log, http.StatusBadRequest, map[string]string{"error": "limit must be a positive number"})
			return
		}
		limit = parsed
	}

	messages, err := s.messages.Search(r.Context(), user, terms, limit)
	if err != nil {
		respondError(w, s.log, err)
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageResponse(m))
	}
	respondJSON(w, s.log, http.StatusOK, out)
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get(identityHeader)
	if user == "" {
		respondError(w, s.log, errors.ErrMissingIdentity)
		return
	}

	participant, err := s.presence.Heartbeat(user)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	respondJSON(w, s.log, http.StatusOK, toParticipantResponse(participant))
}
