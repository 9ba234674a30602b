package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"i4.energy/across/oocsigw/modem"
	"i4.energy/across/oocsigw/oocsi"
)

// StateReader reports the modem connection progress.
type StateReader interface {
	State() modem.State
}

// Server handles incoming HTTP requests for interacting with the
// OOCSI client
type Server struct {
	Logger *slog.Logger
	Client *oocsi.Client
	Modem  StateReader
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /send", s.handleSend)
	mux.HandleFunc("GET /message", s.handleMessage)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	s.sendJSON(w, ErrorResponse{Message: message}, statusCode)
}

func (s *Server) sendJSON(w http.ResponseWriter, body any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.Logger.Error("Failed to write response", "error", err)
	}
}

// handleSend publishes one key/value pair on a channel
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	type SendRequest struct {
		Channel string      `json:"channel"`
		Key     string      `json:"key"`
		Value   oocsi.Value `json:"value"`
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Channel == "" || req.Key == "" {
		s.sendError(w, "both 'channel' and 'key' fields are required", http.StatusBadRequest)
		return
	}

	if req.Value.IsNull() {
		s.sendError(w, "'value' field is required", http.StatusBadRequest)
		return
	}

	if !s.Client.Send(req.Channel, req.Key, req.Value) {
		s.sendError(w, "not connected to the broker", http.StatusServiceUnavailable)
		return
	}

	s.Logger.Info("Message published", "channel", req.Channel, "key", req.Key)
	w.WriteHeader(http.StatusOK)
}

// handleMessage returns the last received message and whether it is new.
// Reading it clears the new flag.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	type MessageResponse struct {
		New     bool          `json:"new"`
		Message oocsi.Message `json:"message"`
	}

	msg, fresh := s.Client.Store().Take()
	s.sendJSON(w, MessageResponse{New: fresh, Message: msg}, http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	type StatusResponse struct {
		State string `json:"state"`
	}
	s.sendJSON(w, StatusResponse{State: s.Modem.State().String()}, http.StatusOK)
}
