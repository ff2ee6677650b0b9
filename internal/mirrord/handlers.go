package mirrord

import (
	"net/http"
	"time"

	"encoding/json/v2"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/errors"
	"github.com/linkdeckapp/linkdeck/internal/http/response"
	"github.com/linkdeckapp/linkdeck/internal/sse"
	"github.com/linkdeckapp/linkdeck/internal/store"
)

var validate = validator.New()

// credentialRequest is the PUT /users payload. The server never sees a
// plaintext password, only the digest the client derived.
type credentialRequest struct {
	Username     string `json:"username" validate:"required,min=3"`
	PasswordHash string `json:"password_hash" validate:"required,hexadecimal,len=64"`
}

// handleHealthCheck reports liveness.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "ok"}, s.logger)
}

// handleGetCredential returns the credential record for a user id.
func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var cred domain.Credential
	err := s.store.Get(store.CredentialKey(userID), &cred)
	if errors.Is(err, store.ErrKeyNotFound) {
		response.NotFound(w, "user not found", s.logger)
		return
	}
	if err != nil {
		s.logger.Error("failed to load credential record", "user_id", userID, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error", s.logger)
		return
	}

	response.Success(w, cred, s.logger)
}

// handlePutCredential creates the credential record for a user id.
// Registration is create-only: an existing record is a conflict, never
// overwritten.
func (s *Server) handlePutCredential(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req credentialRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, "invalid credential record", s.logger)
		return
	}

	cred := domain.Credential{
		Username:     req.Username,
		PasswordHash: req.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.store.SetIfAbsent(store.CredentialKey(userID), cred)
	if err != nil {
		s.logger.Error("failed to store credential record", "user_id", userID, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error", s.logger)
		return
	}
	if !created {
		response.Conflict(w, "username already registered", s.logger)
		return
	}

	s.logger.Info("user registered", "user_id", userID)
	response.Created(w, map[string]string{"user_id": userID}, s.logger)
}

// handleGetDocument returns the stored bookmark document for a key.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var doc domain.Document
	err := s.store.Get(store.DocumentKey(key), &doc)
	if errors.Is(err, store.ErrKeyNotFound) {
		response.NotFound(w, "document not found", s.logger)
		return
	}
	if err != nil {
		s.logger.Error("failed to load document", "key", key, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error", s.logger)
		return
	}

	response.Success(w, doc, s.logger)
}

// handlePutDocument stores the full document for a key and notifies
// change feed subscribers. The mirror does not arbitrate timestamps; the
// last write received wins and clients resolve precedence on their end.
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var doc domain.Document
	if err := json.UnmarshalRead(r.Body, &doc); err != nil {
		response.BadRequest(w, "invalid document body", s.logger)
		return
	}
	if doc.Categories == nil {
		response.BadRequest(w, "document must carry a categories list", s.logger)
		return
	}
	if doc.LastModified.IsZero() {
		response.BadRequest(w, "document must carry a last modified timestamp", s.logger)
		return
	}

	if err := s.store.Set(store.DocumentKey(key), doc); err != nil {
		s.logger.Error("failed to store document", "key", key, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error", s.logger)
		return
	}

	s.sseManager.Emit(sse.NewDocumentUpdatedEvent(key, &doc))

	s.logger.Debug("document stored",
		"key", key,
		"categories", len(doc.Categories),
		"last_modified", doc.LastModified)
	response.Success(w, map[string]string{"key": key}, s.logger)
}

// handleStream upgrades the request to an SSE change feed for one key.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s.sseHandler.Stream(w, r, key)
}
