package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/careerai/internal/security"
	"github.com/flemzord/careerai/pkg/message"
)

// decodeBody reads a size- and depth-limited JSON body into v.
func (g *Gateway) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	limit := g.config.MaxBodyBytes
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(limit)+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: max %d bytes", security.ErrBodyTooLarge, limit)
		}
		return fmt.Errorf("%w: %w", security.ErrInvalidJSON, err)
	}
	if err := security.ValidateBodySize(data, limit); err != nil {
		return err
	}
	if err := security.ValidateJSONDepth(data, g.config.MaxJSONDepth); err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", security.ErrInvalidJSON, err)
	}
	return nil
}

// writeChatError maps err to a response and logs server-side failures.
func (g *Gateway) writeChatError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		g.logger.Error("request failed", "path", r.URL.Path, "status", code, "error", err)
	}
	writeError(w, code, msg)
}

// handleChat serves POST /v1/chat.
func (g *Gateway) handleChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req message.ChatRequest
		if err := g.decodeBody(w, r, &req); err != nil {
			g.writeChatError(w, r, err)
			return
		}
		var err error
		if req.StudentID, err = scopeStudent(r.Context(), req.StudentID); err != nil {
			g.writeChatError(w, r, err)
			return
		}
		reply, err := g.chat.Handle(r.Context(), req)
		if err != nil {
			g.writeChatError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

// conversationScope returns the conversation id and the student the
// lookup is scoped to: the student_id query parameter, or the caller's own
// id for a student credential.
func conversationScope(r *http.Request) (id, studentID string, err error) {
	studentID, err = scopeStudent(r.Context(), r.URL.Query().Get("student_id"))
	return chi.URLParam(r, "id"), studentID, err
}

// handleGetConversation serves GET /v1/conversations/{id}.
func (g *Gateway) handleGetConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, student, err := conversationScope(r)
		if err != nil {
			g.writeChatError(w, r, err)
			return
		}
		tr, err := g.chat.Conversation(r.Context(), id, student)
		if err != nil {
			g.writeChatError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tr)
	}
}

// handleDeleteConversation serves DELETE /v1/conversations/{id}.
func (g *Gateway) handleDeleteConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, student, err := conversationScope(r)
		if err == nil {
			err = g.chat.DeleteConversation(r.Context(), id, student)
		}
		if err != nil {
			g.writeChatError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handlePlan serves GET /v1/plan?count=N&intent=X, a preview of the
// parameters a turn would get.
func (g *Gateway) handlePlan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		count := 0
		if s := q.Get("count"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "count must be an integer")
				return
			}
			count = n
		}
		preview, err := g.chat.Plan(count, q.Get("intent"))
		if err != nil {
			g.writeChatError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, preview)
	}
}
