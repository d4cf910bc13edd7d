package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/splax/jot/internal/domain"
)

// writeJSON writes JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sends an error message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// userJSON shapes a user for responses. The digest never leaves the server.
func userJSON(user *domain.User) map[string]any {
	return map[string]any{
		"id":        user.ID,
		"email":     user.Email,
		"full_name": user.FullName,
	}
}

// noteJSON shapes a note for responses.
func noteJSON(note *domain.Note) map[string]any {
	return map[string]any{
		"id":         note.ID,
		"title":      note.Title,
		"content":    note.Content,
		"owner_id":   note.OwnerID,
		"created_at": note.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": note.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
