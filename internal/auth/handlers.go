package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ElComedor/Geo-Backend/internal/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionTTL = 6 * time.Hour

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// SessionInfo implements middleware.SessionFetcher against the staff
// session table.
type SessionInfo struct {
	DB *gorm.DB
}

func (s SessionInfo) FindSessionByID(id string) (middleware.SessionData, error) {
	var session Session
	if err := s.DB.First(&session, "session_id = ?", id).Error; err != nil {
		return middleware.SessionData{}, err
	}
	var staff Staff
	if err := s.DB.First(&staff, "id = ?", session.StaffID).Error; err != nil {
		return middleware.SessionData{}, err
	}
	if !staff.IsActive {
		return middleware.SessionData{}, errors.New("staff account disabled")
	}
	return middleware.SessionData{
		StaffID:   staff.ID.String(),
		Role:      staff.Role,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// LoginHandler verifies staff credentials and issues a session cookie.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	var staff Staff
	if err := h.db.First(&staff, "username = ? AND is_active = true", req.Username).Error; err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.HashedPassword), []byte(req.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token := uuid.New().String()
	expiresAt := time.Now().Add(sessionTTL)

	var existing Session
	err := h.db.First(&existing, "staff_id = ?", staff.ID).Error
	switch {
	case err == nil:
		if err := h.db.Model(&existing).Updates(Session{SessionID: token, ExpiresAt: expiresAt}).Error; err != nil {
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		session := Session{SessionID: token, StaffID: staff.ID, ExpiresAt: expiresAt}
		if err := h.db.Create(&session).Error; err != nil {
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
	default:
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":  true,
		"staff_id": staff.ID,
		"username": staff.Username,
		"role":     staff.Role,
	})
}

// LogoutHandler deletes the current session and clears the cookie.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("session_id")
	if err == nil {
		h.db.Delete(&Session{}, "session_id = ?", cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusOK)
}

// MeHandler returns the authenticated staff member.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "No session", http.StatusUnauthorized)
		return
	}
	var staff Staff
	if err := h.db.First(&staff, "id = ?", session.StaffID).Error; err != nil {
		http.Error(w, "Staff not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":       staff.ID,
		"username": staff.Username,
		"role":     staff.Role,
	})
}
