package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/opengov-ph/treasury-backend/internal/utils"
)

// Service carries the database handle for the auth handlers and implements
// the middleware fetcher interfaces.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

func (s *Service) FindSessionByID(id string) (utils.SessionData, error) {
	var session Session
	if err := s.DB.First(&session, "session_id = ?", id).Error; err != nil {
		return utils.SessionData{}, err
	}
	return utils.SessionData{UserID: session.UserID, ExpiresAt: session.ExpiresAt}, nil
}

func (s *Service) FindRoleByUserID(id string) (string, bool, error) {
	var official Official
	if err := s.DB.First(&official, "user_id = ?", id).Error; err != nil {
		return "", false, err
	}
	return official.Role, official.IsActive, nil
}

func (s *Service) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}

	var official Official
	if err := s.DB.First(&official, "username = ?", creds.Username).Error; err != nil {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(official.HashedPassword), []byte(creds.Password)); err != nil {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}

	if !official.IsActive {
		http.Error(w, "Account is no longer active", http.StatusForbidden)
		return
	}

	sessionID := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   true,
	})

	// Reuse the row if a session for this official already exists.
	var existing Session
	s.DB.Where("user_id = ?", official.UserID).First(&existing)
	if existing.UserID != "" {
		s.DB.Model(&existing).Updates(Session{
			SessionID: sessionID,
			ExpiresAt: time.Now().Add(6 * time.Hour),
		})
	} else {
		s.DB.Create(&Session{
			SessionID: sessionID,
			UserID:    official.UserID,
			ExpiresAt: time.Now().Add(6 * time.Hour),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"user_id":  official.UserID,
		"username": official.Username,
		"role":     official.Role,
	})
}

func (s *Service) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("session_id")
	if err != nil {
		http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
		return
	}

	if err := s.DB.Delete(&Session{}, "session_id = ?", cookie.Value).Error; err != nil {
		http.Error(w, "Failed to log out", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusOK)
}

func (s *Service) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var official Official
	if err := s.DB.First(&official, "user_id = ?", userID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(official)
}
