package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/F0nkell/AI-careerist/internal/auth"
	"github.com/F0nkell/AI-careerist/internal/core"
	"github.com/F0nkell/AI-careerist/internal/store"
)

const authHeaderPrefix = "twa-init-data "

// maxUploadBytes caps the in-memory multipart parse (audio + optional image).
const maxUploadBytes = 32 << 20

type contextKey string

const userContextKey contextKey = "telegramUser"

// TurnProcessor runs one voice interview turn.
type TurnProcessor interface {
	ProcessVoiceTurn(ctx context.Context, in core.TurnInput) (*core.TurnResult, error)
}

// UserStore records authenticated users.
type UserStore interface {
	UpsertUser(ctx context.Context, user *store.User) error
}

type APIHandler struct {
	interviews TurnProcessor
	users      UserStore
	botToken   string
	logger     *slog.Logger
}

func NewAPIHandler(interviews TurnProcessor, users UserStore, botToken string, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		interviews: interviews,
		users:      users,
		botToken:   botToken,
		logger:     logger,
	}
}

// InitDataAuthMiddleware authenticates requests carrying a Telegram WebApp
// payload in the Authorization header. Every failure is the same 401; the
// cause only goes to the log.
func (h *APIHandler) InitDataAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, authHeaderPrefix) {
			writeError(w, http.StatusUnauthorized, "Invalid header format")
			return
		}

		user, err := auth.ValidateInitData(strings.TrimPrefix(authHeader, authHeaderPrefix), h.botToken, time.Now())
		if err != nil {
			h.logger.Warn("init data validation failed", "error", err)
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MeHandler returns the authenticated identity and records the user: accounts
// are created on first authenticated contact and refreshed afterwards.
func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(userContextKey).(*auth.TelegramUser)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	err := h.users.UpsertUser(r.Context(), &store.User{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsPremium: user.IsPremium,
	})
	if err != nil {
		h.logger.Error("failed to upsert user", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process user identity")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// InterviewChatHandler accepts one recorded answer (multipart: required
// "file", optional "image", optional "history" JSON array) and returns the
// transcript, the model reply and the synthesized audio.
func (h *APIHandler) InterviewChatHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Audio file is required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read audio upload", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	in := core.TurnInput{
		Audio:    audio,
		Filename: fileHeader.Filename,
	}

	if image, imageHeader, err := r.FormFile("image"); err == nil {
		defer image.Close()
		data, err := io.ReadAll(image)
		if err != nil {
			h.logger.Error("failed to read image upload", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		in.Image = data
		in.ImageMIME = imageHeader.Header.Get("Content-Type")
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeError(w, http.StatusBadRequest, "Invalid image field")
		return
	}

	historyJSON := r.FormValue("history")
	if historyJSON == "" {
		historyJSON = "[]"
	}
	if err := json.Unmarshal([]byte(historyJSON), &in.History); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid history JSON")
		return
	}

	result, err := h.interviews.ProcessVoiceTurn(r.Context(), in)
	if err != nil {
		h.logger.Error("voice turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
