package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/apizfit/racekit/internal/api/middleware"
	"github.com/apizfit/racekit/internal/api/response"
	"github.com/apizfit/racekit/internal/auth"
	"github.com/apizfit/racekit/internal/profile"
)

type profileResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	Email     string  `json:"email"`
	FullName  string  `json:"fullName"`
	Phone     *string `json:"phone,omitempty"`
	Role      string  `json:"role"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

func toProfileResponse(p *profile.Profile) profileResponse {
	return profileResponse{
		ID:        p.ID.String(),
		UserID:    p.UserID.String(),
		Email:     p.Email,
		FullName:  p.FullName,
		Phone:     p.Phone,
		Role:      p.EffectiveRole(),
		Status:    p.EffectiveStatus(),
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// AdminHandler handles user administration endpoints. Every route behind it
// is gated on the admin role by the router.
type AdminHandler struct {
	profileRepo profile.Repository
	accountRepo auth.AccountRepository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(profileRepo profile.Repository, accountRepo auth.AccountRepository) *AdminHandler {
	return &AdminHandler{
		profileRepo: profileRepo,
		accountRepo: accountRepo,
	}
}

// List handles GET /admin/users. Optional query parameters: search (email
// or role substring), status (all/active/inactive), role
// (all/admin/organizer/user). The three predicates are ANDed over the
// fetched list.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	profiles, err := h.profileRepo.List(r.Context())
	if err != nil {
		if errors.Is(err, profile.ErrSetupRequired) {
			response.ErrWithDetails(w, http.StatusConflict, "SETUP_REQUIRED",
				"The profiles table is missing the status column; apply the setup migration and retry",
				map[string]string{"sql": profile.SetupInstructions}, requestID)
			return
		}
		slog.Error("failed to list profiles", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users", requestID)
		return
	}

	q := r.URL.Query()
	filtered := profile.Filter(profiles, q.Get("search"), q.Get("status"), q.Get("role"))

	items := make([]profileResponse, 0, len(filtered))
	for i := range filtered {
		items = append(items, toProfileResponse(&filtered[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// Deactivate handles POST /admin/users/{id}/deactivate.
func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, profile.StatusInactive)
}

// Activate handles POST /admin/users/{id}/activate.
func (h *AdminHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, profile.StatusActive)
}

func (h *AdminHandler) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	requestID := middleware.GetRequestID(r.Context())

	userID, ok := parseUserID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.profileRepo.SetStatus(r.Context(), userID, status); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to update user status", "error", err, "userId", userID, "status", status)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user status", requestID)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": status}, requestID)
}

// Delete handles DELETE /admin/users/{id}. The profile row and its account
// (with sessions) are removed; runners, kits, and collection history are
// left untouched.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	userID, ok := parseUserID(w, r, requestID)
	if !ok {
		return
	}

	if identity != nil && identity.AccountID == userID {
		response.Err(w, http.StatusConflict, "SELF_DELETE", "You cannot delete your own account", requestID)
		return
	}

	if err := h.profileRepo.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to delete profile", "error", err, "userId", userID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete user", requestID)
		return
	}

	if err := h.accountRepo.Delete(r.Context(), userID); err != nil && !errors.Is(err, auth.ErrAccountNotFound) {
		slog.Error("failed to delete account", "error", err, "userId", userID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete user", requestID)
		return
	}

	response.NoContent(w)
}

func parseUserID(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return uuid.Nil, false
	}
	return id, true
}
