package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/apizfit/racekit/internal/api/middleware"
	"github.com/apizfit/racekit/internal/api/response"
	"github.com/apizfit/racekit/internal/api/validation"
	"github.com/apizfit/racekit/internal/kit"
	"github.com/apizfit/racekit/internal/runner"
)

type createRunnerRequest struct {
	ParticipantID *string `json:"participantId,omitempty"`
	BibNumber     string  `json:"bibNumber"`
	FullName      string  `json:"fullName"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Category      *string `json:"category,omitempty"`
	RaceDistance  *string `json:"raceDistance,omitempty"`
}

type runnerResponse struct {
	ID               string  `json:"id"`
	ParticipantID    *string `json:"participantId,omitempty"`
	BibNumber        string  `json:"bibNumber"`
	FullName         string  `json:"fullName"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Category         *string `json:"category,omitempty"`
	RaceDistance     *string `json:"raceDistance,omitempty"`
	RegistrationDate string  `json:"registrationDate"`
}

func toRunnerResponse(rn *runner.Runner) runnerResponse {
	return runnerResponse{
		ID:               rn.ID.String(),
		ParticipantID:    rn.ParticipantID,
		BibNumber:        rn.BibNumber,
		FullName:         rn.FullName,
		Email:            rn.Email,
		Phone:            rn.Phone,
		Category:         rn.Category,
		RaceDistance:     rn.RaceDistance,
		RegistrationDate: rn.RegistrationDate.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// RunnerHandler handles runner registry endpoints.
type RunnerHandler struct {
	runnerRepo runner.Repository
	kitRepo    kit.Repository
}

// NewRunnerHandler creates a new RunnerHandler.
func NewRunnerHandler(runnerRepo runner.Repository, kitRepo kit.Repository) *RunnerHandler {
	return &RunnerHandler{
		runnerRepo: runnerRepo,
		kitRepo:    kitRepo,
	}
}

// Create handles POST /runners.
func (h *RunnerHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createRunnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	var email string
	if req.Email != nil {
		email = *req.Email
	}
	fieldErrors := validation.ValidateCreateRunnerRequest(validation.CreateRunnerRequest{
		FullName:  req.FullName,
		BibNumber: req.BibNumber,
		Email:     email,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	rn := &runner.Runner{
		ParticipantID: req.ParticipantID,
		BibNumber:     strings.TrimSpace(req.BibNumber),
		FullName:      strings.TrimSpace(req.FullName),
		Email:         req.Email,
		Phone:         req.Phone,
		Category:      req.Category,
		RaceDistance:  req.RaceDistance,
	}

	if err := h.runnerRepo.Create(r.Context(), rn); err != nil {
		slog.Error("failed to create runner", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register runner", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toRunnerResponse(rn), requestID)
}

// List handles GET /runners. An optional search term filters the fetched
// list in memory, matching the runner's name, bib number, or participant ID.
func (h *RunnerHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	runners, err := h.runnerRepo.List(r.Context())
	if err != nil {
		slog.Error("failed to list runners", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list runners", requestID)
		return
	}

	filtered := runner.Filter(runners, r.URL.Query().Get("search"))

	items := make([]runnerResponse, 0, len(filtered))
	for i := range filtered {
		items = append(items, toRunnerResponse(&filtered[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

type generateKitsResponse struct {
	Created int `json:"created"`
}

// GenerateKits handles POST /runners/kits. It builds one pending kit per
// registered runner, kit number taken from the bib number, and submits
// them as a single batch. A failure reports the whole batch as failed.
func (h *RunnerHandler) GenerateKits(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	runners, err := h.runnerRepo.List(r.Context())
	if err != nil {
		slog.Error("failed to list runners for kit generation", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list runners", requestID)
		return
	}

	kits := make([]kit.RaceKit, 0, len(runners))
	for i := range runners {
		kits = append(kits, kit.RaceKit{
			KitNumber: runners[i].BibNumber,
			RunnerID:  runners[i].ID,
			Status:    kit.StatusPending,
		})
	}

	created, err := h.kitRepo.CreateBatch(r.Context(), kits)
	if err != nil {
		slog.Error("failed to create race kits", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			fmt.Sprintf("Failed to create race kits for %d runners", len(kits)), requestID)
		return
	}

	response.Success(w, http.StatusCreated, generateKitsResponse{Created: created}, requestID)
}
