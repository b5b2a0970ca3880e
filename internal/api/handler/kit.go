package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/apizfit/racekit/internal/api/middleware"
	"github.com/apizfit/racekit/internal/api/response"
	"github.com/apizfit/racekit/internal/api/validation"
	"github.com/apizfit/racekit/internal/collection"
	"github.com/apizfit/racekit/internal/kit"
	"github.com/apizfit/racekit/internal/report"
)

type kitRunnerResponse struct {
	ID            string  `json:"id"`
	ParticipantID *string `json:"participantId,omitempty"`
	FullName      string  `json:"fullName"`
	BibNumber     string  `json:"bibNumber"`
	Category      *string `json:"category,omitempty"`
	RaceDistance  *string `json:"raceDistance,omitempty"`
}

type kitResponse struct {
	ID        string            `json:"id"`
	KitNumber string            `json:"kitNumber"`
	Status    string            `json:"status"`
	Runner    kitRunnerResponse `json:"runner"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}

func toKitResponse(kw *kit.KitWithRunner) kitResponse {
	return kitResponse{
		ID:        kw.ID.String(),
		KitNumber: kw.KitNumber,
		Status:    kw.Status,
		Runner: kitRunnerResponse{
			ID:            kw.Runner.ID.String(),
			ParticipantID: kw.Runner.ParticipantID,
			FullName:      kw.Runner.FullName,
			BibNumber:     kw.Runner.BibNumber,
			Category:      kw.Runner.Category,
			RaceDistance:  kw.Runner.RaceDistance,
		},
		CreatedAt: kw.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: kw.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

type representativeRequest struct {
	FullName     string  `json:"fullName"`
	IDNumber     string  `json:"idNumber"`
	IDType       string  `json:"idType,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Relationship *string `json:"relationship,omitempty"`
}

type collectKitRequest struct {
	CollectionType string                 `json:"collectionType"`
	Representative *representativeRequest `json:"representative,omitempty"`
	Notes          *string                `json:"notes,omitempty"`
}

type collectKitResponse struct {
	ID               string  `json:"id"`
	RaceKitID        string  `json:"raceKitId"`
	CollectionType   string  `json:"collectionType"`
	RepresentativeID *string `json:"representativeId,omitempty"`
	CollectedAt      string  `json:"collectedAt"`
}

// KitHandler handles race kit endpoints.
type KitHandler struct {
	kitRepo        kit.Repository
	collectionRepo collection.Repository
}

// NewKitHandler creates a new KitHandler.
func NewKitHandler(kitRepo kit.Repository, collectionRepo collection.Repository) *KitHandler {
	return &KitHandler{
		kitRepo:        kitRepo,
		collectionRepo: collectionRepo,
	}
}

// List handles GET /kits. An optional search term filters the fetched list
// in memory, matching the kit number, runner name, or participant ID.
func (h *KitHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	kits, err := h.kitRepo.ListWithRunners(r.Context())
	if err != nil {
		slog.Error("failed to list race kits", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list race kits", requestID)
		return
	}

	filtered := kit.Filter(kits, r.URL.Query().Get("search"))

	items := make([]kitResponse, 0, len(filtered))
	for i := range filtered {
		items = append(items, toKitResponse(&filtered[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// Collect handles POST /kits/{id}/collect. Validation happens before any
// repository call; the repository then records the representative (if any),
// the collection event, and the status flip in one transaction.
func (h *KitHandler) Collect(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req collectKitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	var repReq validation.CollectKitRequest
	repReq.CollectionType = req.CollectionType
	if req.Representative != nil {
		repReq.RepFullName = req.Representative.FullName
		repReq.RepIDNumber = req.Representative.IDNumber
		repReq.RepIDType = req.Representative.IDType
	}

	fieldErrors := validation.ValidateCollectKitRequest(repReq)
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	collectReq := &collection.CollectRequest{
		RaceKitID:         id,
		CollectedByUserID: identity.AccountID,
		CollectionType:    req.CollectionType,
		Notes:             blankToNil(req.Notes),
	}

	if req.CollectionType == collection.TypeRepresentative {
		rep := &collection.Representative{
			FullName:     strings.TrimSpace(req.Representative.FullName),
			IDNumber:     strings.TrimSpace(req.Representative.IDNumber),
			IDType:       req.Representative.IDType,
			Phone:        blankToNil(req.Representative.Phone),
			Relationship: blankToNil(req.Representative.Relationship),
		}
		collectReq.Representative = rep
	}

	kc, err := h.collectionRepo.Collect(r.Context(), collectReq)
	if err != nil {
		if errors.Is(err, collection.ErrKitNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Race kit not found", requestID)
			return
		}
		if errors.Is(err, collection.ErrAlreadyCollected) {
			response.Err(w, http.StatusConflict, "ALREADY_COLLECTED", "Race kit has already been collected", requestID)
			return
		}
		slog.Error("failed to collect kit", "error", err, "kitId", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record kit collection", requestID)
		return
	}

	resp := collectKitResponse{
		ID:             kc.ID.String(),
		RaceKitID:      kc.RaceKitID.String(),
		CollectionType: kc.CollectionType,
		CollectedAt:    kc.CollectedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if kc.RepresentativeID != nil {
		repID := kc.RepresentativeID.String()
		resp.RepresentativeID = &repID
	}

	response.Success(w, http.StatusCreated, resp, requestID)
}

// ExportCollections handles GET /kits/collections/export, streaming the
// collection log as an Excel workbook.
func (h *KitHandler) ExportCollections(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	records, err := h.collectionRepo.ListRecords(r.Context())
	if err != nil {
		slog.Error("failed to list collection records", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export collections", requestID)
		return
	}

	data, err := report.CollectionLog(records)
	if err != nil {
		slog.Error("failed to build collection report", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export collections", requestID)
		return
	}

	filename := fmt.Sprintf("kit-collections-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write collection report", "error", err)
	}
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
