package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/internal/security/middleware"
	"github.com/aryan0dhankhar/meetlog/internal/service"
)

// SummarizeRequest is the body of POST /api/contacts/summarize.
type SummarizeRequest struct {
	Text string `json:"text"`
}

// SummarizeResponse carries a generated summary.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// ContactHandler serves the meeting record endpoints. Every route behind it
// requires an authenticated member.
type ContactHandler struct {
	contacts  *service.ContactService
	summaries *service.SummaryService
	paging    Paging
	logger    *slog.Logger
}

// NewContactHandler creates a new meeting record handler
func NewContactHandler(contacts *service.ContactService, summaries *service.SummaryService, paging Paging, logger *slog.Logger) *ContactHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactHandler{contacts: contacts, summaries: summaries, paging: paging, logger: logger}
}

// Create handles POST /api/contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.MemberFromContext(r.Context())

	var in domain.NewMeetingRecord
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	record, err := h.contacts.Create(r.Context(), actor, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// Get handles GET /api/contacts/{id}
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	record, err := h.contacts.Get(r.Context(), middleware.MemberFromContext(r.Context()), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Update handles PUT /api/contacts/{id}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var patch domain.MeetingRecordPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}

	record, err := h.contacts.Update(r.Context(), middleware.MemberFromContext(r.Context()), id, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Delete handles DELETE /api/contacts/{id}. The record is discarded, not removed.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.contacts.Discard(r.Context(), middleware.MemberFromContext(r.Context()), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "record discarded"})
}

// Drafts handles GET /api/contacts/drafts
func (h *ContactHandler) Drafts(w http.ResponseWriter, r *http.Request) {
	page, err := h.paging.pageFromQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	records, err := h.contacts.ListDrafts(r.Context(), middleware.MemberFromContext(r.Context()), page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// History handles GET /api/contacts/history
func (h *ContactHandler) History(w http.ResponseWriter, r *http.Request) {
	page, err := h.paging.pageFromQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	records, err := h.contacts.ListHistory(r.Context(), middleware.MemberFromContext(r.Context()), page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Search handles POST /api/contacts/search
func (h *ContactHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	page, err := h.paging.page(req.Page, req.PerPage)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.contacts.Search(r.Context(), middleware.MemberFromContext(r.Context()), req.Keyword, page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Summarize handles POST /api/contacts/summarize. Nothing is stored.
func (h *ContactHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	summary, err := h.summaries.Summarize(r.Context(), req.Text)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, SummarizeResponse{Summary: summary})
}
