package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/internal/service"
)

// CardRequest is the body of POST /api/cards.
type CardRequest struct {
	Name       string `json:"name"`
	Company    string `json:"company"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Memo       string `json:"memo"`
}

// CardHandler serves the business card directory
type CardHandler struct {
	cards  *service.CardService
	paging Paging
	logger *slog.Logger
}

// NewCardHandler creates a new business card handler
func NewCardHandler(cards *service.CardService, paging Paging, logger *slog.Logger) *CardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardHandler{cards: cards, paging: paging, logger: logger}
}

// Create handles POST /api/cards
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	card, err := h.cards.Create(r.Context(), &domain.BusinessCard{
		Name:       req.Name,
		Company:    req.Company,
		Department: req.Department,
		Position:   req.Position,
		Memo:       req.Memo,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// Get handles GET /api/cards/{id}
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	card, err := h.cards.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// List handles GET /api/cards
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.paging.pageFromQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	cards, err := h.cards.List(r.Context(), page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// Search handles POST /api/cards/search
func (h *CardHandler) Search(w http.ResponseWriter, r *http.Request) {
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
	result, err := h.cards.Search(r.Context(), req.Keyword, page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// MemberHandler serves the read-only members directory
type MemberHandler struct {
	members *service.MemberService
	paging  Paging
	logger  *slog.Logger
}

// NewMemberHandler creates a new members directory handler
func NewMemberHandler(members *service.MemberService, paging Paging, logger *slog.Logger) *MemberHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemberHandler{members: members, paging: paging, logger: logger}
}

// Get handles GET /api/members/{id}
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	member, err := h.members.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// List handles GET /api/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.paging.pageFromQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	members, err := h.members.List(r.Context(), page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// Search handles POST /api/members/search
func (h *MemberHandler) Search(w http.ResponseWriter, r *http.Request) {
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
	result, err := h.members.Search(r.Context(), req.Keyword, page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
