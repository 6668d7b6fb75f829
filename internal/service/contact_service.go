package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/internal/observability/metrics"
	"github.com/aryan0dhankhar/meetlog/internal/security"
	"github.com/aryan0dhankhar/meetlog/internal/security/audit"
)

// ContactService implements the meeting record lifecycle for an acting member.
type ContactService struct {
	repo     domain.ContactRepository
	authz    *security.AuthorizationService
	auditLog *audit.Logger
	logger   *slog.Logger
}

// NewContactService creates a new meeting record service
func NewContactService(
	repo domain.ContactRepository,
	authz *security.AuthorizationService,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	if authz == nil {
		authz = security.NewAuthorizationService(logger)
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &ContactService{repo: repo, authz: authz, auditLog: auditLog, logger: logger}
}

// Create stores a record owned by actor in actor's department. Association
// ids that do not resolve are dropped; the returned record shows what was kept.
func (s *ContactService) Create(ctx context.Context, actor *domain.Member, in domain.NewMeetingRecord) (*domain.MeetingRecord, error) {
	if in.Status != domain.StatusDraft && in.Status != domain.StatusFinalized {
		return nil, fmt.Errorf("%w: status must be 0 (draft) or 1 (finalized)", domain.ErrValidation)
	}

	ownerID := actor.ID
	record := &domain.MeetingRecord{
		ContactDate:  in.ContactDate,
		Location:     in.Location,
		Title:        in.Title,
		SummaryText:  in.SummaryText,
		RawText:      in.RawText,
		Details:      in.Details,
		Status:       in.Status,
		DepartmentID: actor.DepartmentID,
		OwnerID:      &ownerID,
	}

	var created *domain.MeetingRecord
	err := s.repo.WithTx(ctx, func(tx domain.ContactRepository) error {
		if err := tx.Create(ctx, record); err != nil {
			return err
		}
		if err := tx.ReplacePersons(ctx, record.ID, uniqueIDs(in.PersonIDs)); err != nil {
			return err
		}
		if err := tx.ReplaceCompanions(ctx, record.ID, uniqueIDs(in.CompanionIDs)); err != nil {
			return err
		}
		var err error
		created, err = tx.GetByID(ctx, record.ID)
		return err
	})
	if err != nil {
		metrics.ObserveRecordOp("create", "error")
		return nil, err
	}

	metrics.ObserveRecordOp("create", "success")
	s.auditLog.LogRecord(ctx, actor.ID, "create", created.ID, "success")
	return created, nil
}

// Get returns a record visible to actor: same department or authored by actor.
func (s *ContactService) Get(ctx context.Context, actor *domain.Member, id int64) (*domain.MeetingRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(actor, record, security.ActionRead); err != nil {
		return nil, err
	}
	return record, nil
}

// Update applies patch to a record authored by actor. Non-owners get
// domain.ErrNotFound. A discarded record cannot be changed.
func (s *ContactService) Update(ctx context.Context, actor *domain.Member, id int64, patch domain.MeetingRecordPatch) (*domain.MeetingRecord, error) {
	var updated *domain.MeetingRecord
	err := s.repo.WithTx(ctx, func(tx domain.ContactRepository) error {
		record, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.authz.Authorize(actor, record, security.ActionUpdate); err != nil {
			return err
		}
		if record.Status == domain.StatusDiscarded {
			return fmt.Errorf("%w: discarded records are read-only", domain.ErrValidation)
		}
		if patch.Status != nil {
			next := *patch.Status
			if !next.Valid() {
				return fmt.Errorf("%w: unknown status %d", domain.ErrValidation, int(next))
			}
			if !record.Status.CanTransitionTo(next) {
				return fmt.Errorf("%w: cannot move a %s record to %s", domain.ErrValidation, record.Status, next)
			}
			record.Status = next
		}
		patch.Apply(record)

		if err := tx.Update(ctx, record); err != nil {
			return err
		}
		if patch.PersonIDs != nil {
			if err := tx.ReplacePersons(ctx, record.ID, uniqueIDs(*patch.PersonIDs)); err != nil {
				return err
			}
		}
		if patch.CompanionIDs != nil {
			if err := tx.ReplaceCompanions(ctx, record.ID, uniqueIDs(*patch.CompanionIDs)); err != nil {
				return err
			}
		}
		updated, err = tx.GetByID(ctx, record.ID)
		return err
	})
	if err != nil {
		metrics.ObserveRecordOp("update", resultLabel(err))
		return nil, err
	}

	metrics.ObserveRecordOp("update", "success")
	s.auditLog.LogRecord(ctx, actor.ID, "update", updated.ID, "success")
	return updated, nil
}

// Discard soft-deletes a record authored by actor. Discarding an already
// discarded record succeeds without a write.
func (s *ContactService) Discard(ctx context.Context, actor *domain.Member, id int64) error {
	err := s.repo.WithTx(ctx, func(tx domain.ContactRepository) error {
		record, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.authz.Authorize(actor, record, security.ActionDiscard); err != nil {
			return err
		}
		if record.Status == domain.StatusDiscarded {
			return nil
		}
		record.Status = domain.StatusDiscarded
		return tx.Update(ctx, record)
	})
	if err != nil {
		metrics.ObserveRecordOp("discard", resultLabel(err))
		return err
	}

	metrics.ObserveRecordOp("discard", "success")
	s.auditLog.LogRecord(ctx, actor.ID, "discard", id, "success")
	return nil
}

// ListDrafts returns actor's own drafts, most recent meeting first.
func (s *ContactService) ListDrafts(ctx context.Context, actor *domain.Member, page domain.Page) ([]*domain.MeetingRecord, error) {
	return s.listOwn(ctx, actor, domain.StatusDraft, page)
}

// ListHistory returns actor's own finalized records, most recent meeting first.
func (s *ContactService) ListHistory(ctx context.Context, actor *domain.Member, page domain.Page) ([]*domain.MeetingRecord, error) {
	return s.listOwn(ctx, actor, domain.StatusFinalized, page)
}

func (s *ContactService) listOwn(ctx context.Context, actor *domain.Member, status domain.Status, page domain.Page) ([]*domain.MeetingRecord, error) {
	records, err := s.repo.ListByOwner(ctx, actor.ID, status, page)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*domain.MeetingRecord{}
	}
	return records, nil
}

// Search finds finalized records in actor's department whose title or any
// linked business card name contains keyword.
func (s *ContactService) Search(ctx context.Context, actor *domain.Member, keyword string, page domain.Page) (domain.PageResult[*domain.MeetingRecord], error) {
	records, total, err := s.repo.Search(ctx, actor.DepartmentID, keyword, page)
	if err != nil {
		return domain.PageResult[*domain.MeetingRecord]{}, err
	}
	return domain.NewPageResult(records, total, page), nil
}

func uniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
