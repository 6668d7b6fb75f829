package security

import (
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
)

// Action identifies what operation is being performed on a meeting record
type Action string

const (
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDiscard Action = "discard"
)

// AuthorizationService decides who may see or change a meeting record.
//
// Reading is allowed to members of the record's department and to its owner.
// Writing is allowed to the owner only, and a refusal is reported as not
// found so callers cannot probe for records they do not own.
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// CanView reports whether member may read record.
func (as *AuthorizationService) CanView(member *domain.Member, record *domain.MeetingRecord) bool {
	if member == nil || record == nil {
		return false
	}
	return record.DepartmentID == member.DepartmentID || record.OwnedBy(member.ID)
}

// Authorize checks member against record for action. It returns
// domain.ErrForbidden for a refused read and domain.ErrNotFound for a refused
// write.
func (as *AuthorizationService) Authorize(member *domain.Member, record *domain.MeetingRecord, action Action) error {
	switch action {
	case ActionRead:
		if as.CanView(member, record) {
			return nil
		}
		as.logger.Warn("record access denied",
			slog.Int64("member_id", memberID(member)),
			slog.Int64("record_id", record.ID),
			slog.String("action", string(action)),
		)
		return fmt.Errorf("meeting record: %w", domain.ErrForbidden)
	case ActionUpdate, ActionDiscard:
		if member != nil && record.OwnedBy(member.ID) {
			return nil
		}
		as.logger.Warn("record write denied",
			slog.Int64("member_id", memberID(member)),
			slog.Int64("record_id", record.ID),
			slog.String("action", string(action)),
		)
		return fmt.Errorf("meeting record: %w", domain.ErrNotFound)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func memberID(m *domain.Member) int64 {
	if m == nil {
		return 0
	}
	return m.ID
}
