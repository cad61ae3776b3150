package service

import (
	"context"

	"github.com/suteetoe/notabase/internal/model"
	"github.com/suteetoe/notabase/internal/query"
	"github.com/suteetoe/notabase/internal/repository"
	"github.com/suteetoe/notabase/prometheus"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ActivityService owns the append-only audit log.
type ActivityService struct {
	repo repository.ActivityRepository
}

// NewActivityService wires the activity service.
func NewActivityService(repo repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Append writes one audit entry. It is best-effort: a failed write is logged
// and counted but never surfaces to the caller, so a mutation's primary
// effect cannot fail because audit logging failed.
func (s *ActivityService) Append(ctx context.Context, tenantID, userID uint, action string, details map[string]interface{}) {
	entry := &model.ActivityLog{
		TenantID: tenantID,
		UserID:   userID,
		Action:   action,
		Details:  datatypes.JSONMap(details),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		prometheus.RecordAuditFailure()
		zap.L().Warn("audit write failed",
			zap.Uint("tenant_id", tenantID),
			zap.String("action", action),
			zap.Error(err))
	}
}

// List returns the tenant's audit entries, most recent first.
func (s *ActivityService) List(ctx context.Context, p *Principal, page, limit int) ([]model.ActivityLog, error) {
	if err := authorize(p, model.RoleViewer); err != nil {
		return nil, err
	}
	offset, limit := query.Paginate(page, limit, query.DefaultActivityLimit)
	return s.repo.ListByTenant(ctx, p.TenantID, offset, limit)
}
