// internal/service/agent/agent_service.go
package agent

import (
	"context"
	"fmt"
	"time"

	"agentmarket-service/internal/domain/agent"
	"agentmarket-service/internal/domain/notification"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/repository/postgres"
	notifyUsecase "agentmarket-service/internal/service/notification"

	"go.uber.org/zap"
)

// AgentService owns the listing lifecycle: seller CRUD on drafts, the
// moderation transitions, and versioning. Every transition runs as a
// read-modify-write transaction: the agent row is locked, the status machine
// is consulted, and only then is the row updated.
type AgentService struct {
	agentRepo    *postgres.AgentRepository
	categoryRepo *postgres.CategoryRepository
	notifService *notifyUsecase.NotificationService
	db           *postgres.DB
	logger       *zap.Logger
}

func NewAgentService(
	agentRepo *postgres.AgentRepository,
	categoryRepo *postgres.CategoryRepository,
	notifService *notifyUsecase.NotificationService,
	db *postgres.DB,
	logger *zap.Logger,
) *AgentService {
	return &AgentService{
		agentRepo:    agentRepo,
		categoryRepo: categoryRepo,
		notifService: notifService,
		db:           db,
		logger:       logger,
	}
}

// CreateDraft creates a new draft listing for the seller.
func (s *AgentService) CreateDraft(ctx context.Context, sellerID int64, req *agent.CreateAgentRequest) (*agent.Agent, error) {
	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		return nil, fmt.Errorf("category not found: %w", err)
	}

	a := &agent.Agent{
		SellerID:    sellerID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Status:      agent.StatusDraft,
		Version:     1,
	}

	if err := s.agentRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("agent draft created",
		zap.Int64("agent_id", a.ID),
		zap.Int64("seller_id", sellerID),
	)

	return a, nil
}

// UpdateDraft updates an editable (draft or rejected) listing owned by the
// seller.
func (s *AgentService) UpdateDraft(ctx context.Context, sellerID, agentID int64, req *agent.UpdateAgentRequest) (*agent.Agent, error) {
	a, err := s.agentRepo.FindByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if a.SellerID != sellerID {
		return nil, xerrors.ErrForbidden
	}

	if !agent.IsEditable(a) {
		return nil, xerrors.ErrInvalidTransition
	}

	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, fmt.Errorf("category not found: %w", err)
		}
		a.CategoryID = *req.CategoryID
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, xerrors.ErrInvalidInput
		}
		a.Price = *req.Price
	}

	if err := s.agentRepo.UpdateDetails(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// SubmitForReview moves a draft or rejected agent into the moderation queue.
// Resubmitting a version hides its parent again until the review resolves.
func (s *AgentService) SubmitForReview(ctx context.Context, sellerID, agentID int64) (*agent.Agent, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := s.agentRepo.FindByIDForUpdateWithTx(ctx, tx, agentID)
	if err != nil {
		return nil, err
	}

	if a.SellerID != sellerID {
		return nil, xerrors.ErrForbidden
	}

	if !agent.CanTransition(a.Status, agent.StatusUnderReview) {
		return nil, xerrors.ErrInvalidTransition
	}

	if err := s.agentRepo.UpdateStatusWithTx(ctx, tx, agentID, agent.StatusUnderReview); err != nil {
		return nil, err
	}

	if a.ParentAgentID.Valid {
		if err := s.agentRepo.FlagLineageUpdateWithTx(ctx, tx, a.ParentAgentID.Int64, true); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	a.Status = agent.StatusUnderReview

	s.logger.Info("agent submitted for review",
		zap.Int64("agent_id", agentID),
		zap.Int64("seller_id", sellerID),
	)

	return a, nil
}

// Approve moves an agent from under_review to approved. When the agent is a
// new version, the parent is superseded in the same transaction so that
// exactly one version per lineage stays publicly visible.
func (s *AgentService) Approve(ctx context.Context, agentID int64) (*agent.Agent, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := s.agentRepo.FindByIDForUpdateWithTx(ctx, tx, agentID)
	if err != nil {
		return nil, err
	}

	if !agent.CanTransition(a.Status, agent.StatusApproved) {
		return nil, xerrors.ErrInvalidTransition
	}

	now := time.Now()
	if err := s.agentRepo.MarkApprovedWithTx(ctx, tx, agentID, now); err != nil {
		return nil, err
	}

	// Whichever version of the lineage is still live retires now. The lineage
	// is addressed through the root so a third or later generation retires
	// its predecessor, not the long-archived root.
	if a.ParentAgentID.Valid {
		if err := s.agentRepo.SupersedeLineageWithTx(ctx, tx, a.ParentAgentID.Int64, a.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	a.Status = agent.StatusApproved

	s.notifService.Notify(ctx, a.SellerID, notification.KindAgentApproved,
		"Listing approved",
		fmt.Sprintf("Your agent %q is now live in the marketplace.", a.Name),
	)

	s.logger.Info("agent approved", zap.Int64("agent_id", agentID))

	return a, nil
}

// Reject moves an agent from under_review to rejected with a mandatory
// reason. Rejecting a new version makes the old version visible again.
func (s *AgentService) Reject(ctx context.Context, agentID int64, reason string) (*agent.Agent, error) {
	if reason == "" {
		return nil, xerrors.ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := s.agentRepo.FindByIDForUpdateWithTx(ctx, tx, agentID)
	if err != nil {
		return nil, err
	}

	if !agent.CanTransition(a.Status, agent.StatusRejected) {
		return nil, xerrors.ErrInvalidTransition
	}

	if err := s.agentRepo.MarkRejectedWithTx(ctx, tx, agentID, reason); err != nil {
		return nil, err
	}

	if a.ParentAgentID.Valid {
		if err := s.agentRepo.FlagLineageUpdateWithTx(ctx, tx, a.ParentAgentID.Int64, false); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	a.Status = agent.StatusRejected

	s.notifService.Notify(ctx, a.SellerID, notification.KindAgentRejected,
		"Listing rejected",
		fmt.Sprintf("Your agent %q was rejected: %s", a.Name, reason),
	)

	s.logger.Info("agent rejected",
		zap.Int64("agent_id", agentID),
		zap.String("reason", reason),
	)

	return a, nil
}

// Archive retires an approved agent from the marketplace.
func (s *AgentService) Archive(ctx context.Context, sellerID, agentID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := s.agentRepo.FindByIDForUpdateWithTx(ctx, tx, agentID)
	if err != nil {
		return err
	}

	if a.SellerID != sellerID {
		return xerrors.ErrForbidden
	}

	if !agent.CanTransition(a.Status, agent.StatusArchived) {
		return xerrors.ErrInvalidTransition
	}

	if err := s.agentRepo.UpdateStatusWithTx(ctx, tx, agentID, agent.StatusArchived); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("agent archived", zap.Int64("agent_id", agentID))

	return nil
}

// NewVersion clones an approved agent as a draft child and flags the parent
// with a pending update, hiding it from the marketplace until the new
// version resolves.
func (s *AgentService) NewVersion(ctx context.Context, sellerID, agentID int64) (*agent.Agent, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	parent, err := s.agentRepo.FindByIDForUpdateWithTx(ctx, tx, agentID)
	if err != nil {
		return nil, err
	}

	if parent.SellerID != sellerID {
		return nil, xerrors.ErrForbidden
	}

	// Only a live listing can spawn a version, and only one update may be
	// pending at a time.
	if parent.Status != agent.StatusApproved || parent.HasActiveUpdate {
		return nil, xerrors.ErrInvalidTransition
	}

	child := &agent.Agent{
		SellerID:    parent.SellerID,
		CategoryID:  parent.CategoryID,
		Name:        parent.Name,
		Description: parent.Description,
		Price:       parent.Price,
		Status:      agent.StatusDraft,
		Version:     parent.Version + 1,
	}
	// Every version row points at the lineage root, so purchases, reviews,
	// and moderation address a lineage through one stable id no matter how
	// many generations it accumulates.
	child.ParentAgentID.Int64 = parent.LineageID()
	child.ParentAgentID.Valid = true

	if err := s.agentRepo.CreateWithTx(ctx, tx, child); err != nil {
		return nil, err
	}

	if err := s.agentRepo.SetHasActiveUpdateWithTx(ctx, tx, parent.ID, true); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("agent version created",
		zap.Int64("parent_agent_id", parent.ID),
		zap.Int64("agent_id", child.ID),
		zap.Int("version", child.Version),
	)

	return child, nil
}

// GetPublic retrieves a publicly visible agent and bumps its view counter.
func (s *AgentService) GetPublic(ctx context.Context, agentID int64) (*agent.Agent, error) {
	a, err := s.agentRepo.FindByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if !agent.IsPubliclyVisible(a) {
		return nil, xerrors.ErrNotFound
	}

	if err := s.agentRepo.IncrementViewCount(ctx, agentID); err != nil {
		s.logger.Warn("failed to increment view count", zap.Int64("agent_id", agentID), zap.Error(err))
	}

	return a, nil
}

// ListPublic retrieves the public marketplace listing.
func (s *AgentService) ListPublic(ctx context.Context, filters *agent.ListFilters) (*agent.ListResult, error) {
	agents, total, err := s.agentRepo.ListPublic(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &agent.ListResult{
		Agents:   agents,
		Total:    total,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	}, nil
}

// ListBySeller retrieves a seller's own listings regardless of status.
func (s *AgentService) ListBySeller(ctx context.Context, sellerID int64) ([]agent.Agent, error) {
	return s.agentRepo.ListBySeller(ctx, sellerID)
}

// GetOwned retrieves one of the seller's own listings.
func (s *AgentService) GetOwned(ctx context.Context, sellerID, agentID int64) (*agent.Agent, error) {
	a, err := s.agentRepo.FindByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if a.SellerID != sellerID {
		return nil, xerrors.ErrForbidden
	}

	return a, nil
}

// ListUnderReview retrieves the moderation queue for admins.
func (s *AgentService) ListUnderReview(ctx context.Context) ([]agent.Agent, error) {
	return s.agentRepo.ListUnderReview(ctx)
}
