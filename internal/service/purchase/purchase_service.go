// internal/service/purchase/purchase_service.go
package purchase

import (
	"context"
	"fmt"
	"time"

	"agentmarket-service/internal/domain/agent"
	"agentmarket-service/internal/domain/notification"
	"agentmarket-service/internal/domain/purchase"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/repository/postgres"
	notifyUsecase "agentmarket-service/internal/service/notification"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// PurchaseService records completed transactions. The ownership check, the
// purchase insert, and the aggregate counter increment run in one
// transaction: concurrent purchases of the same agent cannot lose
// increments, and a duplicate (buyer, agent version) pair cannot produce two
// rows.
type PurchaseService struct {
	purchaseRepo *postgres.PurchaseRepository
	agentRepo    *postgres.AgentRepository
	notifService *notifyUsecase.NotificationService
	db           *postgres.DB
	logger       *zap.Logger
}

func NewPurchaseService(
	purchaseRepo *postgres.PurchaseRepository,
	agentRepo *postgres.AgentRepository,
	notifService *notifyUsecase.NotificationService,
	db *postgres.DB,
	logger *zap.Logger,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		agentRepo:    agentRepo,
		notifService: notifService,
		db:           db,
		logger:       logger,
	}
}

// RecordPurchase records one buyer's acquisition of one agent version,
// exactly once. A purchase for the same (buyer, agent version) pair of any
// status fails with ErrAlreadyOwned. Only an approved version can be bought
// directly.
func (s *PurchaseService) RecordPurchase(ctx context.Context, buyerID, agentVersionID int64, amount float64) (*purchase.Purchase, error) {
	return s.record(ctx, buyerID, agentVersionID, amount, false)
}

// RecordSettledPurchase records a payment the provider already captured.
// The version may have been superseded or retired between checkout and
// settlement, so archived versions are accepted here; the buyer was charged
// and must receive ownership. Drafts and rejected listings still fail.
func (s *PurchaseService) RecordSettledPurchase(ctx context.Context, buyerID, agentVersionID int64, amount float64) (*purchase.Purchase, error) {
	return s.record(ctx, buyerID, agentVersionID, amount, true)
}

func (s *PurchaseService) record(ctx context.Context, buyerID, agentVersionID int64, amount float64, allowArchived bool) (*purchase.Purchase, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := s.agentRepo.FindByIDForUpdateWithTx(ctx, tx, agentVersionID)
	if err != nil {
		return nil, err
	}

	purchasable := a.Status == agent.StatusApproved ||
		(allowArchived && a.Status == agent.StatusArchived)
	if !purchasable {
		return nil, xerrors.ErrInvalidInput
	}

	owned, err := s.purchaseRepo.ExistsByBuyerAndVersionWithTx(ctx, tx, buyerID, agentVersionID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, xerrors.ErrAlreadyOwned
	}

	p := &purchase.Purchase{
		Reference:      ulid.Make().String(),
		BuyerID:        buyerID,
		AgentID:        a.LineageID(),
		AgentVersionID: agentVersionID,
		Amount:         amount,
		Status:         purchase.StatusCompleted,
		PurchasedAt:    time.Now(),
	}

	if err := s.purchaseRepo.CreateWithTx(ctx, tx, p); err != nil {
		return nil, err
	}

	if err := s.agentRepo.IncrementPurchaseCountWithTx(ctx, tx, agentVersionID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifService.Notify(ctx, buyerID, notification.KindPurchaseReceipt,
		"Purchase complete",
		fmt.Sprintf("You now own %q (purchase %s).", a.Name, p.Reference),
	)
	s.notifService.Notify(ctx, a.SellerID, notification.KindAgentSold,
		"Agent sold",
		fmt.Sprintf("Your agent %q was purchased.", a.Name),
	)

	s.logger.Info("purchase recorded",
		zap.String("reference", p.Reference),
		zap.Int64("buyer_id", buyerID),
		zap.Int64("agent_version_id", agentVersionID),
		zap.Float64("amount", amount),
	)

	return p, nil
}

// ListByBuyer retrieves the buyer's purchase history.
func (s *PurchaseService) ListByBuyer(ctx context.Context, buyerID int64) ([]purchase.Purchase, error) {
	return s.purchaseRepo.ListByBuyer(ctx, buyerID)
}
