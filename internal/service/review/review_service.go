// internal/service/review/review_service.go
package review

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"agentmarket-service/internal/domain/purchase"
	"agentmarket-service/internal/domain/review"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/repository/postgres"

	"go.uber.org/zap"
)

// ReviewService gates review submission on purchase age and non-duplication.
type ReviewService struct {
	reviewRepo   *postgres.ReviewRepository
	purchaseRepo *postgres.PurchaseRepository
	agentRepo    *postgres.AgentRepository
	logger       *zap.Logger

	now func() time.Time
}

func NewReviewService(
	reviewRepo *postgres.ReviewRepository,
	purchaseRepo *postgres.PurchaseRepository,
	agentRepo *postgres.AgentRepository,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:   reviewRepo,
		purchaseRepo: purchaseRepo,
		agentRepo:    agentRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// lineageID resolves whatever agent id the client knows (the visible version
// row or the root) to the lineage root purchases and reviews are stored
// under.
func (s *ReviewService) lineageID(ctx context.Context, agentID int64) (int64, error) {
	a, err := s.agentRepo.FindByID(ctx, agentID)
	if err != nil {
		return 0, err
	}
	return a.LineageID(), nil
}

// CheckEligibility decides whether the buyer may review the agent:
// the buyer needs a completed purchase at least the wait period old, and
// must not have reviewed the purchased version yet. Returns ErrNotFound when
// no such agent exists.
func (s *ReviewService) CheckEligibility(ctx context.Context, buyerID, agentID int64) (*review.Eligibility, error) {
	lineageID, err := s.lineageID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	elig, _, err := s.eligibilityForLineage(ctx, buyerID, lineageID)
	return elig, err
}

// eligibilityForLineage runs the gate against a resolved lineage root. The
// buyer's purchase is returned alongside the verdict so submission can pin
// the reviewed version without a second lookup.
func (s *ReviewService) eligibilityForLineage(ctx context.Context, buyerID, lineageID int64) (*review.Eligibility, *purchase.Purchase, error) {
	p, err := s.purchaseRepo.FindCompletedByBuyerAndAgent(ctx, buyerID, lineageID)
	if errors.Is(err, xerrors.ErrNotFound) {
		return &review.Eligibility{
			Eligible: false,
			Reason:   review.ReasonNoPurchase,
			Message:  "You must purchase this agent before reviewing it.",
		}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	eligibleAt := p.PurchasedAt.Add(review.ReviewWaitPeriod)
	if now.Before(eligibleAt) {
		daysRemaining := int(math.Ceil(eligibleAt.Sub(now).Hours() / 24))
		return &review.Eligibility{
			Eligible:      false,
			Reason:        review.ReasonTooSoon,
			Message:       fmt.Sprintf("Reviews open 14 days after purchase. %d day(s) remaining.", daysRemaining),
			DaysRemaining: daysRemaining,
		}, p, nil
	}

	reviewed, err := s.reviewRepo.ExistsByVersionAndBuyer(ctx, p.AgentVersionID, buyerID)
	if err != nil {
		return nil, nil, err
	}
	if reviewed {
		return &review.Eligibility{
			Eligible: false,
			Reason:   review.ReasonAlreadyReviewed,
			Message:  "You have already reviewed this agent version.",
		}, p, nil
	}

	return &review.Eligibility{Eligible: true}, p, nil
}

// SubmitReview validates the rating, re-checks eligibility server-side
// (a client-supplied eligibility flag is never trusted), and creates the
// review as a verified purchase.
func (s *ReviewService) SubmitReview(ctx context.Context, buyerID, agentID int64, req *review.SubmitReviewRequest) (*review.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, xerrors.ErrInvalidRating
	}

	lineageID, err := s.lineageID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	eligibility, p, err := s.eligibilityForLineage(ctx, buyerID, lineageID)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, &review.NotEligibleError{Reason: eligibility.Reason}
	}

	rv := &review.Review{
		AgentID:          lineageID,
		AgentVersionID:   p.AgentVersionID,
		BuyerID:          buyerID,
		Rating:           req.Rating,
		Comment:          req.Comment,
		VerifiedPurchase: true,
	}

	if err := s.reviewRepo.Create(ctx, rv); err != nil {
		// A concurrent submission can slip past the check; the unique index
		// settles it.
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			return nil, &review.NotEligibleError{Reason: review.ReasonAlreadyReviewed}
		}
		return nil, err
	}

	s.logger.Info("review submitted",
		zap.Int64("buyer_id", buyerID),
		zap.Int64("agent_version_id", p.AgentVersionID),
		zap.Int("rating", req.Rating),
	)

	return rv, nil
}

// ListByAgent retrieves the reviews for an agent lineage, whichever version
// id the client addresses it by.
func (s *ReviewService) ListByAgent(ctx context.Context, agentID int64) ([]review.Review, error) {
	lineageID, err := s.lineageID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByAgent(ctx, lineageID)
}
