package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/pgvector/pgvector-go"

	"motoprice/internal/metrics"
	"motoprice/internal/model"
	"motoprice/internal/pricing"
	"motoprice/internal/repository"
	"motoprice/internal/utils"
)

var (
	// ErrTerminalState rejects moderation of an approved or rejected listing.
	ErrTerminalState = errors.New("listing is in a terminal state")
	// ErrInvalidAction rejects an unknown moderation action.
	ErrInvalidAction = errors.New("unknown moderation action")
)

// ModerationService owns the listing lifecycle: intake with automatic anomaly
// screening, and reviewer transitions guarded by optimistic concurrency.
type ModerationService struct {
	store     ModerationStore
	predictor *pricing.Predictor
	scorer    *pricing.Scorer
	encoder   FeatureEncoder
	audit     AuditWriter
	metrics   *metrics.Registry
}

func NewModerationService(
	store ModerationStore,
	predictor *pricing.Predictor,
	scorer *pricing.Scorer,
	encoder FeatureEncoder,
	audit AuditWriter,
	m *metrics.Registry,
) *ModerationService {
	return &ModerationService{
		store:     store,
		predictor: predictor,
		scorer:    scorer,
		encoder:   encoder,
		audit:     audit,
		metrics:   m,
	}
}

// Submit screens a new listing and inserts it into the working set. An
// anomalous asking price lands in the flagged state, everything else starts
// pending review.
func (s *ModerationService) Submit(ctx context.Context, req *model.SubmitListingRequest) (*model.Listing, error) {
	price, err := s.predictor.PredictPrice(&req.VehicleAttributes)
	if err != nil {
		s.metrics.PredictionFailures.Inc()
		return nil, err
	}
	s.metrics.PredictionsTotal.Inc()

	verdict, err := s.scorer.Score(req.AskingPrice, price)
	if err != nil {
		return nil, err
	}
	s.metrics.AnomalyVerdicts.WithLabelValues(string(verdict.Classification)).Inc()

	status := model.StatusPending
	if verdict.IsAnomaly {
		status = model.StatusFlaggedAnomaly
	}

	listing := &model.Listing{
		VehicleAttributes: req.VehicleAttributes,
		AskingPrice:       req.AskingPrice,
		PredictedPrice:    price,
		Residual:          verdict.Residual,
		AnomalyFlag:       verdict.IsAnomaly,
		Status:            status,
	}
	if req.Description != "" {
		listing.Description = &req.Description
	}

	if s.encoder != nil {
		vec, err := s.encoder.Encode(s.predictor.Normalize(&req.VehicleAttributes))
		if err != nil {
			// Similarity search degrades for this row; the listing itself is fine.
			log.Printf("⚠️ feature encoding failed for %s: %v", req.Summary(), err)
		} else {
			listing.FeatureVec = pgvector.NewVector(vec)
		}
	}

	if err := s.store.InsertListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to insert listing: %w", err)
	}
	s.metrics.SubmissionsTotal.Inc()

	if listing.AnomalyFlag {
		log.Printf("🚩 listing %d flagged %s: asking %s vs predicted %s",
			listing.ID, verdict.Classification,
			utils.FormatVND(listing.AskingPrice), utils.FormatVND(listing.PredictedPrice))
	}

	if s.audit != nil {
		if err := s.audit.AppendSubmission(listing); err != nil {
			log.Printf("⚠️ audit write failed for listing %d: %v", listing.ID, err)
		}
	}
	return listing, nil
}

// Moderate applies one reviewer action to a listing. The version must match
// the version the reviewer read; otherwise the store reports a conflict.
// Approving clears the anomaly flag: a human decision overrides the model.
// Rejecting removes the row from the working set; the submission log keeps
// the history.
func (s *ModerationService) Moderate(ctx context.Context, id int64, action model.ModerationAction, version int64) (*model.Listing, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	current, err := s.store.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("%w: listing %d is %s", ErrTerminalState, id, current.Status)
	}

	var updated *model.Listing
	switch action {
	case model.ActionApprove:
		updated, err = s.store.UpdateListingStatus(ctx, id, model.StatusApproved, false, version)
	case model.ActionRequestFix:
		updated, err = s.store.UpdateListingStatus(ctx, id, model.StatusNeedsRevision, current.AnomalyFlag, version)
	case model.ActionReject:
		if err = s.store.DeleteListing(ctx, id, version); err == nil {
			// Final snapshot of a row that no longer exists. The version is
			// the last persisted one, not a usable concurrency token.
			final := *current
			final.Status = model.StatusRejected
			updated = &final
		}
	}
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.metrics.ModerationConflicts.Inc()
		}
		return nil, err
	}

	s.metrics.ModerationTransitions.WithLabelValues(string(action)).Inc()
	return updated, nil
}
