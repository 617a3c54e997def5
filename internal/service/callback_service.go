package service

import (
	"context"
	"errors"
	"time"

	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/kopahq/kopa-backend/internal/notify"
	"github.com/kopahq/kopa-backend/internal/repository/storage"
	"github.com/kopahq/kopa-backend/internal/util"
	"github.com/kopahq/kopa-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// CallbackOutcome classifies what happened to one inbound payment. The
// webhook acknowledges the gateway the same way regardless; the outcome is
// for logging and for tests.
type CallbackOutcome string

const (
	OutcomeApplied   CallbackOutcome = "applied"
	OutcomeDuplicate CallbackOutcome = "duplicate"
	OutcomeUnmatched CallbackOutcome = "unmatched"
	OutcomeFailed    CallbackOutcome = "failed"
)

// CallbackService runs the payment pipeline: dedup, match, allocate, notify
type CallbackService struct {
	matcher        Matcher
	allocator      Allocator
	repaymentRepo  domain.RepaymentRepository
	unmatchedRepo  domain.UnmatchedPaymentRepository
	archiveRepo    storage.ArchiveRepository
	notifier       notify.Notifier
	eventPublisher websocket.EventPublisher
}

// NewCallbackService creates a new CallbackService
func NewCallbackService(matcher Matcher, allocator Allocator, repaymentRepo domain.RepaymentRepository, unmatchedRepo domain.UnmatchedPaymentRepository, archiveRepo storage.ArchiveRepository, notifier notify.Notifier) *CallbackService {
	return &CallbackService{
		matcher:       matcher,
		allocator:     allocator,
		repaymentRepo: repaymentRepo,
		unmatchedRepo: unmatchedRepo,
		archiveRepo:   archiveRepo,
		notifier:      notifier,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CallbackService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// ArchiveRaw stores the payload exactly as received, before any validation.
// Best effort: an archive failure is logged and never blocks the pipeline.
func (s *CallbackService) ArchiveRaw(ctx context.Context, event *domain.PaymentEvent, payload []byte) {
	if s.archiveRepo == nil {
		return
	}
	transID := "unparsed"
	receivedAt := time.Now()
	if event != nil {
		transID = event.TransID
		receivedAt = event.ReceivedAt
	}
	key, err := s.archiveRepo.Archive(ctx, transID, receivedAt, payload)
	if err != nil {
		log.Error().Err(err).Str("trans_id", transID).Msg("Failed to archive callback payload")
		return
	}
	log.Debug().Str("trans_id", transID).Str("key", key).Msg("Archived callback payload")
}

// Process applies one validated payment event end to end. It never returns a
// business failure as an error: an unmatchable payment or a failed allocation
// lands in the unmatched holding area and is reported through the outcome.
// Only the returned outcome distinguishes those cases from success.
func (s *CallbackService) Process(ctx context.Context, event *domain.PaymentEvent, rawPayload []byte) (CallbackOutcome, error) {
	// Dedup before any work: a redelivered transaction id is a no-op
	exists, err := s.repaymentRepo.ExistsByTransID(event.TransID)
	if err != nil {
		return OutcomeFailed, err
	}
	if exists {
		log.Info().Str("trans_id", event.TransID).Msg("Duplicate transaction, ignoring")
		return OutcomeDuplicate, nil
	}

	loan, err := s.matcher.Match(event.BillRef, event.MSISDN)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentUnresolved) {
			s.recordUnmatched(event, rawPayload, "no matching loan")
			return OutcomeUnmatched, nil
		}
		return OutcomeFailed, err
	}

	outcome, err := s.allocator.Allocate(ctx, loan.ID, loan.BorrowerID, event.TransID, event.Amount, event.ReceivedAt)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateTransaction) {
			// A concurrent delivery of the same transaction won the race
			log.Info().Str("trans_id", event.TransID).Msg("Duplicate transaction, ignoring")
			return OutcomeDuplicate, nil
		}
		log.Error().Err(err).Str("trans_id", event.TransID).Str("loan_id", loan.ID.String()).Msg("Allocation failed")
		s.recordUnmatched(event, rawPayload, "allocation failed: "+err.Error())
		return OutcomeFailed, nil
	}

	s.notifyBorrower(ctx, event, loan, outcome)

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(loan.OrganizationID, websocket.RepaymentCreated(map[string]interface{}{
			"repaymentId":  outcome.RepaymentID,
			"loanId":       loan.ID,
			"transId":      event.TransID,
			"amount":       event.Amount,
			"balanceAfter": outcome.BalanceAfter,
		}))
		if outcome.LoanStatus == domain.LoanStatusCompleted {
			s.eventPublisher.Publish(loan.OrganizationID, websocket.LoanCompleted(map[string]interface{}{
				"loanId": loan.ID,
			}))
		}
	}

	return OutcomeApplied, nil
}

// recordUnmatched parks the payment for manual reconciliation
func (s *CallbackService) recordUnmatched(event *domain.PaymentEvent, rawPayload []byte, reason string) {
	record, err := s.unmatchedRepo.Create(&domain.UnmatchedPayment{
		TransID: event.TransID,
		BillRef: event.BillRef,
		MSISDN:  event.MSISDN,
		Amount:  event.Amount,
		Payload: rawPayload,
		Reason:  reason,
		Status:  domain.UnmatchedPending,
	})
	if err != nil {
		log.Error().Err(err).Str("trans_id", event.TransID).Msg("Failed to record unmatched payment")
		return
	}
	log.Warn().Str("trans_id", event.TransID).Str("reason", reason).Msg("Payment held as unmatched")

	// No tenant is known yet for an unmatched payment, so notify everyone
	if s.eventPublisher != nil {
		s.eventPublisher.PublishAll(websocket.UnmatchedPaymentCreated(record))
	}
}

// notifyBorrower sends the balance SMS. Failures are logged and swallowed:
// the repayment has already committed and notification must not undo that.
func (s *CallbackService) notifyBorrower(ctx context.Context, event *domain.PaymentEvent, loan *domain.Loan, outcome *AllocationOutcome) {
	if s.notifier == nil {
		return
	}
	phone, ok := util.NormalizePhone(event.MSISDN)
	if !ok {
		log.Warn().Str("trans_id", event.TransID).Msg("Cannot normalize payer phone, skipping SMS")
		return
	}
	err := s.notifier.SendBalanceNotification(ctx, phone, notify.BalanceNotification{
		LoanID:  loan.ID.String(),
		Amount:  event.Amount,
		Balance: outcome.BalanceAfter,
		Status:  outcome.LoanStatus,
	})
	if err != nil {
		log.Error().Err(err).Str("trans_id", event.TransID).Msg("Failed to send balance SMS")
	}
}
