package leaverequest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-hrportal/internal/events"
	"go-hrportal/internal/leavebalance"
	leavebalanceerrors "go-hrportal/internal/leavebalance/errors"
	leaverequesterrors "go-hrportal/internal/leaverequest/errors"
	"go-hrportal/internal/leavetype"
	leavetypeerrors "go-hrportal/internal/leavetype/errors"
	"go-hrportal/internal/messaging/kafka"
	"go-hrportal/internal/shared/contextutil"
	"go-hrportal/internal/shared/counter"
	"go-hrportal/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const requestNumberCounter = "LEAVE_REQUEST"

//go:generate mockgen -source=leaverequest_service.go -destination=mock/leaverequest_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	GetByID(ctx context.Context, id string) (LeaveRequestResponse, error)
	GetMine(ctx context.Context, userID string) ([]LeaveRequestResponse, error)
	GetAll(ctx context.Context) ([]LeaveRequestResponse, error)
	ApproveByManager(ctx context.Context, actorID, id string) (LeaveRequestResponse, error)
	RejectByManager(ctx context.Context, actorID, id, reason string) (LeaveRequestResponse, error)
	ApproveByHr(ctx context.Context, actorID, id string) (LeaveRequestResponse, error)
	RejectByHr(ctx context.Context, actorID, id, reason string) (LeaveRequestResponse, error)
	Cancel(ctx context.Context, actorID, id string) (LeaveRequestResponse, error)
	RequestCancellation(ctx context.Context, actorID, id, reason string) (LeaveRequestResponse, error)
	ApproveCancellation(ctx context.Context, actorID, id string) (LeaveRequestResponse, error)
	RejectCancellation(ctx context.Context, actorID, id string) (LeaveRequestResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	balanceRepo leavebalance.Repository
	typeRepo    leavetype.Repository
	userRepo    user.Repository
	counter     counter.Repository
	outbox      kafka.OutboxRepository
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balanceRepo leavebalance.Repository,
	typeRepo leavetype.Repository,
	userRepo user.Repository,
	counterRepo counter.Repository,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, balanceRepo, typeRepo, userRepo, counterRepo, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	balanceRepo leavebalance.Repository,
	typeRepo leavetype.Repository,
	userRepo user.Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leaverequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		balanceRepo: balanceRepo,
		typeRepo:    typeRepo,
		userRepo:    userRepo,
		counter:     counterRepo,
		outbox:      outboxRepo,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateLeaveRequestRequest) (LeaveRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave request requested",
		zap.String("request_id", rid),
		zap.String("user_id", actorID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidActorID
	}
	typeUUID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidLeaveTypeID
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if startDate.After(endDate) {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidDateRange
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave request begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lt, err := s.typeRepo.FindByID(ctx, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveRequestResponse{}, err
	}
	if !lt.IsActive {
		return LeaveRequestResponse{}, leavetypeerrors.ErrLeaveTypeInactive
	}

	requester, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidUserID
		}
		return LeaveRequestResponse{}, err
	}
	if lt.GenderRestriction != "" && lt.GenderRestriction != requester.Gender {
		return LeaveRequestResponse{}, leaverequesterrors.ErrGenderRestricted
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, actorID, startDate, endDate, nil)
	if err != nil {
		s.logger.Error("create leave request overlap check failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave request overlap detected",
			zap.String("user_id", actorID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveRequestResponse{}, leaverequesterrors.ErrLeaveOverlap
	}

	totalDays := computeTotalDays(startDate, endDate, req.HalfDayStart, req.HalfDayEnd)

	// Sufficiency is only a pre-check here; the actual deduction and
	// its row lock happen at HR approval.
	balance, err := s.balanceRepo.FindByUserTypeYear(ctx, actorUUID, typeUUID, startDate.Year())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leavebalanceerrors.ErrBalanceNotFound
		}
		return LeaveRequestResponse{}, err
	}
	if !balance.HasSufficient(totalDays) {
		return LeaveRequestResponse{}, leavebalanceerrors.ErrInsufficientBalance
	}

	seq, err := s.counter.GetNextValue(ctx, requestNumberCounter)
	if err != nil {
		s.logger.Error("create leave request counter failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	l := &LeaveRequest{
		ID:            uuid.New(),
		RequestNumber: fmt.Sprintf("LR-%d-%04d", startDate.Year(), seq),
		UserID:        actorUUID,
		LeaveTypeID:   typeUUID,
		StartDate:     startDate,
		EndDate:       endDate,
		HalfDayStart:  req.HalfDayStart,
		HalfDayEnd:    req.HalfDayEnd,
		TotalDays:     totalDays,
		Reason:        req.Reason,
		Status:        StatusPendingManager,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave request persist failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave request commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("create leave request success",
		zap.String("leave_request_id", l.ID.String()),
		zap.String("request_number", l.RequestNumber),
		zap.Float64("total_days", totalDays),
	)

	l.LeaveType = lt
	l.User = requester
	return mapToResponse(*l), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveRequestResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrLeaveRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) GetMine(ctx context.Context, userID string) ([]LeaveRequestResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, leaverequesterrors.ErrInvalidUserID
	}
	leaves, err := s.repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveRequestResponse, error) {
	leaves, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) ApproveByManager(ctx context.Context, actorID, id string) (LeaveRequestResponse, error) {
	return s.transition(ctx, actorID, id, actionManagerApprove, nil)
}

func (s *service) RejectByManager(ctx context.Context, actorID, id, reason string) (LeaveRequestResponse, error) {
	return s.transition(ctx, actorID, id, actionManagerReject, &reason)
}

func (s *service) ApproveByHr(ctx context.Context, actorID, id string) (LeaveRequestResponse, error) {
	return s.transition(ctx, actorID, id, actionHrApprove, nil)
}

func (s *service) RejectByHr(ctx context.Context, actorID, id, reason string) (LeaveRequestResponse, error) {
	return s.transition(ctx, actorID, id, actionHrReject, &reason)
}

func (s *service) Cancel(ctx context.Context, actorID, id string) (LeaveRequestResponse, error) {
	return s.transition(ctx, actorID, id, actionCancel, nil)
}

func (s *service) RequestCancellation(ctx context.Context, actorID, id, reason string) (LeaveRequestResponse, error) {
	return s.transition(ctx, actorID, id, actionRequestCancellation, &reason)
}

func (s *service) ApproveCancellation(ctx context.Context, actorID, id string) (LeaveRequestResponse, error) {
	return s.transition(ctx, actorID, id, actionApproveCancellation, nil)
}

func (s *service) RejectCancellation(ctx context.Context, actorID, id string) (LeaveRequestResponse, error) {
	return s.transition(ctx, actorID, id, actionRejectCancellation, nil)
}

const (
	actionManagerApprove      = "manager_approve"
	actionManagerReject       = "manager_reject"
	actionHrApprove           = "hr_approve"
	actionHrReject            = "hr_reject"
	actionCancel              = "cancel"
	actionRequestCancellation = "request_cancellation"
	actionApproveCancellation = "approve_cancellation"
	actionRejectCancellation  = "reject_cancellation"
)

// actionTarget is the whole state machine: each action is valid from a
// fixed set of states and lands on exactly one target. Cancel and
// approve-cancellation both end in CANCELLED but stay distinct actions,
// so an employee cancel can never consume a cancellation appeal and HR
// approval can never fire outside PENDING_HR. The guard runs before
// any write, so a failed transition leaves both the request and the
// balance untouched.
func actionTarget(action, currentStatus string) (string, bool) {
	switch action {
	case actionManagerApprove:
		if currentStatus == StatusPendingManager {
			return StatusPendingHr, true
		}
	case actionManagerReject:
		if currentStatus == StatusPendingManager {
			return StatusRejectedByManager, true
		}
	case actionHrApprove:
		if currentStatus == StatusPendingHr {
			return StatusApproved, true
		}
	case actionHrReject:
		if currentStatus == StatusPendingHr {
			return StatusRejectedByHr, true
		}
	case actionCancel:
		if currentStatus == StatusPendingManager || currentStatus == StatusPendingHr {
			return StatusCancelled, true
		}
	case actionRequestCancellation:
		if currentStatus == StatusApproved {
			return StatusPendingCancellation, true
		}
	case actionApproveCancellation:
		if currentStatus == StatusPendingCancellation {
			return StatusCancelled, true
		}
	case actionRejectCancellation:
		if currentStatus == StatusPendingCancellation {
			return StatusApproved, true
		}
	}
	return "", false
}

// isEmployeeAction marks the actions a requester takes on their own
// request, as opposed to the manager/HR review actions.
func isEmployeeAction(action string) bool {
	return action == actionCancel || action == actionRequestCancellation
}

func (s *service) transition(ctx context.Context, actorID, id, action string, reason *string) (LeaveRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("transition leave request requested",
		zap.String("request_id", rid),
		zap.String("leave_request_id", id),
		zap.String("actor_id", actorID),
		zap.String("action", action),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("transition leave request begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// The locked read pins the status for the guard, so two concurrent
	// transitions of the same request serialize here instead of both
	// passing and double-booking the balance.
	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrLeaveRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}
	if isEmployeeAction(action) && l.UserID != actorUUID {
		return LeaveRequestResponse{}, leaverequesterrors.ErrNotRequestOwner
	}

	targetStatus, ok := actionTarget(action, l.Status)
	if !ok {
		s.logger.Warn("transition leave request invalid",
			zap.String("leave_request_id", id),
			zap.String("from_status", l.Status),
			zap.String("action", action),
		)
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidStatusTransition
	}

	fromStatus := l.Status
	now := time.Now().UTC()

	switch action {
	case actionManagerApprove:
		l.ManagerApprovedBy = &actorUUID
		l.ManagerApprovedAt = &now
	case actionManagerReject, actionHrReject:
		if reason == nil || *reason == "" {
			return LeaveRequestResponse{}, leaverequesterrors.ErrRejectionReasonRequired
		}
		l.RejectionReason = reason
	case actionHrApprove:
		l.HrApprovedBy = &actorUUID
		l.HrApprovedAt = &now
		if err := s.applyBalanceDelta(ctx, tx, l, -l.TotalDays); err != nil {
			return LeaveRequestResponse{}, err
		}
	case actionRequestCancellation:
		if !l.StartDate.After(truncateToDay(now)) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrCancellationWindowClosed
		}
		l.CancellationReason = reason
		l.CancellationRequestedAt = &now
	case actionRejectCancellation:
		// A rejected cancellation only reverts the status; the days
		// stay booked.
		l.CancellationReason = nil
		l.CancellationRequestedAt = nil
	case actionCancel:
		l.CancelledBy = &actorUUID
		l.CancelledAt = &now
	case actionApproveCancellation:
		l.CancelledBy = &actorUUID
		l.CancelledAt = &now
		if err := s.applyBalanceDelta(ctx, tx, l, l.TotalDays); err != nil {
			return LeaveRequestResponse{}, err
		}
	}

	l.Status = targetStatus

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("transition leave request persist failed",
			zap.String("leave_request_id", id),
			zap.String("target_status", targetStatus),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	if action == actionHrApprove {
		if err := s.enqueueApprovedEvent(ctx, tx, l, rid); err != nil {
			return LeaveRequestResponse{}, err
		}
	}
	if action == actionApproveCancellation {
		if err := s.enqueueCancelledEvent(ctx, tx, l, rid); err != nil {
			return LeaveRequestResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("transition leave request commit failed",
			zap.String("leave_request_id", id),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("transition leave request success",
		zap.String("leave_request_id", id),
		zap.String("from_status", fromStatus),
		zap.String("status", targetStatus),
	)
	return mapToResponse(*l), nil
}

// applyBalanceDelta books (negative) or releases (positive) days on the
// request's balance row, under a row lock in the surrounding tx so two
// approvals of the same balance serialize.
func (s *service) applyBalanceDelta(ctx context.Context, tx *sql.Tx, l *LeaveRequest, delta float64) error {
	qtx := s.balanceRepo.WithTx(tx)

	b, err := qtx.FindByUserTypeYearForUpdate(ctx, l.UserID, l.LeaveTypeID, l.StartDate.Year())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound) {
			return leavebalanceerrors.ErrBalanceNotFound
		}
		return err
	}

	if delta < 0 {
		b.Deduct(-delta)
	} else {
		b.Restore(delta)
	}

	return qtx.Update(ctx, b)
}

func (s *service) enqueueApprovedEvent(ctx context.Context, tx *sql.Tx, l *LeaveRequest, rid string) error {
	if s.outbox == nil {
		return nil
	}

	// The locked read skips associations; the payload still wants the
	// display name and color.
	if l.User == nil {
		if u, err := s.userRepo.FindByID(ctx, l.UserID.String()); err == nil {
			l.User = u
		}
	}
	if l.LeaveType == nil {
		if lt, err := s.typeRepo.FindByID(ctx, l.LeaveTypeID.String()); err == nil {
			l.LeaveType = lt
		}
	}

	event := events.LeaveApprovedEvent{
		EventType:      events.EventTypeLeaveApproved,
		LeaveRequestID: l.ID.String(),
		RequestNumber:  l.RequestNumber,
		UserID:         l.UserID.String(),
		StartDate:      l.StartDate.Format("2006-01-02"),
		EndDate:        l.EndDate.Format("2006-01-02"),
		TotalDays:      l.TotalDays,
		OccurredAt:     time.Now().UTC(),
	}
	if l.User != nil {
		event.UserName = l.User.FullName
	}
	if l.LeaveType != nil {
		event.LeaveTypeID = l.LeaveType.ID.String()
		event.LeaveTypeName = l.LeaveType.Name
		event.Color = l.LeaveType.Color
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal leave approved event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	outboxRepo := s.outbox.WithTx(tx)
	if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     event.EventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("leave approved outbox persist failed",
			zap.String("leave_request_id", l.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) enqueueCancelledEvent(ctx context.Context, tx *sql.Tx, l *LeaveRequest, rid string) error {
	if s.outbox == nil {
		return nil
	}

	event := events.LeaveCancelledEvent{
		EventType:      events.EventTypeLeaveCancelled,
		LeaveRequestID: l.ID.String(),
		UserID:         l.UserID.String(),
		OccurredAt:     time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal leave cancelled event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	outboxRepo := s.outbox.WithTx(tx)
	if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     event.EventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("leave cancelled outbox persist failed",
			zap.String("leave_request_id", l.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func computeTotalDays(startDate, endDate time.Time, halfDayStart, halfDayEnd bool) float64 {
	days := endDate.Sub(startDate).Hours()/24 + 1
	if halfDayStart {
		days -= 0.5
	}
	if halfDayEnd && !endDate.Equal(startDate) {
		days -= 0.5
	}
	if days < 0.5 {
		days = 0.5
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaverequesterrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:            l.ID.String(),
		RequestNumber: l.RequestNumber,
		UserID:        l.UserID.String(),
		LeaveTypeID:   l.LeaveTypeID.String(),
		StartDate:     l.StartDate.Format("2006-01-02"),
		EndDate:       l.EndDate.Format("2006-01-02"),
		HalfDayStart:  l.HalfDayStart,
		HalfDayEnd:    l.HalfDayEnd,
		TotalDays:     l.TotalDays,
		Reason:        l.Reason,
		Status:        l.Status,

		RequiresMedicalCertificate: l.RequiresMedicalCertificate(),
	}
	if l.User != nil {
		resp.UserName = l.User.FullName
	}
	if l.LeaveType != nil {
		resp.LeaveTypeName = l.LeaveType.Name
	}
	if l.ManagerApprovedBy != nil {
		v := l.ManagerApprovedBy.String()
		resp.ManagerApprovedBy = &v
	}
	if l.ManagerApprovedAt != nil {
		v := l.ManagerApprovedAt.Format(time.RFC3339)
		resp.ManagerApprovedAt = &v
	}
	if l.HrApprovedBy != nil {
		v := l.HrApprovedBy.String()
		resp.HrApprovedBy = &v
	}
	if l.HrApprovedAt != nil {
		v := l.HrApprovedAt.Format(time.RFC3339)
		resp.HrApprovedAt = &v
	}
	resp.RejectionReason = l.RejectionReason
	resp.CancellationReason = l.CancellationReason
	if l.CancelledAt != nil {
		v := l.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &v
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
