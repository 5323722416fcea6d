package calendar

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"time"

	calendarerrors "go-hrportal/internal/calendar/errors"
	"go-hrportal/internal/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var holidayColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

//go:generate mockgen -source=calendar_service.go -destination=mock/calendar_service_mock.go -package=mock
type Service interface {
	GetEvents(ctx context.Context, start, end string) ([]Event, error)
	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	ListHolidays(ctx context.Context) ([]HolidayResponse, error)
	RecordApprovedLeave(ctx context.Context, event events.LeaveApprovedEvent) error
	RemoveCancelledLeave(ctx context.Context, event events.LeaveCancelledEvent) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("calendar.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("calendar.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

// GetEvents merges the materialized leave entries with holidays over
// the requested window.
func (s *service) GetEvents(ctx context.Context, start, end string) ([]Event, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, calendarerrors.ErrInvalidDateRange
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, calendarerrors.ErrInvalidDateRange
	}
	if startDate.After(endDate) {
		return nil, calendarerrors.ErrInvalidDateRange
	}

	entries, err := s.repo.FindEntriesInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	holidays, err := s.repo.FindHolidaysInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	evts := make([]Event, 0, len(entries)+len(holidays))
	for _, e := range entries {
		evts = append(evts, eventFromEntry(e))
	}
	for _, h := range holidays {
		evts = append(evts, eventFromHoliday(h))
	}
	return evts, nil
}

func (s *service) CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return HolidayResponse{}, calendarerrors.ErrInvalidDateRange
	}

	color := req.Color
	if color == "" {
		color = "#d33838"
	}
	if !holidayColorPattern.MatchString(color) {
		return HolidayResponse{}, calendarerrors.ErrInvalidColor
	}

	h := &Holiday{
		ID:          uuid.New(),
		Name:        req.Name,
		Date:        date,
		IsRecurring: req.IsRecurring,
		Color:       color,
	}
	if err := s.repo.CreateHoliday(ctx, h); err != nil {
		if isUniqueViolation(err) {
			return HolidayResponse{}, calendarerrors.ErrHolidayExists
		}
		return HolidayResponse{}, err
	}

	s.logger.Info("holiday created",
		zap.String("holiday_id", h.ID.String()),
		zap.String("date", req.Date),
	)
	return mapToHolidayResponse(*h), nil
}

func (s *service) ListHolidays(ctx context.Context) ([]HolidayResponse, error) {
	holidays, err := s.repo.FindAllHolidays(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]HolidayResponse, len(holidays))
	for i, h := range holidays {
		resp[i] = mapToHolidayResponse(h)
	}
	return resp, nil
}

// RecordApprovedLeave materializes an entry for an approved leave. The
// source_ref unique index makes event replays a no-op.
func (s *service) RecordApprovedLeave(ctx context.Context, event events.LeaveApprovedEvent) error {
	startDate, err := time.Parse("2006-01-02", event.StartDate)
	if err != nil {
		return calendarerrors.ErrInvalidDateRange
	}
	endDate, err := time.Parse("2006-01-02", event.EndDate)
	if err != nil {
		return calendarerrors.ErrInvalidDateRange
	}

	title := event.UserName
	if title == "" {
		title = event.RequestNumber
	}
	if event.LeaveTypeName != "" {
		title = title + " - " + event.LeaveTypeName
	}

	color := event.Color
	if !holidayColorPattern.MatchString(color) {
		color = "#3788d8"
	}

	e := &CalendarEntry{
		ID:        uuid.New(),
		Source:    SourceLeave,
		SourceRef: event.LeaveRequestID,
		Title:     title,
		StartDate: startDate,
		EndDate:   endDate,
		Color:     color,
	}
	if uid, err := uuid.Parse(event.UserID); err == nil {
		e.UserID = &uid
	}

	if err := s.repo.CreateEntry(ctx, e); err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn("calendar entry already exists, skipping",
				zap.String("leave_request_id", event.LeaveRequestID),
			)
			return nil
		}
		return err
	}
	return nil
}

func (s *service) RemoveCancelledLeave(ctx context.Context, event events.LeaveCancelledEvent) error {
	return s.repo.DeleteEntryBySourceRef(ctx, SourceLeave, event.LeaveRequestID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapToHolidayResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:          h.ID.String(),
		Name:        h.Name,
		Date:        h.Date.Format("2006-01-02"),
		IsRecurring: h.IsRecurring,
		Color:       h.Color,
	}
}
