package leavetype

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"time"

	leavetypeerrors "go-hrportal/internal/leavetype/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	LeaveTypeAllKey   = "leave_types:all"
	leaveTypeCacheTTL = 30 * time.Minute
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

//go:generate mockgen -source=leavetype_service.go -destination=mock/leavetype_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetAll(ctx context.Context) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, id string) (LeaveTypeResponse, error)
	Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveTypeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindByNameOrCode(ctx, req.Name, req.Code); err == nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return LeaveTypeResponse{}, err
	}

	color := req.Color
	if color == "" {
		color = "#3788d8"
	}
	if !hexColorPattern.MatchString(color) {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidColor
	}

	lt := &LeaveType{
		ID:                   uuid.New(),
		Name:                 req.Name,
		Code:                 req.Code,
		DaysPerYear:          req.DaysPerYear,
		IsPaid:               req.IsPaid,
		RequiresMedicalCert:  req.RequiresMedicalCert,
		MedicalCertThreshold: req.MedicalCertThreshold,
		IsCarryOverAllowed:   req.IsCarryOverAllowed,
		MaxCarryOverDays:     req.MaxCarryOverDays,
		GenderRestriction:    req.GenderRestriction,
		Color:                color,
		IsActive:             true,
	}

	if err := qtx.Create(ctx, lt); err != nil {
		return LeaveTypeResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LeaveTypeResponse{}, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("leave type created",
		zap.String("leave_type_id", lt.ID.String()),
		zap.String("code", lt.Code),
	)

	return mapToResponse(*lt), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveTypeResponse, error) {
	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, LeaveTypeAllKey).Result(); err == nil {
			var resp []LeaveTypeResponse
			if err := json.Unmarshal([]byte(val), &resp); err == nil {
				return resp, nil
			}
		}
	}

	// Singleflight keeps a cache miss from stampeding the database
	v, err, _ := s.sf.Do(LeaveTypeAllKey, func() (interface{}, error) {
		types, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}

		resp := make([]LeaveTypeResponse, len(types))
		for i, lt := range types {
			resp[i] = mapToResponse(lt)
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, LeaveTypeAllKey, jsonData, leaveTypeCacheTTL)
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]LeaveTypeResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveTypeResponse, error) {
	lt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*lt), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveTypeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lt, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}

	if req.Color != "" && !hexColorPattern.MatchString(req.Color) {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidColor
	}

	lt.Name = req.Name
	lt.DaysPerYear = req.DaysPerYear
	lt.IsPaid = req.IsPaid
	lt.RequiresMedicalCert = req.RequiresMedicalCert
	lt.MedicalCertThreshold = req.MedicalCertThreshold
	lt.IsCarryOverAllowed = req.IsCarryOverAllowed
	lt.MaxCarryOverDays = req.MaxCarryOverDays
	lt.GenderRestriction = req.GenderRestriction
	if req.Color != "" {
		lt.Color = req.Color
	}
	if req.IsActive != nil {
		lt.IsActive = *req.IsActive
	}

	if err := qtx.Update(ctx, lt); err != nil {
		return LeaveTypeResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LeaveTypeResponse{}, err
	}

	s.invalidateCache(ctx)
	return mapToResponse(*lt), nil
}

func (s *service) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, LeaveTypeAllKey).Err(); err != nil {
		s.logger.Error("invalidate leave type cache failed", zap.Error(err))
	}
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:                   lt.ID.String(),
		Name:                 lt.Name,
		Code:                 lt.Code,
		DaysPerYear:          lt.DaysPerYear,
		IsPaid:               lt.IsPaid,
		RequiresMedicalCert:  lt.RequiresMedicalCert,
		MedicalCertThreshold: lt.MedicalCertThreshold,
		IsCarryOverAllowed:   lt.IsCarryOverAllowed,
		MaxCarryOverDays:     lt.MaxCarryOverDays,
		GenderRestriction:    lt.GenderRestriction,
		Color:                lt.Color,
		IsActive:             lt.IsActive,
	}
}
