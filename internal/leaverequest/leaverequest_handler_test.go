package leaverequest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-hrportal/internal/leaverequest"
	leaverequesterrors "go-hrportal/internal/leaverequest/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeLeaveRequestService struct {
	createFn              func(ctx context.Context, actorID string, req leaverequest.CreateLeaveRequestRequest) (leaverequest.LeaveRequestResponse, error)
	getByIDFn             func(ctx context.Context, id string) (leaverequest.LeaveRequestResponse, error)
	getMineFn             func(ctx context.Context, userID string) ([]leaverequest.LeaveRequestResponse, error)
	getAllFn              func(ctx context.Context) ([]leaverequest.LeaveRequestResponse, error)
	approveByManagerFn    func(ctx context.Context, actorID, id string) (leaverequest.LeaveRequestResponse, error)
	rejectByManagerFn     func(ctx context.Context, actorID, id, reason string) (leaverequest.LeaveRequestResponse, error)
	approveByHrFn         func(ctx context.Context, actorID, id string) (leaverequest.LeaveRequestResponse, error)
	rejectByHrFn          func(ctx context.Context, actorID, id, reason string) (leaverequest.LeaveRequestResponse, error)
	cancelFn              func(ctx context.Context, actorID, id string) (leaverequest.LeaveRequestResponse, error)
	requestCancellationFn func(ctx context.Context, actorID, id, reason string) (leaverequest.LeaveRequestResponse, error)
	approveCancellationFn func(ctx context.Context, actorID, id string) (leaverequest.LeaveRequestResponse, error)
	rejectCancellationFn  func(ctx context.Context, actorID, id string) (leaverequest.LeaveRequestResponse, error)
}

func (f *fakeLeaveRequestService) Create(ctx context.Context, actorID string, req leaverequest.CreateLeaveRequestRequest) (leaverequest.LeaveRequestResponse, error) {
	return f.createFn(ctx, actorID, req)
}
func (f *fakeLeaveRequestService) GetByID(ctx context.Context, id string) (leaverequest.LeaveRequestResponse, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeLeaveRequestService) GetMine(ctx context.Context, userID string) ([]leaverequest.LeaveRequestResponse, error) {
	return f.getMineFn(ctx, userID)
}
func (f *fakeLeaveRequestService) GetAll(ctx context.Context) ([]leaverequest.LeaveRequestResponse, error) {
	return f.getAllFn(ctx)
}
func (f *fakeLeaveRequestService) ApproveByManager(ctx context.Context, actorID, id string) (leaverequest.LeaveRequestResponse, error) {
	return f.approveByManagerFn(ctx, actorID, id)
}
func (f *fakeLeaveRequestService) RejectByManager(ctx context.Context, actorID, id, reason string) (leaverequest.LeaveRequestResponse, error) {
	return f.rejectByManagerFn(ctx, actorID, id, reason)
}
func (f *fakeLeaveRequestService) ApproveByHr(ctx context.Context, actorID, id string) (leaverequest.LeaveRequestResponse, error) {
	return f.approveByHrFn(ctx, actorID, id)
}
func (f *fakeLeaveRequestService) RejectByHr(ctx context.Context, actorID, id, reason string) (leaverequest.LeaveRequestResponse, error) {
	return f.rejectByHrFn(ctx, actorID, id, reason)
}
func (f *fakeLeaveRequestService) Cancel(ctx context.Context, actorID, id string) (leaverequest.LeaveRequestResponse, error) {
	return f.cancelFn(ctx, actorID, id)
}
func (f *fakeLeaveRequestService) RequestCancellation(ctx context.Context, actorID, id, reason string) (leaverequest.LeaveRequestResponse, error) {
	return f.requestCancellationFn(ctx, actorID, id, reason)
}
func (f *fakeLeaveRequestService) ApproveCancellation(ctx context.Context, actorID, id string) (leaverequest.LeaveRequestResponse, error) {
	return f.approveCancellationFn(ctx, actorID, id)
}
func (f *fakeLeaveRequestService) RejectCancellation(ctx context.Context, actorID, id string) (leaverequest.LeaveRequestResponse, error) {
	return f.rejectCancellationFn(ctx, actorID, id)
}

func TestLeaveRequestHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		actorID := uuid.New().String()
		leaveTypeID := uuid.New().String()

		svc := &fakeLeaveRequestService{
			createFn: func(ctx context.Context, aid string, req leaverequest.CreateLeaveRequestRequest) (leaverequest.LeaveRequestResponse, error) {
				assert.Equal(t, actorID, aid)
				assert.Equal(t, leaveTypeID, req.LeaveTypeID)
				return leaverequest.LeaveRequestResponse{
					ID:            uuid.New().String(),
					RequestNumber: "LR-2026-0001",
					UserID:        aid,
					LeaveTypeID:   req.LeaveTypeID,
					StartDate:     req.StartDate,
					EndDate:       req.EndDate,
					TotalDays:     3,
					Reason:        req.Reason,
					Status:        leaverequest.StatusPendingManager,
				}, nil
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"leave_type_id":"` + leaveTypeID + `","start_date":"2026-09-07","end_date":"2026-09-09","reason":"Family trip"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("user_id", actorID)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leaverequest.LeaveRequestResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "LR-2026-0001", got.RequestNumber)
		assert.Equal(t, leaverequest.StatusPendingManager, got.Status)
		assert.Equal(t, actorID, got.UserID)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := leaverequest.NewHandler(&fakeLeaveRequestService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("negative overlap returns conflict", func(t *testing.T) {
		svc := &fakeLeaveRequestService{
			createFn: func(ctx context.Context, aid string, req leaverequest.CreateLeaveRequestRequest) (leaverequest.LeaveRequestResponse, error) {
				return leaverequest.LeaveRequestResponse{}, leaverequesterrors.ErrLeaveOverlap
			},
		}
		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"leave_type_id":"` + uuid.New().String() + `","start_date":"2026-09-07","end_date":"2026-09-09","reason":"Family trip"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("user_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})

	t.Run("negative service error is masked", func(t *testing.T) {
		svc := &fakeLeaveRequestService{
			createFn: func(ctx context.Context, aid string, req leaverequest.CreateLeaveRequestRequest) (leaverequest.LeaveRequestResponse, error) {
				return leaverequest.LeaveRequestResponse{}, errors.New("pg connection reset")
			},
		}
		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"leave_type_id":"` + uuid.New().String() + `","start_date":"2026-09-07","end_date":"2026-09-09","reason":"Family trip"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("user_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
		assert.Equal(t, "An unexpected error occurred", env.Error.Message)
	})
}

func TestLeaveRequestHandler_Transitions(t *testing.T) {
	t.Run("reject requires a reason", func(t *testing.T) {
		h := leaverequest.NewHandler(&fakeLeaveRequestService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/abc/reject", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("user_id", uuid.New().String())

		h.RejectByManager(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("hr approve passes route id and actor", func(t *testing.T) {
		actorID := uuid.New().String()
		requestID := uuid.New().String()
		svc := &fakeLeaveRequestService{
			approveByHrFn: func(ctx context.Context, aid, id string) (leaverequest.LeaveRequestResponse, error) {
				assert.Equal(t, actorID, aid)
				assert.Equal(t, requestID, id)
				return leaverequest.LeaveRequestResponse{ID: id, Status: leaverequest.StatusApproved}, nil
			},
		}
		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/"+requestID+"/hr-approve", nil)
		c.Params = gin.Params{{Key: "id", Value: requestID}}
		c.Set("user_id", actorID)

		h.ApproveByHr(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leaverequest.LeaveRequestResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, leaverequest.StatusApproved, got.Status)
	})

	t.Run("invalid transition returns conflict", func(t *testing.T) {
		svc := &fakeLeaveRequestService{
			cancelFn: func(ctx context.Context, aid, id string) (leaverequest.LeaveRequestResponse, error) {
				return leaverequest.LeaveRequestResponse{}, leaverequesterrors.ErrInvalidStatusTransition
			},
		}
		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		requestID := uuid.New().String()
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/"+requestID+"/cancel", nil)
		c.Params = gin.Params{{Key: "id", Value: requestID}}
		c.Set("user_id", uuid.New().String())

		h.Cancel(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})
}
