package leavetypeerrors

import (
	"net/http"

	"go-hrportal/internal/shared/apperror"
)

var (
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave type not found",
		http.StatusNotFound,
	)
	ErrLeaveTypeNameTaken = apperror.New(
		apperror.CodeConflict,
		"a leave type with this name or code already exists",
		http.StatusConflict,
	)
	ErrLeaveTypeInactive = apperror.New(
		apperror.CodeInvalidState,
		"leave type is inactive",
		http.StatusBadRequest,
	)
	ErrInvalidColor = apperror.New(
		apperror.CodeInvalidInput,
		"color must be a hex value like #3788d8",
		http.StatusBadRequest,
	)
)
