package permissionerrors

import (
	"net/http"

	"go-hrportal/internal/shared/apperror"
)

var (
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidRoleID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid role id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidExpiry = apperror.New(
		apperror.CodeInvalidInput,
		"invalid expires_at, expected RFC3339 timestamp",
		http.StatusBadRequest,
	)
	ErrInvalidOverrideType = apperror.New(
		apperror.CodeInvalidInput,
		"override type must be grant or revoke",
		http.StatusBadRequest,
	)
	ErrRoleNotFound = apperror.New(
		apperror.CodeNotFound,
		"role not found",
		http.StatusNotFound,
	)
	ErrRoleNameTaken = apperror.New(
		apperror.CodeConflict,
		"a role with this name already exists",
		http.StatusConflict,
	)
	ErrPermissionNotFound = apperror.New(
		apperror.CodeNotFound,
		"permission not found",
		http.StatusNotFound,
	)
	ErrOverrideNotFound = apperror.New(
		apperror.CodeNotFound,
		"permission override not found",
		http.StatusNotFound,
	)
	ErrRoleNotAssigned = apperror.New(
		apperror.CodeInvalidState,
		"role is not assigned to this user",
		http.StatusBadRequest,
	)
)
