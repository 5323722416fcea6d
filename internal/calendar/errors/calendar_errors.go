package calendarerrors

import (
	"net/http"

	"go-hrportal/internal/shared/apperror"
)

var (
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start and end must be YYYY-MM-DD dates with start not after end",
		http.StatusBadRequest,
	)
	ErrHolidayExists = apperror.New(
		apperror.CodeConflict,
		"a holiday already exists on this date",
		http.StatusConflict,
	)
	ErrInvalidColor = apperror.New(
		apperror.CodeInvalidInput,
		"color must be a hex value like #d33838",
		http.StatusBadRequest,
	)
)
