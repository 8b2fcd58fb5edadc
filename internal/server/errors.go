package server

import (
	"creditcounter/internal/scrapers/kosen"
	"creditcounter/internal/syllabus"
	"errors"
	"fmt"
	"net/http"
)

const internalErrorMessage = "内部エラーが発生しました"

// HttpError is an error with the status code it should be answered with.
type HttpError struct {
	Status  int
	Message string
	Err     error
}

func (e *HttpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

// toHttpError maps input errors to 400 and upstream failures (network, status, page
// layout) to 502. Anything else is a 500.
func toHttpError(err error) *HttpError {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, syllabus.ErrInvalidYear):
		return &HttpError{Status: http.StatusBadRequest, Message: syllabus.ErrInvalidYear.Error(), Err: err}
	case errors.Is(err, syllabus.ErrUnknownDepartment):
		return &HttpError{Status: http.StatusBadRequest, Message: "unknown department code", Err: err}
	}

	var statusErr *kosen.StatusError
	if errors.As(err, &statusErr) {
		return &HttpError{
			Status:  http.StatusBadGateway,
			Message: fmt.Sprintf("failed to fetch syllabus page (%d)", statusErr.StatusCode),
			Err:     err,
		}
	}
	if errors.Is(err, syllabus.ErrStructuralMismatch) || errors.Is(err, syllabus.ErrGradeOverflow) {
		return &HttpError{Status: http.StatusBadGateway, Message: "failed to parse syllabus page", Err: err}
	}
	var deptErr *syllabus.DepartmentError
	if errors.As(err, &deptErr) {
		return &HttpError{Status: http.StatusBadGateway, Message: "failed to fetch syllabus page", Err: err}
	}

	return &HttpError{Status: http.StatusInternalServerError, Message: internalErrorMessage, Err: err}
}
