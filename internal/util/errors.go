package util

import (
	"errors"
	"net/http"
)

// 业务错误（哨兵值），controller 层通过 ErrorStatus/ErrorCode 映射为稳定的错误码
var (
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrEmailRegistered   = errors.New("email already registered")
	ErrDuplicatePlan     = errors.New("plan already exists for this student and date")
	ErrAlreadyLocked     = errors.New("item already locked by review")
	ErrAlreadyReviewed   = errors.New("item already reviewed")
	ErrAlreadyStopped    = errors.New("timer session already stopped")
	ErrSessionNotFound   = errors.New("timer session not found")
	ErrResetLimitReached = errors.New("reset limit reached")
	ErrPolicyViolation   = errors.New("evidence policy violation")
	ErrInvalidEvidence   = errors.New("invalid evidence payload")
	ErrInvalidStatus     = errors.New("invalid review status")
	ErrUnavailable       = errors.New("storage unavailable")
)

// ErrorCode 返回对外暴露的稳定错误码；内部存储错误细节不下发给客户端
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrEmailRegistered):
		return "email_registered"
	case errors.Is(err, ErrDuplicatePlan):
		return "plan_exists"
	case errors.Is(err, ErrAlreadyLocked):
		return "already_locked"
	case errors.Is(err, ErrAlreadyReviewed):
		return "already_reviewed"
	case errors.Is(err, ErrAlreadyStopped):
		return "already_stopped"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrResetLimitReached):
		return "reset_limit_reached"
	case errors.Is(err, ErrPolicyViolation):
		return "policy_violation"
	case errors.Is(err, ErrInvalidEvidence):
		return "invalid_evidence"
	case errors.Is(err, ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	}
	return "internal_error"
}

// ErrorStatus 映射业务错误到 HTTP 状态码
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmailRegistered),
		errors.Is(err, ErrDuplicatePlan),
		errors.Is(err, ErrAlreadyLocked),
		errors.Is(err, ErrAlreadyReviewed),
		errors.Is(err, ErrAlreadyStopped):
		return http.StatusConflict
	case errors.Is(err, ErrResetLimitReached),
		errors.Is(err, ErrPolicyViolation),
		errors.Is(err, ErrInvalidEvidence),
		errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
