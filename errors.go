package campusvoice

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponder lets an error write its own HTTP response. RespondError
// reports whether it did; a false return means the caller should fall back
// to a generic 500.
type ErrorResponder interface {
	RespondError(w http.ResponseWriter, r *http.Request) bool
}

// jsonError writes the {"error": ...} body every endpoint uses for failures.
func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Maybe404Error responds with not found when its wrapped error is a missing
// record, either the store's ErrNotFound or a raw sql.ErrNoRows.
type Maybe404Error struct {
	err error
}

func Maybe404(err error) *Maybe404Error {
	return &Maybe404Error{err: err}
}

func (e *Maybe404Error) Error() string {
	return fmt.Sprintf("Maybe404: %v", e.err)
}

func (e *Maybe404Error) Is404() bool {
	return errors.Is(e.err, ErrNotFound) || errors.Is(e.err, sql.ErrNoRows)
}

func (e *Maybe404Error) RespondError(w http.ResponseWriter, r *http.Request) bool {
	if !e.Is404() {
		return false
	}

	jsonError(w, http.StatusNotFound, "Not found")
	return true
}

// ForbiddenError responds with forbidden status; delete attempts by a
// non-owner end up here.
type ForbiddenError struct {
	reason string
}

func Forbidden(reason string) *ForbiddenError {
	return &ForbiddenError{reason: reason}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("ForbiddenError: %v", e.reason)
}

func (e *ForbiddenError) RespondError(w http.ResponseWriter, r *http.Request) bool {
	jsonError(w, http.StatusForbidden, e.reason)
	return true
}

// BadRequestError responds with bad request status for malformed payloads.
type BadRequestError struct {
	err error
}

func BadRequest(err error) *BadRequestError {
	return &BadRequestError{err: err}
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("BadRequestError: %v", e.err)
}

func (e *BadRequestError) RespondError(w http.ResponseWriter, r *http.Request) bool {
	jsonError(w, http.StatusBadRequest, "Bad request")
	return true
}

// UnprocessableEntityError responds with unprocessable entity status,
// listing the fields that failed validation.
type UnprocessableEntityError struct {
	fieldNames []string
	err        error
}

func UnprocessableEntity(fieldNames ...string) *UnprocessableEntityError {
	return &UnprocessableEntityError{
		fieldNames: fieldNames,
	}
}

func UnprocessableEntityWithError(err error, fieldNames ...string) *UnprocessableEntityError {
	return &UnprocessableEntityError{
		err:        err,
		fieldNames: fieldNames,
	}
}

func (e *UnprocessableEntityError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("UnprocessableEntityError: error %v, %v", e.err, e.fieldNames)
	}
	return fmt.Sprintf("UnprocessableEntityError: %v", e.fieldNames)
}

func (e *UnprocessableEntityError) RespondError(w http.ResponseWriter, r *http.Request) bool {
	msg := fmt.Sprintf("%s: invalid %v", http.StatusText(http.StatusUnprocessableEntity), e.fieldNames)
	jsonError(w, http.StatusUnprocessableEntity, msg)
	return true
}
