package dto

import (
	"errors"
	"net/http"

	"larre/services"
)

// StatusOf maps service errors to HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
