package handler

import (
	"errors"
	"net/http"
	"strings"

	"go-blog-app/internal/data"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"
	"go-blog-app/internal/tree"

	"github.com/go-playground/validator/v10"
)

// toAppError maps service and repository errors to HTTP responses.
func toAppError(err error, message string) *middleware.AppError {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return &middleware.AppError{Error: err, Message: validationMessage(verrs), Code: http.StatusBadRequest}
	case errors.Is(err, data.ErrNotFound):
		return &middleware.AppError{Error: err, Message: "Not found", Code: http.StatusNotFound}
	case errors.Is(err, service.ErrCommentsClosed):
		return &middleware.AppError{Error: err, Message: "Comments are closed", Code: http.StatusForbidden}
	case errors.Is(err, service.ErrSettingsSingleton):
		return &middleware.AppError{Error: err, Message: err.Error(), Code: http.StatusConflict}
	case errors.Is(err, service.ErrInvalidShowType), errors.Is(err, service.ErrInvalidParent):
		return &middleware.AppError{Error: err, Message: err.Error(), Code: http.StatusBadRequest}
	case errors.Is(err, tree.ErrCycle):
		return &middleware.AppError{Error: err, Message: "Category tree is inconsistent", Code: http.StatusInternalServerError}
	default:
		return &middleware.AppError{Error: err, Message: message, Code: http.StatusInternalServerError}
	}
}

// validationMessage describes the failing fields by their JSON names.
func validationMessage(verrs validator.ValidationErrors) string {
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}
