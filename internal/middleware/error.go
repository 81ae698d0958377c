package middleware

import (
	"fmt"
	"net/http"

	"go-blog-app/internal/logger"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AppError represents a custom error type for the application.
type AppError struct {
	Error   error
	Message string
	Code    int
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Error is a middleware that converts handler errors into JSON error responses.
func Error(log logger.Logger) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					LoggerFrom(r.Context(), log).Error(err, "Panic recovered")
					WriteJSON(w, http.StatusInternalServerError, errorBody{
						Error:  http.StatusText(http.StatusInternalServerError),
						Status: http.StatusInternalServerError,
					})
				}
			}()

			err := next(w, r)
			if err != nil {
				reqLog := LoggerFrom(r.Context(), log)
				if err.Code >= http.StatusInternalServerError {
					reqLog.Error(err.Error, err.Message)
				} else {
					reqLog.Debug(fmt.Sprintf("%s: %v", err.Message, err.Error))
				}
				WriteJSON(w, err.Code, errorBody{Error: err.Message, Status: err.Code})
			}
		})
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
