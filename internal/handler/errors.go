package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/datecalc/internal/middleware"
	"github.com/hitoshi/datecalc/internal/model"
)

// writeBadRequest はINVALID_REQUESTを400で書き込む。
func writeBadRequest(w http.ResponseWriter, reason string) {
	middleware.WriteAPIError(w, model.NewInvalidRequestError(reason))
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	middleware.WriteInternalServerError(w)
}
