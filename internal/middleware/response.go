package middleware

import (
	"net/http"

	apperrors "github.com/Pab1o16/turing-chat/internal/errors"
	"github.com/Pab1o16/turing-chat/internal/httputil"
)

func writeError(w http.ResponseWriter, err *apperrors.AppError) {
	httputil.WriteError(w, err)
}
