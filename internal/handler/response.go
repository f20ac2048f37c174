package handler

import (
	"net/http"

	"github.com/twentyq/game-server-go/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

// writeServiceError converts a service error to its HTTP shape.
// Expected game-rule rejections happen constantly and stay out of the
// error log; internal faults do not.
func writeServiceError(w http.ResponseWriter, err error) {
	logInternal(err)
	httputil.WriteError(w, err)
}
