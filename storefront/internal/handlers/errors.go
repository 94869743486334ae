package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func writeError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

// writePricingError maps a pricing service error onto an HTTP response.
// Caller mistakes keep the service's message; everything else is reported
// as an upstream failure.
func writePricingError(c *gin.Context, err error) {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.InvalidArgument:
		writeError(c, http.StatusBadRequest, st.Message())
	case codes.NotFound:
		writeError(c, http.StatusNotFound, st.Message())
	case codes.FailedPrecondition:
		writeError(c, http.StatusConflict, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		writeError(c, http.StatusServiceUnavailable, "pricing service unavailable")
	default:
		writeError(c, http.StatusBadGateway, "pricing service error")
	}
}
