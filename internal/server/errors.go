package server

import (
	"github.com/gin-gonic/gin"

	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	obscontext "github.com/hudsor01/tenant-flow-sub006/internal/observability/context"
)

// apiError is the JSON error body. Internal detail never leaks to the
// sender; the kind string is the whole contract.
type apiError struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// AbortWithError maps a classified error onto the HTTP contract: the sender
// is only told to redeliver for transient internal failures.
func AbortWithError(c *gin.Context, err error) {
	kind := errmap.KindOf(err)
	status := errmap.HTTPStatus(kind)
	c.AbortWithStatusJSON(status, gin.H{
		"error": apiError{
			Kind:      string(kind),
			Message:   publicMessage(kind),
			RequestID: obscontext.RequestIDFromGin(c),
		},
	})
}

// publicMessage keeps response bodies free of event payload content and
// storage errors.
func publicMessage(kind errmap.Kind) string {
	switch kind {
	case errmap.KindSignatureInvalid:
		return "signature verification failed"
	case errmap.KindDatabaseConflict, errmap.KindTransientFailure:
		return "temporary failure, please redeliver"
	default:
		return "event acknowledged"
	}
}
