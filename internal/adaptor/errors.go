package adaptor

import (
	"net/http"

	"stay-nest/pkg/apperror"
	"stay-nest/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps a service error to its HTTP response. Internal
// failures are logged with their cause and answered with a generic message.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	message := apperror.Message(err)

	switch kind := apperror.KindOf(err); kind {
	case apperror.KindNotFound:
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, message)

	case apperror.KindForbidden:
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, message)

	case apperror.KindUnauthorized:
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, message)

	case apperror.KindValidation,
		apperror.KindCapacityExceeded,
		apperror.KindInsufficientCapacity,
		apperror.KindConflict:
		log.Warn(operation+" rejected", zap.Error(err), zap.String("kind", string(kind)))
		utils.ResponseBadRequest(w, message, nil)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, message)
	}
}
