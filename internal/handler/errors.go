package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/paperdesk/internal/model"
	"github.com/stemsi/paperdesk/internal/remote"
	"github.com/stemsi/paperdesk/internal/render"
	"github.com/stemsi/paperdesk/internal/response"
	"github.com/stemsi/paperdesk/internal/service"
)

// statusClientClosed is logged when the caller went away mid-request.
const statusClientClosed = 499

// fail maps a service, storage, render or generation-service error onto the
// response envelope. Generation-service failures carry their own
// user-facing message.
func fail(c *gin.Context, err error) {
	var verr *remote.ValidationError
	var apiErr *remote.APIError

	switch {
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(statusClientClosed)
	case errors.Is(err, service.ErrPaperNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrPaperNotFound)
	case errors.Is(err, model.ErrQuestionOutOfRange):
		response.Fail(c, http.StatusNotFound, response.ErrQuestionOutOfRange)
	case errors.Is(err, service.ErrEmptyQuestionText):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrEmptyQuestion)
	case errors.Is(err, service.ErrNothingSelected):
		response.Fail(c, http.StatusBadRequest, response.ErrNothingSelected)
	case errors.Is(err, service.ErrReplaceRejected):
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrReplaceRejected, err.Error())
	case errors.Is(err, service.ErrPaperNotSaved):
		response.Fail(c, http.StatusInternalServerError, response.ErrStorageWrite)
	case errors.Is(err, service.ErrInvalidImportInput):
		response.Fail(c, http.StatusBadRequest, response.ErrImportInvalid)
	case errors.Is(err, render.ErrRenderFailed):
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrRenderFailed)
	case errors.Is(err, remote.ErrTimeout):
		response.FailWithMessage(c, http.StatusGatewayTimeout, response.ErrGeneratorTimeout, remote.Message(err))
	case errors.Is(err, remote.ErrNetwork):
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrGeneratorUnreachable, remote.Message(err))
	case errors.Is(err, remote.ErrServer):
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrGeneratorServer, remote.Message(err))
	case errors.As(err, &verr):
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrGeneratorValidation, remote.Message(err))
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			status = apiErr.Status
		}
		response.FailWithMessage(c, status, response.ErrGeneratorFailed, remote.Message(err))
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// questionRef parses the :section and :question path parameters.
func questionRef(c *gin.Context) (model.QuestionRef, bool) {
	s, errS := strconv.Atoi(c.Param("section"))
	q, errQ := strconv.Atoi(c.Param("question"))
	if errS != nil || errQ != nil || s < 0 || q < 0 {
		return model.QuestionRef{}, false
	}
	return model.QuestionRef{SectionIndex: s, QuestionIndex: q}, true
}
