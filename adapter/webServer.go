package adapter

import (
	"errors"
	"net/http"

	"github.com/ElrondNetwork/elrond-exec-adapter/callback"
	"github.com/ElrondNetwork/elrond-exec-adapter/codec"
	models "github.com/ElrondNetwork/elrond-exec-adapter/data"
	"github.com/ElrondNetwork/elrond-exec-adapter/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type webServer struct {
	router  *gin.Engine
	adapter *adapter
}

func NewWebServer(adapter *adapter) (*webServer, error) {
	if adapter == nil {
		return nil, errors.New("nil adapter provided")
	}

	ws := &webServer{
		router:  gin.Default(),
		adapter: adapter,
	}
	ws.router.POST("/request", ws.processExecutionRequest)
	ws.router.POST("/callback", ws.processCallback)
	ws.router.GET("/request/:handle", ws.processStatusRequest)
	ws.router.GET("/stats", ws.processStatsRequest)
	ws.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return ws, nil
}

func (ws *webServer) Run(port string) error {
	log.Info("starting web server", "port", port)
	return ws.router.Run(port)
}

func (ws *webServer) processExecutionRequest(c *gin.Context) {
	var req models.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResponse(c, http.StatusBadRequest, req.JobID, err)
		return
	}

	handle, err := ws.adapter.HandleRequest(c.Request.Context(), req.Data)
	if err != nil {
		errResponse(c, statusFromError(err), req.JobID, err)
		return
	}

	okResponse(c, handle, req.JobID)
}

func (ws *webServer) processCallback(c *gin.Context) {
	var req models.CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResponse(c, http.StatusBadRequest, req.JobID, err)
		return
	}

	output, err := ws.adapter.HandleCallback(c.Request.Context(), req.Data)
	if err != nil {
		errResponse(c, statusFromError(err), req.JobID, err)
		return
	}

	okResponse(c, output, req.JobID)
}

func (ws *webServer) processStatusRequest(c *gin.Context) {
	handle := c.Param("handle")
	record, err := ws.adapter.RequestStatus(c.Request.Context(), handle)
	if err != nil {
		errResponse(c, statusFromError(err), handle, err)
		return
	}

	okResponse(c, record, handle)
}

func (ws *webServer) processStatsRequest(c *gin.Context) {
	counts, err := ws.adapter.Stats(c.Request.Context())
	if err != nil {
		errResponse(c, http.StatusInternalServerError, "", err)
		return
	}

	okResponse(c, counts, "")
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, callback.ErrVerificationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, codec.ErrInvalidCallbackData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, codec.ErrInvalidInputEncoding):
		return http.StatusBadRequest
	case errors.Is(err, callback.ErrUnknownHandle), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, callback.ErrRequestNotPending):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func okResponse(c *gin.Context, value interface{}, jobID string) {
	c.JSON(http.StatusOK, models.JobResponse{
		JobRunID:   jobID,
		Data:       gin.H{"result": value},
		Result:     value,
		StatusCode: http.StatusOK,
	})
}

func errResponse(c *gin.Context, errCode int, jobID string, err error) {
	c.JSON(errCode, models.JobResponse{
		JobRunID:   jobID,
		Data:       nil,
		StatusCode: errCode,
		Error:      err.Error(),
	})
}
