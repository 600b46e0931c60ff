package router

import (
	"net/http"
	"strconv"
	"strings"

	"daoportal/internal/app"
	"daoportal/internal/apperr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DAOHandler 负责处理 DAO 与指标相关的 HTTP 请求。
type DAOHandler struct {
	svc    *app.Service
	logger *zap.Logger
}

// NewDAOHandler 构建一个新的 DAOHandler。
func NewDAOHandler(svc *app.Service, logger *zap.Logger) *DAOHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DAOHandler{svc: svc, logger: logger}
}

// RegisterRoutes 将 DAO 路由注册到给定的路由组。
func (h *DAOHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/daos", h.handleList)
	rg.POST("/daos", h.handleCreate)
	rg.GET("/daos/metrics/multi", h.handleMulti)
	rg.GET("/daos/:id", h.handleGet)
	rg.GET("/daos/:id/enhanced_metrics", h.handleEnhanced)
	rg.GET("/daos/:id/metrics", h.handleMetrics)
	rg.GET("/daos/:id/metrics/history", h.handleHistory)
	rg.POST("/daos/:id/poll", h.handlePoll)
	rg.GET("/tasks/:task_id", h.handleTask)
}

func (h *DAOHandler) handleList(c *gin.Context) {
	limit, ok := intQuery(c, "limit", app.DefaultListLimit)
	if !ok {
		return
	}
	offsetKey := "offset"
	if _, has := c.GetQuery("offset"); !has {
		if _, hasSkip := c.GetQuery("skip"); hasSkip {
			offsetKey = "skip"
		}
	}
	offset, ok := intQuery(c, offsetKey, 0)
	if !ok {
		return
	}
	page, err := h.svc.ListDAOs(c.Request.Context(), app.ListParams{
		Search:  c.Query("search"),
		ChainID: c.Query("chain_id"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *DAOHandler) handleCreate(c *gin.Context) {
	var req app.CreateDAOInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	dao, err := h.svc.CreateDAO(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dao)
}

func (h *DAOHandler) handleGet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	dao, err := h.svc.GetDAO(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dao)
}

func (h *DAOHandler) handleEnhanced(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.svc.EnhancedMetrics(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *DAOHandler) handleMulti(c *gin.Context) {
	res, err := h.svc.MultiMetrics(c.Request.Context(), c.Query("dao_ids"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *DAOHandler) handleMetrics(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.svc.LatestMetrics(c.Request.Context(), id, c.Query("metric"), c.DefaultQuery("period", "30d"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *DAOHandler) handleHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.svc.MetricHistory(c.Request.Context(), id, c.Query("metric"), c.DefaultQuery("period", "30d"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *DAOHandler) handlePoll(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ack, err := h.svc.TriggerCollection(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, ack)
}

func (h *DAOHandler) handleTask(c *gin.Context) {
	res, err := h.svc.TaskStatus(c.Request.Context(), strings.TrimSpace(c.Param("task_id")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *DAOHandler) fail(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	if code == apperr.CodeInternal {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(apperr.HTTPStatus(code), gin.H{"error": apperr.Message(err)})
}

// pathID 解析路径中的 DAO id，非正整数不可能对应任何 DAO，按 404 返回。
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid DAO id"})
		return 0, false
	}
	if id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "DAO not found"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def, true
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return v, true
}
