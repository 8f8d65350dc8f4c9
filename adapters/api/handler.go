// Package api exposes a recommendation session to the rendering collaborator over HTTP
package api

import (
	"context"
	"net/http"
	"strconv"

	"goinsight/adapters/report"
	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/domain/run"
	"goinsight/internal"
	"goinsight/internal/errors"
	"goinsight/internal/session"
	"goinsight/ports"

	"github.com/gin-gonic/gin"
)

// RecommendationSession is the part of the session the API drives
type RecommendationSession interface {
	Snapshot() session.Snapshot
	Summaries() insight.SummarySet
	Subspaces() []insight.Subspace
	ViewSpaces() []insight.ViewSpace
	CurrentSubspace() (insight.Subspace, bool)
	PageData() ([]dataset.Record, error)
	Next() session.Snapshot
	Previous() session.Snapshot
	GotoPage(n int) (session.Snapshot, error)
	SetMaxGroupNumber(ctx context.Context, n int) (core.RunToken, error)
	SetVisualOverride(o insight.VisualOverride) (session.Snapshot, error)
	ClearVisualOverride() session.Snapshot
	LoadDataset(ctx context.Context, ds *dataset.Dataset, fields []dataset.Field) (core.RunToken, error)
	Runs() []run.Manifest
}

// Handler serves the session API
type Handler struct {
	session RecommendationSession
	source  ports.DataSourcePort
	hub     *SSEHub
	logger  *internal.Logger
}

// NewHandler creates a handler. source may be nil, which disables reloads.
func NewHandler(sess RecommendationSession, source ports.DataSourcePort, hub *SSEHub, logger *internal.Logger) *Handler {
	return &Handler{session: sess, source: source, hub: hub, logger: logger.Named("api")}
}

// RunAccepted is returned by requests that start a background run
type RunAccepted struct {
	Run      core.RunToken    `json:"run"`
	Snapshot session.Snapshot `json:"snapshot"`
}

// CurrentSubspaceResponse is the detail view of the subspace behind the current page
type CurrentSubspaceResponse struct {
	Subspace     insight.Subspace         `json:"subspace"`
	Measures     []report.MeasureRow      `json:"measures"`
	Correlations []report.CorrelationCell `json:"correlations"`
}

type maxGroupsRequest struct {
	MaxGroupNumber *int `json:"maxGroupNumber"`
}

// RegisterRoutes mounts the API on r
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/healthz", h.health)

	api := r.Group("/api")
	api.GET("/snapshot", h.snapshot)
	api.GET("/summaries", h.summaries)
	api.GET("/subspaces", h.subspaces)
	api.GET("/subspaces/current", h.currentSubspace)
	api.GET("/viewspaces", h.viewSpaces)
	api.GET("/data", h.pageData)

	api.POST("/pages/next", h.next)
	api.POST("/pages/previous", h.previous)
	api.POST("/pages/:page", h.gotoPage)

	api.PUT("/config/max-groups", h.setMaxGroups)
	api.PUT("/config/visual", h.setVisual)
	api.DELETE("/config/visual", h.clearVisual)

	api.POST("/dataset/reload", h.reload)
	api.GET("/runs", h.runs)
	api.GET("/runs/:id", h.runByID)

	if h.hub != nil {
		api.GET("/events", h.hub.HandleSSE(h.session.Snapshot))
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "state": h.session.Snapshot().State})
}

func (h *Handler) snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *Handler) summaries(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Summaries())
}

func (h *Handler) subspaces(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Subspaces())
}

func (h *Handler) currentSubspace(c *gin.Context) {
	sub, ok := h.session.CurrentSubspace()
	if !ok {
		h.writeError(c, errors.NotFound("subspace for the current page"))
		return
	}
	c.JSON(http.StatusOK, CurrentSubspaceResponse{
		Subspace:     sub,
		Measures:     report.MeasureRows([]insight.Subspace{sub}),
		Correlations: report.CorrelationCells(sub),
	})
}

func (h *Handler) viewSpaces(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.ViewSpaces())
}

func (h *Handler) pageData(c *gin.Context) {
	rows, err := h.session.PageData()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) next(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Next())
}

func (h *Handler) previous(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Previous())
}

func (h *Handler) gotoPage(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		h.writeError(c, errors.InvalidInput("page must be an integer"))
		return
	}
	snap, err := h.session.GotoPage(page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) setMaxGroups(c *gin.Context) {
	var req maxGroupsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, errors.ValidationError("invalid request body: "+err.Error()))
		return
	}
	if req.MaxGroupNumber == nil {
		h.writeError(c, errors.InvalidInput("maxGroupNumber is required"))
		return
	}

	token, err := h.session.SetMaxGroupNumber(c.Request.Context(), *req.MaxGroupNumber)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, RunAccepted{Run: token, Snapshot: h.session.Snapshot()})
}

func (h *Handler) setVisual(c *gin.Context) {
	var o insight.VisualOverride
	if err := c.ShouldBindJSON(&o); err != nil {
		h.writeError(c, errors.ValidationError("invalid request body: "+err.Error()))
		return
	}
	snap, err := h.session.SetVisualOverride(o)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) clearVisual(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.ClearVisualOverride())
}

func (h *Handler) reload(c *gin.Context) {
	if h.source == nil {
		h.writeError(c, errors.NotFound("data source"))
		return
	}
	ds, err := h.source.Load(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	token, err := h.session.LoadDataset(c.Request.Context(), ds, nil)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Info("reloaded %s (%d records) as run %s", h.source.Name(), ds.Len(), token)
	c.JSON(http.StatusAccepted, RunAccepted{Run: token, Snapshot: h.session.Snapshot()})
}

func (h *Handler) runs(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Runs())
}

func (h *Handler) runByID(c *gin.Context) {
	token, err := core.ParseRunToken(c.Param("id"))
	if err != nil {
		h.writeError(c, errors.InvalidInput(err.Error()))
		return
	}
	for _, m := range h.session.Runs() {
		if m.Token.ID == token.ID {
			c.JSON(http.StatusOK, m)
			return
		}
	}
	h.writeError(c, errors.NotFound("run "+token.ID))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func statusFor(code string) int {
	switch code {
	case errors.CodeInvalidInput, errors.CodeValidationError, errors.CodeClustering:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeDataSource:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
