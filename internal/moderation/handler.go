package moderation

import (
	"net/http"

	"microhub/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// Handler exposes the engine over HTTP.
type Handler struct {
	Service *Service
}

type checkRequest struct {
	Content     *string `json:"content"`
	ContentType string  `json:"contentType"`
}

type batchRequest struct {
	Contents []string `json:"contents"`
}

func (h Handler) Register(r gin.IRouter) {
	g := r.Group("/moderation")
	g.POST("/check", h.Check)
	g.POST("/batch", h.Batch)
}

func (h Handler) Check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == nil {
		httpapi.BadRequest(c, "Content is required and must be a string")
		return
	}
	v, err := h.Service.Check(c.Request.Context(), *req.Content, req.ContentType)
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h Handler) Batch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Contents == nil {
		httpapi.BadRequest(c, "Contents must be an array of strings")
		return
	}
	vs, err := h.Service.CheckBatch(c.Request.Context(), req.Contents)
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, vs)
}
