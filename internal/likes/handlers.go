package likes

import (
	"net/http"

	"microhub/internal/auth"
	"microhub/internal/httpapi"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service     *Service
	RequireAuth gin.HandlerFunc
	Quota       gin.HandlerFunc
}

func (h Handler) Register(r gin.IRouter) {
	g := r.Group("/likes")
	g.GET("/post/:postId/count", h.CountForPost)
	g.GET("/post/:postId/status", h.RequireAuth, h.Status)
	g.GET("/user/count", h.RequireAuth, h.CountMine)

	guard := []gin.HandlerFunc{h.RequireAuth}
	if h.Quota != nil {
		guard = append(guard, h.Quota)
	}
	w := g.Group("", guard...)
	w.POST("", h.Like)
	w.DELETE("", h.Unlike)
}

func (h Handler) CountForPost(c *gin.Context) {
	postID, ok := httpapi.ParamID(c, "postId")
	if !ok {
		httpapi.BadRequest(c, "Invalid post ID")
		return
	}
	n, err := h.Service.CountForPost(c.Request.Context(), postID)
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h Handler) Status(c *gin.Context) {
	postID, ok := httpapi.ParamID(c, "postId")
	if !ok {
		httpapi.BadRequest(c, "Invalid post ID")
		return
	}
	st, err := h.Service.StatusFor(c.Request.Context(), auth.MustIdentity(c), postID)
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h Handler) Like(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, "Missing required field: postId")
		return
	}
	l, err := h.Service.Like(c.Request.Context(), auth.MustIdentity(c), req.PostID)
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h Handler) Unlike(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, "Missing required field: postId")
		return
	}
	if err := h.Service.Unlike(c.Request.Context(), auth.MustIdentity(c), req.PostID); err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h Handler) CountMine(c *gin.Context) {
	n, err := h.Service.CountMine(c.Request.Context(), auth.MustIdentity(c))
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
