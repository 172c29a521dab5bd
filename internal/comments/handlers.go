package comments

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
	g := r.Group("/comments")
	g.GET("/post/:postId", h.ListByPost)
	g.GET("/user/count", h.RequireAuth, h.CountMine)

	guard := []gin.HandlerFunc{h.RequireAuth}
	if h.Quota != nil {
		guard = append(guard, h.Quota)
	}
	w := g.Group("", guard...)
	w.POST("", h.Create)
	w.DELETE("/:id", h.Delete)
}

func (h Handler) ListByPost(c *gin.Context) {
	postID, ok := httpapi.ParamID(c, "postId")
	if !ok {
		httpapi.BadRequest(c, "Invalid post ID")
		return
	}
	cs, err := h.Service.ListByPost(c.Request.Context(), postID)
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, "Missing required fields: postId, text")
		return
	}
	cm, err := h.Service.Create(c.Request.Context(), auth.MustIdentity(c), req)
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

func (h Handler) Delete(c *gin.Context) {
	id, ok := httpapi.ParamID(c, "id")
	if !ok {
		httpapi.BadRequest(c, "Invalid comment ID")
		return
	}
	if err := h.Service.Delete(c.Request.Context(), auth.MustIdentity(c), id); err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func (h Handler) CountMine(c *gin.Context) {
	n, err := h.Service.CountMine(c.Request.Context(), auth.MustIdentity(c))
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
