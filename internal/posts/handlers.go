package posts

import (
	"net/http"

	"microhub/internal/auth"
	"microhub/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// Handler maps /posts routes onto the Service.
// RequireAuth must be set; Quota is optional and only guards writes.
type Handler struct {
	Service     *Service
	RequireAuth gin.HandlerFunc
	Quota       gin.HandlerFunc
}

func (h Handler) Register(r gin.IRouter) {
	g := r.Group("/posts")
	g.GET("", h.List)
	g.GET("/count/mine", h.RequireAuth, h.CountMine)

	guard := []gin.HandlerFunc{h.RequireAuth}
	if h.Quota != nil {
		guard = append(guard, h.Quota)
	}
	w := g.Group("", guard...)
	w.POST("", h.Create)
	w.DELETE("/:id", h.Delete)
}

func (h Handler) List(c *gin.Context) {
	ps, err := h.Service.List(c.Request.Context())
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

func (h Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, "invalid json")
		return
	}
	p, err := h.Service.Create(c.Request.Context(), auth.MustIdentity(c), req)
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h Handler) Delete(c *gin.Context) {
	id, ok := httpapi.ParamID(c, "id")
	if !ok {
		httpapi.BadRequest(c, "Invalid post ID")
		return
	}
	if err := h.Service.Delete(c.Request.Context(), auth.MustIdentity(c), id); err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (h Handler) CountMine(c *gin.Context) {
	n, err := h.Service.CountMine(c.Request.Context(), auth.MustIdentity(c))
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
