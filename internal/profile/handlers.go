package profile

import (
	"net/http"

	"microhub/internal/httpapi"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Aggregator  *Aggregator
	RequireAuth gin.HandlerFunc
}

func (h Handler) Register(r gin.IRouter) {
	r.GET("/profile/me", h.RequireAuth, h.Me)
}

func (h Handler) Me(c *gin.Context) {
	s, err := h.Aggregator.Summary(c.Request.Context())
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
