package users

import (
	"net/http"

	"microhub/internal/apperr"
	"microhub/internal/auth"
	"microhub/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// Handler maps /users routes onto the Service. RequireAuth guards /users/me.
type Handler struct {
	Service     *Service
	RequireAuth gin.HandlerFunc
}

func (h Handler) Register(r gin.IRouter) {
	g := r.Group("/users")
	g.POST("/register", h.SignUp)
	g.POST("/login", h.Login)
	g.POST("/verify", h.Verify)
	g.GET("/me", h.RequireAuth, h.Me)
	g.GET("/:id", h.Get)
}

func (h Handler) SignUp(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, "invalid json")
		return
	}
	u, err := h.Service.Register(c.Request.Context(), req)
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, "invalid json")
		return
	}
	res, err := h.Service.Login(c.Request.Context(), req)
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h Handler) Me(c *gin.Context) {
	u, err := h.Service.Get(c.Request.Context(), auth.MustIdentity(c).ID)
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h Handler) Get(c *gin.Context) {
	id, ok := httpapi.ParamID(c, "id")
	if !ok {
		httpapi.BadRequest(c, "Invalid user ID")
		return
	}
	u, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		httpapi.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type verifyRequest struct {
	Token string `json:"token"`
}

// Verify answers the remote token check used by the other services.
func (h Handler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		httpapi.BadRequest(c, "Token is required")
		return
	}
	id, err := h.Service.Verify(req.Token)
	if err != nil {
		msg := "Invalid or expired token"
		if e, ok := apperr.As(err); ok {
			msg = e.Message
		}
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": id})
}
