package users

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PerezChris99/University-Library-RESTful-API/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, requireAuth, requireElevated gin.HandlerFunc) {
	h := &Handler{svc: svc}

	r.POST("/users", h.Register)
	r.POST("/users/login", h.Login)
	r.POST("/users/password-reset", h.RequestPasswordReset)

	r.GET("/users/me", requireAuth, h.GetMe)
	r.PATCH("/users/me", requireAuth, h.UpdateMe)
	r.POST("/users/pay-fines", requireAuth, h.PayFines)

	r.GET("/users", requireAuth, requireElevated, h.ListUsers)
	r.GET("/users/:id", requireAuth, requireElevated, h.GetUser)
	r.PATCH("/users/:id", requireAuth, requireElevated, h.UpdateUser)
}

// POST /users
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /users/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /users/password-reset
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	if err := h.svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reset email sent successfully"})
}

// GET /users/me
func (h *Handler) GetMe(c *gin.Context) {
	res, err := h.svc.GetUser(c.Request.Context(), c.GetString(auth.CtxUserIDKey))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /users/me
func (h *Handler) UpdateMe(c *gin.Context) {
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}

	res, err := h.svc.UpdateProfile(c.Request.Context(), c.GetString(auth.CtxUserIDKey), updates)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /users/pay-fines
func (h *Handler) PayFines(c *gin.Context) {
	var req PayFinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "valid amount required"))
		return
	}

	res, err := h.svc.PayFines(c.Request.Context(), c.GetString(auth.CtxUserIDKey), req.Amount)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /users
func (h *Handler) ListUsers(c *gin.Context) {
	f := Filter{
		Role:   c.Query("role"),
		SortBy: c.Query("sortBy"),
		Limit:  parseIntDefault(c.Query("limit"), 10),
		Skip:   parseIntDefault(c.Query("skip"), 0),
	}
	if v := c.Query("isActive"); v != "" {
		b := v == "true"
		f.IsActive = &b
	}

	res, err := h.svc.ListUsers(c.Request.Context(), f)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /users/:id
func (h *Handler) GetUser(c *gin.Context) {
	res, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /users/:id
func (h *Handler) UpdateUser(c *gin.Context) {
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}

	res, err := h.svc.AdminUpdateUser(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var msg string
	var code Code = CodeInternal
	if api, ok := err.(*APIError); ok {
		code, msg = api.Code, api.Message
	} else {
		msg = err.Error()
	}
	return errorBody(code, msg)
}
