package borrowings

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PerezChris99/University-Library-RESTful-API/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, requireAuth, requireElevated gin.HandlerFunc) {
	h := &Handler{svc: svc}

	r.POST("/borrowings", requireAuth, h.Borrow)
	r.GET("/borrowings/me", requireAuth, h.ListMine)
	r.GET("/borrowings/:id", requireAuth, h.GetBorrowing)
	r.PATCH("/borrowings/:id/return", requireAuth, h.Return)
	r.PATCH("/borrowings/:id/renew", requireAuth, h.Renew)

	r.GET("/borrowings", requireAuth, requireElevated, h.ListAll)
	r.PATCH("/borrowings/:id/pay-fine", requireAuth, requireElevated, h.PayFine)
}

// POST /borrowings
func (h *Handler) Borrow(c *gin.Context) {
	var req CreateBorrowingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.Borrow(c.Request.Context(), c.GetString(auth.CtxUserIDKey), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}

	c.Header("Location", "/borrowings/"+res.ID)
	c.JSON(http.StatusCreated, res)
}

// GET /borrowings/me
func (h *Handler) ListMine(c *gin.Context) {
	res, err := h.svc.ListMine(c.Request.Context(), c.GetString(auth.CtxUserIDKey))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /borrowings/:id
func (h *Handler) GetBorrowing(c *gin.Context) {
	res, err := h.svc.GetOwn(c.Request.Context(), c.Param("id"), c.GetString(auth.CtxUserIDKey))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /borrowings/:id/return
func (h *Handler) Return(c *gin.Context) {
	elevated := auth.IsElevated(c.GetString(auth.CtxRoleKey))
	res, err := h.svc.Return(c.Request.Context(), c.Param("id"), c.GetString(auth.CtxUserIDKey), elevated)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /borrowings/:id/renew
func (h *Handler) Renew(c *gin.Context) {
	res, err := h.svc.Renew(c.Request.Context(), c.Param("id"), c.GetString(auth.CtxUserIDKey))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /borrowings
func (h *Handler) ListAll(c *gin.Context) {
	f := Filter{
		Status: c.Query("status"),
		SortBy: c.Query("sortBy"),
		Limit:  parseIntDefault(c.Query("limit"), 10),
		Skip:   parseIntDefault(c.Query("skip"), 0),
	}
	res, err := h.svc.ListAll(c.Request.Context(), f)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /borrowings/:id/pay-fine
func (h *Handler) PayFine(c *gin.Context) {
	res, err := h.svc.PayFine(c.Request.Context(), c.Param("id"))
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
