package reservations

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PerezChris99/University-Library-RESTful-API/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, requireAuth, requireElevated gin.HandlerFunc) {
	h := &Handler{svc: svc}

	r.POST("/reservations", requireAuth, h.Reserve)
	r.GET("/reservations/me", requireAuth, h.ListMine)
	r.GET("/reservations/:id", requireAuth, h.GetReservation)
	r.PATCH("/reservations/:id/cancel", requireAuth, h.Cancel)

	r.GET("/reservations", requireAuth, requireElevated, h.ListAll)
	r.PATCH("/reservations/:id", requireAuth, requireElevated, h.AdminUpdate)
	r.PATCH("/reservations/:id/fulfill", requireAuth, requireElevated, h.Fulfill)
}

// POST /reservations
func (h *Handler) Reserve(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.Reserve(c.Request.Context(), c.GetString(auth.CtxUserIDKey), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}

	c.Header("Location", "/reservations/"+res.ID)
	c.JSON(http.StatusCreated, res)
}

// GET /reservations/me
func (h *Handler) ListMine(c *gin.Context) {
	res, err := h.svc.ListMine(c.Request.Context(), c.GetString(auth.CtxUserIDKey), c.Query("status"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /reservations/:id
func (h *Handler) GetReservation(c *gin.Context) {
	res, err := h.svc.GetOwn(c.Request.Context(), c.Param("id"), c.GetString(auth.CtxUserIDKey))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /reservations/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	res, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), c.GetString(auth.CtxUserIDKey))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /reservations
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

// PATCH /reservations/:id
func (h *Handler) AdminUpdate(c *gin.Context) {
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}

	res, err := h.svc.AdminUpdate(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /reservations/:id/fulfill
func (h *Handler) Fulfill(c *gin.Context) {
	res, err := h.svc.Fulfill(c.Request.Context(), c.Param("id"))
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
