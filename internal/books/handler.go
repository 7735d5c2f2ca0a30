package books

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the catalog endpoints. Reads are public; writes need
// an elevated role.
func RegisterRoutes(r gin.IRoutes, svc *Service, requireAuth, requireElevated gin.HandlerFunc) {
	h := &Handler{svc: svc}

	r.GET("/books", h.ListBooks)
	r.GET("/books/:id", h.GetBook)

	r.POST("/books", requireAuth, requireElevated, h.CreateBook)
	r.PATCH("/books/:id", requireAuth, requireElevated, h.UpdateBook)
	r.DELETE("/books/:id", requireAuth, requireElevated, h.DeleteBook)
	r.PATCH("/books/:id/inventory", requireAuth, requireElevated, h.UpdateInventory)
}

// POST /books
func (h *Handler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.CreateBook(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}

	c.Header("Location", "/books/"+res.ID)
	c.JSON(http.StatusCreated, res)
}

// GET /books
func (h *Handler) ListBooks(c *gin.Context) {
	f := Filter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		SortBy:   c.Query("sortBy"),
		Limit:    parseIntDefault(c.Query("limit"), 10),
		Skip:     parseIntDefault(c.Query("skip"), 0),
	}
	res, err := h.svc.ListBooks(c.Request.Context(), f)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /books/:id
func (h *Handler) GetBook(c *gin.Context) {
	res, err := h.svc.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}

	res, err := h.svc.UpdateBook(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// DELETE /books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	res, err := h.svc.DeleteBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /books/:id/inventory
func (h *Handler) UpdateInventory(c *gin.Context) {
	var req UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.SetInventory(c.Request.Context(), c.Param("id"), req)
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
