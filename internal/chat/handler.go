package chat

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the interpreter over HTTP.
type Handler struct {
	interp *Interpreter
}

func NewHandler(interp *Interpreter) *Handler {
	return &Handler{interp: interp}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/chat", h.handleChat)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) handleChat(c echo.Context) error {
	var req chatRequest
	// a missing or malformed body is treated as an empty message, which the
	// interpreter rejects with its own validation error
	_ = c.Bind(&req)

	resp := h.interp.Interpret(c.Request().Context(), req.Message)
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, resp)
}
