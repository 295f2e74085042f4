package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahnxd/qrnotify/internal/core/ports"
)

// IdentityHandler handles phone registration over HTTP.
type IdentityHandler struct {
	registration ports.RegistrationService
}

func NewIdentityHandler(registration ports.RegistrationService) *IdentityHandler {
	return &IdentityHandler{registration: registration}
}

// Register handles POST /v1/identities — upserts a phone → chat mapping.
//
// @Summary      Register a phone number
// @Tags         identities
// @Accept       json
// @Produce      json
// @Param        body  body      registerIdentityRequest  true  "Identity"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /v1/identities [post]
func (h *IdentityHandler) Register(c echo.Context) error {
	var req registerIdentityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.registration.Register(c.Request().Context(), req.Phone, req.ChatID); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, messageResponse{
		Message: fmt.Sprintf("User %s added successfully", req.Phone),
	})
}
