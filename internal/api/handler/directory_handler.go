package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahnxd/qrnotify/internal/core/ports"
)

// DirectoryHandler handles admin and link provisioning over HTTP.
type DirectoryHandler struct {
	directory ports.DirectoryService
}

func NewDirectoryHandler(directory ports.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// AddAdmin handles POST /v1/admins — adds a username to the allow-list.
//
// @Summary      Add an admin
// @Tags         directory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addAdminRequest  true  "Admin"
// @Success      201   {object}  messageResponse
// @Failure      409   {object}  map[string]string
// @Router       /v1/admins [post]
func (h *DirectoryHandler) AddAdmin(c echo.Context) error {
	var req addAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.directory.AddAdmin(c.Request().Context(), req.Username); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, messageResponse{
		Message: fmt.Sprintf("Admin %s added successfully", req.Username),
	})
}

// AddLink handles POST /v1/links — adds a catalog entry.
//
// @Summary      Add a reference link
// @Tags         directory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addLinkRequest  true  "Link"
// @Success      201   {object}  messageResponse
// @Failure      409   {object}  map[string]string
// @Router       /v1/links [post]
func (h *DirectoryHandler) AddLink(c echo.Context) error {
	var req addLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.directory.AddLink(c.Request().Context(), req.Name, req.URL); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, messageResponse{
		Message: fmt.Sprintf("Link %s added successfully", req.Name),
	})
}

// ListLinks handles GET /v1/links — returns the catalog in insertion order.
//
// @Summary      List reference links
// @Tags         directory
// @Produce      json
// @Success      200  {array}  linkResponse
// @Router       /v1/links [get]
func (h *DirectoryHandler) ListLinks(c echo.Context) error {
	links, err := h.directory.ListLinks(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]linkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, linkResponse{ID: l.ID, Name: l.Name, URL: l.URL})
	}
	return c.JSON(http.StatusOK, out)
}
