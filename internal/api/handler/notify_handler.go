package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahnxd/qrnotify/internal/core/domain"
	"github.com/ahnxd/qrnotify/internal/core/ports"
)

// maxImageBytes caps the uploaded image size (Telegram photos are well under this).
const maxImageBytes = 10 << 20

// NotifyHandler exposes the decode-and-notify pipeline over HTTP.
type NotifyHandler struct {
	notify ports.NotifyService
}

func NewNotifyHandler(notify ports.NotifyService) *NotifyHandler {
	return &NotifyHandler{notify: notify}
}

// HandleCodeImage handles POST /v1/notifications/qr — multipart form with a
// "username" field and an "image" file. The image bytes are read into memory
// for the duration of the call and released with the request.
//
// @Summary      Decode a QR image and notify the matched user
// @Tags         notifications
// @Accept       multipart/form-data
// @Produce      json
// @Param        username  formData  string  true  "Requesting admin username"
// @Param        image     formData  file    true  "Image containing a QR code"
// @Success      200  {object}  dispatchResponse
// @Failure      403  {object}  dispatchResponse
// @Failure      404  {object}  dispatchResponse
// @Failure      502  {object}  dispatchResponse
// @Router       /v1/notifications/qr [post]
func (h *NotifyHandler) HandleCodeImage(c echo.Context) error {
	username := c.FormValue("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot open uploaded image")
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded image")
	}

	result := h.notify.HandleCodeImage(c.Request().Context(), username, image)
	return c.JSON(statusForOutcome(result), dispatchResponse{
		Outcome: string(result.Outcome),
		Detail:  result.Detail,
	})
}

func statusForOutcome(result domain.DispatchResult) int {
	switch result.Outcome {
	case domain.OutcomeDelivered:
		return http.StatusOK
	case domain.OutcomeTargetNotFound:
		return http.StatusNotFound
	default:
		if result.Detail == domain.DetailUnauthorized {
			return http.StatusForbidden
		}
		return http.StatusBadGateway
	}
}
