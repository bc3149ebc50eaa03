package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/abdusco/shorty/internal"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type LinkService interface {
	Create(ctx context.Context, targetURL, code string) (*internal.Link, error)
	List(ctx context.Context) ([]*internal.Link, error)
	Get(ctx context.Context, code string) (*internal.Link, error)
	Delete(ctx context.Context, code string) error
	Redirect(ctx context.Context, code string) (string, error)
}

type LinkHandler struct {
	links LinkService
}

func NewLinkHandler(links LinkService) *LinkHandler {
	return &LinkHandler{links: links}
}

type CreateLinkRequest struct {
	TargetURL string `json:"targetUrl"`
	Code      string `json:"code"`
}

type LinkResponse struct {
	ID            int64      `json:"id"`
	Code          string     `json:"code"`
	TargetURL     string     `json:"target_url"`
	TotalClicks   int64      `json:"total_clicks"`
	LastClickedAt *time.Time `json:"last_clicked_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func newLinkResponse(l *internal.Link) LinkResponse {
	return LinkResponse{
		ID:            l.ID,
		Code:          l.Code,
		TargetURL:     l.TargetURL,
		TotalClicks:   l.TotalClicks,
		LastClickedAt: l.LastClickedAt,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func (h *LinkHandler) CreateLink(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateLinkRequest
	// A body that does not decode carries no usable target URL.
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid URL").SetInternal(err)
	}

	created, err := h.links.Create(ctx, req.TargetURL, req.Code)
	if err != nil {
		return apiError(err, "Internal server error")
	}

	return c.JSON(http.StatusCreated, newLinkResponse(created))
}

func (h *LinkHandler) ListLinks(c echo.Context) error {
	links, err := h.links.List(c.Request().Context())
	if err != nil {
		return apiError(err, "Failed to fetch links")
	}

	return c.JSON(http.StatusOK, lo.Map(links, func(l *internal.Link, _ int) LinkResponse {
		return newLinkResponse(l)
	}))
}

func (h *LinkHandler) GetLink(c echo.Context) error {
	found, err := h.links.Get(c.Request().Context(), c.Param("code"))
	if err != nil {
		return apiError(err, "Failed to fetch link stats")
	}

	return c.JSON(http.StatusOK, newLinkResponse(found))
}

func (h *LinkHandler) DeleteLink(c echo.Context) error {
	if err := h.links.Delete(c.Request().Context(), c.Param("code")); err != nil {
		return apiError(err, "Failed to delete link")
	}

	return c.NoContent(http.StatusNoContent)
}

// Redirect answers in plain text rather than JSON since browsers land here.
func (h *LinkHandler) Redirect(c echo.Context) error {
	ctx := c.Request().Context()
	code := c.Param("code")

	log.Debug().Str("code", code).Msg("redirect request")

	target, err := h.links.Redirect(ctx, code)
	switch {
	case errors.Is(err, internal.ErrReservedCode):
		return c.String(http.StatusNotFound, "Not found")
	case errors.Is(err, internal.ErrLinkNotFound):
		log.Warn().Str("code", code).Msg("link not found")
		return c.String(http.StatusNotFound, "Short link not found")
	case err != nil:
		log.Error().Err(err).Str("code", code).Msg("redirect failed")
		return c.String(http.StatusInternalServerError, "Server error")
	}

	return c.Redirect(http.StatusFound, target)
}

// apiError maps a service error kind to its HTTP status. Store failures keep
// their cause as the internal error, so it is logged but never rendered.
func apiError(err error, fallback string) error {
	switch {
	case errors.Is(err, internal.ErrInvalidURL):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid URL")
	case errors.Is(err, internal.ErrInvalidCode):
		return echo.NewHTTPError(http.StatusBadRequest, "Code must be 6 to 8 chars, letters/numbers only")
	case errors.Is(err, internal.ErrCodeExists):
		return echo.NewHTTPError(http.StatusConflict, "Code already exists")
	case errors.Is(err, internal.ErrLinkNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Link not found")
	}

	return echo.NewHTTPError(http.StatusInternalServerError, fallback).SetInternal(err)
}
