package handler

import (
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
)

type DashboardHandler struct {
	pages fs.FS
}

func NewDashboardHandler(pages fs.FS) *DashboardHandler {
	return &DashboardHandler{pages: pages}
}

func (h *DashboardHandler) ServeDashboard(c echo.Context) error {
	return h.servePage(c, "index.html")
}

// ServeStats serves the per-code stats page; the page reads the code from
// its own URL and fetches the link from the API.
func (h *DashboardHandler) ServeStats(c echo.Context) error {
	return h.servePage(c, "stats.html")
}

func (h *DashboardHandler) servePage(c echo.Context, name string) error {
	data, err := fs.ReadFile(h.pages, name)
	if err != nil {
		return c.String(http.StatusInternalServerError, "failed to read "+name)
	}
	return c.HTMLBlob(http.StatusOK, data)
}
