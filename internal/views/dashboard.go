package views

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

// Dashboard shows ticket counts and charts. Both are fetched at once.
func (h *Handlers) Dashboard(c *gin.Context) {
	var (
		charts *models.DashboardCharts
		stats  *models.DashboardStats
	)
	g, ctx := errgroup.WithContext(h.scope(c))
	g.Go(func() (err error) {
		charts, err = h.Client.Dashboard.Charts(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats, err = h.Client.Dashboard.Stats(ctx)
		return err
	})

	data := gin.H{"Title": "Dashboard"}
	if err := g.Wait(); err != nil {
		h.loadFailed(c, "pages/dashboard.html", data, err)
		return
	}
	data["Charts"] = charts
	data["Stats"] = stats
	h.render(c, http.StatusOK, "pages/dashboard.html", data)
}
