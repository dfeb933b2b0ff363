package views

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/helpdesk-io/helpdesk-web/internal/apiclient"
	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"timeout", fmt.Errorf("get: %w", context.DeadlineExceeded), "The server took too long to respond. Please try again."},
		{"cancelled", context.Canceled, "The request was cancelled."},
		{"network", &apiclient.NetworkError{Operation: "GET", URL: "http://x", Err: errors.New("refused")}, "Unable to reach the server. Please try again."},
		{"unauthorized", apiclient.ErrUnauthorized, "Your session has expired. Please sign in again."},
		{"forbidden", apiclient.NewAPIError(http.StatusForbidden, "nope", "", ""), "You do not have permission to do that."},
		{"not found", apiclient.ErrNotFound, "The requested item was not found."},
		{"rate limited", apiclient.ErrRateLimited, "Too many requests. Please wait a moment and try again."},
		{"server", apiclient.NewAPIError(http.StatusBadGateway, "proxy: dial tcp 10.0.0.3", "", ""), "The server encountered an error. Please try again."},
		{"backend message", apiclient.NewAPIError(http.StatusConflict, "Ticket is closed", "", ""), "Ticket is closed"},
		{"no message", apiclient.NewAPIError(http.StatusConflict, "", "", ""), "The request could not be completed."},
		{"anything else", errors.New("boom"), "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
		})
	}
}

func TestFlattenThreadCapsIndent(t *testing.T) {
	var comments []models.Comment
	for i := uint(1); i <= 7; i++ {
		c := models.Comment{ID: i}
		if i > 1 {
			c.ParentID = uintPtr(i - 1)
		}
		comments = append(comments, c)
	}

	items := flattenThread(models.ThreadComments(comments), 0, nil)
	if assert.Len(t, items, 7) {
		assert.Equal(t, 0, items[0].Indent)
		assert.Equal(t, 3, items[3].Depth)
		assert.Equal(t, 6, items[3].Indent)
		assert.Equal(t, 6, items[6].Depth)
		assert.Equal(t, 8, items[6].Indent)
	}
}

func TestParentChoicesExcludeDescendants(t *testing.T) {
	all := []models.Category{
		{ID: 1, Name: "Hardware"},
		{ID: 2, Name: "Printers", ParentID: uintPtr(1)},
		{ID: 3, Name: "Toner", ParentID: uintPtr(2)},
		{ID: 4, Name: "Software"},
	}

	var ids []uint
	for _, opt := range parentChoices(all, 2) {
		ids = append(ids, opt.ID)
	}
	assert.ElementsMatch(t, []uint{1, 4}, ids)

	assert.Len(t, parentChoices(all, 0), 4)
	assert.Equal(t, "Hardware / Printers / Toner", categoryRows(all)[2].Label)
}

func TestPagerLinksKeepFilters(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/tickets?status=open&page=2", nil)

	pg := pagerFor(&models.Page[models.Ticket]{Total: 60, Page: 2, PageSize: 25}, c)
	assert.Equal(t, 3, pg.TotalPages)
	assert.Equal(t, "/tickets?page=1&status=open", pg.PrevURL)
	assert.Equal(t, "/tickets?page=3&status=open", pg.NextURL)

	last := pagerFor(&models.Page[models.Ticket]{Total: 60, Page: 3, PageSize: 25}, c)
	assert.Empty(t, last.NextURL)
}

func TestBucketCategoriesOrdersByUrgency(t *testing.T) {
	groups := bucketCategories([]models.Category{
		{ID: 1, Name: "Backups", SLAResponseHours: 48},
		{ID: 2, Name: "Outage", SLAResponseHours: 1},
		{ID: 3, Name: "VPN", SLAResponseHours: 4},
	})

	var order []string
	for _, g := range groups {
		order = append(order, g.Categories[0].Name)
	}
	assert.Equal(t, []string{"Outage", "VPN", "Backups"}, order)
}

func TestSummarize(t *testing.T) {
	hours := 3.0
	rows := []models.TicketReportRow{
		{Number: "T-1", SLAMet: true, ResolutionHours: &hours},
		{Number: "T-2"},
	}
	rows[0].ResolvedAt = &fixedNow

	s := summarize(rows)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Resolved)
	assert.Equal(t, "50%", s.SLAMetPercent)
}
