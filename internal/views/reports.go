package views

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/helpdesk-io/helpdesk-web/internal/format"
	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

const dateLayout = "2006-01-02"

// ReportQuery is the date range of a report, both ends inclusive.
type ReportQuery struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

type reportSummary struct {
	Total         int
	Resolved      int
	SLAMetPercent string
}

func summarize(rows []models.TicketReportRow) reportSummary {
	s := reportSummary{Total: len(rows), SLAMetPercent: "-"}
	met := 0
	for _, r := range rows {
		if r.ResolvedAt != nil {
			s.Resolved++
		}
		if r.SLAMet {
			met++
		}
	}
	if s.Total > 0 {
		s.SLAMetPercent = format.Percent(float64(met) * 100 / float64(s.Total))
	}
	return s
}

// reportRange reads the range, defaulting to the last 30 days.
func (h *Handlers) reportRange(c *gin.Context) (ReportQuery, map[string]string) {
	var q ReportQuery
	if errs := bind(c, &q); errs != nil {
		return q, errs
	}
	today := h.Now().Format(dateLayout)
	if q.To == "" {
		q.To = today
	}
	if q.From == "" {
		to, _ := time.Parse(dateLayout, q.To)
		q.From = to.AddDate(0, 0, -30).Format(dateLayout)
	}
	if q.From > q.To {
		return q, map[string]string{"to": "Must be on or after the start date"}
	}
	return q, nil
}

// Reports shows the ticket report for a date range.
func (h *Handlers) Reports(c *gin.Context) {
	q, errs := h.reportRange(c)
	data := gin.H{"Title": "Reports", "Form": q}
	if errs != nil {
		data["Errors"] = errs
		h.render(c, http.StatusUnprocessableEntity, "pages/reports.html", data)
		return
	}

	report, err := h.Client.Reports.Tickets(h.scope(c), q.From, q.To)
	if err != nil {
		h.loadFailed(c, "pages/reports.html", data, err)
		return
	}
	data["Report"] = report
	data["Summary"] = summarize(report.Rows)
	h.render(c, http.StatusOK, "pages/reports.html", data)
}

var reportHeaders = []interface{}{
	"Number", "Subject", "Client", "Category", "Priority", "Status", "Assignee",
	"Created", "Resolved", "Resolution hours", "SLA met",
}

func reportRow(r models.TicketReportRow) []interface{} {
	resolved, hours := "", ""
	if r.ResolvedAt != nil {
		resolved = r.ResolvedAt.Format("2006-01-02 15:04")
	}
	if r.ResolutionHours != nil {
		hours = fmt.Sprintf("%.1f", *r.ResolutionHours)
	}
	met := "No"
	if r.SLAMet {
		met = "Yes"
	}
	return []interface{}{
		r.Number, r.Subject, r.Client, r.Category, r.Priority, r.Status, r.Assignee,
		r.CreatedAt.Format("2006-01-02 15:04"), resolved, hours, met,
	}
}

// buildWorkbook lays the report out as a single sheet with a bold header.
func buildWorkbook(report *models.TicketReport) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Tickets"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &reportHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "K1", style); err != nil {
		return nil, err
	}

	for i, r := range report.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := reportRow(r)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(sheet, "B", "B", 40)
	_ = f.SetColWidth(sheet, "C", "D", 24)
	_ = f.SetColWidth(sheet, "G", "I", 20)
	return f, nil
}

// ReportsExport streams the report as an .xlsx download.
func (h *Handlers) ReportsExport(c *gin.Context) {
	q, errs := h.reportRange(c)
	data := gin.H{"Title": "Reports", "Form": q}
	if errs != nil {
		data["Errors"] = errs
		h.render(c, http.StatusUnprocessableEntity, "pages/reports.html", data)
		return
	}

	report, err := h.Client.Reports.Tickets(h.scope(c), q.From, q.To)
	if err != nil {
		h.loadFailed(c, "pages/reports.html", data, err)
		return
	}

	f, err := buildWorkbook(report)
	if err != nil {
		h.Logger.Error("failed to build report workbook", zap.Error(err))
		h.loadFailed(c, "pages/reports.html", data, err)
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("tickets_%s_%s.xlsx", q.From, q.To)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.Logger.Warn("report download interrupted", zap.Error(err))
	}
}
