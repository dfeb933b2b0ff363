package views

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/helpdesk-io/helpdesk-web/internal/format"
	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

func emailForm(cfg *models.EmailConfig) models.EmailConfigInput {
	return models.EmailConfigInput{
		SMTPHost:       cfg.SMTPHost,
		SMTPPort:       cfg.SMTPPort,
		Username:       cfg.Username,
		FromAddress:    cfg.FromAddress,
		FromName:       cfg.FromName,
		UseTLS:         cfg.UseTLS,
		InboundEnabled: cfg.InboundEnabled,
		InboundHost:    cfg.InboundHost,
		InboundPort:    cfg.InboundPort,
	}
}

// EmailSettings shows the mail configuration.
func (h *Handlers) EmailSettings(c *gin.Context) {
	h.showEmailSettings(c, http.StatusOK, gin.H{})
}

func (h *Handlers) showEmailSettings(c *gin.Context, status int, extra gin.H) {
	data := gin.H{"Title": "Email settings", "Notice": notice(c.Request.URL.Query())}
	cfg, err := h.Client.EmailConfig.Get(h.scope(c))
	if err != nil {
		h.loadFailed(c, "pages/settings/email.html", data, err)
		return
	}
	data["Form"] = emailForm(cfg)
	data["TestForm"] = models.EmailTestInput{}
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "pages/settings/email.html", data)
}

// EmailSettingsUpdate saves the mail configuration. The stored password is
// kept when the field is left blank.
func (h *Handlers) EmailSettingsUpdate(c *gin.Context) {
	var in models.EmailConfigInput
	if errs := bind(c, &in); errs != nil {
		in.Password = ""
		h.showEmailSettings(c, http.StatusUnprocessableEntity, gin.H{"Form": in, "Errors": errs})
		return
	}
	if _, err := h.Client.EmailConfig.Update(h.scope(c), in); err != nil {
		in.Password = ""
		h.rejected(c, err, in, func(status int, extra gin.H) { h.showEmailSettings(c, status, extra) })
		return
	}
	seeOther(c, "/settings/email?saved=1")
}

// EmailSettingsTest asks the backend to send a test message.
func (h *Handlers) EmailSettingsTest(c *gin.Context) {
	var in models.EmailTestInput
	if errs := bind(c, &in); errs != nil {
		h.showEmailSettings(c, http.StatusUnprocessableEntity, gin.H{"TestForm": in, "TestErrors": errs})
		return
	}
	if err := h.Client.EmailConfig.SendTest(h.scope(c), in); err != nil {
		if isUnauthorized(err) {
			h.expire(c)
			return
		}
		h.showEmailSettings(c, http.StatusOK, gin.H{"TestForm": in, "TestMessage": ErrorMessage(err)})
		return
	}
	seeOther(c, "/settings/email?sent=1")
}

type slaRow struct {
	Policy        models.SLAPolicy
	Bucket        string
	Tone          string
	ResponseDue   time.Time
	ResolutionDue time.Time
}

type slaBucketGroup struct {
	Bucket     string
	Tone       string
	Categories []models.Category
}

var bucketOrder = []string{
	format.BucketCritical, format.BucketHigh, format.BucketMedium, format.BucketLow, format.BucketPlanning,
}

// slaRows previews, for a ticket opened at now, when each policy falls due.
func (h *Handlers) slaRows(policies []models.SLAPolicy, now time.Time) []slaRow {
	rows := make([]slaRow, 0, len(policies))
	for _, p := range policies {
		bucket := format.SLABucket(p.ResponseHours)
		rows = append(rows, slaRow{
			Policy:        p,
			Bucket:        bucket,
			Tone:          format.SLATone(bucket),
			ResponseDue:   h.Calendar.DueAt(now, p.ResponseHours, p.BusinessHoursOnly),
			ResolutionDue: h.Calendar.DueAt(now, p.ResolutionHours, p.BusinessHoursOnly),
		})
	}
	return rows
}

func bucketCategories(all []models.Category) []slaBucketGroup {
	groups := make(map[string][]models.Category)
	for _, cat := range all {
		b := format.SLABucket(cat.SLAResponseHours)
		groups[b] = append(groups[b], cat)
	}
	var out []slaBucketGroup
	for _, b := range bucketOrder {
		if len(groups[b]) == 0 {
			continue
		}
		out = append(out, slaBucketGroup{Bucket: b, Tone: format.SLATone(b), Categories: groups[b]})
	}
	return out
}

// SLASettings shows the SLA policies with due-time previews and the
// categories grouped by response target.
func (h *Handlers) SLASettings(c *gin.Context) {
	h.showSLASettings(c, http.StatusOK, gin.H{})
}

func (h *Handlers) showSLASettings(c *gin.Context, status int, extra gin.H) {
	var (
		policies      []models.SLAPolicy
		categories    []models.Category
		categoriesErr error
	)
	g, ctx := errgroup.WithContext(h.scope(c))
	g.Go(func() (err error) {
		policies, err = h.Client.SLA.List(ctx)
		return err
	})
	g.Go(func() error {
		categories, categoriesErr = h.Client.Categories.List(ctx)
		return nil
	})

	now := h.Now()
	data := gin.H{
		"Title":        "SLA settings",
		"Notice":       notice(c.Request.URL.Query()),
		"Priorities":   models.TicketPriorities,
		"WorkdayStart": h.Workday[0],
		"WorkdayEnd":   h.Workday[1],
		"Now":          now,
	}
	if err := g.Wait(); err != nil {
		h.loadFailed(c, "pages/settings/sla.html", data, err)
		return
	}
	if categoriesErr != nil {
		if isUnauthorized(categoriesErr) {
			h.expire(c)
			return
		}
		data["CategoriesError"] = ErrorMessage(categoriesErr)
		data["RetryURL"] = c.Request.URL.RequestURI()
	}

	data["Policies"] = h.slaRows(policies, now)
	data["Buckets"] = bucketCategories(categories)
	data["Form"] = models.SLAPolicyInput{Priority: models.PriorityMedium}
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "pages/settings/sla.html", data)
}

// SLASettingsUpdate replaces the policy of one priority.
func (h *Handlers) SLASettingsUpdate(c *gin.Context) {
	var in models.SLAPolicyInput
	if errs := bind(c, &in); errs != nil {
		h.showSLASettings(c, http.StatusUnprocessableEntity, gin.H{"Form": in, "Errors": errs})
		return
	}
	if _, err := h.Client.SLA.Update(h.scope(c), in); err != nil {
		h.rejected(c, err, in, func(status int, extra gin.H) { h.showSLASettings(c, status, extra) })
		return
	}
	seeOther(c, "/settings/sla?saved=1")
}
