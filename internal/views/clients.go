package views

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

func clientForm(cl *models.Client) models.ClientInput {
	return models.ClientInput{
		Name:         cl.Name,
		Code:         cl.Code,
		ContactEmail: cl.ContactEmail,
		Phone:        cl.Phone,
		IsActive:     cl.IsActive,
	}
}

func siteForm(s *models.Site) models.SiteInput {
	return models.SiteInput{
		Name:       s.Name,
		Address:    s.Address,
		City:       s.City,
		PostalCode: s.PostalCode,
		Country:    s.Country,
	}
}

// ClientList shows a searchable page of clients.
func (h *Handlers) ClientList(c *gin.Context) {
	search := c.Query("q")
	data := gin.H{"Title": "Clients", "Search": search}

	page, err := h.Client.Clients.List(h.scope(c), search, pageParam(c), defaultPageSize)
	if err != nil {
		h.loadFailed(c, "pages/clients/list.html", data, err)
		return
	}
	data["Clients"] = page.Items
	data["Pager"] = pagerFor(page, c)
	h.render(c, http.StatusOK, "pages/clients/list.html", data)
}

// ClientNew shows an empty client form.
func (h *Handlers) ClientNew(c *gin.Context) {
	h.render(c, http.StatusOK, "pages/clients/form.html", gin.H{
		"Title": "New client",
		"Form":  models.ClientInput{IsActive: true},
	})
}

// ClientCreate adds a client and shows it.
func (h *Handlers) ClientCreate(c *gin.Context) {
	var in models.ClientInput
	data := gin.H{"Title": "New client"}
	if errs := bind(c, &in); errs != nil {
		data["Form"], data["Errors"] = in, errs
		h.render(c, http.StatusUnprocessableEntity, "pages/clients/form.html", data)
		return
	}

	cl, err := h.Client.Clients.Create(h.scope(c), in)
	if err != nil {
		data["Form"] = in
		h.submitFailed(c, "pages/clients/form.html", data, err)
		return
	}
	seeOther(c, fmt.Sprintf("/clients/%d?created=1", cl.ID))
}

// ClientShow shows a client with its sites. A failure to load the sites is
// shown in place and does not hide the client.
func (h *Handlers) ClientShow(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	h.showClient(c, id, http.StatusOK, gin.H{})
}

func (h *Handlers) showClient(c *gin.Context, id uint, status int, extra gin.H) {
	var (
		client   *models.Client
		sites    []models.Site
		sitesErr error
	)
	g, ctx := errgroup.WithContext(h.scope(c))
	g.Go(func() (err error) {
		client, err = h.Client.Clients.Get(ctx, id)
		return err
	})
	g.Go(func() error {
		sites, sitesErr = h.Client.Sites.ListByClient(ctx, id)
		return nil
	})

	data := gin.H{"Title": "Client", "Notice": notice(c.Request.URL.Query())}
	if err := g.Wait(); err != nil {
		h.loadFailed(c, "pages/clients/show.html", data, err)
		return
	}
	if sitesErr != nil {
		if isUnauthorized(sitesErr) {
			h.expire(c)
			return
		}
		data["SitesError"] = ErrorMessage(sitesErr)
		data["RetryURL"] = c.Request.URL.RequestURI()
	}

	data["Title"] = client.Name
	data["Client"] = client
	data["Sites"] = sites
	data["Form"] = clientForm(client)
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "pages/clients/show.html", data)
}

// ClientUpdate saves the client edit form.
func (h *Handlers) ClientUpdate(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var in models.ClientInput
	if errs := bind(c, &in); errs != nil {
		h.showClient(c, id, http.StatusUnprocessableEntity, gin.H{"Form": in, "Errors": errs})
		return
	}
	if _, err := h.Client.Clients.Update(h.scope(c), id, in); err != nil {
		h.rejected(c, err, in, func(status int, extra gin.H) { h.showClient(c, id, status, extra) })
		return
	}
	seeOther(c, fmt.Sprintf("/clients/%d?saved=1", id))
}

// SiteList shows the sites of a client with a form to add one.
func (h *Handlers) SiteList(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	h.showSites(c, id, http.StatusOK, gin.H{})
}

func (h *Handlers) showSites(c *gin.Context, clientID uint, status int, extra gin.H) {
	var (
		client *models.Client
		sites  []models.Site
	)
	g, ctx := errgroup.WithContext(h.scope(c))
	g.Go(func() (err error) {
		client, err = h.Client.Clients.Get(ctx, clientID)
		return err
	})
	g.Go(func() (err error) {
		sites, err = h.Client.Sites.ListByClient(ctx, clientID)
		return err
	})

	data := gin.H{"Title": "Sites", "Notice": notice(c.Request.URL.Query())}
	if err := g.Wait(); err != nil {
		h.loadFailed(c, "pages/sites/list.html", data, err)
		return
	}
	data["Title"] = "Sites of " + client.Name
	data["Client"] = client
	data["Sites"] = sites
	data["Form"] = models.SiteInput{}
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "pages/sites/list.html", data)
}

// SiteCreate adds a site to a client.
func (h *Handlers) SiteCreate(c *gin.Context) {
	clientID, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var in models.SiteInput
	if errs := bind(c, &in); errs != nil {
		h.showSites(c, clientID, http.StatusUnprocessableEntity, gin.H{"Form": in, "Errors": errs})
		return
	}
	site, err := h.Client.Sites.Create(h.scope(c), clientID, in)
	if err != nil {
		h.rejected(c, err, in, func(status int, extra gin.H) { h.showSites(c, clientID, status, extra) })
		return
	}
	seeOther(c, fmt.Sprintf("/sites/%d?created=1", site.ID))
}

// SiteShow shows one site with its edit form.
func (h *Handlers) SiteShow(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	h.showSite(c, id, http.StatusOK, gin.H{})
}

func (h *Handlers) showSite(c *gin.Context, id uint, status int, extra gin.H) {
	data := gin.H{"Title": "Site", "Notice": notice(c.Request.URL.Query())}
	site, err := h.Client.Sites.Get(h.scope(c), id)
	if err != nil {
		h.loadFailed(c, "pages/sites/show.html", data, err)
		return
	}
	data["Title"] = site.Name
	data["Site"] = site
	data["Form"] = siteForm(site)
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "pages/sites/show.html", data)
}

// SiteUpdate saves the site edit form.
func (h *Handlers) SiteUpdate(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var in models.SiteInput
	if errs := bind(c, &in); errs != nil {
		h.showSite(c, id, http.StatusUnprocessableEntity, gin.H{"Form": in, "Errors": errs})
		return
	}
	if _, err := h.Client.Sites.Update(h.scope(c), id, in); err != nil {
		h.rejected(c, err, in, func(status int, extra gin.H) { h.showSite(c, id, status, extra) })
		return
	}
	seeOther(c, fmt.Sprintf("/sites/%d?saved=1", id))
}
