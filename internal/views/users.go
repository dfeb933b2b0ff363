package views

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

var userRoles = []string{string(models.RoleAdmin), string(models.RoleAgent), string(models.RoleCustomer)}

func userForm(u *models.User) models.UserInput {
	return models.UserInput{
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		ClientID: u.ClientID,
		IsActive: u.IsActive,
	}
}

// checkUserInput adds the rules binding tags cannot express.
func checkUserInput(in models.UserInput, creating bool, errs map[string]string) map[string]string {
	add := func(field, msg string) {
		if errs == nil {
			errs = map[string]string{}
		}
		if _, ok := errs[field]; !ok {
			errs[field] = msg
		}
	}
	if creating && in.Password == "" {
		add("password", "This field is required")
	}
	if in.Role == string(models.RoleCustomer) && in.ClientID == nil {
		add("client_id", "Customers must belong to a client")
	}
	return errs
}

// UserList shows a page of users, optionally of one role.
func (h *Handlers) UserList(c *gin.Context) {
	role := c.Query("role")
	data := gin.H{"Title": "Users", "Role": role, "Roles": userRoles}

	page, err := h.Client.Users.List(h.scope(c), role, pageParam(c), defaultPageSize)
	if err != nil {
		h.loadFailed(c, "pages/users/list.html", data, err)
		return
	}
	data["Users"] = page.Items
	data["Pager"] = pagerFor(page, c)
	h.render(c, http.StatusOK, "pages/users/list.html", data)
}

func (h *Handlers) clientChoices(c *gin.Context) []models.Client {
	page, err := h.Client.Clients.List(h.scope(c), "", 1, 100)
	if err != nil {
		h.Logger.Warn("client choices unavailable", zap.Error(err))
		return nil
	}
	return page.Items
}

// UserNew shows an empty user form.
func (h *Handlers) UserNew(c *gin.Context) {
	h.render(c, http.StatusOK, "pages/users/form.html", gin.H{
		"Title":   "New user",
		"Action":  "/users",
		"Roles":   userRoles,
		"Clients": h.clientChoices(c),
		"Form":    models.UserInput{Role: string(models.RoleAgent), IsActive: true},
	})
}

// UserCreate adds a user.
func (h *Handlers) UserCreate(c *gin.Context) {
	var in models.UserInput
	errs := bind(c, &in)
	errs = checkUserInput(in, true, errs)

	data := gin.H{
		"Title":          "New user",
		"Action":         "/users",
		"Roles":          userRoles,
		"Form":           in,
		"SelectedClient": derefUint(in.ClientID),
	}
	if errs != nil {
		data["Clients"] = h.clientChoices(c)
		data["Errors"] = errs
		h.render(c, http.StatusUnprocessableEntity, "pages/users/form.html", data)
		return
	}

	u, err := h.Client.Users.Create(h.scope(c), in)
	if err != nil {
		data["Clients"] = h.clientChoices(c)
		h.submitFailed(c, "pages/users/form.html", data, err)
		return
	}
	seeOther(c, fmt.Sprintf("/users/%d?created=1", u.ID))
}

// UserShow shows a user's edit form.
func (h *Handlers) UserShow(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	h.showUser(c, id, http.StatusOK, gin.H{})
}

func (h *Handlers) showUser(c *gin.Context, id uint, status int, extra gin.H) {
	var (
		user    *models.User
		clients []models.Client
	)
	g, ctx := errgroup.WithContext(h.scope(c))
	g.Go(func() (err error) {
		user, err = h.Client.Users.Get(ctx, id)
		return err
	})
	g.Go(func() error {
		page, err := h.Client.Clients.List(ctx, "", 1, 100)
		if err == nil {
			clients = page.Items
		}
		return nil
	})

	data := gin.H{
		"Title":  "User",
		"Roles":  userRoles,
		"Action": fmt.Sprintf("/users/%d", id),
		"Notice": notice(c.Request.URL.Query()),
	}
	if err := g.Wait(); err != nil {
		h.loadFailed(c, "pages/users/form.html", data, err)
		return
	}
	data["Title"] = user.Name
	data["User"] = user
	data["Clients"] = clients
	data["Form"] = userForm(user)
	data["SelectedClient"] = derefUint(user.ClientID)
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "pages/users/form.html", data)
}

// UserUpdate saves a user's edit form. A blank password keeps the old one.
func (h *Handlers) UserUpdate(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var in models.UserInput
	errs := bind(c, &in)
	if errs = checkUserInput(in, false, errs); errs != nil {
		h.showUser(c, id, http.StatusUnprocessableEntity, gin.H{
			"Form": in, "Errors": errs, "SelectedClient": derefUint(in.ClientID),
		})
		return
	}
	if _, err := h.Client.Users.Update(h.scope(c), id, in); err != nil {
		h.rejected(c, err, in, func(status int, extra gin.H) {
			extra["SelectedClient"] = derefUint(in.ClientID)
			h.showUser(c, id, status, extra)
		})
		return
	}
	seeOther(c, fmt.Sprintf("/users/%d?saved=1", id))
}
