package views

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

type categoryRow struct {
	Category models.Category
	Label    string
}

func categoryRows(all []models.Category) []categoryRow {
	rows := make([]categoryRow, 0, len(all))
	for _, cat := range all {
		rows = append(rows, categoryRow{Category: cat, Label: strings.Join(models.CategoryPath(all, cat.ID), " / ")})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	return rows
}

// descendsFrom reports whether candidate is id or sits below it.
func descendsFrom(all []models.Category, candidate, id uint) bool {
	byID := make(map[uint]models.Category, len(all))
	for _, cat := range all {
		byID[cat.ID] = cat
	}
	seen := map[uint]bool{}
	for cur := candidate; !seen[cur]; {
		if cur == id {
			return true
		}
		seen[cur] = true
		cat, ok := byID[cur]
		if !ok || cat.ParentID == nil {
			return false
		}
		cur = *cat.ParentID
	}
	return false
}

// parentChoices lists the categories that may become the parent of id
// without making a cycle. id 0 means a new category.
func parentChoices(all []models.Category, id uint) []CategoryOption {
	var out []CategoryOption
	for _, opt := range categoryOptions(all) {
		if id != 0 && descendsFrom(all, opt.ID, id) {
			continue
		}
		out = append(out, opt)
	}
	return out
}

func categoryForm(cat *models.Category) models.CategoryInput {
	return models.CategoryInput{
		Name:               cat.Name,
		ParentID:           cat.ParentID,
		SLAResponseHours:   cat.SLAResponseHours,
		SLAResolutionHours: cat.SLAResolutionHours,
		AutoAssignUserID:   cat.AutoAssignUserID,
		IsActive:           cat.IsActive,
	}
}

func categoryFormData(data gin.H, in models.CategoryInput) {
	data["Form"] = in
	data["SelectedParent"] = derefUint(in.ParentID)
	if in.AutoAssignUserID != nil {
		data["SelectedAssignee"] = *in.AutoAssignUserID
	}
}

// CategoryList shows the category tree with a form for a new category.
func (h *Handlers) CategoryList(c *gin.Context) {
	h.showCategories(c, http.StatusOK, models.CategoryInput{IsActive: true}, nil, "")
}

func (h *Handlers) showCategories(c *gin.Context, status int, in models.CategoryInput, errs map[string]string, message string) {
	data := gin.H{"Title": "Categories", "Notice": notice(c.Request.URL.Query())}
	all, err := h.Client.Categories.List(h.scope(c))
	if err != nil {
		h.loadFailed(c, "pages/categories/list.html", data, err)
		return
	}
	data["Rows"] = categoryRows(all)
	data["Parents"] = parentChoices(all, 0)
	data["Errors"] = errs
	data["Message"] = message
	categoryFormData(data, in)
	h.render(c, status, "pages/categories/list.html", data)
}

// CategoryCreate adds a category.
func (h *Handlers) CategoryCreate(c *gin.Context) {
	var in models.CategoryInput
	if errs := bind(c, &in); errs != nil {
		h.showCategories(c, http.StatusUnprocessableEntity, in, errs, "")
		return
	}
	cat, err := h.Client.Categories.Create(h.scope(c), in)
	if err != nil {
		h.rejected(c, err, in, func(status int, extra gin.H) {
			errs, _ := extra["Errors"].(map[string]string)
			h.showCategories(c, status, in, errs, ErrorMessage(err))
		})
		return
	}
	seeOther(c, fmt.Sprintf("/categories/%d?created=1", cat.ID))
}

// CategoryShow shows one category with its edit form.
func (h *Handlers) CategoryShow(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	h.showCategory(c, id, http.StatusOK, nil, gin.H{})
}

func (h *Handlers) showCategory(c *gin.Context, id uint, status int, in *models.CategoryInput, extra gin.H) {
	data := gin.H{"Title": "Category", "Notice": notice(c.Request.URL.Query())}
	all, err := h.Client.Categories.List(h.scope(c))
	if err != nil {
		h.loadFailed(c, "pages/categories/show.html", data, err)
		return
	}
	var cat *models.Category
	for i := range all {
		if all[i].ID == id {
			cat = &all[i]
			break
		}
	}
	if cat == nil {
		h.render(c, http.StatusNotFound, "pages/error.html", gin.H{
			"Title":   "Not found",
			"Message": "The requested item was not found.",
		})
		return
	}

	data["Title"] = cat.Name
	data["Category"] = cat
	data["Path"] = models.CategoryPath(all, id)
	data["Parents"] = parentChoices(all, id)
	if in == nil {
		form := categoryForm(cat)
		in = &form
	}
	categoryFormData(data, *in)
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "pages/categories/show.html", data)
}

// CategoryUpdate saves a category. A category cannot be moved under itself.
func (h *Handlers) CategoryUpdate(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var in models.CategoryInput
	errs := bind(c, &in)
	if errs == nil && in.ParentID != nil && *in.ParentID == id {
		errs = map[string]string{"parent_id": "A category cannot be its own parent"}
	}
	if errs != nil {
		h.showCategory(c, id, http.StatusUnprocessableEntity, &in, gin.H{"Errors": errs})
		return
	}
	if _, err := h.Client.Categories.Update(h.scope(c), id, in); err != nil {
		h.rejected(c, err, in, func(status int, extra gin.H) {
			delete(extra, "Form")
			h.showCategory(c, id, status, &in, extra)
		})
		return
	}
	seeOther(c, fmt.Sprintf("/categories/%d?saved=1", id))
}
