package models

// Category groups tickets. Categories form a tree through ParentID and carry
// their own SLA hours and an optional auto-assignee.
type Category struct {
	ID                 uint   `json:"id"`
	ParentID           *uint  `json:"parent_id,omitempty"`
	Name               string `json:"name"`
	SLAResponseHours   int    `json:"sla_response_hours"`
	SLAResolutionHours int    `json:"sla_resolution_hours"`
	AutoAssignUserID   *uint  `json:"auto_assign_user_id,omitempty"`
	IsActive           bool   `json:"is_active"`
}

type CategoryInput struct {
	Name               string `json:"name" form:"name" binding:"required,max=80"`
	ParentID           *uint  `json:"parent_id,omitempty" form:"parent_id"`
	SLAResponseHours   int    `json:"sla_response_hours" form:"sla_response_hours" binding:"min=0,max=720"`
	SLAResolutionHours int    `json:"sla_resolution_hours" form:"sla_resolution_hours" binding:"min=0,max=2160,gtefield=SLAResponseHours"`
	AutoAssignUserID   *uint  `json:"auto_assign_user_id,omitempty" form:"auto_assign_user_id"`
	IsActive           bool   `json:"is_active" form:"is_active"`
}

// CategoryPath returns the names from the root down to the category with id.
func CategoryPath(all []Category, id uint) []string {
	byID := make(map[uint]Category, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	var path []string
	seen := make(map[uint]bool)
	for cur, ok := byID[id]; ok && !seen[cur.ID]; {
		seen[cur.ID] = true
		path = append([]string{cur.Name}, path...)
		if cur.ParentID == nil {
			break
		}
		cur, ok = byID[*cur.ParentID]
	}
	return path
}
