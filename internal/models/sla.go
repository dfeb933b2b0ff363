package models

// SLAPolicy is the response/resolution target for one ticket priority.
type SLAPolicy struct {
	Priority          string `json:"priority"`
	ResponseHours     int    `json:"response_hours"`
	ResolutionHours   int    `json:"resolution_hours"`
	BusinessHoursOnly bool   `json:"business_hours_only"`
}

type SLAPolicyInput struct {
	Priority          string `json:"priority" form:"priority" binding:"required,oneof=critical high medium low"`
	ResponseHours     int    `json:"response_hours" form:"response_hours" binding:"required,min=1,max=720"`
	ResolutionHours   int    `json:"resolution_hours" form:"resolution_hours" binding:"required,min=1,max=2160,gtefield=ResponseHours"`
	BusinessHoursOnly bool   `json:"business_hours_only" form:"business_hours_only"`
}
