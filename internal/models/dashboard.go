package models

import "time"

type ChartPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// DashboardCharts is the payload of /dashboard/charts.
type DashboardCharts struct {
	TicketsByStatus   []ChartPoint `json:"tickets_by_status"`
	TicketsByPriority []ChartPoint `json:"tickets_by_priority"`
	TicketsPerDay     []ChartPoint `json:"tickets_per_day"`
	SLABreaches       int          `json:"sla_breaches"`
}

type DashboardStats struct {
	OpenTickets       int     `json:"open_tickets"`
	UnassignedTickets int     `json:"unassigned_tickets"`
	ResolvedToday     int     `json:"resolved_today"`
	AvgResponseHours  float64 `json:"avg_response_hours"`
}

type TicketReportRow struct {
	Number          string     `json:"number"`
	Subject         string     `json:"subject"`
	Client          string     `json:"client"`
	Category        string     `json:"category"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	Assignee        string     `json:"assignee"`
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolutionHours *float64   `json:"resolution_hours,omitempty"`
	SLAMet          bool       `json:"sla_met"`
}

type TicketReport struct {
	From string            `json:"from"`
	To   string            `json:"to"`
	Rows []TicketReportRow `json:"rows"`
}
