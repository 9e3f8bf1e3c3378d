package domain

// DashboardStats backs the landing page counters
type DashboardStats struct {
	TotalTickets  int      `json:"totalTickets"`
	OpenTickets   int      `json:"openTickets"`
	InProgress    int      `json:"inProgress"`
	Resolved      int      `json:"resolved"`
	RecentTickets []Ticket `json:"recentTickets"`
}

// DailyCount is one point on the tickets-per-day chart
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AnalyticsReport backs the analytics charts
type AnalyticsReport struct {
	TicketsByStatus   map[string]int `json:"ticketsByStatus"`
	TicketsByPriority map[string]int `json:"ticketsByPriority"`
	TicketsPerDay     []DailyCount   `json:"ticketsPerDay"`
}
