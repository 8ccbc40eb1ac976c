package dashboard

import "context"

// DashboardService builds KPI views. mode is "today" or "prev".
type DashboardService interface {
	// GetDashboard returns the admin KPI view for the base date
	GetDashboard(ctx context.Context, mode string) (*DashboardResponse, error)

	// GetMailPayloads returns the mail summary for today and yesterday
	GetMailPayloads(ctx context.Context) (*MailPayloads, error)

	// GetReportIndex returns department buttons and today's cards for reporters
	GetReportIndex(ctx context.Context) (*ReportIndexResponse, error)

	// SendDailySummary mails the summary for mode to the configured recipients
	SendDailySummary(ctx context.Context, mode string) error
}
