package notifier

import (
	"log/slog"

	"github.com/amishk599/jobmatch/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes job listings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each listing via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each listing. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(jobs []model.JobListing) error {
	for _, j := range jobs {
		n.logger.Info("job match",
			"title", j.JobTitle,
			"company", j.Company,
			"location", j.Location,
			"experience", j.Experience,
			"salary", j.Salary,
			"url", j.ApplyLink,
		)
	}
	return nil
}

// SendTestMessage sends a dummy listing to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	return n.Notify([]model.JobListing{{
		JobTitle:   "Test Notification (integration verified)",
		Company:    "JobMatch Test",
		Location:   "Everywhere",
		Experience: model.ExperienceNotSpecified,
		Salary:     model.SalaryNotMentioned,
		ApplyLink:  "https://www.linkedin.com/jobs/",
	}})
}
