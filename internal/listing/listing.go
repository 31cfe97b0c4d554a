package listing

import "github.com/amishk599/jobmatch/internal/model"

// FromRecord projects one record into the external shape, filling every
// absent field with its placeholder.
func FromRecord(r model.JobRecord) model.JobListing {
	r = r.WithDefaults()
	return model.JobListing{
		JobTitle:   model.OrDefault(r.Title, model.NoTitle),
		Company:    r.Company,
		Location:   r.Location,
		Experience: r.Experience,
		Salary:     r.Salary,
		ApplyLink:  r.ApplyLink,
	}
}

// FromScored shapes ranked jobs. The output has the same length and order
// as the input and is never nil.
func FromScored(jobs []model.ScoredJob) []model.JobListing {
	out := make([]model.JobListing, len(jobs))
	for i, j := range jobs {
		out[i] = FromRecord(j.JobRecord)
	}
	return out
}

// FromRecords shapes unranked records, for the keyword-only batch path.
func FromRecords(records []model.JobRecord) []model.JobListing {
	out := make([]model.JobListing, len(records))
	for i, r := range records {
		out[i] = FromRecord(r)
	}
	return out
}
