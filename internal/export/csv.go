package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/amishk599/jobmatch/internal/model"
)

// Header is the column layout of batch exports.
var Header = []string{"Job Title", "Company", "Location", "Post Date", "Summary", "Salary", "Job URL"}

// WriteCSV writes jobs as rows under Header. Absent fields use the same
// placeholders as API listings; an absent date or summary is left blank.
func WriteCSV(w io.Writer, jobs []model.JobRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, j := range jobs {
		j = j.WithDefaults()
		row := []string{
			model.OrDefault(j.Title, model.NoTitle),
			j.Company,
			j.Location,
			j.PostedAt,
			j.Summary,
			j.Salary,
			j.ApplyLink,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteCSVFile creates (or truncates) path and writes jobs to it.
func WriteCSVFile(path string, jobs []model.JobRecord) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return WriteCSV(f, jobs)
}
