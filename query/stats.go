package query

import (
	"fmt"
	"time"
)

// CategorySummary aggregates stored activity per classification.
type CategorySummary struct {
	Category    string  `db:"category" json:"category"`
	SubCategory string  `db:"sub_category" json:"sub_category,omitempty"`
	AccessType  string  `db:"access_type" json:"access_type"`
	Records     int     `db:"records" json:"records"`
	Seconds     float64 `db:"seconds" json:"seconds"`
}

// SeriesRow is a single bucketed record used for bar charts.
type SeriesRow struct {
	Bucket  string  `db:"bucket" json:"bucket"`
	Name    string  `db:"name" json:"name"`
	Seconds float64 `db:"seconds" json:"seconds"`
}

// StoredActivity is one classified slice as kept in the result store.
type StoredActivity struct {
	UserName    string `db:"user_name" json:"user_name"`
	MachineName string `db:"machine_name" json:"machine_name"`
	Date        string `db:"date" json:"date"`
	StartTime   string `db:"start_time" json:"start_time"`
	ProcessName string `db:"process_name" json:"process_name"`
	WindowTitle string `db:"window_title" json:"window_title"`
	Domain      string `db:"domain" json:"domain"`
	Seconds     int64  `db:"activity_time" json:"seconds"`
	Category    string `db:"category" json:"category"`
	SubCategory string `db:"sub_category" json:"sub_category,omitempty"`
	AccessType  string `db:"access_type" json:"access_type"`
}

// GetCategorySummary returns record counts and activity seconds per
// classification between inclusive dates (YYYY-MM-DD).
func (db *Database) GetCategorySummary(startDate, endDate string) ([]CategorySummary, error) {
	items := []CategorySummary{}
	q := `
	SELECT category,
	       COALESCE(sub_category, '') AS sub_category,
	       access_type,
	       COUNT(*) AS records,
	       SUM(activity_time) AS seconds
	FROM classified_activities
	WHERE date >= ? AND date <= ?
	GROUP BY category, COALESCE(sub_category, ''), access_type
	ORDER BY seconds DESC, category, sub_category`
	if err := db.Select(&items, q, startDate, endDate); err != nil {
		return nil, fmt.Errorf("GetCategorySummary: %w", err)
	}
	return items, nil
}

// GetDailySeries returns seconds per (day, access type) between inclusive
// dates, ordered by day.
func (db *Database) GetDailySeries(startDate, endDate string) ([]SeriesRow, error) {
	rows := []SeriesRow{}
	q := `
	SELECT date AS bucket,
	       access_type AS name,
	       SUM(activity_time) AS seconds
	FROM classified_activities
	WHERE date >= ? AND date <= ?
	GROUP BY date, access_type
	ORDER BY bucket, name`
	if err := db.Select(&rows, q, startDate, endDate); err != nil {
		return nil, fmt.Errorf("GetDailySeries: %w", err)
	}
	return rows, nil
}

// GetRecordsByCategory returns the most recent stored slices of a category.
func (db *Database) GetRecordsByCategory(category string, limit int) ([]StoredActivity, error) {
	if limit <= 0 {
		limit = 100
	}
	rows := []StoredActivity{}
	q := `
	SELECT COALESCE(user_name, '') AS user_name,
	       COALESCE(machine_name, '') AS machine_name,
	       date,
	       start_time,
	       COALESCE(process_name, '') AS process_name,
	       COALESCE(window_title, '') AS window_title,
	       COALESCE(domain, '') AS domain,
	       activity_time,
	       category,
	       COALESCE(sub_category, '') AS sub_category,
	       access_type
	FROM classified_activities
	WHERE category = ?
	ORDER BY slice_id DESC, id DESC
	LIMIT ?`
	if err := db.Select(&rows, q, category, limit); err != nil {
		return nil, fmt.Errorf("GetRecordsByCategory: %w", err)
	}
	return rows, nil
}

// PeriodRange returns the inclusive dates of a named period ending on now.
func PeriodRange(period string, now time.Time) (string, string) {
	nowDate := now.Format(time.DateOnly)
	var start time.Time
	switch period {
	case "month":
		start = now.AddDate(0, -1, 1)
	case "year":
		start = now.AddDate(-1, 0, 1)
	default:
		start = now.AddDate(0, 0, -6) // today and the previous 6 days
	}
	return start.Format(time.DateOnly), nowDate
}
