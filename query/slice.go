package query

import (
	"errors"
	"fmt"
	"time"
)

// The monitoring database stores time as slice ids: whole minutes since the
// Unix epoch, UTC. Rows are also partitioned by day number.

var ErrInvalidRange = errors.New("invalid date range")

// SliceTime converts a slice id to the UTC instant the slice starts.
func SliceTime(id int64) time.Time {
	return time.Unix(id*60, 0).UTC()
}

// SliceID returns the id of the slice containing t.
func SliceID(t time.Time) int64 {
	sec := t.Unix()
	if sec < 0 && sec%60 != 0 {
		return sec/60 - 1
	}
	return sec / 60
}

// PartitionID returns the number of days between epoch and day, counting
// calendar dates only.
func PartitionID(epoch, day time.Time) int64 {
	e := time.Date(epoch.Year(), epoch.Month(), epoch.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return int64(d.Sub(e).Hours() / 24)
}

// DateRange is an inclusive range of calendar days in a time zone.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange parses two YYYY-MM-DD dates in loc.
func ParseDateRange(from, to string, loc *time.Location) (DateRange, error) {
	f, err := time.ParseInLocation(time.DateOnly, from, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: from %q: %w", ErrInvalidRange, from, err)
	}
	t, err := time.ParseInLocation(time.DateOnly, to, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: to %q: %w", ErrInvalidRange, to, err)
	}
	if t.Before(f) {
		return DateRange{}, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, to, from)
	}
	return DateRange{From: f, To: t}, nil
}

// Apply narrows q to the slices and partitions covering the range: from the
// first minute of From to the last minute of To.
func (r DateRange) Apply(q ActivityQuery, partitionEpoch time.Time) ActivityQuery {
	end := r.To.AddDate(0, 0, 1)

	q.SliceFrom = SliceID(r.From)
	q.SliceTo = SliceID(end) - 1
	q.PartitionFrom = PartitionID(partitionEpoch, r.From)
	q.PartitionTo = PartitionID(partitionEpoch, r.To)
	return q
}
