package entity

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	AccessPersonal       = "Acesso Pessoal"
	AccessOrganizational = "Acesso Sebrae"
	AccessOther          = "Outros"
)

// Classification is the (category, sub-category, access type) triple attached
// to an activity record. An empty SubCategory means the category has no finer
// label.
type Classification struct {
	Category    string `db:"category" json:"category"`
	SubCategory string `db:"sub_category" json:"sub_category,omitempty"`
	AccessType  string `db:"access_type" json:"access_type"`
}

func (c Classification) HasSubCategory() bool {
	return c.SubCategory != ""
}

// ActivityRecord is one observed user-activity slice as returned by the
// monitoring database.
type ActivityRecord struct {
	ComputerID          int64
	OrganizationID      string
	MachineName         string
	IPAddress           string
	HostName            string
	UserName            string
	Timestamp           time.Time
	SliceID             int64
	ProcessName         string
	Domain              string
	URLName             string
	WindowTitle         string
	ActivityTimeSeconds int64
	IsConnect           bool

	Classification Classification
}

// Date returns the calendar day of the slice, formatted YYYY-MM-DD.
func (r ActivityRecord) Date() string {
	return r.Timestamp.Format("2006-01-02")
}

// Hour returns the time of day of the slice, formatted HH:MM:SS.
func (r ActivityRecord) Hour() string {
	return r.Timestamp.Format("15:04:05")
}

// ActivityTime formats ActivityTimeSeconds for display.
func (r ActivityRecord) ActivityTime() string {
	return FormatActivityTime(r.ActivityTimeSeconds)
}

// FormatActivityTime converts seconds to HH:MM:SS. Hours are not wrapped at
// 24 and negative durations are shown as zero.
func FormatActivityTime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	seconds = seconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

var machineNamePattern = regexp.MustCompile(`df[-\w]*`)

// ExtractMachineName returns the first word of the machine name starting with
// "df" (the organization's workstation prefix), lowercased. It returns an empty
// string when there is none.
func ExtractMachineName(name string) string {
	return machineNamePattern.FindString(strings.ToLower(name))
}
