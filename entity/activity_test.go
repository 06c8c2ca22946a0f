package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatActivityTime(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{61, "00:01:01"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{90061, "25:01:01"},
		{-5, "00:00:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatActivityTime(tt.seconds), "seconds=%d", tt.seconds)
	}
}

func TestExtractMachineName(t *testing.T) {
	assert.Equal(t, "df-ti-0042", ExtractMachineName("SEBRAE\\DF-TI-0042"))
	assert.Equal(t, "df_adm01", ExtractMachineName("host DF_ADM01.local"))
	assert.Equal(t, "", ExtractMachineName("NOTEBOOK-01"))
	assert.Equal(t, "", ExtractMachineName(""))
}

func TestActivityRecordDisplayFields(t *testing.T) {
	r := ActivityRecord{
		Timestamp:           time.Date(2024, 7, 1, 9, 5, 30, 0, time.UTC),
		ActivityTimeSeconds: 125,
	}

	assert.Equal(t, "2024-07-01", r.Date())
	assert.Equal(t, "09:05:30", r.Hour())
	assert.Equal(t, "00:02:05", r.ActivityTime())
	assert.False(t, r.Classification.HasSubCategory())
}
