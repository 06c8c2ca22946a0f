package query

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataclassification/entity"
)

func classified(slice int64, seconds int64, category, sub, access string) entity.ActivityRecord {
	return entity.ActivityRecord{
		ComputerID:          1,
		MachineName:         "DF-TI-0001",
		UserName:            `SEBRAE\maria`,
		SliceID:             slice,
		Timestamp:           SliceTime(slice),
		ProcessName:         "chrome.exe",
		ActivityTimeSeconds: seconds,
		Classification:      entity.Classification{Category: category, SubCategory: sub, AccessType: access},
	}
}

func TestInitStoreCreatesLatestSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	db, err := InitStore(path)
	require.NoError(t, err)
	defer db.Close()

	version, err := db.GetDbVersion()
	require.NoError(t, err)
	assert.Equal(t, StoreVersion, version)

	exists, err := db.TableExists("classified_activities")
	require.NoError(t, err)
	assert.True(t, exists)

	// reopening an up-to-date store is a no-op
	require.NoError(t, db.Close())
	db2, err := InitStore(path)
	require.NoError(t, err)
	defer db2.Close()
}

func TestInitStoreUpgradesVersionZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	old, err := Open("sqlite", path)
	require.NoError(t, err)
	_, err = old.Exec(storeSchemaV0)
	require.NoError(t, err)
	require.NoError(t, old.Close())

	db, err := InitStore(path)
	require.NoError(t, err)
	defer db.Close()

	version, err := db.GetDbVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	var n int
	require.NoError(t, db.Get(&n, `SELECT count(*) FROM pragma_table_info('classified_activities') WHERE name = 'extracted_name'`))
	assert.Equal(t, 1, n)
}

func TestSaveClassifiedAndSummaries(t *testing.T) {
	db, err := InitStore(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	defer db.Close()

	day1 := SliceID(time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC))
	day2 := SliceID(time.Date(2024, 7, 2, 12, 0, 0, 0, time.UTC))

	records := []entity.ActivityRecord{
		classified(day1, 60, "Pessoais", "YouTube", entity.AccessPersonal),
		classified(day1+1, 30, "Pessoais", "YouTube", entity.AccessPersonal),
		classified(day1+2, 120, "Aplicativo de Escritório", "Microsoft Word", entity.AccessOrganizational),
		classified(day2, 10, "Outros", "", entity.AccessOther),
	}
	require.NoError(t, db.SaveClassified(context.Background(), records))

	summary, err := db.GetCategorySummary("2024-07-01", "2024-07-02")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "Microsoft Word", summary[0].SubCategory)
	assert.Equal(t, 120.0, summary[0].Seconds)
	assert.Equal(t, "YouTube", summary[1].SubCategory)
	assert.Equal(t, 2, summary[1].Records)
	assert.Equal(t, 90.0, summary[1].Seconds)
	assert.Equal(t, "", summary[2].SubCategory)

	series, err := db.GetDailySeries("2024-07-01", "2024-07-01")
	require.NoError(t, err)
	assert.Equal(t, []SeriesRow{
		{Bucket: "2024-07-01", Name: entity.AccessPersonal, Seconds: 90},
		{Bucket: "2024-07-01", Name: entity.AccessOrganizational, Seconds: 120},
	}, series)

	stored, err := db.GetRecordsByCategory("Pessoais", 1)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, int64(30), stored[0].Seconds)
	assert.Equal(t, `SEBRAE\maria`, stored[0].UserName)

	var extracted string
	require.NoError(t, db.Get(&extracted, `SELECT extracted_name FROM classified_activities LIMIT 1`))
	assert.Equal(t, "df-ti-0001", extracted)
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)

	start, end := PeriodRange("week", now)
	assert.Equal(t, "2024-07-09", start)
	assert.Equal(t, "2024-07-15", end)

	start, _ = PeriodRange("month", now)
	assert.Equal(t, "2024-06-16", start)

	start, _ = PeriodRange("year", now)
	assert.Equal(t, "2023-07-16", start)
}
