package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"dataclassification/entity"
)

// ActivityQuery narrows the activities read from the monitoring database.
// Zero values disable the corresponding filter.
type ActivityQuery struct {
	SliceFrom       int64
	SliceTo         int64
	PartitionFrom   int64
	PartitionTo     int64
	UserName        string // DOMAIN\user or bare user
	OrganizationIDs []int
}

// activityRow is the scan target shared by every dialect.
type activityRow struct {
	ComputerID     int64          `db:"computer_id"`
	OrganizationID sql.NullString `db:"organization_id"`
	MachineName    sql.NullString `db:"machine_name"`
	TCPAddress     sql.NullString `db:"tcp_address"`
	HostName       sql.NullString `db:"host_name"`
	UserName       sql.NullString `db:"user_name"`
	ProcessName    sql.NullString `db:"process_name"`
	Domain         sql.NullString `db:"domain"`
	URLName        sql.NullString `db:"url_name"`
	WindowTitle    sql.NullString `db:"window_title"`
	SliceID        int64          `db:"utc_actual_slice_id"`
	ActivityTime   sql.NullInt64  `db:"activity_time"`
	IsConnect      sql.NullBool   `db:"is_connect"`
}

func (r activityRow) record(loc *time.Location) entity.ActivityRecord {
	return entity.ActivityRecord{
		ComputerID:          r.ComputerID,
		OrganizationID:      r.OrganizationID.String,
		MachineName:         r.MachineName.String,
		IPAddress:           r.TCPAddress.String,
		HostName:            r.HostName.String,
		UserName:            r.UserName.String,
		Timestamp:           SliceTime(r.SliceID).In(loc),
		SliceID:             r.SliceID,
		ProcessName:         r.ProcessName.String,
		Domain:              r.Domain.String,
		URLName:             r.URLName.String,
		WindowTitle:         r.WindowTitle.String,
		ActivityTimeSeconds: r.ActivityTime.Int64,
		IsConnect:           r.IsConnect.Bool,
	}
}

// activityWindow is repeated for each of the four activity tables.
const activityWindow = `UTCActualSliceId BETWEEN :slice_from AND :slice_to
            AND ([PartitionID] >= :partition_from AND [PartitionID] <= :partition_to)`

// sqlServerActivities reads web and application activity of client and
// server agents, resolving computer, process and user dictionaries.
const sqlServerActivities = `
WITH CTE_ComputerDetails AS (
    SELECT
        cbu.ComputerId AS Id,
        o.[Name] AS Host,
        c.MachineName AS ClientMachineName,
        c.TcpAddress AS ClientTcpAddress,
        s.MachineName AS ServerMachineName,
        s.TcpAddress AS ServerTcpAddress
    FROM dbo.[utWin_ComputerByUnit] cbu
    LEFT JOIN dbo.[ut_Organization] o ON cbu.[OrganizationId] = o.[Id]
    LEFT JOIN utWinClient_TCPAddress c ON cbu.ComputerId = c.ID
    LEFT JOIN utWinserver_TCPAddress s ON cbu.ComputerId = s.ID
    WHERE cbu.[Type] = 1 %s
)
SELECT
    data.ComputerId AS computer_id,
    cd.[Host] AS organization_id,
    COALESCE(cd.ClientMachineName, cd.ServerMachineName) AS machine_name,
    COALESCE(cd.ClientTcpAddress, cd.ServerTcpAddress) AS tcp_address,
    cd.[Host] AS host_name,
    (CASE WHEN LEN(p.UserName) = 0 THEN '' ELSE p.[DomainName] + CHAR(92) + p.UserName END) AS user_name,
    d.[ProcessName] AS process_name,
    data.[Domain] AS domain,
    data.[URL] AS url_name,
    data.[WindowTitle] AS window_title,
    data.[UTCActualSliceId] AS utc_actual_slice_id,
    data.[ActivityTime] AS activity_time,
    data.[IsConnect] AS is_connect
FROM (
    SELECT * FROM (
        SELECT ComputerId, UserId, ProcessId, [Domain], [URL], [WindowTitle], [UTCActualSliceId], [ActivityTime], [IsConnect]
        FROM utWinClient_UserWebActivity
        WHERE ` + activityWindow + `
        UNION
        SELECT ComputerId, UserId, ProcessId, SPACE(0), SPACE(0), [WindowTitle], [UTCActualSliceId], ActiveTime, [IsConnect]
        FROM utWinClient_UserAppActivity
        WHERE ` + activityWindow + `
    ) cli
    UNION ALL
    SELECT * FROM (
        SELECT ComputerId, UserId, ProcessId, [Domain], [URL], [WindowTitle], [UTCActualSliceId], [ActivityTime], [IsConnect]
        FROM utWinServer_UserWebActivity
        WHERE ` + activityWindow + `
        UNION
        SELECT ComputerId, UserId, ProcessId, SPACE(0), SPACE(0), [WindowTitle], [UTCActualSliceId], ActiveTime, [IsConnect]
        FROM utWinServer_UserAppActivity
        WHERE ` + activityWindow + `
    ) srv
) data
JOIN CTE_ComputerDetails cd ON data.ComputerId = cd.Id
LEFT JOIN [dbo].[utWin_ProcessDic] c ON c.DictionaryId = data.ProcessId
LEFT JOIN [dbo].[utWin_ProcessNameDic] d ON d.DictionaryId = c.ProcessNameId
LEFT JOIN [dbo].[utWin_UserNameDic] p ON p.[DictionaryId] = data.UserId
WHERE 1 = 1 %s`

// ActivityLogSchema is the flattened activity table read by the pgx and
// SQLite drivers.
const ActivityLogSchema = `
CREATE TABLE IF NOT EXISTS activity_log (
    computer_id INTEGER NOT NULL,
    organization_unit_id INTEGER,
    organization_name TEXT,
    machine_name TEXT,
    tcp_address TEXT,
    user_name TEXT,
    process_name TEXT,
    domain TEXT,
    url TEXT,
    window_title TEXT,
    utc_actual_slice_id INTEGER NOT NULL,
    activity_time INTEGER NOT NULL DEFAULT 0,
    is_connect BOOLEAN NOT NULL DEFAULT FALSE,
    partition_id INTEGER NOT NULL DEFAULT 0
)`

const flatActivities = `
SELECT
    computer_id,
    organization_name AS organization_id,
    machine_name,
    tcp_address,
    organization_name AS host_name,
    user_name,
    process_name,
    domain,
    url AS url_name,
    window_title,
    utc_actual_slice_id,
    activity_time,
    is_connect
FROM activity_log
WHERE 1 = 1 %s
ORDER BY utc_actual_slice_id, computer_id`

// Build renders q for driver, with placeholders in the driver's bind style.
func (q ActivityQuery) Build(driver string) (string, []any, error) {
	params := map[string]any{
		"slice_from":     q.SliceFrom,
		"slice_to":       q.SliceTo,
		"partition_from": q.PartitionFrom,
		"partition_to":   q.PartitionTo,
		"user_name":      q.UserName,
		"org_ids":        q.OrganizationIDs,
	}

	var text string
	if driver == "sqlserver" {
		var orgFilter, userFilter string
		if len(q.OrganizationIDs) > 0 {
			orgFilter = "AND cbu.[OrganizationId] IN (:org_ids)"
		}
		if q.UserName != "" {
			userFilter = "AND (p.UserName = :user_name OR p.[DomainName] + CHAR(92) + p.UserName = :user_name)"
		}
		text = fmt.Sprintf(sqlServerActivities, orgFilter, userFilter)
	} else {
		var where []string
		if q.SliceFrom != 0 || q.SliceTo != 0 {
			where = append(where, "AND utc_actual_slice_id BETWEEN :slice_from AND :slice_to")
		}
		if q.PartitionFrom != 0 || q.PartitionTo != 0 {
			where = append(where, "AND partition_id BETWEEN :partition_from AND :partition_to")
		}
		if len(q.OrganizationIDs) > 0 {
			where = append(where, "AND organization_unit_id IN (:org_ids)")
		}
		if q.UserName != "" {
			where = append(where, "AND user_name = :user_name")
		}
		text = fmt.Sprintf(flatActivities, strings.Join(where, "\n    "))
	}

	text, args, err := sqlx.Named(text, params)
	if err != nil {
		return "", nil, fmt.Errorf("Build: %w", err)
	}
	text, args, err = sqlx.In(text, args...)
	if err != nil {
		return "", nil, fmt.Errorf("Build: %w", err)
	}
	return sqlx.Rebind(sqlx.BindType(driver), text), args, nil
}

// Source fetches activity records from the monitoring database.
type Source struct {
	db      *Database
	driver  string
	loc     *time.Location
	retries int
	delay   time.Duration
	log     zerolog.Logger

	// OnAttempt, when set, is called after every query attempt with
	// "success" or "failure".
	OnAttempt func(result string)
}

func NewSource(db *Database, driver string, loc *time.Location, retries int, delay time.Duration, log zerolog.Logger) *Source {
	if loc == nil {
		loc = time.UTC
	}
	if retries < 1 {
		retries = 1
	}
	return &Source{db: db, driver: driver, loc: loc, retries: retries, delay: delay, log: log}
}

// FetchActivities runs q, retrying failed attempts with a constant delay.
// Timestamps are converted to the source's time zone.
func (s *Source) FetchActivities(ctx context.Context, q ActivityQuery) ([]entity.ActivityRecord, error) {
	text, args, err := q.Build(s.driver)
	if err != nil {
		return nil, err
	}

	attempt := 0
	operation := func() ([]entity.ActivityRecord, error) {
		attempt++
		records, err := s.fetchOnce(ctx, text, args)
		if err != nil {
			s.observe("failure")
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			s.log.Warn().Err(err).Int("attempt", attempt).Int("retries", s.retries).Msg("activity query failed")
			return nil, err
		}
		s.observe("success")
		return records, nil
	}

	records, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.delay)),
		backoff.WithMaxTries(uint(s.retries)),
	)
	if err != nil {
		return nil, fmt.Errorf("FetchActivities: giving up after %d attempts: %w", attempt, err)
	}

	s.log.Info().Int("rows", len(records)).Int("attempts", attempt).Msg("activities fetched")
	return records, nil
}

func (s *Source) fetchOnce(ctx context.Context, text string, args []any) ([]entity.ActivityRecord, error) {
	rows, err := s.db.QueryxContext(ctx, text, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []entity.ActivityRecord
	for rows.Next() {
		var row activityRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		records = append(records, row.record(s.loc))
	}
	return records, rows.Err()
}

func (s *Source) observe(result string) {
	if s.OnAttempt != nil {
		s.OnAttempt(result)
	}
}

// CreateActivityLog creates the flattened activity table.
func (db *Database) CreateActivityLog() error {
	_, err := db.Exec(ActivityLogSchema)
	if err != nil {
		return fmt.Errorf("CreateActivityLog: %w", err)
	}
	return nil
}
