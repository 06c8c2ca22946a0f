package launch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dataclassification/config"
	"dataclassification/entity"
	"dataclassification/export"
	"dataclassification/logger"
	"dataclassification/manager"
	"dataclassification/query"
)

// Fetcher reads activity records for a query.
type Fetcher interface {
	FetchActivities(ctx context.Context, q query.ActivityQuery) ([]entity.ActivityRecord, error)
}

// Pipeline turns fetched activities into classified export files.
type Pipeline struct {
	Source    Fetcher
	Filter    *manager.RecordFilter
	Metrics   *Metrics
	Workers   int
	Export    config.ExportConfig
	StorePath string
	Log       zerolog.Logger
}

func NewPipeline(cfg *config.Config, source Fetcher, metrics *Metrics) *Pipeline {
	return &Pipeline{
		Source:    source,
		Filter:    manager.NewRecordFilter(cfg.Filter.Users, cfg.Filter.ExcludeProcesses),
		Metrics:   metrics,
		Workers:   WorkerCount(cfg.Workers),
		Export:    cfg.Export,
		StorePath: cfg.Store.Path,
		Log:       logger.WithComponent("pipeline"),
	}
}

// Execute fetches, filters, classifies and writes the records selected by q.
// The classified records are returned in fetch order.
func (p *Pipeline) Execute(ctx context.Context, q query.ActivityQuery) ([]entity.ActivityRecord, error) {
	start := time.Now()

	records, err := p.Source.FetchActivities(ctx, q)
	if err != nil {
		return nil, err
	}

	fetched := len(records)
	if p.Filter != nil {
		records = p.Filter.Apply(records)
	}
	if p.Metrics != nil {
		p.Metrics.ObserveFiltered(fetched - len(records))
	}
	p.Log.Info().Int("fetched", fetched).Int("kept", len(records)).Msg("records filtered")

	if err := ClassifyAll(ctx, records, p.Workers, p.Log); err != nil {
		return nil, fmt.Errorf("Execute: classify: %w", err)
	}
	if p.Metrics != nil {
		p.Metrics.ObserveClassified(records)
	}
	p.Log.Info().Int("records", len(records)).Int("workers", p.Workers).Msg("records classified")

	if err := p.write(ctx, records); err != nil {
		return nil, err
	}

	if p.Metrics != nil {
		p.Metrics.MarkRun()
	}
	p.Log.Info().Dur("elapsed", time.Since(start)).Msg("export finished")
	return records, nil
}

func (p *Pipeline) write(ctx context.Context, records []entity.ActivityRecord) error {
	if path := p.Export.XLSX; path != "" {
		if err := export.WriteXLSX(path, records, p.Export.MaxRowsPerSheet); err != nil {
			return err
		}
		p.Log.Info().Str("file", path).Int("sheets", len(export.SheetNames(len(records), p.Export.MaxRowsPerSheet))).Msg("excel export written")
	}

	if path := p.Export.CSV; path != "" {
		if err := export.WriteCSV(path, records); err != nil {
			return err
		}
		p.Log.Info().Str("file", path).Msg("csv export written")
	}

	if p.StorePath != "" {
		store, err := query.InitStore(p.StorePath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SaveClassified(ctx, records); err != nil {
			return err
		}
		p.Log.Info().Str("file", p.StorePath).Msg("result store updated")
	}
	return nil
}

// StartProgramme runs one export with the given configuration: it resolves
// the user and date range, reads the monitoring database and writes the
// configured outputs.
func StartProgramme(ctx context.Context, cfg *config.Config, opts Options) error {
	log := logger.WithComponent("launch")

	dates, err := opts.resolve(cfg.Query)
	if err != nil {
		return err
	}
	epoch, err := time.Parse(time.DateOnly, cfg.Query.PartitionEpoch)
	if err != nil {
		return fmt.Errorf("partition epoch: %w", err)
	}

	q := dates.Apply(query.ActivityQuery{
		UserName:        opts.UserName,
		OrganizationIDs: cfg.Query.OrganizationIDs,
	}, epoch)

	log.Info().
		Str("from", opts.From).
		Str("to", opts.To).
		Str("user", opts.UserName).
		Int64("slice_from", q.SliceFrom).
		Int64("slice_to", q.SliceTo).
		Int64("partition_from", q.PartitionFrom).
		Int64("partition_to", q.PartitionTo).
		Msg("starting export")

	db, err := query.Open(cfg.Database.Driver, cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	metrics := NewMetrics()
	source := query.NewSource(db, cfg.Database.Driver, cfg.Query.Location(),
		cfg.Database.Retries, cfg.Database.RetryDelay, logger.WithComponent("query"))
	source.OnAttempt = metrics.ObserveFetch

	_, runErr := NewPipeline(cfg, source, metrics).Execute(ctx, q)

	if path := cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			log.Error().Err(err).Str("file", path).Msg("failed to write metrics")
		}
	}
	return runErr
}
