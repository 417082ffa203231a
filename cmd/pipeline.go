package cmd

import (
	"log/slog"
	"time"

	"github.com/drewgille/lemurs/dataset"
	"github.com/drewgille/lemurs/pkg/errors"
	"github.com/drewgille/lemurs/pkg/log"
)

// loadObservations runs the shared front of the pipeline: read the CSV,
// restrict to the configured taxa, drop undetermined-sex rows, and derive the
// age category column.
func loadObservations(state *appState) (*dataset.Table, error) {
	if state.cfg.DataPath == "" {
		return nil, errors.NewValidationError("data_path", "no input file configured; pass --data or set data_path", "")
	}

	start := time.Now()
	tbl, err := dataset.ReadCSV(state.cfg.DataPath)
	if err != nil {
		return nil, err
	}
	state.logger.Info("loaded observations",
		slog.String(log.StageKey, "load"),
		slog.String(log.PathKey, state.cfg.DataPath),
		slog.Int(log.RowsKey, tbl.Rows()),
		slog.Int(log.ColumnsKey, len(tbl.ColumnNames())),
		slog.Int64(log.DurationMsKey, time.Since(start).Milliseconds()))

	tbl, err = dataset.FilterByTaxon(tbl, state.cfg.Taxa)
	if err != nil {
		return nil, err
	}
	tbl, err = dataset.FilterValidSex(tbl)
	if err != nil {
		return nil, err
	}
	tbl, err = dataset.WithAgeCategory(tbl, state.cfg.AdultAgeMonths)
	if err != nil {
		return nil, err
	}

	state.logger.Info("filtered observations",
		slog.String(log.StageKey, "filter"),
		slog.Int(log.RowsKey, tbl.Rows()))
	return tbl, nil
}
