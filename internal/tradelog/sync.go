package tradelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gw/prediction-pnl/internal/loader"
	"github.com/gw/prediction-pnl/internal/trade"
)

// HistorySource supplies raw trade history, e.g. *limitless.Client.
type HistorySource interface {
	FetchTradeHistory(ctx context.Context, pageLimit int) ([]trade.Record, error)
}

// Result summarizes one import or sync.
type Result struct {
	Upload   Upload
	Records  int // raw records read
	Inserted int // new trades stored
	Failures []trade.Failure
}

// Duplicates returns how many normalized trades were already stored.
func (r Result) Duplicates() int { return r.Upload.TradeCount - r.Inserted }

// Sync downloads the full trade history and stores any new trades. An
// unchanged history is detected by hash and reported as ErrDuplicateUpload.
func Sync(ctx context.Context, src HistorySource, store *Store, pageLimit int) (Result, error) {
	records, err := src.FetchTradeHistory(ctx, pageLimit)
	if err != nil {
		return Result{}, fmt.Errorf("fetching history: %w", err)
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return Result{}, fmt.Errorf("hashing history: %w", err)
	}

	u := Upload{Filename: "portfolio/history", FileType: "api", FileHash: HashBytes(raw)}
	res, err := save(ctx, store, &u, records)
	if err != nil {
		return res, err
	}
	slog.Info("synced trades", "records", res.Records, "inserted", res.Inserted, "skipped", len(res.Failures))
	return res, nil
}

// ImportFile loads a JSON, CSV or XLSX export and stores its trades. The
// same file contents cannot be imported twice.
func ImportFile(ctx context.Context, store *Store, path string) (Result, error) {
	format, err := loader.DetectFormat(path)
	if err != nil {
		return Result{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	records, err := loader.Parse(data, format)
	if err != nil {
		return Result{}, err
	}

	u := Upload{Filename: filepath.Base(path), FileType: string(format), FileHash: HashBytes(data)}
	res, err := save(ctx, store, &u, records)
	if err != nil {
		return res, err
	}
	slog.Info("imported trades", "file", u.Filename, "records", res.Records, "inserted", res.Inserted, "skipped", len(res.Failures))
	return res, nil
}

func save(ctx context.Context, store *Store, u *Upload, records []trade.Record) (Result, error) {
	batch := trade.NormalizeBatch(records)
	for _, f := range batch.Failures {
		slog.Warn("skipped record", "source", u.Filename, "index", f.Index, "reason", f.Reason)
	}

	inserted, err := store.SaveUpload(ctx, u, batch)
	res := Result{Records: len(records), Failures: batch.Failures}
	if err != nil {
		if errors.Is(err, ErrDuplicateUpload) {
			return res, err
		}
		return res, fmt.Errorf("saving %s: %w", u.Filename, err)
	}
	res.Upload = *u
	res.Inserted = inserted
	return res, nil
}
