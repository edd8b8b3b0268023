package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"subconv/internal/batch"
	"subconv/internal/services"
)

const runColumns = "id, dir, source_ext, target_ext, started_at, finished_at, succeeded, failed, skipped, error_kind, error_message"

// RecordRun stores a finished or aborted run together with its per-file
// results, then prunes runs beyond the retention limit. Empty runs are not
// recorded.
func (s *Store) RecordRun(ctx context.Context, report batch.Report, runErr error) error {
	if report.Empty && runErr == nil {
		return nil
	}
	if report.RunID == "" {
		return errors.New("record run: missing run id")
	}
	ctx = ensureContext(ctx)

	var errMessage string
	if runErr != nil {
		errMessage = runErr.Error()
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID,
			report.Dir,
			report.SourceExt,
			report.TargetExt,
			formatTime(report.StartedAt),
			formatTime(report.FinishedAt),
			report.Succeeded,
			report.Failed,
			report.Skipped,
			nullableString(services.Kind(runErr)),
			nullableString(errMessage),
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for i, result := range report.Results {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO results (run_id, seq, input, output, status, exit_code, detail, duration_ms)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				report.RunID,
				i+1,
				result.Input.Name,
				result.OutputName(),
				string(result.Status),
				result.ExitCode,
				nullableString(result.Detail),
				result.Duration.Milliseconds(),
			); err != nil {
				return fmt.Errorf("insert result %d: %w", i+1, err)
			}
		}

		if s.keepRuns > 0 {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM runs WHERE id NOT IN (
                    SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
                 )`,
				s.keepRuns,
			); err != nil {
				return fmt.Errorf("prune runs: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit run: %w", err)
		}
		return nil
	})
}

// ListRuns returns the most recent runs, newest first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun fetches a run by identifier or unique identifier prefix. It returns
// nil when nothing matches. The prefix is compared literally, so LIKE
// wildcards in id have no special meaning.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, nil
	}
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, length(?)) = ?
		ORDER BY id = ? DESC, started_at DESC LIMIT 2`,
		id, id, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	}
	for i := range matches {
		if matches[i].ID == id {
			return &matches[i], nil
		}
	}
	return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
}

// Results returns the per-file rows of a run in processing order.
func (s *Store) Results(ctx context.Context, runID string) ([]FileResult, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, seq, input, output, status, exit_code, detail, duration_ms
         FROM results WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []FileResult
	for rows.Next() {
		var (
			res        FileResult
			detail     sql.NullString
			durationMS int64
		)
		if err := rows.Scan(&res.RunID, &res.Seq, &res.Input, &res.Output, &res.Status, &res.ExitCode, &detail, &durationMS); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.Detail = detail.String
		res.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw string
		errKind     sql.NullString
		errMessage  sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Dir,
		&run.SourceExt,
		&run.TargetExt,
		&startedRaw,
		&finishedRaw,
		&run.Succeeded,
		&run.Failed,
		&run.Skipped,
		&errKind,
		&errMessage,
	); err != nil {
		return Run{}, err
	}
	if t, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = t
	}
	if t, err := parseTimeString(finishedRaw); err == nil {
		run.FinishedAt = t
	}
	run.ErrorKind = errKind.String
	run.ErrorMessage = errMessage.String
	return run, nil
}
