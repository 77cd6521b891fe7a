package db

import (
	"context"
	"fmt"

	"task_tracker/internal/logger"
	"task_tracker/internal/schema"
)

// SeedResult reports what happened to one seed table.
type SeedResult struct {
	Table    string
	Inserted int
	Skipped  bool
}

// RunSchemaSetup executes the CREATE TABLE statements for s on a single
// session and then seeds every empty table. The first failing statement
// aborts the run; the session is released on every path.
func RunSchemaSetup(ctx context.Context, acq Acquirer, s *schema.Schema) ([]SeedResult, error) {
	if s == nil {
		s = &schema.Schema{}
	}
	sess, err := acq.AcquireSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer sess.Release()

	for _, stmt := range schema.BuildCreateTableStatements(s) {
		if _, err := sess.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create table: %w", err)
		}
	}

	var results []SeedResult
	for _, st := range s.Seed {
		res, err := seedTable(ctx, sess, st)
		if err != nil {
			return results, err
		}
		if res != nil {
			results = append(results, *res)
		}
	}
	return results, nil
}

func seedTable(ctx context.Context, sess Session, st schema.SeedTable) (*SeedResult, error) {
	if len(st.Rows) == 0 {
		return nil, nil
	}

	var count int64
	if err := sess.QueryRow(ctx, schema.CountStatement(st.Table)).Scan(&count); err != nil {
		return nil, fmt.Errorf("count %s: %w", st.Table, err)
	}
	if count > 0 {
		logger.Debug("seed skipped, table not empty", "table", st.Table, "rows", count)
		return &SeedResult{Table: st.Table, Skipped: true}, nil
	}

	ins, err := schema.BuildSeedInsert(st.Table, st.Rows)
	if err != nil {
		return nil, err
	}
	for i, args := range ins.Args {
		if _, err := sess.Exec(ctx, ins.SQL, args...); err != nil {
			return nil, fmt.Errorf("seed %s row %d: %w", st.Table, i, err)
		}
	}
	logger.Info("seeded table", "table", st.Table, "rows", len(ins.Args))
	return &SeedResult{Table: st.Table, Inserted: len(ins.Args)}, nil
}
