package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB is an in-memory stand-in for postgres that understands just enough
// SQL for the bootstrap runner: CREATE TABLE, SELECT COUNT(*) and INSERT.
type fakeDB struct {
	mu       sync.Mutex
	tables   map[string]int
	execLog  []string
	failOn   string
	acquired int
	released int
	acqErrs  []error
}

func newFakeDB() *fakeDB {
	return &fakeDB{tables: map[string]int{}}
}

func (f *fakeDB) AcquireSession(ctx context.Context) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.acqErrs) > 0 {
		err := f.acqErrs[0]
		f.acqErrs = f.acqErrs[1:]
		return nil, err
	}
	f.acquired++
	return &fakeSession{db: f}, nil
}

type fakeSession struct {
	db *fakeDB
}

func (s *fakeSession) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f := s.db
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execLog = append(f.execLog, sql)
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return pgconn.CommandTag{}, errors.New("boom: " + f.failOn)
	}
	switch {
	case strings.HasPrefix(sql, "CREATE TABLE"):
		name := quotedName(sql)
		if _, ok := f.tables[name]; !ok {
			f.tables[name] = 0
		}
		return pgconn.NewCommandTag("CREATE TABLE"), nil
	case strings.HasPrefix(sql, "INSERT INTO"):
		name := quotedName(sql)
		if _, ok := f.tables[name]; !ok {
			return pgconn.CommandTag{}, fmt.Errorf("relation %q does not exist", name)
		}
		f.tables[name]++
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func (s *fakeSession) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f := s.db
	f.mu.Lock()
	defer f.mu.Unlock()
	name := quotedName(sql)
	n, ok := f.tables[name]
	if !ok {
		return fakeRow{err: fmt.Errorf("relation %q does not exist", name)}
	}
	return fakeRow{val: int64(n)}
}

func (s *fakeSession) Release() {
	s.db.mu.Lock()
	s.db.released++
	s.db.mu.Unlock()
}

type fakeRow struct {
	val int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.val
	return nil
}

func quotedName(sql string) string {
	start := strings.Index(sql, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(sql[start+1:], `"`)
	return sql[start+1 : start+1+end]
}
