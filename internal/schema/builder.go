package schema

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Insert is a parameterized statement plus one argument list per seed row.
type Insert struct {
	Table string
	SQL   string
	Args  [][]any
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// BuildCreateTableStatements returns one CREATE TABLE per table, in input
// order. Column definitions are inserted verbatim.
func BuildCreateTableStatements(s *Schema) []string {
	if s == nil {
		return []string{}
	}
	stmts := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		cols := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			cols = append(cols, quote(c.Name)+" "+c.Definition)
		}
		ifNotExists := ""
		if t.IfNotExists {
			ifNotExists = " IF NOT EXISTS"
		}
		stmts = append(stmts, fmt.Sprintf("CREATE TABLE%s %s (%s);", ifNotExists, quote(t.Name), strings.Join(cols, ", ")))
	}
	return stmts
}

// CountStatement returns the query used to decide whether table already holds rows.
func CountStatement(table string) string {
	return "SELECT COUNT(*) FROM " + quote(table)
}

// BuildSeedInsert derives the column list from the first row's keys and
// returns the insert with arguments for every row. An empty row list yields
// nil.
func BuildSeedInsert(table string, rows []Row) (*Insert, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if err := checkKeys(table, rows); err != nil {
		return nil, err
	}

	keys := rows[0].Keys
	cols := make([]string, len(keys))
	placeholders := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = quote(k)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	ins := &Insert{
		Table: table,
		SQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
			quote(table), strings.Join(cols, ", "), strings.Join(placeholders, ", ")),
		Args: make([][]any, 0, len(rows)),
	}
	if len(keys) == 0 {
		// {} rows: postgres rejects an empty column list
		ins.SQL = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES;", quote(table))
	}
	for _, r := range rows {
		args := make([]any, len(keys))
		for i, k := range keys {
			args[i] = r.Values[k]
		}
		ins.Args = append(ins.Args, args)
	}
	return ins, nil
}
