package schema

import (
	"encoding/json"
	"fmt"
	"io"
)

// WritePlan prints the statements a bootstrap would run: every CREATE TABLE,
// then per seed table the insert and its rows. Seeds only apply to empty tables.
func WritePlan(w io.Writer, s *Schema) error {
	for _, stmt := range BuildCreateTableStatements(s) {
		if _, err := fmt.Fprintln(w, stmt); err != nil {
			return err
		}
	}
	if s == nil {
		return nil
	}
	for _, st := range s.Seed {
		ins, err := BuildSeedInsert(st.Table, st.Rows)
		if err != nil {
			return err
		}
		if ins == nil {
			continue
		}
		fmt.Fprintf(w, "-- seed %s (%d rows, skipped when the table is not empty)\n", st.Table, len(st.Rows))
		fmt.Fprintln(w, ins.SQL)
		for _, r := range st.Rows {
			b, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "--   %s\n", b); err != nil {
				return err
			}
		}
	}
	return nil
}
