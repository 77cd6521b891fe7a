// Package schema loads the declarative table/seed description and turns it
// into the SQL the bootstrap runner executes.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

var (
	ErrSchemaNotFound  = errors.New("schema file not found")
	ErrSchemaParse     = errors.New("invalid schema file")
	ErrSeedKeyMismatch = errors.New("seed rows have different columns")
)

type Schema struct {
	Tables []Table `json:"tables"`
	Seed   Seed    `json:"seed,omitempty"`
}

type Table struct {
	Name        string   `json:"name"`
	IfNotExists bool     `json:"ifNotExists,omitempty"`
	Columns     []Column `json:"columns"`
}

type Column struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// Seed keeps the tables in the order they appear in the file.
type Seed []SeedTable

type SeedTable struct {
	Table string
	Rows  []Row
}

// Row is one seed object. Keys keeps the object's key order, which decides
// the column list and placeholder order of the generated insert.
type Row struct {
	Keys   []string
	Values map[string]any
}

// Load reads and validates the schema description at path.
func Load(path string) (*Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, path)
		}
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaParse, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks names and that each seed list uses a single key set.
func (s *Schema) Validate() error {
	for i, t := range s.Tables {
		if t.Name == "" {
			return fmt.Errorf("%w: tables[%d] has no name", ErrSchemaParse, i)
		}
		for j, c := range t.Columns {
			if c.Name == "" {
				return fmt.Errorf("%w: table %q column %d has no name", ErrSchemaParse, t.Name, j)
			}
		}
	}
	for _, st := range s.Seed {
		if err := checkKeys(st.Table, st.Rows); err != nil {
			return err
		}
	}
	return nil
}

func checkKeys(table string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	want := rows[0].Keys
	for i, r := range rows[1:] {
		if len(r.Keys) != len(want) {
			return fmt.Errorf("%w: table %q row %d", ErrSeedKeyMismatch, table, i+1)
		}
		for _, k := range want {
			if _, ok := r.Values[k]; !ok {
				return fmt.Errorf("%w: table %q row %d lacks %q", ErrSeedKeyMismatch, table, i+1, k)
			}
		}
	}
	return nil
}

func (s *Seed) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*s = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	var out Seed
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		table := tok.(string)
		var rows []Row
		if err := dec.Decode(&rows); err != nil {
			return fmt.Errorf("seed %q: %w", table, err)
		}
		out = append(out, SeedTable{Table: table, Rows: rows})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("seed row: %w", err)
	}
	r.Keys = nil
	r.Values = map[string]any{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("seed row %q: %w", key, err)
		}
		if _, dup := r.Values[key]; !dup {
			r.Keys = append(r.Keys, key)
		}
		r.Values[key] = normalize(v)
	}
	_, err := dec.Token()
	return err
}

func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.Values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// normalize turns json.Number into int64 or float64 so the driver can encode
// it for integer and numeric columns alike.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(x.String(), 10, 64); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = normalize(x[k])
		}
		return x
	}
	return v
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
