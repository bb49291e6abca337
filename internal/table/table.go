package table

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/cbrunner/golfcities/internal/course"
)

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place, so a failed run never leaves a partial artifact.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming output: %w", err)
	}
	return nil
}

// WriteCSV writes rows as a headered CSV file, atomically.
func WriteCSV[T any](path string, rows []T) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		data, err := csvutil.Marshal(rows)
		if err != nil {
			return fmt.Errorf("encoding CSV: %w", err)
		}
		_, err = w.Write(data)
		return err
	})
}

// WriteNDJSON writes rows as newline-delimited JSON, atomically.
func WriteNDJSON[T any](path string, rows []T) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return fmt.Errorf("encoding NDJSON row: %w", err)
			}
		}
		return nil
	})
}

// ReadCourses loads a course table, dispatching on the file extension
// (.parquet, .csv, .ndjson/.jsonl). It returns the rows together with the set
// of columns the file actually declares; feature availability is decided from
// that set.
func ReadCourses(path string) ([]course.Course, course.Columns, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return ReadCoursesParquet(path)
	case ".csv":
		return ReadCoursesCSV(path)
	case ".ndjson", ".jsonl":
		return ReadCoursesNDJSON(path)
	default:
		return nil, nil, fmt.Errorf("%w: unsupported course table format %q (use .parquet, .csv or .ndjson)",
			course.ErrConfig, filepath.Ext(path))
	}
}

// ReadCoursesCSV loads a course table from CSV. Columns come from the header
// row; empty cells in nullable columns decode to nil.
func ReadCoursesCSV(path string) ([]course.Course, course.Columns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening course table: %w", err)
	}
	defer f.Close()

	dec, err := csvutil.NewDecoder(csv.NewReader(f))
	if err != nil {
		if err == io.EOF {
			return nil, nil, fmt.Errorf("%w: course table %s is empty", course.ErrNoData, path)
		}
		return nil, nil, fmt.Errorf("reading CSV header: %w", err)
	}

	cols := make(course.Columns)
	for _, name := range dec.Header() {
		cols[strings.TrimSpace(name)] = true
	}

	var rows []course.Course
	if err := dec.Decode(&rows); err != nil && err != io.EOF {
		return nil, nil, fmt.Errorf("decoding course CSV: %w", err)
	}

	return rows, cols, nil
}

// ReadCoursesNDJSON loads a course table from newline-delimited JSON. The
// column set is the union of keys across all records.
func ReadCoursesNDJSON(path string) ([]course.Course, course.Columns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening course table: %w", err)
	}
	defer f.Close()

	cols := make(course.Columns)
	var rows []course.Course

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var c course.Course
		if err := json.Unmarshal([]byte(text), &c); err != nil {
			return nil, nil, fmt.Errorf("parsing NDJSON line %d: %w", line, err)
		}

		var keys map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &keys); err != nil {
			return nil, nil, fmt.Errorf("parsing NDJSON line %d: %w", line, err)
		}
		for k := range keys {
			cols[k] = true
		}

		rows = append(rows, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading NDJSON: %w", err)
	}

	return rows, cols, nil
}

// ReadGolfability loads the optional per-state golfability CSV. Header
// matching is case-insensitive and tolerates the state_name and golfable
// aliases seen in hand-maintained files. Indicator values other than 0 or 1
// fail with a schema error.
func ReadGolfability(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening state golfability table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading state golfability header: %w", err)
	}

	stateIdx, indicatorIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "state", "state_name":
			if stateIdx < 0 {
				stateIdx = i
			}
		case "golfable_year_round", "golfable":
			indicatorIdx = i
		}
	}
	if stateIdx < 0 {
		return nil, fmt.Errorf("%w: state golfability table is missing required column %q", course.ErrSchema, "state")
	}
	if indicatorIdx < 0 {
		return nil, fmt.Errorf("%w: state golfability table is missing required column %q", course.ErrSchema, "golfable_year_round")
	}

	states := make(map[string]int)
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading state golfability row %d: %w", line, err)
		}

		state := strings.ToUpper(strings.TrimSpace(record[stateIdx]))
		if state == "" {
			continue
		}

		switch strings.TrimSpace(record[indicatorIdx]) {
		case "0":
			states[state] = 0
		case "1":
			states[state] = 1
		default:
			return nil, fmt.Errorf("%w: state golfability row %d has non-binary indicator %q for state %s",
				course.ErrSchema, line, record[indicatorIdx], state)
		}
	}

	return states, nil
}
