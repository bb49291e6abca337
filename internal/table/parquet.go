package table

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/cbrunner/golfcities/internal/course"
)

// WriteParquet writes rows as a Parquet file, atomically.
func WriteParquet[T any](path string, rows []T) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		pw := parquet.NewGenericWriter[T](w)
		if _, err := pw.Write(rows); err != nil {
			return fmt.Errorf("writing parquet rows: %w", err)
		}
		if err := pw.Close(); err != nil {
			return fmt.Errorf("closing parquet writer: %w", err)
		}
		return nil
	})
}

// ReadCoursesParquet loads a course table from Parquet. Columns come from the
// file's schema, not the Go struct, so schema validation sees what the file
// really carries.
func ReadCoursesParquet(path string) ([]course.Course, course.Columns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening course table: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stating course table: %w", err)
	}

	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, nil, fmt.Errorf("opening parquet file: %w", err)
	}

	cols := make(course.Columns)
	for _, field := range pf.Schema().Fields() {
		cols[field.Name()] = true
	}

	rows, err := parquet.ReadFile[course.Course](path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading parquet rows: %w", err)
	}

	return rows, cols, nil
}
