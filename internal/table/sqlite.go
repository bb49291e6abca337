package table

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/cbrunner/golfcities/internal/course"
)

// DefaultSQLiteTable is the table name used when none is given.
const DefaultSQLiteTable = "teeradar_courses"

// WriteCoursesSQLite replaces tableName in the SQLite database at path with
// the given course rows and indexes it by course_id. Nullable columns are
// stored as NULL.
func WriteCoursesSQLite(path, tableName string, rows []course.Course) error {
	if tableName == "" {
		tableName = DefaultSQLiteTable
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening sqlite database: %w", err)
	}
	defer db.Close()

	// The drop, create and inserts share one transaction so a failed run
	// never leaves the table dropped or half-filled.
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, tableName)); err != nil {
		return fmt.Errorf("dropping table: %w", err)
	}

	createStmt := fmt.Sprintf(`CREATE TABLE %q (
		course_id TEXT,
		name TEXT,
		city TEXT,
		state TEXT,
		country TEXT,
		latitude REAL,
		longitude REAL,
		length_yards REAL,
		holes INTEGER,
		access TEXT,
		rating REAL,
		ratings_count INTEGER,
		tee_fee REAL,
		_fetched_at TEXT,
		_offset INTEGER,
		_raw_file TEXT
	)`, tableName)
	if _, err := tx.Exec(createStmt); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %q (
		course_id, name, city, state, country,
		latitude, longitude, length_yards, holes, access,
		rating, ratings_count, tee_fee,
		_fetched_at, _offset, _raw_file
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, tableName)
	stmt, err := tx.Prepare(insert)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range rows {
		_, err := stmt.Exec(
			c.CourseID, c.Name, c.City, c.State, c.Country,
			c.Latitude, c.Longitude, c.LengthYards, c.Holes, c.Access,
			c.Rating, c.RatingsCount, c.TeeFee,
			c.FetchedAt, c.Offset, c.RawFile,
		)
		if err != nil {
			return fmt.Errorf("inserting course %s: %w", c.CourseID, err)
		}
	}

	indexStmt := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %q ON %q (course_id)`,
		"idx_"+tableName+"_course_id", tableName)
	if _, err := tx.Exec(indexStmt); err != nil {
		return fmt.Errorf("creating index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}
