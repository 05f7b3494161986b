package database

import (
	"database/sql"
	"fmt"
)

// reportColumns are the columns the report store reads and writes
var reportColumns = []string{"seq", "id", "description", "lat", "lng", "image_url", "status", "created_at", "resolved_at"}

// GetColumnNames returns all column names for a given table
func GetColumnNames(db *sql.DB, tableName string) ([]string, error) {
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return nil, err
		}
		columns = append(columns, colName)
	}

	return columns, rows.Err()
}

// CheckColumnExists checks if a column exists in a table
func CheckColumnExists(db *sql.DB, tableName, columnName string) (bool, error) {
	columns, err := GetColumnNames(db, tableName)
	if err != nil {
		return false, err
	}

	for _, col := range columns {
		if col == columnName {
			return true, nil
		}
	}

	return false, nil
}

// CheckReportsSchema fails when the reports table lacks a column the store needs.
func CheckReportsSchema(db *sql.DB) error {
	for _, col := range reportColumns {
		exists, err := CheckColumnExists(db, "reports", col)
		if err != nil {
			return fmt.Errorf("inspect reports table: %w", err)
		}
		if !exists {
			return fmt.Errorf("reports table is missing column %q", col)
		}
	}
	return nil
}
