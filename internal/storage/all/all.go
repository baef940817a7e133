// Package all registers every storage backend plus the SQL Server driver.
// Commands blank-import this one package instead of tracking backend packages
// individually.
package all

import (
	// The mssql sink package does not register the driver itself; see its
	// package comment.
	_ "github.com/microsoft/go-mssqldb"

	_ "extract/internal/storage/mssql"
	_ "extract/internal/storage/postgres"
	_ "extract/internal/storage/sqlite"
)
