package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	errTokensTableMissing = "tokens table does not exist; run scripts/setup_db.go"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"

	errFailedListTokensFmt     = "failed to list tokens: %w"
	errFailedScanTokenFmt      = "failed to scan token: %w"
	errIterateTokensFmt        = "error iterating tokens: %w"
	errInvalidStoredTokenFmt   = "token %q has invalid permissions: %w"
	errFailedRecordDecisionFmt = "failed to record permission check: %w"
	errTokensTableMissingFmt   = errTokensTableMissing + ": %w"

	errFailedMigrateFmt    = "failed to apply schema: %w"
	errFailedSeedTokenFmt  = "failed to seed token %q: %w"
	errFailedCheckTableFmt = "failed to check table %s: %w"
)

var (
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedListTokens           = func(err error) error { return fmt.Errorf(errFailedListTokensFmt, err) }
	errFailedScanToken            = func(err error) error { return fmt.Errorf(errFailedScanTokenFmt, err) }
	errIterateTokens              = func(err error) error { return fmt.Errorf(errIterateTokensFmt, err) }
	errFailedRecordDecision       = func(err error) error { return fmt.Errorf(errFailedRecordDecisionFmt, err) }
	errTokensMissing              = func(err error) error { return fmt.Errorf(errTokensTableMissingFmt, err) }
	errInvalidStoredToken         = func(id string, err error) error { return fmt.Errorf(errInvalidStoredTokenFmt, id, err) }
	errFailedMigrate              = func(err error) error { return fmt.Errorf(errFailedMigrateFmt, err) }
	errFailedSeedToken            = func(id string, err error) error { return fmt.Errorf(errFailedSeedTokenFmt, id, err) }
	errFailedCheckTable           = func(table string, err error) error { return fmt.Errorf(errFailedCheckTableFmt, table, err) }
)
