package aggregate

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/jruiznavarro/battlesim/internal/errs"
	"github.com/jruiznavarro/battlesim/internal/simulation/persist"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS unit_aggregate (
	unit_id              INTEGER PRIMARY KEY,
	matches_played       INTEGER NOT NULL,
	wins                 INTEGER NOT NULL,
	losses               INTEGER NOT NULL,
	draws                INTEGER NOT NULL,
	mean_wounds_dealt    REAL NOT NULL,
	variance_wounds_dealt REAL NOT NULL,
	mean_wounds_taken    REAL NOT NULL,
	variance_wounds_taken REAL NOT NULL,
	best_matchup_id      INTEGER NOT NULL,
	worst_matchup_id     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS unit_holding_histogram (
	unit_id   INTEGER NOT NULL,
	rounds    INTEGER NOT NULL,
	count     INTEGER NOT NULL,
	PRIMARY KEY (unit_id, rounds)
);
`

// ExportSQLite writes rows into the sqlite database at path (tables are
// created if absent; rows for unit ids already present are replaced), as a
// downstream-query-friendly alternative to the 256B/unit Aggregated
// binary layout (not a replacement for it: WriteAggregatedFile remains
// the canonical on-disk format).
func ExportSQLite(path string, rows []persist.Aggregated) error {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return errs.IO("open sqlite export", err)
	}
	defer conn.Close()

	if _, err := conn.Exec(schemaSQL); err != nil {
		return errs.IO("apply sqlite schema", err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return errs.IO("begin sqlite transaction", err)
	}

	const insertUnit = `INSERT OR REPLACE INTO unit_aggregate
		(unit_id, matches_played, wins, losses, draws,
		 mean_wounds_dealt, variance_wounds_dealt, mean_wounds_taken, variance_wounds_taken,
		 best_matchup_id, worst_matchup_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	const insertHistogram = `INSERT OR REPLACE INTO unit_holding_histogram (unit_id, rounds, count) VALUES (?, ?, ?)`

	for _, row := range rows {
		if _, err := tx.Exec(insertUnit,
			row.UnitID, row.MatchesPlayed, row.Wins, row.Losses, row.Draws,
			row.MeanWoundsDealt, row.VarianceWoundsDealt, row.MeanWoundsTaken, row.VarianceWoundsTaken,
			row.BestMatchupID, row.WorstMatchupID,
		); err != nil {
			tx.Rollback()
			return errs.IO("insert unit_aggregate row", err)
		}
		for rounds, count := range row.HoldingHistogram {
			if _, err := tx.Exec(insertHistogram, row.UnitID, rounds, count); err != nil {
				tx.Rollback()
				return errs.IO("insert unit_holding_histogram row", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.IO("commit sqlite export", err)
	}
	return nil
}
