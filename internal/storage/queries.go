package storage

import (
	"fmt"
	"time"

	"github.com/pable/go-dawgbowl-metrics/internal/model"
)

// InsertRun records the run that populated the database.
func (db *DB) InsertRun(runID string, startedAt time.Time) error {
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO runs(run_id, started_at) VALUES (?, ?)`,
		runID, startedAt.UTC().Format(time.RFC3339))
	return err
}

// InsertBatches records which files were loaded.
func (db *DB) InsertBatches(batches []model.Batch) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO batches(hash, source, week, entries) VALUES (?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range batches {
		if _, err := stmt.Exec(b.Hash, b.Source, b.Week, len(b.Entries)); err != nil {
			return fmt.Errorf("insert batch %s: %w", b.Source, err)
		}
	}
	return tx.Commit()
}

// InsertEntries bulk-inserts enriched entries in a transaction.
func (db *DB) InsertEntries(entries []model.Entry) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO entries(
			week, username, place, points,
			player_1, player_2, player_3, player_4, player_5, player_6,
			pos_1, pos_2, pos_3, pos_4, pos_5, pos_6,
			qb_pick, rb1_pick, wr1_pick, wr2_pick, te_pick, flex_pick,
			top_0_1, top_0_5, top_1, total_entries
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		p, pos, r := e.Players, e.Positions, e.Roles
		_, err = stmt.Exec(
			e.Week, e.Username, e.Place, e.Points,
			p[0], p[1], p[2], p[3], p[4], p[5],
			string(pos[0]), string(pos[1]), string(pos[2]),
			string(pos[3]), string(pos[4]), string(pos[5]),
			nullSlot(r.QB), nullSlot(r.RB1), nullSlot(r.WR1),
			nullSlot(r.WR2), nullSlot(r.TE), nullSlot(r.Flex),
			boolInt(e.Tiers.Elite01), boolInt(e.Tiers.Elite05), boolInt(e.Tiers.Elite1),
			e.TotalEntries,
		)
		if err != nil {
			return fmt.Errorf("insert entry for %s: %w", e.Username, err)
		}
	}
	return tx.Commit()
}

// InsertUserSummaries stores a user summary computed for week.
func (db *DB) InsertUserSummaries(week string, rows []model.UserSummary) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO user_summary(
			week, username, top_0_1, top_0_5, top_1, total_entries, rate_0_1, rate_0_5, rate_1
		) VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range rows {
		if _, err := stmt.Exec(week, s.Username, s.Count01, s.Count05, s.Count1,
			s.TotalEntries, s.Rate01, s.Rate05, s.Rate1); err != nil {
			return fmt.Errorf("insert user_summary for %s: %w", s.Username, err)
		}
	}
	return tx.Commit()
}

// InsertPlayerHitRates stores the player table of one week's trait scan.
func (db *DB) InsertPlayerHitRates(week string, rows []model.PlayerHitRate) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_hit_rates(week, player, population_count, elite_count, hit_rate)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(week, r.Player, r.PopulationCount, r.EliteCount, r.HitRate); err != nil {
			return fmt.Errorf("insert player_hit_rates: %w", err)
		}
	}
	return tx.Commit()
}

// InsertPairHitRates stores the pair table of one week's trait scan.
func (db *DB) InsertPairHitRates(week string, rows []model.PairHitRate) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO pair_hit_rates(week, player_a, player_b, population_count, elite_count, hit_rate)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(week, r.PlayerA, r.PlayerB, r.PopulationCount, r.EliteCount, r.HitRate); err != nil {
			return fmt.Errorf("insert pair_hit_rates: %w", err)
		}
	}
	return tx.Commit()
}

// BatchRef is a loaded file as recorded in the batches table.
type BatchRef struct {
	Hash    string
	Source  string
	Week    string
	Entries int
}

// ListBatches returns the loaded files ordered by week.
func (db *DB) ListBatches() ([]BatchRef, error) {
	rows, err := db.conn.Query(`SELECT hash, source, week, entries FROM batches ORDER BY week, source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BatchRef
	for rows.Next() {
		var b BatchRef
		if err := rows.Scan(&b.Hash, &b.Source, &b.Week, &b.Entries); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CountEntries returns the number of stored entries.
func (db *DB) CountEntries() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(1) FROM entries`).Scan(&n)
	return n, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullSlot stores unassigned roles as NULL.
func nullSlot(s model.Slot) any {
	if !s.Assigned() {
		return nil
	}
	return int(s)
}
