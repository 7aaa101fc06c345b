// Package journal keeps an append-only SQLite record of village events
// and daily statistics.
package journal

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/villagesim/internal/engine"
)

// DB wraps a SQLite connection for the event journal.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates the journal database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		day INTEGER NOT NULL,
		hour INTEGER NOT NULL,
		source TEXT NOT NULL,
		action TEXT NOT NULL,
		fields_json TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS daily_stats (
		day INTEGER PRIMARY KEY,
		population INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		avg_health REAL NOT NULL,
		avg_food REAL NOT NULL,
		total_food REAL NOT NULL,
		total_wood REAL NOT NULL,
		active_threats INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);
	CREATE INDEX IF NOT EXISTS idx_events_action ON events(action);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// AppendEvent writes one event. Fields are stored as JSON.
func (db *DB) AppendEvent(ev engine.Event) error {
	fields := []byte("{}")
	if len(ev.Fields) > 0 {
		fields, _ = json.Marshal(ev.Fields)
	}
	_, err := db.conn.Exec(
		"INSERT INTO events (tick, day, hour, source, action, fields_json) VALUES (?, ?, ?, ?, ?, ?)",
		ev.Tick, ev.Day, ev.Hour, ev.Source, ev.Action, string(fields),
	)
	return err
}

// AppendEvents writes a batch of events in one transaction.
func (db *DB) AppendEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(
		"INSERT INTO events (tick, day, hour, source, action, fields_json) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		fields := []byte("{}")
		if len(ev.Fields) > 0 {
			fields, _ = json.Marshal(ev.Fields)
		}
		if _, err := stmt.Exec(ev.Tick, ev.Day, ev.Hour, ev.Source, ev.Action, string(fields)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// WriteStats upserts the aggregate row for one day.
func (db *DB) WriteStats(st engine.Stats) error {
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO daily_stats
		(day, population, deaths, avg_health, avg_food, total_food, total_wood, active_threats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		st.Day, st.Population, st.Deaths, st.AvgHealth, st.AvgFood,
		st.TotalFood, st.TotalWood, st.ActiveThreats,
	)
	return err
}

// eventRow is the scan target for the events table.
type eventRow struct {
	Tick       uint64 `db:"tick"`
	Day        int    `db:"day"`
	Hour       int    `db:"hour"`
	Source     string `db:"source"`
	Action     string `db:"action"`
	FieldsJSON string `db:"fields_json"`
}

func (r eventRow) event() engine.Event {
	ev := engine.Event{
		Tick:   r.Tick,
		Day:    r.Day,
		Hour:   r.Hour,
		Source: r.Source,
		Action: r.Action,
	}
	if r.FieldsJSON != "" && r.FieldsJSON != "{}" {
		json.Unmarshal([]byte(r.FieldsJSON), &ev.Fields)
	}
	return ev
}

// RecentEvents returns the most recent events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		"SELECT tick, day, hour, source, action, fields_json FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	out := make([]engine.Event, len(rows))
	for i, r := range rows {
		out[i] = r.event()
	}
	return out, nil
}

// EventsForDay returns every event of one simulated day in order.
func (db *DB) EventsForDay(day int) ([]engine.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		"SELECT tick, day, hour, source, action, fields_json FROM events WHERE day = ? ORDER BY id",
		day,
	)
	if err != nil {
		return nil, err
	}
	out := make([]engine.Event, len(rows))
	for i, r := range rows {
		out[i] = r.event()
	}
	return out, nil
}

// StatsForDay returns the aggregate row for one day.
func (db *DB) StatsForDay(day int) (engine.Stats, error) {
	var st engine.Stats
	err := db.conn.QueryRowx(
		"SELECT day, population, deaths, avg_health, avg_food, total_food, total_wood, active_threats FROM daily_stats WHERE day = ?",
		day,
	).Scan(&st.Day, &st.Population, &st.Deaths, &st.AvgHealth, &st.AvgFood,
		&st.TotalFood, &st.TotalWood, &st.ActiveThreats)
	return st, err
}
