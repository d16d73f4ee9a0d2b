// Package persistence provides SQLite-based world state storage. Containers
// are saved whole as JSON column snapshots; events and run metadata get
// their own tables.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/pantheon/internal/engine"
	"github.com/talgya/pantheon/internal/sim"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS containers (
		name TEXT PRIMARY KEY,
		state TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// faithSnapshot carries the faith columns plus the draw state that the
// container keeps private.
type faithSnapshot struct {
	*sim.Faith
	Draw []uint32 `json:"draw"`
}

type combatSnapshot struct {
	*sim.Combat
	Draw []uint32 `json:"draw"`
}

type endGameSnapshot struct {
	*sim.EndGame
	Draw []uint32 `json:"draw"`
}

// SaveWorldState performs a full save of all containers, pending events and
// run metadata in one transaction. It holds the world lock for the duration,
// so a concurrent tick loop cannot mutate columns mid-snapshot.
func (db *DB) SaveWorldState(w *engine.World) error {
	w.Lock()
	defer w.Unlock()

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	snapshots := map[string]any{
		"population":  w.Pop,
		"faith":       faithSnapshot{w.Faith, w.Faith.DrawState()},
		"combat":      combatSnapshot{w.Combat, w.Combat.DrawState()},
		"economy":     w.Econ,
		"environment": w.Env,
		"movement":    w.Move,
		"divine":      w.Divine,
		"psyche":      w.Psyche,
		"tech":        w.Tech,
		"endgame":     endGameSnapshot{w.End, w.End.DrawState()},
	}

	for name, snap := range snapshots {
		blob, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", name, err)
		}
		_, err = tx.Exec(
			"INSERT OR REPLACE INTO containers (name, state) VALUES (?, ?)",
			name, string(blob),
		)
		if err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
	}

	for _, e := range w.Events {
		_, err := tx.Exec(
			"INSERT INTO events (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return fmt.Errorf("save event: %w", err)
		}
	}

	meta := map[string]string{
		"world_id":  w.ID.String(),
		"last_tick": fmt.Sprintf("%d", w.CurrentTick()),
	}
	for key, value := range meta {
		_, err := tx.Exec(
			"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
			key, value,
		)
		if err != nil {
			return fmt.Errorf("save meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("world state saved", "tick", w.CurrentTick(), "events", len(w.Events))
	w.Events = w.Events[:0]
	return nil
}

// LoadWorldState restores all containers into w from the last save. Returns
// false with no error when the database holds no snapshot yet.
func (db *DB) LoadWorldState(w *engine.World) (bool, error) {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM containers"); err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}

	w.Lock()
	defer w.Unlock()

	faith := faithSnapshot{Faith: w.Faith}
	combat := combatSnapshot{Combat: w.Combat}
	endgame := endGameSnapshot{EndGame: w.End}
	targets := map[string]any{
		"population":  w.Pop,
		"faith":       &faith,
		"combat":      &combat,
		"economy":     w.Econ,
		"environment": w.Env,
		"movement":    w.Move,
		"divine":      w.Divine,
		"psyche":      w.Psyche,
		"tech":        w.Tech,
		"endgame":     &endgame,
	}

	for name, target := range targets {
		var blob string
		if err := db.conn.Get(&blob, "SELECT state FROM containers WHERE name = ?", name); err != nil {
			return false, fmt.Errorf("load %s: %w", name, err)
		}
		if err := json.Unmarshal([]byte(blob), target); err != nil {
			return false, fmt.Errorf("unmarshal %s: %w", name, err)
		}
	}
	w.Faith.RestoreDrawState(faith.Draw)
	w.Combat.RestoreDrawState(combat.Draw)
	w.End.RestoreDrawState(endgame.Draw)

	if err := db.verifyCounts(w); err != nil {
		return false, err
	}

	tickStr, err := db.GetMeta("last_tick")
	if err == nil {
		tick, perr := strconv.ParseUint(tickStr, 10, 64)
		if perr != nil {
			return false, fmt.Errorf("parse last_tick %q: %w", tickStr, perr)
		}
		w.LastTick = tick
	}

	slog.Info("world state loaded", "tick", w.LastTick)
	return true, nil
}

// verifyCounts rejects snapshots whose column lengths disagree with the
// world the caller allocated: the containers' fixed counts cannot change
// after construction.
func (db *DB) verifyCounts(w *engine.World) error {
	checks := []struct {
		name string
		want int
		got  int
	}{
		{"population", w.Pop.Count(), len(w.Pop.Population)},
		{"faith", w.Faith.Count(), len(w.Faith.FaithLevel)},
		{"combat", w.Combat.Count(), len(w.Combat.HP)},
		{"economy", w.Econ.Count(), len(w.Econ.Resource)},
		{"environment", w.Env.Count(), len(w.Env.Temperature)},
		{"movement", w.Move.Count(), len(w.Move.PosX)},
		{"divine", w.Divine.Count(), len(w.Divine.Energy)},
		{"psyche", w.Psyche.Count(), len(w.Psyche.Happiness)},
		{"tech", w.Tech.Count(), len(w.Tech.TechLevel)},
		{"endgame", w.End.Count(), len(w.End.Stability)},
	}
	for _, c := range checks {
		if c.want != c.got {
			return fmt.Errorf("snapshot %s has %d entries, world expects %d", c.name, c.got, c.want)
		}
	}
	return nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// RecentEvents returns the most recent N events.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
