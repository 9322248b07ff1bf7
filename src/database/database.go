package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/fxjournal/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateTradesTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		auth_provider TEXT DEFAULT 'local',
		is_email_verified BOOLEAN DEFAULT FALSE,
		email_verification_token TEXT,
		email_verification_token_expires_at TIMESTAMP,
		password_reset_token TEXT,
		password_reset_token_expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		date TEXT,
		entry_time TEXT,
		exit_time TEXT,
		instrument TEXT,
		direction TEXT,
		timeframe TEXT,
		session TEXT,
		killzone TEXT,
		weekly_bias TEXT,
		daily_bias TEXT,
		draw_on_liquidity TEXT,
		is_premium_discount BOOLEAN,
		setup_type TEXT,
		pd_arrays TEXT,
		confluences TEXT,
		entry_price REAL,
		stop_loss REAL,
		take_profit REAL,
		exit_price REAL,
		lot_size REAL,
		risk_per_trade REAL,
		pnl REAL,
		rr REAL,
		r_multiple REAL,
		outcome TEXT,
		followed_htf_bias BOOLEAN,
		correct_session BOOLEAN,
		valid_pd_array BOOLEAN,
		risk_respected BOOLEAN,
		no_early_exit BOOLEAN,
		mae REAL,
		mfe REAL,
		htf_level_used TEXT,
		ltf_confirmation_quality TEXT,
		emotions TEXT,
		lessons TEXT,
		notes TEXT,
		tags TEXT,
		hash_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id),
		UNIQUE(user_id, hash_id)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateTradesTable adds the review columns introduced after the first
// release to journals created before them.
func migrateTradesTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='trades'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			return // table will be created with the full schema
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'trades' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'trades' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(trades)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'trades'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'trades': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'trades'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'trades': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'trades'", "error", err)
		}
		return
	}

	for _, col := range []struct{ name, ddl string }{
		{"emotions", "ALTER TABLE trades ADD COLUMN emotions TEXT"},
		{"lessons", "ALTER TABLE trades ADD COLUMN lessons TEXT"},
		{"mae", "ALTER TABLE trades ADD COLUMN mae REAL"},
		{"mfe", "ALTER TABLE trades ADD COLUMN mfe REAL"},
	} {
		if columnExists[col.name] {
			continue
		}
		if _, err := DB.Exec(col.ddl); err != nil {
			if logger.L != nil {
				logger.L.Error("Error adding column to 'trades' table", "column", col.name, "error", err)
			}
		} else if logger.L != nil {
			logger.L.Info("Added column to 'trades' table", "column", col.name)
		}
	}
}
