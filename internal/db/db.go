package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS participants (
            id SERIAL PRIMARY KEY,
            display_name TEXT NOT NULL,
            role TEXT NOT NULL CHECK (role IN ('student', 'job_giver', 'mentor')),
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS job_giver_profiles (
            participant_id INT PRIMARY KEY REFERENCES participants(id) ON DELETE CASCADE,
            company_name TEXT
        );`,
		// user1_id < user2_id is kept by the repository, so the unique
		// constraint covers the unordered pair in both orientations.
		`CREATE TABLE IF NOT EXISTS conversations (
            id SERIAL PRIMARY KEY,
            user1_id INT NOT NULL REFERENCES participants(id),
            user2_id INT NOT NULL REFERENCES participants(id),
            created_at TIMESTAMPTZ DEFAULT NOW(),
            UNIQUE(user1_id, user2_id),
            CHECK (user1_id < user2_id)
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            conversation_id INT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
            sender_id INT NOT NULL REFERENCES participants(id),
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_order
            ON messages (conversation_id, created_at, id);`,
		`CREATE TABLE IF NOT EXISTS interview_requests (
            id SERIAL PRIMARY KEY,
            job_giver_id INT NOT NULL REFERENCES participants(id),
            student_id INT NOT NULL REFERENCES participants(id),
            message TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		// At most one pending request per (job_giver, student) pair.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_interview_requests_one_pending
            ON interview_requests (job_giver_id, student_id) WHERE status = 'pending';`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
