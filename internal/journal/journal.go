// internal/journal/journal.go
package journal

import (
	"context"
	"database/sql"
	"time"

	"loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"

	"github.com/google/uuid"
)

// Outcome values stored in the journal.
const (
	OutcomeDecided = "decided"
	OutcomeFailed  = "failed"
)

// Entry is one terminal submission outcome. Identifier digits are stored
// masked; drafts are never written.
type Entry struct {
	PersonType      string
	DocumentMasked  string
	NameLength      int
	RequestedValue  string
	AmountDue       float64
	Outcome         string
	DecisionMessage string
	StatusCode      int
}

// Store writes entries to the loan_submissions table.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "journal"}),
	}
}

// Record inserts entry and returns the generated row id.
func (s *Store) Record(ctx context.Context, entry Entry) (string, error) {
	id := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	var statusCode sql.NullInt64
	if entry.StatusCode > 0 {
		statusCode = sql.NullInt64{Int64: int64(entry.StatusCode), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO loan_submissions (
			id, person_type, document_masked, name_length, requested_value,
			amount_due, outcome, decision_message, status_code, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id,
		entry.PersonType,
		entry.DocumentMasked,
		entry.NameLength,
		entry.RequestedValue,
		entry.AmountDue,
		entry.Outcome,
		entry.DecisionMessage,
		statusCode,
		createdAt,
	)
	if err != nil {
		return "", errors.NewJournalWriteFailedError(err)
	}

	s.logger.Debug("submission journaled", map[string]interface{}{
		"journalId": id,
		"outcome":   entry.Outcome,
	})

	return id, nil
}

// EnsureSchema creates the loan_submissions table when it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS loan_submissions (
			id VARCHAR(36) PRIMARY KEY,
			person_type VARCHAR(2) NOT NULL,
			document_masked VARCHAR(14) NOT NULL,
			name_length INTEGER NOT NULL,
			requested_value VARCHAR(5) NOT NULL,
			amount_due NUMERIC(12, 2) NOT NULL,
			outcome VARCHAR(16) NOT NULL,
			decision_message TEXT,
			status_code INTEGER,
			created_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return errors.NewJournalWriteFailedError(err)
	}
	return nil
}
