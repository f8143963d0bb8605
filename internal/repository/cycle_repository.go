package repository

import (
	"database/sql"
	"time"

	"fundingarb/internal/models"
)

// CycleRepository - работа с таблицей cycles
//
// Журнал решающих циклов для дашборда и постанализа воронки
// candidates → intents → executed.
type CycleRepository struct {
	db *sql.DB
}

// NewCycleRepository создает новый экземпляр репозитория
func NewCycleRepository(db *sql.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

// Create записывает итог цикла
func (r *CycleRepository) Create(c *models.CycleResult) error {
	query := `
		INSERT INTO cycles (timestamp, candidates, intents, executed, blocked, rebalanced)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}

	_, err := r.db.Exec(
		query,
		c.Timestamp,
		c.Candidates,
		c.Intents,
		c.Executed,
		c.Blocked,
		c.Rebalanced,
	)
	return err
}

// GetRecent возвращает последние limit циклов, свежие первыми
func (r *CycleRepository) GetRecent(limit int) ([]*models.CycleResult, error) {
	query := `
		SELECT timestamp, candidates, intents, executed, blocked, rebalanced
		FROM cycles
		ORDER BY timestamp DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cycles := []*models.CycleResult{}
	for rows.Next() {
		c := &models.CycleResult{}
		err := rows.Scan(
			&c.Timestamp,
			&c.Candidates,
			&c.Intents,
			&c.Executed,
			&c.Blocked,
			&c.Rebalanced,
		)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cycles, nil
}

// CountSince возвращает количество циклов с указанного момента
func (r *CycleRepository) CountSince(since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM cycles WHERE timestamp >= $1`

	var count int
	err := r.db.QueryRow(query, since).Scan(&count)
	return count, err
}
