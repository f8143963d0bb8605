package models

import "time"

// CycleResult - итоговая запись одного решающего цикла.
type CycleResult struct {
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
	Candidates int       `json:"candidates" db:"candidates"`
	Intents    int       `json:"intents" db:"intents"`
	Executed   int       `json:"executed" db:"executed"`
	Blocked    int       `json:"blocked" db:"blocked"`
	Rebalanced bool      `json:"rebalanced" db:"rebalanced"`
}
