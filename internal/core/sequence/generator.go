// Package sequence provides domain contracts for registration, medical record
// and queue numbering. Implementations live in infrastructure layer.
package sequence

import (
	"context"
	"time"
)

// Generator issues the next integer for a scope key.
// This is the domain contract - the PostgreSQL implementation lives in
// infrastructure and serializes concurrent callers with a row lock on a
// dedicated counter row.
type Generator interface {
	// Next returns the next strictly-increasing integer for scopeKey,
	// starting at 1 for a scope that has never been queried.
	//
	// Must run inside the caller's transaction (joined via context) so that
	// a rolled-back registration never spends a number. For any scope the
	// committed results form a contiguous 1, 2, 3, ... with no duplicates.
	//
	// The scope key is opaque: callers encode every dimension of uniqueness
	// (date, category, clinic code) into it using one clock read per request.
	Next(ctx context.Context, scopeKey string) (int64, error)
}

// Config describes one identifier family.
type Config struct {
	// Prefix identifies the family (RJ, RI, RM, OP)
	Prefix string

	// Width is the zero-padded sequence width
	Width int
}

// Identifier families issued by the front desk. Formats are parsed back by
// other parts of the system, so they are fixed.
var (
	// OutpatientRegistration: RJ-YYYYMMDD-NNNN, resets daily, global scope.
	OutpatientRegistration = Config{Prefix: "RJ", Width: 4}

	// InpatientRegistration: RI-YYYYMMDD-NNNN, resets daily, global scope.
	InpatientRegistration = Config{Prefix: "RI", Width: 4}

	// MedicalRecord: RM-YYYYMMDD-NNNN, resets daily, global scope.
	MedicalRecord = Config{Prefix: "RM", Width: 4}

	// OutpatientQueue: OP-YYYYMMDD-CODE-NNN, resets daily per polyclinic.
	OutpatientQueue = Config{Prefix: "OP", Width: 3}
)

// DateStamp formats t as the YYYYMMDD stamp used in scope keys and
// identifiers. Callers read the clock once per request and pass the result
// everywhere, so a registration straddling midnight lands in one day.
func DateStamp(t time.Time) string {
	return t.Format("20060102")
}

// ScopeKey builds the counter scope key for this family and day.
// subscope is empty for global families, the polyclinic code for queues.
func (c Config) ScopeKey(dateStamp, subscope string) string {
	key := c.Prefix + ":" + dateStamp
	if subscope != "" {
		key += ":" + subscope
	}
	return key
}

// Issue draws the next number for the family/day/subscope and formats it.
// Returns both the formatted identifier and the raw integer.
func Issue(ctx context.Context, g Generator, cfg Config, dateStamp, subscope string) (string, int64, error) {
	seq, err := g.Next(ctx, cfg.ScopeKey(dateStamp, subscope))
	if err != nil {
		return "", 0, err
	}

	formatted, err := Format(cfg.Prefix, dateStamp, subscope, seq, cfg.Width)
	if err != nil {
		return "", 0, err
	}

	return formatted, seq, nil
}
