// Package dberr maps database errors to short, stable codes so per-row
// failures can be logged and summarized consistently.
//
// # Error Codes Reference
//
//	DB001 - Duplicate key: A record with this key already exists
//	        SQLSTATE 23505, patterns "duplicate key"
//
//	DB002 - Unique constraint: This value must be unique but already exists
//	        Patterns "unique constraint", "violates unique"
//
//	DB003 - Foreign key: Referenced record does not exist
//	        SQLSTATE 23503, patterns "foreign key constraint", "violates foreign key"
//	        Action: Copy parent tables first
//
//	DB004 - Connection refused: Unable to connect to database
//	        Patterns "connection refused"
//
//	DB005 - Connection reset: Database connection was interrupted
//	        Patterns "connection reset"
//
//	DB006 - Timeout: Operation timed out
//	        SQLSTATE 57014, patterns "timeout", "context deadline exceeded"
//
//	DB007 - Deadlock: Database was busy with conflicting operations
//	        SQLSTATE 40P01, patterns "deadlock"
//
//	DB008 - Not null: A required column was empty
//	        SQLSTATE 23502
//
//	DB009 - Invalid value: A value did not fit the column type or length
//	        SQLSTATE class 22
//
//	DB010 - Schema mismatch: Table or column missing on the destination
//	        SQLSTATE 42P01, 42703
//
//	DB011 - Cancelled: The run was interrupted
//	        Patterns "context canceled"
//
//	ERR000 - Unknown error
//
// SQLSTATE matches on a *pgconn.PgError take precedence over text patterns.
// Patterns are matched case-insensitively; the first match wins.
package dberr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Message describes a classified error.
type Message struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Stable code for logs and summaries
}

var (
	duplicateKey = Message{Message: "A record with this key already exists", Action: "Check the conflict column", Code: "DB001"}
	uniqueValue  = Message{Message: "This value must be unique but already exists", Action: "Check for duplicate values in the source", Code: "DB002"}
	foreignKey   = Message{Message: "Referenced record does not exist", Action: "Copy parent tables first", Code: "DB003"}
	connRefused  = Message{Message: "Unable to connect to database", Action: "Check host, port and credentials", Code: "DB004"}
	connReset    = Message{Message: "Database connection was interrupted", Action: "Re-run; upserts are idempotent", Code: "DB005"}
	timedOut     = Message{Message: "Operation timed out", Action: "Raise the timeout or re-run", Code: "DB006"}
	deadlock     = Message{Message: "Database was busy with conflicting operations", Action: "Re-run; upserts are idempotent", Code: "DB007"}
	notNull      = Message{Message: "A required column was empty", Action: "Fill the column in the source", Code: "DB008"}
	invalidValue = Message{Message: "A value did not fit the column type or length", Action: "Check the source value", Code: "DB009"}
	schemaDiff   = Message{Message: "Table or column missing on the destination", Action: "Apply pending migrations locally", Code: "DB010"}
	cancelled    = Message{Message: "The run was interrupted", Action: "Re-run when ready", Code: "DB011"}
)

// defaultMessage is returned when nothing matches.
var defaultMessage = Message{
	Message: "An unexpected database error occurred",
	Action:  "Check the logged error",
	Code:    "ERR000",
}

var sqlStates = map[string]Message{
	"23505": duplicateKey,
	"23503": foreignKey,
	"23502": notNull,
	"57014": timedOut,
	"40P01": deadlock,
	"42P01": schemaDiff,
	"42703": schemaDiff,
}

type errorPattern struct {
	pattern string
	msg     Message
}

// Order matters: more specific patterns first.
var errorPatterns = []errorPattern{
	{"duplicate key", duplicateKey},
	{"unique constraint", uniqueValue},
	{"violates unique", uniqueValue},
	{"foreign key constraint", foreignKey},
	{"violates foreign key", foreignKey},
	{"connection refused", connRefused},
	{"connection reset", connReset},
	{"context deadline exceeded", timedOut},
	{"timeout", timedOut},
	{"deadlock", deadlock},
	{"context canceled", cancelled},
}

// Map classifies err. A nil error yields the zero Message.
func Map(err error) Message {
	if err == nil {
		return Message{}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := sqlStates[pgErr.Code]; ok {
			return msg
		}
		if strings.HasPrefix(pgErr.Code, "22") {
			return invalidValue
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// Code is shorthand for Map(err).Code.
func Code(err error) string {
	return Map(err).Code
}

// Format renders err as "Message (Code: XXX). Action".
func Format(err error) string {
	msg := Map(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// Detail returns the most specific text available for err: the server's
// detail line for a PgError, otherwise err.Error().
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Sprintf("%s (%s)", pgErr.Detail, pgErr.SQLState())
	}
	return err.Error()
}
