package dberr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMap_Patterns(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("ERROR: duplicate key value violates unique constraint"), "DB001"},
		{errors.New("violates unique index"), "DB002"},
		{errors.New("insert violates foreign key constraint \"fk\""), "DB003"},
		{errors.New("dial tcp 10.0.0.1:5432: connect: connection refused"), "DB004"},
		{errors.New("read: connection reset by peer"), "DB005"},
		{errors.New("i/o timeout"), "DB006"},
		{context.DeadlineExceeded, "DB006"},
		{errors.New("deadlock detected"), "DB007"},
		{context.Canceled, "DB011"},
		{errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		if got := Code(tt.err); got != tt.want {
			t.Errorf("Code(%q) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestMap_SQLState(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"23505", "DB001"},
		{"23503", "DB003"},
		{"23502", "DB008"},
		{"22001", "DB009"},
		{"22P02", "DB009"},
		{"42P01", "DB010"},
		{"42703", "DB010"},
		{"40P01", "DB007"},
	}

	for _, tt := range tests {
		err := fmt.Errorf("upsert: %w", &pgconn.PgError{Code: tt.code, Message: "x"})
		if got := Code(err); got != tt.want {
			t.Errorf("Code(SQLSTATE %s) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestMap_Nil(t *testing.T) {
	if msg := Map(nil); msg != (Message{}) {
		t.Errorf("Map(nil) = %+v, want zero", msg)
	}
	if Format(nil) != "" {
		t.Error("Format(nil) should be empty")
	}
	if Detail(nil) != "" {
		t.Error("Detail(nil) should be empty")
	}
}

func TestFormat(t *testing.T) {
	got := Format(errors.New("deadlock detected"))
	if !strings.Contains(got, "(Code: DB007)") {
		t.Errorf("Format() = %q, want code DB007", got)
	}
}

func TestDetail(t *testing.T) {
	err := &pgconn.PgError{Code: "23503", Message: "fk", Detail: "Key (ProvinceId)=(x) is not present"}
	got := Detail(fmt.Errorf("wrap: %w", err))
	if !strings.Contains(got, "ProvinceId") || !strings.Contains(got, "23503") {
		t.Errorf("Detail() = %q", got)
	}
	if got := Detail(errors.New("plain")); got != "plain" {
		t.Errorf("Detail(plain) = %q", got)
	}
}
