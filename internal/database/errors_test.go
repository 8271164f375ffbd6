package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func pqErr(code string) error { return &pq.Error{Code: pq.ErrorCode(code)} }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ErrorClassPermanent},
		{"serialization failure", pqErr("40001"), ErrorClassSerialization},
		{"deadlock", pqErr("40P01"), ErrorClassDeadlock},
		{"lock not available", pqErr("55P03"), ErrorClassTransient},
		{"unique violation", pqErr("23505"), ErrorClassPermanent},
		{"fk violation", pqErr("23503"), ErrorClassPermanent},
		{"no rows", sql.ErrNoRows, ErrorClassPermanent},
		{"wrapped deadlock", fmt.Errorf("tx: %w", pqErr("40P01")), ErrorClassDeadlock},
		{"plain error", errors.New("boom"), ErrorClassPermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		if !IsRetryable(pqErr(code)) {
			t.Errorf("code %s should be retryable", code)
		}
	}
	if IsRetryable(pqErr("23505")) {
		t.Error("unique violation must not be retried")
	}
	if IsRetryable(nil) {
		t.Error("nil is not retryable")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(pqErr("23505")) {
		t.Error("23505 not detected")
	}
	if !IsUniqueViolation(fmt.Errorf("insert order: %w", pqErr("23505"))) {
		t.Error("wrapped 23505 not detected")
	}
	if IsUniqueViolation(pqErr("23503")) || IsUniqueViolation(errors.New("boom")) {
		t.Error("false positive")
	}
}
