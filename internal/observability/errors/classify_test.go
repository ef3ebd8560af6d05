package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/target/mmk-queue-monitor/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "app error", err: fmt.Errorf("get: %w", apperrors.NotFound("Job")), want: "not_found"},
		{name: "deadline", err: fmt.Errorf("search: %w", context.DeadlineExceeded), want: "timeout"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "driver error", err: fmt.Errorf("count: %w", &pgconn.PgError{Code: "42P01"}), want: "pgconn_pgerror"},
		{name: "plain", err: errors.New("boom"), want: "errors_errorstring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
