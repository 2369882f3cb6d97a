package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func TestCheck(t *testing.T) {
	down := errors.New("conn refused")

	tests := []struct {
		name           string
		index, records error
		want           Status
		wantIndex      CheckResult
		wantRecords    CheckResult
	}{
		{"all healthy", nil, nil, Healthy, CheckOK, CheckOK},
		{"index down", down, nil, Degraded, CheckError, CheckOK},
		{"records down", nil, down, Degraded, CheckOK, CheckError},
		{"all down", down, down, Unhealthy, CheckError, CheckError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&mockPinger{err: tt.index}, &mockPinger{err: tt.records}).Check(context.Background())
			if r.Status != tt.want {
				t.Errorf("status = %q, want %q", r.Status, tt.want)
			}
			if r.Checks[ComponentIndex] != tt.wantIndex || r.Checks[ComponentRecords] != tt.wantRecords {
				t.Errorf("checks = %v", r.Checks)
			}
			if r.OK() != (tt.want == Healthy) {
				t.Errorf("OK() = %v", r.OK())
			}
		})
	}
}
