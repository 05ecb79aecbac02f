package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatusInMemory(t *testing.T) {
	st, err := NewService(nil).Status(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.OK || st.Storage != "memory" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestStatusReportsPingFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()
	mock.ExpectPing().WillReturnError(errors.New("down"))

	st, err := NewService(sqlDB).Status(context.Background())
	if err == nil {
		t.Fatalf("expected ping error")
	}
	if st.OK || st.Storage != "postgres" {
		t.Fatalf("unexpected status %+v", st)
	}
}
