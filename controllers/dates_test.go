package controllers

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestEnrollmentRequestDates(t *testing.T) {
	tests := []struct {
		name      string
		req       enrollmentRequest
		wantStart *time.Time
		wantEnd   *time.Time
		wantErr   bool
	}{
		{
			name: "both omitted",
			req:  enrollmentRequest{StudentID: 1},
		},
		{
			name: "empty strings treated as omitted",
			req:  enrollmentRequest{StudentID: 1, StartDate: strPtr(""), EndDate: strPtr("")},
		},
		{
			name:      "start only",
			req:       enrollmentRequest{StudentID: 1, StartDate: strPtr("2026-02-09")},
			wantStart: timePtr(time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:      "both bounds",
			req:       enrollmentRequest{StudentID: 1, StartDate: strPtr("2026-02-09"), EndDate: strPtr("2026-04-30")},
			wantStart: timePtr(time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)),
			wantEnd:   timePtr(time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:    "malformed start",
			req:     enrollmentRequest{StudentID: 1, StartDate: strPtr("02/09/2026")},
			wantErr: true,
		},
		{
			name:    "malformed end",
			req:     enrollmentRequest{StudentID: 1, EndDate: strPtr("2026-13-01")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := tt.req.dates()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("dates() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("dates() error = %v", err)
			}
			if !timesEqual(start, tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !timesEqual(end, tt.wantEnd) {
				t.Errorf("end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
