package models

import "testing"

func TestWeekdaysValue(t *testing.T) {
	tests := []struct {
		name     string
		days     Weekdays
		expected string
	}{
		{
			name:     "two days",
			days:     Weekdays{"Mon", "Wed"},
			expected: "Mon,Wed,",
		},
		{
			name:     "single day",
			days:     Weekdays{"Sun"},
			expected: "Sun,",
		},
		{
			name:     "empty",
			days:     Weekdays{},
			expected: "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			v, err := tc.days.Value()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.(string) != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, v)
			}
		})
	}
}

func TestWeekdaysScan(t *testing.T) {
	tests := []struct {
		name     string
		column   interface{}
		expected Weekdays
	}{
		{
			name:     "trailing comma text",
			column:   []byte("Mon,Wed,Fri,"),
			expected: Weekdays{"Mon", "Wed", "Fri"},
		},
		{
			name:     "plain string",
			column:   "Tue,",
			expected: Weekdays{"Tue"},
		},
		{
			name:     "empty column",
			column:   "",
			expected: Weekdays{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var w Weekdays
			if err := w.Scan(tc.column); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(w) != len(tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, w)
			}
			for i := range w {
				if w[i] != tc.expected[i] {
					t.Fatalf("expected %v, got %v", tc.expected, w)
				}
			}
		})
	}
}

func TestWeekdaysScanNil(t *testing.T) {
	w := Weekdays{"Mon"}
	if err := w.Scan(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != nil {
		t.Fatalf("expected nil weekdays, got %v", w)
	}
}

func TestWeekdaysContains(t *testing.T) {
	w := Weekdays{"Mon", "Wed"}
	if !w.Contains("Wed") {
		t.Fatal("expected Wed to be a meeting day")
	}
	if w.Contains("Thu") {
		t.Fatal("Thu should not be a meeting day")
	}
}

func TestWeekdaysIsValid(t *testing.T) {
	if !(Weekdays{"Sun", "Sat"}).IsValid() {
		t.Fatal("expected valid weekday names")
	}
	if (Weekdays{"Mon", "Funday"}).IsValid() {
		t.Fatal("expected unknown name to be rejected")
	}
}
