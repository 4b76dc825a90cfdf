package appointment

import "testing"

func TestConvert12To24(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"02:30 PM", "14:30", false},
		{"09:05 AM", "09:05", false},
		{"12:00 PM", "12:00", false},
		{"12:15 AM", "00:15", false},
		{"11:59 PM", "23:59", false},
		{"14:30", "", true},
		{"2:30", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := Convert12To24(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Convert12To24(%q): expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Convert12To24(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Convert12To24(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCombineDateTime(t *testing.T) {
	got, err := CombineDateTime("2024-06-01", "02:30 PM")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2024-06-01T14:30:00" {
		t.Errorf("got %q, want 2024-06-01T14:30:00", got)
	}
}

func TestCombineDateTime_Midnight(t *testing.T) {
	got, err := CombineDateTime("2024-06-01", "12:00 AM")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2024-06-01T00:00:00" {
		t.Errorf("got %q, want 2024-06-01T00:00:00", got)
	}
}

func TestCombineDateTime_BadInputs(t *testing.T) {
	if _, err := CombineDateTime("01-06-2024", "02:30 PM"); err != ErrBadDate {
		t.Errorf("bad date: err = %v, want ErrBadDate", err)
	}
	if _, err := CombineDateTime("2024-06-01", "25:00 XX"); err != ErrBadClock {
		t.Errorf("bad clock: err = %v, want ErrBadClock", err)
	}
}
