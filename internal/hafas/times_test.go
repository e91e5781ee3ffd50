package hafas

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "plain six digit time",
			date:  "20250602",
			value: "081500",
			want:  time.Date(2025, 6, 2, 8, 15, 0, 0, time.UTC),
		},
		{
			name:  "short value padded with zeros",
			date:  "20250602",
			value: "0815",
			want:  time.Date(2025, 6, 2, 8, 15, 0, 0, time.UTC),
		},
		{
			name:  "next day offset",
			date:  "20250602",
			value: "1d012300",
			want:  time.Date(2025, 6, 3, 1, 23, 0, 0, time.UTC),
		},
		{
			name:  "two day offset",
			date:  "20250602",
			value: "2d060000",
			want:  time.Date(2025, 6, 4, 6, 0, 0, 0, time.UTC),
		},
		{name: "empty value", date: "20250602", value: "", wantErr: true},
		{name: "empty date", date: "", value: "081500", wantErr: true},
		{name: "garbage offset", date: "20250602", value: "xd081500", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTime(tt.date, tt.value, time.UTC)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseTime = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseGisDuration(t *testing.T) {
	tests := []struct {
		value string
		want  int
		ok    bool
	}{
		{"000500", 5, true},
		{"011500", 75, true},
		{"0012", 12, true},
		{"", 0, false},
		{"xx", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseGisDuration(tt.value)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseGisDuration(%q) = (%d, %v), want (%d, %v)", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}
