package utils

import (
	"testing"
	"time"
)

func TestConvertToCount(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"-1", 0, true},
		{"4x", 0, true},
		{"", 0, true},
		{"1.5", 0, true},
	}
	for _, tt := range tests {
		got, err := ConvertToCount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ConvertToCount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ConvertToCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestConvertDateTimeExactLayout(t *testing.T) {
	got, err := ConvertDateTime("2024-01-01 13:04:05", DateTimeLayout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 1, 1, 13, 4, 5, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := ConvertDateTime("2024-01-01", DateTimeLayout); err == nil {
		t.Error("expected date-only value to be rejected by the full layout")
	}
	if _, err := ConvertDateTime("2024-01-01 13:04:05", DateLayout); err == nil {
		t.Error("expected full timestamp to be rejected by the date layout")
	}
	if _, err := ConvertDateTime("2024/01/01", DateLayout); err == nil {
		t.Error("expected slash-separated date to be rejected")
	}
}

func TestToInterfaces(t *testing.T) {
	out := ToInterfaces([]string{"a", "b"})
	if len(out) != 2 || out[0] != "a" || out[1] != "b" {
		t.Errorf("unexpected result %v", out)
	}
}
