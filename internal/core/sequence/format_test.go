package sequence

import (
	"context"
	"fmt"
	"testing"
)

func TestFormat_WireFormats(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		subscope string
		seq      int64
		want     string
	}{
		{"outpatient registration", OutpatientRegistration, "", 1, "RJ-20260113-0001"},
		{"inpatient registration", InpatientRegistration, "", 42, "RI-20260113-0042"},
		{"medical record", MedicalRecord, "", 9999, "RM-20260113-9999"},
		{"queue number", OutpatientQueue, "UMUM", 7, "OP-20260113-UMUM-007"},
		{"queue number with digits in code", OutpatientQueue, "GIGI2", 999, "OP-20260113-GIGI2-999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.cfg.Prefix, "20260113", tt.subscope, tt.seq, tt.cfg.Width)
			if err != nil {
				t.Fatalf("Format failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Format mismatch\nwant: %s\ngot:  %s", tt.want, got)
			}
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	for _, width := range []int{3, 4} {
		max := int64(1)
		for i := 0; i < width; i++ {
			max *= 10
		}
		for _, seq := range []int64{0, 1, 9, max/2 + 1, max - 1} {
			formatted, err := Format("RJ", "20260113", "", seq, width)
			if err != nil {
				t.Fatalf("Format(%d, width %d) failed: %v", seq, width, err)
			}
			parsed, err := ParseSequence(formatted)
			if err != nil {
				t.Fatalf("ParseSequence(%q) failed: %v", formatted, err)
			}
			if parsed != seq {
				t.Errorf("round trip mismatch for width %d: want %d, got %d", width, seq, parsed)
			}
		}
	}
}

func TestFormat_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		stamp    string
		subscope string
		seq      int64
		width    int
	}{
		{"empty prefix", "", "20260113", "", 1, 4},
		{"separator in prefix", "R-J", "20260113", "", 1, 4},
		{"separator in subscope", "OP", "20260113", "UM-UM", 1, 3},
		{"empty date stamp", "RJ", "", "", 1, 4},
		{"zero width", "RJ", "20260113", "", 1, 0},
		{"negative seq", "RJ", "20260113", "", -1, 4},
		{"seq overflows width", "OP", "20260113", "UMUM", 1000, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Format(tt.prefix, tt.stamp, tt.subscope, tt.seq, tt.width); err == nil {
				t.Error("expected error, got none")
			}
		})
	}
}

func TestParseSequence_Invalid(t *testing.T) {
	for _, bad := range []string{"", "RJ", "RJ-20260113", "RJ-20260113-00x1", "RJ-20260113-"} {
		if _, err := ParseSequence(bad); err == nil {
			t.Errorf("ParseSequence(%q): expected error, got none", bad)
		}
	}
}

func TestScopeKey(t *testing.T) {
	if got := OutpatientRegistration.ScopeKey("20260113", ""); got != "RJ:20260113" {
		t.Errorf("unexpected scope key: %s", got)
	}
	if got := OutpatientQueue.ScopeKey("20260113", "UMUM"); got != "OP:20260113:UMUM" {
		t.Errorf("unexpected scope key: %s", got)
	}
}

func TestIssue_FormatsMatchSequence(t *testing.T) {
	gen := &MockGenerator{}
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		formatted, seq, err := Issue(ctx, gen, OutpatientRegistration, "20260113", "")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if seq != int64(i) {
			t.Errorf("expected seq %d, got %d", i, seq)
		}
		want := fmt.Sprintf("RJ-20260113-%04d", i)
		if formatted != want {
			t.Errorf("expected %s, got %s", want, formatted)
		}
	}

	// queue numbers for different clinics are independent scopes
	for _, code := range []string{"UMUM", "GIGI"} {
		formatted, seq, err := Issue(ctx, gen, OutpatientQueue, "20260113", code)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if seq != 1 {
			t.Errorf("expected first number for %s, got %d", code, seq)
		}
		want := fmt.Sprintf("OP-20260113-%s-001", code)
		if formatted != want {
			t.Errorf("expected %s, got %s", want, formatted)
		}
	}
}
