package timegrid

import (
	"errors"
	"testing"
)

func TestToMinutes_ValidTimes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"08:00", 480},
		{"09:30", 570},
		{"12:05", 725},
		{"23:59", 1439},
	}

	for _, c := range cases {
		got, err := ToMinutes(c.in)
		if err != nil {
			t.Errorf("ToMinutes(%q) returned error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ToMinutes(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestToMinutes_RejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "9:00", "09:0", "0900", "24:00", "12:60", "ab:cd", "12-30", "12:3x"} {
		if _, err := ToMinutes(in); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("ToMinutes(%q) error = %v, want ErrInvalidFormat", in, err)
		}
	}
}

func TestToTimeString_PadsAndBounds(t *testing.T) {
	got, err := ToTimeString(570)
	if err != nil {
		t.Fatalf("ToTimeString(570) returned error: %v", err)
	}
	if got != "09:30" {
		t.Errorf("ToTimeString(570) = %q, want %q", got, "09:30")
	}

	got, err = ToTimeString(5)
	if err != nil {
		t.Fatalf("ToTimeString(5) returned error: %v", err)
	}
	if got != "00:05" {
		t.Errorf("ToTimeString(5) = %q, want %q", got, "00:05")
	}

	for _, m := range []int{-1, 1440, 99999} {
		if _, err := ToTimeString(m); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ToTimeString(%d) error = %v, want ErrOutOfRange", m, err)
		}
	}
}

func TestToMinutes_RoundTrips(t *testing.T) {
	for m := 0; m < 1440; m++ {
		s, err := ToTimeString(m)
		if err != nil {
			t.Fatalf("ToTimeString(%d) returned error: %v", m, err)
		}
		back, err := ToMinutes(s)
		if err != nil {
			t.Fatalf("ToMinutes(%q) returned error: %v", s, err)
		}
		if back != m {
			t.Fatalf("round trip %d -> %q -> %d", m, s, back)
		}
	}
}

func TestBucketize_AlignedWindow(t *testing.T) {
	got := Bucketize(480, 600, 30) // 08:00..10:00
	want := []int{480, 510, 540, 570}

	if len(got) != len(want) {
		t.Fatalf("Bucketize(480, 600, 30) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Bucketize(480, 600, 30) = %v, want %v", got, want)
		}
	}
}

func TestBucketize_SnapsToMidnightGrid(t *testing.T) {
	// 08:10 window with a 30-minute step starts at 08:30, not 08:10.
	got := Bucketize(490, 600, 30)
	want := []int{510, 540, 570}

	if len(got) != len(want) {
		t.Fatalf("Bucketize(490, 600, 30) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Bucketize(490, 600, 30) = %v, want %v", got, want)
		}
	}
}

func TestBucketize_ExcludesEnd(t *testing.T) {
	got := Bucketize(480, 510, 30)
	if len(got) != 1 || got[0] != 480 {
		t.Fatalf("Bucketize(480, 510, 30) = %v, want [480]", got)
	}
}

func TestBucketize_DegenerateInputs(t *testing.T) {
	if got := Bucketize(600, 480, 30); got != nil {
		t.Errorf("Bucketize with start >= end = %v, want nil", got)
	}
	if got := Bucketize(480, 480, 30); got != nil {
		t.Errorf("Bucketize with empty window = %v, want nil", got)
	}
	if got := Bucketize(480, 600, 0); got != nil {
		t.Errorf("Bucketize with zero step = %v, want nil", got)
	}
	if got := Bucketize(480, 600, -30); got != nil {
		t.Errorf("Bucketize with negative step = %v, want nil", got)
	}
}
