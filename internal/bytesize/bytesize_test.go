package bytesize

import (
	"math"
	"testing"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ByteSize
		wantErr bool
	}{
		{"plain zero", "0", 0, false},
		{"plain chunk", "4096", 4096, false},
		{"bytes suffix", "1024B", 1024, false},

		{"kibibytes", "4KiB", 4 * KiB, false},
		{"kibibytes short", "4Ki", 4 * KiB, false},
		{"mebibytes", "1MiB", MiB, false},
		{"gibibytes lowercase", "2gi", 2 * GiB, false},
		{"tebibytes", "1TiB", TiB, false},

		{"kilobytes", "64KB", 64 * KB, false},
		{"megabytes", "100M", 100 * MB, false},
		{"gigabytes", "1GB", GB, false},

		{"space between", "1 Gi", GiB, false},
		{"surrounding space", "  512Ki  ", 512 * KiB, false},
		{"float", "1.5Mi", ByteSize(1.5 * float64(MiB)), false},

		{"empty", "", 0, true},
		{"whitespace only", "   ", 0, true},
		{"unknown unit", "1Xi", 0, true},
		{"negative", "-1Gi", 0, true},
		{"no number", "Gi", 0, true},
		{"overflow", "18446744073709551615Ki", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseByteSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseByteSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestByteSize_TextRoundTrip(t *testing.T) {
	for _, size := range []ByteSize{0, 1, 1000, 4 * KiB, 4097, MiB, 3 * GiB, 5 * TiB} {
		text, err := size.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", size, err)
		}
		var back ByteSize
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != size {
			t.Errorf("round trip of %d gave %d (text %q)", size, back, text)
		}
	}
}

func TestByteSize_UnmarshalTextError(t *testing.T) {
	var b ByteSize = 7
	if err := b.UnmarshalText([]byte("lots")); err == nil {
		t.Fatal("expected error")
	}
	if b != 7 {
		t.Errorf("value changed on error: %d", b)
	}
}

func TestByteSize_String(t *testing.T) {
	tests := []struct {
		input ByteSize
		want  string
	}{
		{0, "0B"},
		{512, "512B"},
		{4 * KiB, "4KiB"},
		{1536, "1.50KiB"},
		{MiB, "1MiB"},
		{GiB + GiB/2, "1.50GiB"},
		{2 * TiB, "2TiB"},
	}

	for _, tt := range tests {
		if got := tt.input.String(); got != tt.want {
			t.Errorf("ByteSize(%d).String() = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestByteSize_Conversions(t *testing.T) {
	if got := (4 * KiB).Int(); got != 4096 {
		t.Errorf("Int() = %d", got)
	}
	if got := (4 * KiB).Int64(); got != 4096 {
		t.Errorf("Int64() = %d", got)
	}
	if got := ByteSize(math.MaxUint64).Int64(); got != math.MaxInt64 {
		t.Errorf("Int64() did not saturate: %d", got)
	}
	if got := (4 * KiB).Uint64(); got != 4096 {
		t.Errorf("Uint64() = %d", got)
	}
}
