package types

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestAddress_IsZero(t *testing.T) {
	var zero Address
	if !zero.IsZero() {
		t.Error("zero-value Address should be zero")
	}

	nonZero := Address{0x01}
	if nonZero.IsZero() {
		t.Error("non-zero Address should not be zero")
	}
}

func TestAddress_String(t *testing.T) {
	a := Address{0: 0xab, 31: 0xcd}
	s := a.String()
	if len(s) != 66 {
		t.Errorf("String() length = %d, want 66", len(s))
	}
	if !strings.HasPrefix(s, "0xab") || !strings.HasSuffix(s, "cd") {
		t.Errorf("String() = %s", s)
	}
}

func TestAddress_ShortString(t *testing.T) {
	tests := []struct {
		addr Address
		want string
	}{
		{AddressZero, "0x0"},
		{AddressOne, "0x1"},
		{AddressFour, "0x4"},
		{Address{31: 0x0f}, "0xf"},
		{Address{31: 0x10}, "0x" + strings.Repeat("0", 62) + "10"},
		{Address{0: 0x01, 31: 0x01}, "0x01" + strings.Repeat("0", 60) + "01"},
	}

	for _, tt := range tests {
		if got := tt.addr.ShortString(); got != tt.want {
			t.Errorf("ShortString(%x) = %s, want %s", tt.addr, got, tt.want)
		}
	}
}

func TestAddress_Bytes(t *testing.T) {
	a := Address{0x01, 0x02, 0x03}
	b := a.Bytes()

	if len(b) != AddressSize {
		t.Errorf("Bytes() length = %d, want %d", len(b), AddressSize)
	}
	if b[0] != 0x01 || b[1] != 0x02 || b[2] != 0x03 {
		t.Errorf("Bytes() content mismatch")
	}

	// Ensure it's a copy
	b[0] = 0xFF
	if a[0] == 0xFF {
		t.Error("Bytes() should return a copy, not a reference")
	}
}

func TestAddressFromBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr bool
	}{
		{"exact", make([]byte, 32), false},
		{"empty", nil, true},
		{"short", make([]byte, 31), true},
		{"long", make([]byte, 33), true},
		{"legacy 20-byte", make([]byte, 20), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddressFromBytes(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedAddressLength) {
					t.Errorf("error = %v, want ErrMalformedAddressLength", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseAddress(t *testing.T) {
	long := "0x" + strings.Repeat("ab", 32)

	tests := []struct {
		name    string
		input   string
		want    Address
		wantErr bool
	}{
		{"short special", "0x1", AddressOne, false},
		{"no prefix", "1", AddressOne, false},
		{"odd length", "0x123", Address{30: 0x01, 31: 0x23}, false},
		{"long form", long, MustParseAddress(long), false},
		{"upper prefix", "0X4", AddressFour, false},
		{"too long", "0x" + strings.Repeat("a", 66), Address{}, true},
		{"invalid hex", "0xzz", Address{}, true},
		{"empty", "", Address{}, true},
		{"bare prefix", "0x", Address{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAddress(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseAddress(%q) should have returned error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAddress(%q) unexpected error: %v", tt.input, err)
			}
			if a != tt.want {
				t.Errorf("ParseAddress(%q) = %s, want %s", tt.input, a, tt.want)
			}
		})
	}
}

func TestAddress_StringRoundtrip(t *testing.T) {
	var a Address
	for i := range a {
		a[i] = byte(i * 7)
	}
	parsed, err := ParseAddress(a.String())
	if err != nil {
		t.Fatalf("ParseAddress() error: %v", err)
	}
	if parsed != a {
		t.Errorf("roundtrip mismatch: got %s, want %s", parsed, a)
	}
}

func TestAddress_JSON(t *testing.T) {
	a := Address{0: 0x12, 31: 0x34}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.HasPrefix(string(data), `"0x12`) {
		t.Errorf("JSON = %s", data)
	}

	var back Address
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if back != a {
		t.Errorf("JSON roundtrip = %s, want %s", back, a)
	}

	var short Address
	if err := json.Unmarshal([]byte(`"0x3"`), &short); err != nil {
		t.Fatalf("Unmarshal(short) error: %v", err)
	}
	if short != AddressThree {
		t.Errorf("short JSON = %s, want 0x3", short.ShortString())
	}
}
