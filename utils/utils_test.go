package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"
	"unsafe"
)

// ============================================================================
// ZERO-ALLOCATION TYPE CONVERSION TESTS
// ============================================================================

func TestB2s(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "Empty slice",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "Single character",
			input:    []byte{'a'},
			expected: "a",
		},
		{
			name:     "Port name",
			input:    []byte("system:capture_1"),
			expected: "system:capture_1",
		},
		{
			name:     "UTF-8 client name",
			input:    []byte("héllo wørld"),
			expected: "héllo wørld",
		},
		{
			name:     "Binary data",
			input:    []byte{0x00, 0x01, 0x02, 0x03, 0xFF},
			expected: string([]byte{0x00, 0x01, 0x02, 0x03, 0xFF}),
		},
		{
			name:     "Large string",
			input:    []byte(strings.Repeat("abcdefghij", 1000)),
			expected: strings.Repeat("abcdefghij", 1000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := B2s(tt.input)
			if result != tt.expected {
				t.Errorf("B2s() = %q, expected %q", result, tt.expected)
			}

			if len(tt.input) > 0 {
				inputPtr := unsafe.Pointer(&tt.input[0])
				resultPtr := unsafe.Pointer(unsafe.StringData(result))
				if inputPtr != resultPtr {
					t.Error("B2s() should share underlying data with input slice")
				}
			}
		})
	}
}

func TestB2s_ZeroAllocation(t *testing.T) {
	input := []byte("test string for allocation testing")

	allocs := testing.AllocsPerRun(1000, func() {
		_ = B2s(input)
	})

	if allocs > 0 {
		t.Errorf("B2s() allocated memory: %f allocs/op", allocs)
	}
}

func TestS2b(t *testing.T) {
	if S2b("") != nil {
		t.Fatal("S2b(\"\") should be nil")
	}

	s := "jack:midi_out"
	b := S2b(s)
	if string(b) != s {
		t.Fatalf("S2b(%q) = %q", s, b)
	}
	if unsafe.Pointer(&b[0]) != unsafe.Pointer(unsafe.StringData(s)) {
		t.Error("S2b() should share underlying data with input string")
	}
}

// ============================================================================
// NUMBER FORMATTING TESTS
// ============================================================================

func TestItoa(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{name: "Zero", input: 0, expected: "0"},
		{name: "Single digit", input: 7, expected: "7"},
		{name: "Negative", input: -42, expected: "-42"},
		{name: "Large number", input: 987654321, expected: "987654321"},
		{name: "Maximum int32", input: 2147483647, expected: "2147483647"},
		{name: "Maximum int64", input: math.MaxInt64, expected: "9223372036854775807"},
		{name: "Minimum int64", input: math.MinInt64, expected: "-9223372036854775808"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Itoa(tt.input)
			if result != tt.expected {
				t.Errorf("Itoa(%d) = %q, expected %q", tt.input, result, tt.expected)
			}

			// Cross-verify with standard library
			if std := strconv.Itoa(tt.input); result != std {
				t.Errorf("Itoa(%d) = %q, strconv.Itoa = %q", tt.input, result, std)
			}
		})
	}
}

func TestItoa_ZeroAllocation(t *testing.T) {
	allocs := testing.AllocsPerRun(1000, func() {
		_ = Itoa(12345)
	})

	if allocs > 1 { // Allow one allocation for string creation
		t.Errorf("Itoa() should minimize allocations: %f allocs/op", allocs)
	}
}

func TestItoa_EdgeCases(t *testing.T) {
	testCases := []int{1, 9, 10, 99, 100, 999, 1000, 9999, 10000}

	for _, n := range testCases {
		t.Run(fmt.Sprintf("boundary_%d", n), func(t *testing.T) {
			if got, want := Itoa(n), strconv.Itoa(n); got != want {
				t.Errorf("Itoa(%d) = %q, expected %q", n, got, want)
			}
		})
	}
}

func TestUtoa(t *testing.T) {
	testCases := []uint64{0, 1, 9, 10, 65536, math.MaxUint32, math.MaxUint64}

	for _, u := range testCases {
		t.Run(fmt.Sprintf("value_%d", u), func(t *testing.T) {
			if got, want := Utoa(u), strconv.FormatUint(u, 10); got != want {
				t.Errorf("Utoa(%d) = %q, expected %q", u, got, want)
			}
		})
	}
}

// ============================================================================
// RAW OUTPUT TESTS
// ============================================================================

func TestPrintWarning(t *testing.T) {
	// Output is not captured; the function must simply not panic.
	testCases := []string{
		"",
		"Warning: test message",
		"Message with unicode: 测试警告消息",
		strings.Repeat("Long message ", 100),
	}

	for _, msg := range testCases {
		t.Run(fmt.Sprintf("message_len_%d", len(msg)), func(t *testing.T) {
			PrintWarning(msg)
		})
	}
}

func TestPrintWarning_ZeroAllocation(t *testing.T) {
	msg := "Test warning message\n"

	allocs := testing.AllocsPerRun(100, func() {
		PrintWarning(msg)
	})

	if allocs > 0 {
		t.Errorf("PrintWarning() allocated memory: %f allocs/op", allocs)
	}
}
