package utils

import (
	"os"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities: Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
// Used to quote raw stored bytes in error messages without copying them.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// S2b exposes the bytes of a string without copying.
// ⚠️ The returned slice must never be written to.
//
//go:nosplit
//go:inline
func S2b(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

///////////////////////////////////////////////////////////////////////////////
// Hash & Mixers: For Integer Keys
///////////////////////////////////////////////////////////////////////////////

// Mix64 applies a Murmur3-style avalanche to a 64-bit value.
// Used to spread integer keys across home slots.
//
//go:nosplit
//go:inline
func Mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

///////////////////////////////////////////////////////////////////////////////
// Integer Formatting: For Diagnostics
///////////////////////////////////////////////////////////////////////////////

// Itoa renders a signed integer in base 10 without going through fmt.
//
//go:nosplit
func Itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	u := uint64(n)
	if n < 0 {
		u = uint64(-n)
	}
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	if n < 0 {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Ftoa2 renders a non-negative ratio with two decimals (e.g. 0.78 → "0.78").
// Negative inputs are clamped to zero; diagnostics never print negative loads.
func Ftoa2(f float64) string {
	if f < 0 {
		f = 0
	}
	hundredths := int(f*100 + 0.5)
	frac := hundredths % 100
	s := Itoa(hundredths/100) + "."
	if frac < 10 {
		s += "0"
	}
	return s + Itoa(frac)
}

///////////////////////////////////////////////////////////////////////////////
// Console Output: Cold-Path Only
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg to stderr as-is. No newline is appended.
//
//go:nosplit
func PrintWarning(msg string) {
	if len(msg) == 0 {
		return
	}
	_, _ = os.Stderr.WriteString(msg)
}

// PrintInfo writes msg to stdout as-is. No newline is appended.
// Reserved for command results; diagnostics go through PrintWarning.
//
//go:nosplit
func PrintInfo(msg string) {
	if len(msg) == 0 {
		return
	}
	_, _ = os.Stdout.WriteString(msg)
}

///////////////////////////////////////////////////////////////////////////////
// Fast Loaders: Digest Truncation
///////////////////////////////////////////////////////////////////////////////

// LoadBE64 performs a manual big-endian 64-bit read, avoiding dependency on binary.BigEndian.
//
//go:nosplit
//go:inline
func LoadBE64(b []byte) uint64 {
	_ = b[7] // bounds check hint
	return uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 |
		uint64(b[3])<<32 | uint64(b[4])<<24 | uint64(b[5])<<16 |
		uint64(b[6])<<8 | uint64(b[7])
}
