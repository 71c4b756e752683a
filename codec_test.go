package ustream

import (
	"errors"
	"sync"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []rune
	}{
		{"Empty", "", []rune{}},
		{"ASCII", "abc", []rune{'a', 'b', 'c'}},
		{"TwoByte", "αβ", []rune{0x03B1, 0x03B2}},
		{"ThreeByte", "一二三", []rune{0x4E00, 0x4E8C, 0x4E09}},
		{"FourByte", "😁😀😂", []rune{0x1F601, 0x1F600, 0x1F602}},
		{"Mixed", "abc测试😁", []rune{'a', 'b', 'c', 0x6D4B, 0x8BD5, 0x1F601}},
		{"DanglingLead", "\xC2", []rune{0xFFFD}},
		{"DanglingLeadAfterText", "ab\xC2", []rune{'a', 'b', 0xFFFD}},
		{"StrayContinuation", "a\x80b", []rune{'a', 0xFFFD, 'b'}},
		{"BadContinuation", "\xC2\x41", []rune{0xFFFD, 'A'}},
		{"TruncatedThreeByte", "\xE1\x80", []rune{0xFFFD, 0xFFFD}},
		{"OverlongTwoByte", "\xC0\x80", []rune{0xFFFD, 0xFFFD}},
		{"OverlongThreeByte", "\xE0\x9F\xBF", []rune{0xFFFD, 0xFFFD, 0xFFFD}},
		{"SurrogateThreeByte", "\xED\xA0\x80", []rune{0xFFFD, 0xFFFD, 0xFFFD}},
		{"AboveMaxRune", "\xF4\x90\x80\x80", []rune{0xFFFD, 0xFFFD, 0xFFFD, 0xFFFD}},
		{"InvalidLead", "\xF8", []rune{0xFFFD}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeUTF8(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.in != "" {
				// The substituting decoder promises the exact behavior of
				// Go's built-in conversion.
				assert.Equal(t, []rune(tt.in), got)
			}
		})
	}
}

func TestDecodeUTF8Strict(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		rs, err := DecodeUTF8Strict("héllo 世界 😁")
		require.NoError(t, err)
		assert.Equal(t, []rune("héllo 世界 😁"), rs)
	})

	tests := []struct {
		name   string
		in     string
		offset int
		reason string
	}{
		{"Truncated", "ab\xC2", 2, "truncated sequence"},
		{"StrayContinuation", "a\x80b", 1, "stray continuation byte"},
		{"BadContinuation", "\xC2\x41", 0, "bad continuation byte"},
		{"Overlong", "\xE0\x9F\xBF", 0, "overlong encoding"},
		{"Surrogate", "\xED\xA0\x80", 0, "surrogate code point"},
		{"OutOfRange", "\xF4\x90\x80\x80", 0, "code point out of range"},
		{"InvalidLead", "fine until \xFF", 11, "invalid lead byte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeUTF8Strict(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidEncoding)

			var encErr *EncodingError
			require.ErrorAs(t, err, &encErr)
			assert.Equal(t, "UTF-8", encErr.Encoding)
			assert.Equal(t, tt.offset, encErr.Offset)
			assert.Equal(t, tt.reason, encErr.Reason)
		})
	}
}

func TestEncodeUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   []rune
		want string
	}{
		{"ASCII", []rune{'h', 'i'}, "hi"},
		{"Boundary2Byte", []rune{0x80, 0x7FF}, "\u0080\u07FF"},
		{"Boundary3Byte", []rune{0x800, 0xFFFF}, "\u0800\uFFFF"},
		{"Boundary4Byte", []rune{0x10000, 0x10FFFF}, "\U00010000\U0010FFFF"},
		{"SurrogateSubstituted", []rune{'a', 0xD800, 'b'}, "a�b"},
		{"OutOfRangeSubstituted", []rune{0x110000}, "�"},
		{"NegativeSubstituted", []rune{-1}, "�"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeUTF8(tt.in)
			assert.Equal(t, tt.want, got)
			// Go's built-in conversion substitutes the same way.
			assert.Equal(t, string(tt.in), got)
		})
	}
}

func TestUTF16(t *testing.T) {
	t.Run("EncodePairs", func(t *testing.T) {
		assert.Equal(t, []uint16{0x0041}, EncodeUTF16([]rune{'A'}))
		assert.Equal(t, []uint16{0x4E2D}, EncodeUTF16([]rune{0x4E2D}))
		assert.Equal(t, []uint16{0xD83D, 0xDE01}, EncodeUTF16([]rune{0x1F601}))
		assert.Equal(t, []uint16{0xFFFD}, EncodeUTF16([]rune{0xD800}))
		assert.Equal(t, []uint16{0xFFFD}, EncodeUTF16([]rune{0x110000}))
	})

	t.Run("SurrogateRanges", func(t *testing.T) {
		for _, r := range []rune{0x10000, 0x1F601, 0x10FFFF} {
			us := EncodeUTF16([]rune{r})
			require.Len(t, us, 2)
			assert.True(t, 0xD800 <= us[0] && us[0] < 0xDC00, "high surrogate out of range: %#x", us[0])
			assert.True(t, 0xDC00 <= us[1] && us[1] < 0xE000, "low surrogate out of range: %#x", us[1])
			assert.Equal(t, []rune{r}, DecodeUTF16(us))
		}
	})

	t.Run("DecodeLenient", func(t *testing.T) {
		tests := []struct {
			name string
			in   []uint16
			want []rune
		}{
			{"BMP", []uint16{'h', 'i', 0x4E2D}, []rune{'h', 'i', 0x4E2D}},
			{"Pair", []uint16{0xD83D, 0xDE01}, []rune{0x1F601}},
			{"UnpairedHigh", []uint16{0xD800, 'x'}, []rune{0xFFFD, 'x'}},
			{"UnpairedHighAtEnd", []uint16{'x', 0xD800}, []rune{'x', 0xFFFD}},
			{"UnpairedLow", []uint16{0xDC00}, []rune{0xFFFD}},
			{"TwoHighs", []uint16{0xD800, 0xD800, 0xDC00}, []rune{0xFFFD, 0x10000}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, DecodeUTF16(tt.in))
			})
		}
	})

	t.Run("DecodeStrict", func(t *testing.T) {
		rs, err := DecodeUTF16Strict([]uint16{'o', 'k', 0xD83D, 0xDE01})
		require.NoError(t, err)
		assert.Equal(t, []rune{'o', 'k', 0x1F601}, rs)

		_, err = DecodeUTF16Strict([]uint16{'a', 0xD800, 'b'})
		require.Error(t, err)
		var encErr *EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, "UTF-16", encErr.Encoding)
		assert.Equal(t, 1, encErr.Offset)
		assert.Equal(t, "unpaired high surrogate", encErr.Reason)

		_, err = DecodeUTF16Strict([]uint16{0xDC00})
		require.ErrorIs(t, err, ErrInvalidEncoding)
	})
}

func TestDirectPaths(t *testing.T) {
	// The direct UTF-8/UTF-16 conversions must agree with the composed
	// two-step conversions, malformed input included.
	inputs := []string{"", "plain", "一二三 αβγ", "😁😀😂 123 一二三 abc", "bad \xC2 tail \x80"}
	for _, s := range inputs {
		assert.Equal(t, EncodeUTF16(DecodeUTF8(s)), UTF8ToUTF16(s), "input %q", s)
	}

	wide := [][]uint16{
		{},
		{'h', 'i'},
		{0xD83D, 0xDE01, ' ', 0x4E2D},
		{0xD800, 'x', 0xDC00},
	}
	for _, us := range wide {
		assert.Equal(t, EncodeUTF8(DecodeUTF16(us)), UTF16ToUTF8(us), "input %v", us)
	}

	t.Run("Strict", func(t *testing.T) {
		us, err := UTF8ToUTF16Strict("😁 ok")
		require.NoError(t, err)
		assert.Equal(t, []uint16{0xD83D, 0xDE01, ' ', 'o', 'k'}, us)

		_, err = UTF8ToUTF16Strict("oops\xFF")
		require.ErrorIs(t, err, ErrInvalidEncoding)

		s, err := UTF16ToUTF8Strict([]uint16{0xD83D, 0xDE01})
		require.NoError(t, err)
		assert.Equal(t, "😁", s)

		_, err = UTF16ToUTF8Strict([]uint16{'x', 0xD83D})
		require.Error(t, err)
		var encErr *EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, 1, encErr.Offset)
	})
}

func TestConvert(t *testing.T) {
	const s = "a中😁"
	rs := []rune{'a', 0x4E2D, 0x1F601}
	us := []uint16{'a', 0x4E2D, 0xD83D, 0xDE01}

	t.Run("Identity", func(t *testing.T) {
		assert.Equal(t, s, Convert[string](s))
		assert.Equal(t, us, Convert[[]uint16](us))
		assert.Equal(t, rs, Convert[[]rune](rs))
	})

	t.Run("Pairwise", func(t *testing.T) {
		assert.Equal(t, us, Convert[[]uint16](s))
		assert.Equal(t, rs, Convert[[]rune](s))
		assert.Equal(t, s, Convert[string](us))
		assert.Equal(t, rs, Convert[[]rune](us))
		assert.Equal(t, s, Convert[string](rs))
		assert.Equal(t, us, Convert[[]uint16](rs))
	})
}

func TestRoundTrips(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"hello world",
		"一二三 αβγ",
		"😁😀😂 123 一二三 abc",
		"already substituted: �",
	}
	for _, s := range inputs {
		assert.Equal(t, s, EncodeUTF8(DecodeUTF8(s)), "utf-32 round trip of %q", s)
		assert.Equal(t, s, UTF16ToUTF8(UTF8ToUTF16(s)), "utf-16 round trip of %q", s)
		assert.Equal(t, s, EncodeUTF8(DecodeUTF16(UTF8ToUTF16(s))), "full cycle of %q", s)
	}
}

func TestStdlibAgreement(t *testing.T) {
	rs := []rune("一二三😁 abc")
	assert.Equal(t, utf16.Encode(rs), EncodeUTF16(rs))
	assert.Equal(t, rs, DecodeUTF16(utf16.Encode(rs)))
	assert.Equal(t, string(rs), EncodeUTF8(rs))

	invalid := []rune{0xD800, 0x110000}
	assert.Equal(t, string(invalid), EncodeUTF8(invalid))
}

func TestSubstitutionsCounter(t *testing.T) {
	ResetSubstitutions()
	DecodeUTF8("\xC2")            // 1
	UTF8ToUTF16("\x80\x80")       // 2
	EncodeUTF8([]rune{0xD800})    // 1
	EncodeUTF16([]rune{0x110000}) // 1
	DecodeUTF16([]uint16{0xDC00}) // 1
	assert.EqualValues(t, 6, Substitutions())

	ResetSubstitutions()
	assert.Zero(t, Substitutions())

	// The counter is shared by all goroutines.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			DecodeUTF8("\xC2")
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 100, Substitutions())
	ResetSubstitutions()
}

func TestEncodingErrorText(t *testing.T) {
	err := &EncodingError{Encoding: "UTF-8", Offset: 5, Reason: "truncated sequence"}
	assert.Equal(t, "ustream: invalid UTF-8 at byte 5: truncated sequence", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidEncoding))

	err = &EncodingError{Encoding: "UTF-16", Offset: 2, Reason: "unpaired low surrogate"}
	assert.Equal(t, "ustream: invalid UTF-16 at unit 2: unpaired low surrogate", err.Error())
}
