package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchLanguage(t *testing.T) {
	tests := map[string]string{
		"":                        "en",
		"de-DE,de;q=0.9,en;q=0.8": "de",
		"fr-CA":                   "fr",
		"pt-BR,pt;q=0.9":          "pt",
		"es":                      "es",
		"ja-JP":                   "en",
		"garbage;;;":              "en",
	}
	for header, want := range tests {
		t.Run(header, func(t *testing.T) {
			assert.Equal(t, want, MatchLanguage(header))
		})
	}
	assert.ElementsMatch(t, []string{"en", "de", "fr", "es", "pt"}, SupportedLanguages())
}

func TestDateFormatting(t *testing.T) {
	ts := time.Date(2026, 3, 7, 14, 5, 0, 0, time.UTC)

	assert.Equal(t, "Mar 7, 2026", Date(ts, "en"))
	assert.Equal(t, "07.03.2026", Date(ts, "de"))
	assert.Equal(t, "07/03/2026", Date(ts, "fr"))
	assert.Equal(t, "Mar 7, 2026", Date(ts, "xx"), "unknown languages fall back to English")
	assert.Equal(t, "", Date(time.Time{}, "en"))

	assert.Equal(t, "Mar 7, 2026 2:05 PM", DateTime(ts, "en"))
	assert.Equal(t, "07.03.2026 14:05", DateTime(ts, "de"))
	assert.Equal(t, "", DateTime(time.Time{}, "de"))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "1,234,567", Number(1234567, "en"))
	assert.Equal(t, "1.234.567", Number(1234567, "de"))
}

func TestRelative(t *testing.T) {
	ref := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	assert.Contains(t, relativeTo(ref.Add(-2*time.Hour), ref), "hours ago")
	assert.Equal(t, "", Relative(time.Time{}))
	assert.NotEmpty(t, Relative(time.Now().Add(-time.Minute)))
}

func TestSLABucket(t *testing.T) {
	tests := []struct {
		hours int
		want  string
	}{
		{0, BucketCritical},
		{1, BucketCritical},
		{2, BucketHigh},
		{4, BucketHigh},
		{5, BucketMedium},
		{8, BucketMedium},
		{9, BucketLow},
		{24, BucketLow},
		{25, BucketPlanning},
		{720, BucketPlanning},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SLABucket(tt.hours), "hours=%d", tt.hours)
	}
	assert.Equal(t, "danger", SLATone(BucketCritical))
	assert.Equal(t, "muted", SLATone(BucketPlanning))
}

func TestBusinessCalendar(t *testing.T) {
	c, err := NewBusinessCalendar("09:00", "17:00", []string{"2026-01-12"})
	require.NoError(t, err)

	friday := time.Date(2026, 1, 9, 16, 0, 0, 0, time.UTC)

	t.Run("wall clock", func(t *testing.T) {
		assert.Equal(t, friday.Add(4*time.Hour), c.DueAt(friday, 4, false))
	})

	t.Run("skips weekend and holiday", func(t *testing.T) {
		due := c.DueAt(friday, 2, true)
		assert.Equal(t, time.Tuesday, due.Weekday())
		assert.Equal(t, 13, due.Day())
		assert.Equal(t, 10, due.Hour())
	})

	t.Run("work time", func(t *testing.T) {
		assert.True(t, c.IsWorkTime(friday))
		assert.False(t, c.IsWorkTime(time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)))
		assert.Equal(t, time.Hour, c.WorkingHoursBetween(friday, friday.Add(3*time.Hour)))
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := NewBusinessCalendar("17:00", "09:00", nil)
		assert.Error(t, err)
		_, err = NewBusinessCalendar("9am", "17:00", nil)
		assert.Error(t, err)
		_, err = NewBusinessCalendar("09:00", "17:00", []string{"12/01/2026"})
		assert.Error(t, err)
	})
}

func TestBitLockerStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"On", Status{"Protected", "success"}},
		{"1", Status{"Protected", "success"}},
		{" on ", Status{"Protected", "success"}},
		{"Off", Status{"Unprotected", "danger"}},
		{"0", Status{"Unprotected", "danger"}},
		{"2", Status{"Unknown", "muted"}},
		{"", Status{"Unknown", "muted"}},
		{"Suspended", Status{"Unknown", "muted"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BitLockerStatus(tt.raw), "raw=%q", tt.raw)
	}

	assert.Equal(t, "42.5%", EncryptionProgress(42.5))
	assert.Equal(t, "7%", EncryptionProgress(7))
	assert.Equal(t, "", EncryptionProgress(100))
}

func TestMarkdownIsSanitized(t *testing.T) {
	out := Markdown("**bold** and [link](https://example.com)\n\n<script>alert(1)</script>")

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, "nofollow")
	assert.False(t, strings.Contains(out, "<script"), out)
}
