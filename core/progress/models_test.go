package progress

import (
	"testing"
	"time"
)

func TestNewProgress_Day(t *testing.T) {
	t.Run("explicit date", func(t *testing.T) {
		np := NewProgress{Date: "2024-03-01"}
		want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		if got := np.Day(); !got.Equal(want) {
			t.Errorf("Day() = %v; want %v", got, want)
		}
	})

	t.Run("defaults to today", func(t *testing.T) {
		var np NewProgress
		now := time.Now().UTC()
		want := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if got := np.Day(); !got.Equal(want) {
			t.Errorf("Day() = %v; want %v", got, want)
		}
	})

	t.Run("garbage date falls back to today", func(t *testing.T) {
		np := NewProgress{Date: "03/01/2024"}
		now := time.Now().UTC()
		want := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if got := np.Day(); !got.Equal(want) {
			t.Errorf("Day() = %v; want %v", got, want)
		}
	})
}
