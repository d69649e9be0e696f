package extract

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func TestWindow_Column(t *testing.T) {
	t.Run("reads values until the next stop label", func(t *testing.T) {
		lines := Lines{
			"Title", "PeakA", "PeakB",
			"Ret. Time", "4.52", "6.10",
			"Area", "10234.1", "5530.7",
		}
		w := WholeDocument(lines, DefaultStopLabels)

		assert.Equal(t, []string{"PeakA", "PeakB"}, w.Column("Title"))
		assert.Equal(t, []string{"4.52", "6.10"}, w.Column("Ret. Time"))
		assert.Equal(t, []string{"10234.1", "5530.7"}, w.Column("Area"))
	})

	t.Run("absent label yields empty series", func(t *testing.T) {
		w := WholeDocument(Lines{"Title", "PeakA"}, DefaultStopLabels)
		assert.Empty(t, w.Column("Tailing Factor"))
	})

	t.Run("last occurrence is the section of record", func(t *testing.T) {
		lines := Lines{
			"Title", "Draft1", "Draft2",
			"Area", "1", "2",
			"Title", "Final",
			"Area", "3",
		}
		w := WholeDocument(lines, DefaultStopLabels)

		assert.Equal(t, []string{"Final"}, w.Column("Title"))
		assert.Equal(t, []string{"3"}, w.Column("Area"))
	})

	t.Run("label match is case insensitive", func(t *testing.T) {
		lines := Lines{"RET. TIME", "1.1", "Area", "9"}
		w := WholeDocument(lines, DefaultStopLabels)
		assert.Equal(t, []string{"1.1"}, w.Column("Ret. Time"))
	})

	t.Run("stop labels match exactly", func(t *testing.T) {
		// a lower-cased label does not terminate the run
		lines := Lines{"Title", "PeakA", "area", "Area", "5"}
		w := WholeDocument(lines, DefaultStopLabels)
		assert.Equal(t, []string{"PeakA", "area"}, w.Column("Title"))
	})

	t.Run("skips colon-prefixed lines and strips separators", func(t *testing.T) {
		lines := Lines{"Sample Name", ":", "Std 1", ": ignored", "Std 2", "Title"}
		w := WholeDocument(lines, DefaultStopLabels)
		assert.Equal(t, []string{"Std 1", "Std 2"}, w.Column("Sample Name"))
	})

	t.Run("honours window bounds", func(t *testing.T) {
		lines := Lines{
			"Title", "Outside",
			"Title", "Inside1", "Inside2",
			"Ret. Time", "1.0",
		}
		w := Window{Lines: lines, Start: 2, End: 4, Stop: DefaultStopLabels}

		assert.Equal(t, []string{"Inside1"}, w.Column("Title"))
		assert.Empty(t, w.Column("Ret. Time"))
	})

	t.Run("window larger than lines is clamped", func(t *testing.T) {
		w := Window{Lines: Lines{"Area", "7"}, Start: -3, End: 99, Stop: DefaultStopLabels}
		assert.Equal(t, []string{"7"}, w.Column("Area"))
	})
}

func TestWindow_ColumnFallback(t *testing.T) {
	t.Run("primary label wins", func(t *testing.T) {
		lines := Lines{
			"Theoretical Plate", "8000",
			"Number of Theoretical Plate(USP)", "9000",
		}
		w := WholeDocument(lines, DefaultStopLabels)
		got := w.ColumnFallback(LabelTheoreticalPlate, LabelNumTheoreticalPlateUSP)
		assert.Equal(t, []string{"8000"}, got)
	})

	t.Run("falls back to USP plate count", func(t *testing.T) {
		lines := Lines{"Title", "PeakA", "Number of Theoretical Plate(USP)", "9123"}
		w := WholeDocument(lines, DefaultStopLabels)
		got := w.ColumnFallback(LabelTheoreticalPlate, LabelNumTheoreticalPlateUSP)
		assert.Equal(t, []string{"9123"}, got)
	})

	t.Run("nothing found", func(t *testing.T) {
		w := WholeDocument(Lines{"Title"}, DefaultStopLabels)
		assert.Empty(t, w.ColumnFallback(LabelTheoreticalPlate, LabelNumTheoreticalPlateUSP))
	})
}

func TestWindow_ColumnWellFormed(t *testing.T) {
	faker := gofakeit.New(7)

	for i := 0; i < 50; i++ {
		n := faker.Number(0, 20)
		values := make([]string, n)
		for j := range values {
			values[j] = faker.LetterN(8)
		}

		lines := Lines{"Report", "Ret. Time"}
		lines = append(lines, values...)
		lines = append(lines, "Area", "1.0")

		got := WholeDocument(lines, DefaultStopLabels).Column("Ret. Time")
		assert.Len(t, got, n)
		for j := range values {
			assert.Equal(t, values[j], got[j])
		}
	}
}

func TestWindow_ColumnIsIdempotent(t *testing.T) {
	lines := Lines{
		"Title", "PeakA", ": skipped", "PeakB",
		"Ret. Time", "1.2", "2.4",
		"Theoretical Plate", "1000",
	}
	w := WholeDocument(lines, DefaultStopLabels)

	for _, label := range []string{"Title", "Ret. Time", "Theoretical Plate"} {
		series := w.Column(label)
		for _, v := range series {
			assert.False(t, DefaultStopLabels.Contains(v), "value %q is a stop label", v)
		}

		// feeding the series back through the same label yields the same values
		again := WholeDocument(append(Lines{label}, series...), DefaultStopLabels).Column(label)
		assert.Equal(t, series, again)
	}
}
