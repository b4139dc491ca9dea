package cryptanalysis

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/RowanDark/cifra/internal/textnorm"
)

// LetterCount is one row of a frequency histogram.
type LetterCount struct {
	Letter  rune    `json:"letter"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Histogram counts the letters a-z of a text after diacritic folding,
// ignoring case.
type Histogram struct {
	Letters []LetterCount `json:"letters"`
	Total   int           `json:"total"`
}

// Frequency builds the letter histogram of text. Rows are ordered by count,
// most frequent first, then alphabetically; letters that never occur are
// omitted.
func Frequency(text string) Histogram {
	var counts [26]int
	total := 0
	for _, r := range textnorm.Fold(text) {
		if r >= 'a' && r <= 'z' {
			counts[r-'a']++
			total++
		}
	}

	h := Histogram{Total: total}
	for i, n := range counts {
		if n == 0 {
			continue
		}
		h.Letters = append(h.Letters, LetterCount{
			Letter:  rune('a' + i),
			Count:   n,
			Percent: float64(n) / float64(total) * 100,
		})
	}
	sort.SliceStable(h.Letters, func(i, j int) bool {
		if h.Letters[i].Count != h.Letters[j].Count {
			return h.Letters[i].Count > h.Letters[j].Count
		}
		return h.Letters[i].Letter < h.Letters[j].Letter
	})
	return h
}

// WriteTable prints the histogram as a fixed-width table with grouped
// thousands.
func (h Histogram) WriteTable(w io.Writer) error {
	p := message.NewPrinter(language.English)
	rule := strings.Repeat("-", 30)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-6s%12s%12s\n", "Letter", "Count", "Percent")
	sb.WriteString(rule + "\n")
	for _, row := range h.Letters {
		sb.WriteString(p.Sprintf("%-6s%12d%11.2f%%\n", string(unicode.ToUpper(row.Letter)), row.Count, row.Percent))
	}
	sb.WriteString(rule + "\n")
	share := "100.00%"
	if h.Total == 0 {
		share = "0.00%"
	}
	sb.WriteString(p.Sprintf("%-6s%12d%12s\n", "Total", h.Total, share))

	_, err := io.WriteString(w, sb.String())
	return err
}
