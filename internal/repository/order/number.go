package order

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// NumberPrefix leads every human-facing order number.
const NumberPrefix = "SR"

var numberPattern = regexp.MustCompile(`^SR-(\d{4})-(\d{3,})$`)

// ParseNumber extracts the year and sequence from an order number.
func ParseNumber(number string) (year, seq int, ok bool) {
	m := numberPattern.FindStringSubmatch(number)
	if m == nil {
		return 0, 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	seq, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return year, seq, true
}

// FormatNumber renders SR-<year>-<seq>, padding the sequence to three digits.
func FormatNumber(year, seq int) string {
	return fmt.Sprintf("%s-%04d-%03d", NumberPrefix, year, seq)
}

// NextNumber derives the number following last. The sequence continues across years;
// only the year component follows now. An empty or unparseable last restarts at 1.
func NextNumber(last string, now time.Time) string {
	seq := 1
	if _, prev, ok := ParseNumber(last); ok {
		seq = prev + 1
	}
	return FormatNumber(now.Year(), seq)
}
