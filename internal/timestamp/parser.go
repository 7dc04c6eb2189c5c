// Package timestamp extracts the leading timestamp from raw log lines so
// records can carry the time the kernel logged the event rather than the
// time it was processed.
package timestamp

import (
	"regexp"
	"strings"
	"time"
)

// Result is the outcome of a parse attempt. Remaining holds the line with
// the matched timestamp prefix removed.
type Result struct {
	Timestamp time.Time
	Found     bool
	Remaining string
}

type pattern struct {
	re     *regexp.Regexp
	layout string
	// syslog and time-only formats omit parts of the date; fill from now.
	fillYear bool
	fillDate bool
}

var patterns = []pattern{
	{
		re:     regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:[.,]\d+)?(?:Z|[+-]\d{2}:\d{2})`),
		layout: time.RFC3339Nano,
	},
	{
		re:     regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:[.,]\d+)?`),
		layout: "2006-01-02 15:04:05.999999999",
	},
	{
		re:       regexp.MustCompile(`^[A-Z][a-z]{2} {1,2}\d{1,2} \d{2}:\d{2}:\d{2}`),
		layout:   "Jan _2 15:04:05",
		fillYear: true,
	},
	{
		re:       regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(?:[.,]\d+)?`),
		layout:   "15:04:05.999999999",
		fillDate: true,
	},
}

// Parser recognizes the timestamp prefixes found on journald, syslog, and
// application log lines.
type Parser struct {
	now func() time.Time
}

func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// ParseFromText tries each known prefix format against the start of the
// line. Formats without a year (syslog) or date (bare time) are completed
// from the current clock.
func (p *Parser) ParseFromText(line string) Result {
	for _, pat := range patterns {
		match := pat.re.FindString(line)
		if match == "" {
			continue
		}

		// International formats write fractional seconds with a comma.
		normalized := strings.Replace(match, ",", ".", 1)
		ts, err := time.Parse(pat.layout, normalized)
		if err != nil {
			continue
		}

		now := p.now()
		if pat.fillYear {
			ts = ts.AddDate(now.Year(), 0, 0)
		}
		if pat.fillDate {
			ts = time.Date(now.Year(), now.Month(), now.Day(),
				ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), ts.Location())
		}
		return Result{
			Timestamp: ts,
			Found:     true,
			Remaining: strings.TrimSpace(line[len(match):]),
		}
	}
	return Result{Remaining: line}
}
