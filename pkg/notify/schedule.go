package notify

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDelay reports a delay expression that matches no supported form.
var ErrInvalidDelay = errors.New("notify: invalid delay expression")

// ParseSendAt parses an absolute schedule time for WithDeferAt. It accepts
// RFC 3339 ("2026-08-27T15:04:05Z") and the looser "2006-01-02 15:04[:05]"
// form interpreted in the local zone. Times not after now return nil: a
// past schedule means send immediately.
func ParseSendAt(value string, now time.Time) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	var (
		t   time.Time
		err error
	)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if layout == time.RFC3339 {
			t, err = time.Parse(layout, value)
		} else {
			t, err = time.ParseInLocation(layout, value, time.Local)
		}
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("notify: parse send-at %q: %w", value, err)
	}
	if !t.After(now) {
		return nil, nil
	}
	return &t, nil
}

var delayPartRe = regexp.MustCompile(`(?i)^(\d+)\s*(w|d|h|m|s)`)

// ParseDelay parses a relative delay expression into a duration. Supported
// forms: plain seconds ("90"), composite unit strings ("1h30m", "2d 4h",
// "15 m") with units w/d/h/m/s, and ISO 8601 durations ("PT10M", "P1DT2H").
func ParseDelay(expr string) (time.Duration, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, ErrInvalidDelay
	}

	if secs, err := strconv.Atoi(expr); err == nil {
		if secs < 0 {
			return 0, ErrInvalidDelay
		}
		return time.Duration(secs) * time.Second, nil
	}

	if len(expr) > 1 && (expr[0] == 'P' || expr[0] == 'p') {
		return parseISODuration(expr)
	}

	var total time.Duration
	rest := expr
	for rest != "" {
		m := delayPartRe.FindStringSubmatch(rest)
		if m == nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDelay, expr)
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDelay, expr)
		}
		total += time.Duration(n) * unitDuration(m[2])
		rest = strings.TrimSpace(rest[len(m[0]):])
	}
	return total, nil
}

// DeferIn resolves a relative delay expression against now, returning the
// absolute deferral instant for WithDeferAt.
func DeferIn(expr string, now time.Time) (*time.Time, error) {
	d, err := ParseDelay(expr)
	if err != nil {
		return nil, err
	}
	t := now.Add(d)
	return &t, nil
}

// parseISODuration handles the P[nW][nD][T[nH][nM][nS]] subset. Calendar
// units (years, months) are rejected as they have no fixed length.
func parseISODuration(expr string) (time.Duration, error) {
	body := expr[1:]
	datePart, timePart, hasT := strings.Cut(strings.ToUpper(body), "T")
	if datePart == "" && (!hasT || timePart == "") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelay, expr)
	}

	var total time.Duration
	consume := func(part string, units map[byte]time.Duration) error {
		num := ""
		for i := 0; i < len(part); i++ {
			c := part[i]
			if c >= '0' && c <= '9' {
				num += string(c)
				continue
			}
			unit, ok := units[c]
			if !ok || num == "" {
				return fmt.Errorf("%w: %q", ErrInvalidDelay, expr)
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidDelay, expr)
			}
			total += time.Duration(n) * unit
			num = ""
		}
		if num != "" {
			return fmt.Errorf("%w: %q", ErrInvalidDelay, expr)
		}
		return nil
	}

	if err := consume(datePart, map[byte]time.Duration{
		'W': 7 * 24 * time.Hour,
		'D': 24 * time.Hour,
	}); err != nil {
		return 0, err
	}
	if hasT {
		if err := consume(timePart, map[byte]time.Duration{
			'H': time.Hour,
			'M': time.Minute,
			'S': time.Second,
		}); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func unitDuration(unit string) time.Duration {
	switch strings.ToLower(unit) {
	case "w":
		return 7 * 24 * time.Hour
	case "d":
		return 24 * time.Hour
	case "h":
		return time.Hour
	case "m":
		return time.Minute
	default:
		return time.Second
	}
}
