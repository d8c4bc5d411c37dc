package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RuleVersion tags occurrence keys with the generation of the key algorithm.
// It changes only when the key derivation itself changes, never when an
// operator edits a rule.
const RuleVersion = "v1"

var (
	ErrUnsupportedRuleToken = errors.New("schedule: unsupported recurrence rule token")
	ErrInvalidRuleValue     = errors.New("schedule: invalid recurrence rule value")
)

var weekdayNames = map[string]time.Weekday{
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
	"SU": time.Sunday,
}

// Rule is a parsed recurrence rule: a weekday set plus an anchor time of day.
type Rule struct {
	Weekdays []time.Weekday
	Hour     int
	Minute   int
}

// ParseRule parses the compact rule string used by series drafts, e.g.
// "BYDAY=MO,WE;BYHOUR=9;BYMINUTE=0". Tokens may appear in any order; an
// unknown token is an error, an empty BYDAY list is not (it just expands to
// nothing).
func ParseRule(raw string) (*Rule, error) {
	rule := &Rule{}
	seen := make(map[string]bool, 3)

	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, value, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedRuleToken, part)
		}
		name = strings.ToUpper(strings.TrimSpace(name))
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate %q", ErrInvalidRuleValue, name)
		}
		seen[name] = true

		switch name {
		case "BYDAY":
			days, err := parseWeekdays(value)
			if err != nil {
				return nil, err
			}
			rule.Weekdays = days
		case "BYHOUR":
			hour, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || hour < 0 || hour > 23 {
				return nil, fmt.Errorf("%w: BYHOUR=%q", ErrInvalidRuleValue, value)
			}
			rule.Hour = hour
		case "BYMINUTE":
			minute, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || minute < 0 || minute > 59 {
				return nil, fmt.Errorf("%w: BYMINUTE=%q", ErrInvalidRuleValue, value)
			}
			rule.Minute = minute
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedRuleToken, name)
		}
	}

	return rule, nil
}

func parseWeekdays(value string) ([]time.Weekday, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	seen := make(map[time.Weekday]bool, 7)
	days := make([]time.Weekday, 0, 7)
	for _, token := range strings.Split(value, ",") {
		token = strings.ToUpper(strings.TrimSpace(token))
		day, ok := weekdayNames[token]
		if !ok {
			return nil, fmt.Errorf("%w: BYDAY=%q", ErrUnsupportedRuleToken, token)
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}

	return days, nil
}

// ISOWeekday converts Go's Sunday-based weekday to ISO numbering
// (Monday=1 .. Sunday=7).
func ISOWeekday(day time.Weekday) int {
	if day == time.Sunday {
		return 7
	}
	return int(day)
}
