package dialog

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// clockExpr is a parsed free-text clock expression. Candidates holds the
// 24-hour hours the expression could mean; an unambiguous expression has
// exactly one.
type clockExpr struct {
	candidates []int
	minute     int
}

type parseStrategy struct {
	re    *regexp.Regexp
	build func(m []string) (clockExpr, bool)
}

// Strategies are tried in order; the first match wins. Patterns cover
// the shapes people actually type at a slot prompt: "3pm", "3:30 pm",
// "6:", "15:00", bare "7".
var parseStrategies = []parseStrategy{
	{
		re: regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(am|pm)$`),
		build: func(m []string) (clockExpr, bool) {
			return buildMeridiem(m[1], m[2], m[3])
		},
	},
	{
		re: regexp.MustCompile(`^(\d{1,2}):?\s*(am|pm)$`),
		build: func(m []string) (clockExpr, bool) {
			return buildMeridiem(m[1], "00", m[2])
		},
	},
	{
		re: regexp.MustCompile(`^(\d{1,2}):(\d{2})$`),
		build: func(m []string) (clockExpr, bool) {
			return buildBare(m[1], m[2])
		},
	},
	{
		re: regexp.MustCompile(`^(\d{1,2}):?$`),
		build: func(m []string) (clockExpr, bool) {
			return buildBare(m[1], "00")
		},
	},
}

func buildMeridiem(hourStr, minStr, meridiem string) (clockExpr, bool) {
	hour, _ := strconv.Atoi(hourStr)
	minute, _ := strconv.Atoi(minStr)
	if hour < 1 || hour > 12 || minute > 59 {
		return clockExpr{}, false
	}
	hour = hour % 12
	if meridiem == "pm" {
		hour += 12
	}
	return clockExpr{candidates: []int{hour}, minute: minute}, true
}

func buildBare(hourStr, minStr string) (clockExpr, bool) {
	hour, _ := strconv.Atoi(hourStr)
	minute, _ := strconv.Atoi(minStr)
	if hour > 23 || minute > 59 {
		return clockExpr{}, false
	}
	switch {
	case hour == 12:
		// "12" could be noon or midnight; noon first.
		return clockExpr{candidates: []int{12, 0}, minute: minute}, true
	case hour >= 1 && hour <= 11:
		return clockExpr{candidates: []int{hour, hour + 12}, minute: minute}, true
	default:
		return clockExpr{candidates: []int{hour}, minute: minute}, true
	}
}

func parseClockExpression(input string) (clockExpr, bool) {
	text := strings.ToLower(strings.TrimSpace(input))
	text = strings.Join(strings.Fields(text), " ")
	for _, strat := range parseStrategies {
		if m := strat.re.FindStringSubmatch(text); m != nil {
			return strat.build(m)
		}
	}
	return clockExpr{}, false
}

// fuzzyWindow is how far a typed time may sit from an offered slot and
// still count as picking it.
const fuzzyWindow = 15 * time.Minute

// MatchSlot resolves a free-text clock expression against the offered
// slots. It scans slot-major so that when an ambiguous expression (a
// bare hour like "6:") matches more than one slot, the earliest offered
// slot wins. An exact hour-and-minute match is preferred; failing that,
// the first slot within fuzzyWindow of any candidate reading is taken.
func MatchSlot(input string, offered []time.Time) (time.Time, bool) {
	expr, ok := parseClockExpression(input)
	if !ok {
		return time.Time{}, false
	}
	for _, slot := range offered {
		for _, hour := range expr.candidates {
			if slot.Hour() == hour && slot.Minute() == expr.minute {
				return slot, true
			}
		}
	}
	for _, slot := range offered {
		slotMin := slot.Hour()*60 + slot.Minute()
		for _, hour := range expr.candidates {
			exprMin := hour*60 + expr.minute
			diff := slotMin - exprMin
			if diff < 0 {
				diff = -diff
			}
			if time.Duration(diff)*time.Minute <= fuzzyWindow {
				return slot, true
			}
		}
	}
	return time.Time{}, false
}
