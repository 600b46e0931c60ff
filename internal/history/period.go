package history

import (
	"math"
	"regexp"
	"strconv"
	"time"

	"daoportal/internal/apperr"
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day

	invalidPeriodMessage = "Invalid period format. Use e.g. '30d', '4w', '2m'"
)

var periodPattern = regexp.MustCompile(`^(\d+)([dwm])$`)

// ParsePeriod 将 "30d"、"4w"、"2m" 这类窗口解析为时长，月按 30 天计。
func ParsePeriod(token string) (time.Duration, error) {
	match := periodPattern.FindStringSubmatch(token)
	if match == nil {
		return 0, apperr.InvalidArgument(invalidPeriodMessage)
	}
	n, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, apperr.InvalidArgument(invalidPeriodMessage)
	}
	unit := day
	switch match[2] {
	case "w":
		unit = week
	case "m":
		unit = month
	}
	if n > int64(math.MaxInt64/unit) {
		return 0, apperr.InvalidArgument(invalidPeriodMessage)
	}
	return time.Duration(n) * unit, nil
}
