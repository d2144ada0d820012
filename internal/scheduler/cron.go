package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser парсер пятипольных cron-выражений.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule разбирает cron-выражение. Поддерживаются и дескрипторы
// вида @hourly и @every 5m.
func ParseSchedule(expr string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	return schedule, nil
}

// ValidateCronExpr проверяет cron-выражение.
func ValidateCronExpr(expr string) error {
	_, err := ParseSchedule(expr)
	return err
}

// NextDue время следующего запуска после from, в UTC.
func NextDue(schedule cron.Schedule, from time.Time) time.Time {
	return schedule.Next(from).UTC()
}
