// Package base - общие helpers для backend'ов исполнителя.
// Устраняет дублирование кода между database/sql-адаптерами и приводит
// значения разных драйверов к единым Go-типам
package base

import (
	"fmt"
	"strconv"
	"time"
)

// Форматы таймстемпов, которые возвращают разные драйверы.
// modernc/sqlite отдает TEXT, mysql - []byte, pgx - time.Time
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00", // RFC3339
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

// CanonicalTimeLayout - формат привязки таймстемпов к SQL-параметрам.
// Строковая привязка единообразно принимается всеми четырьмя СУБД
const CanonicalTimeLayout = "2006-01-02 15:04:05"

// FormatTime форматирует таймстемп для SQL-параметра (UTC, секундная точность)
func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(CanonicalTimeLayout)
}

// ToTime приводит значение, отсканированное из драйвера, к time.Time (UTC)
func ToTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		return parseTime(x)
	case []byte:
		return parseTime(string(x))
	case nil:
		return time.Time{}, fmt.Errorf("timestamp is NULL")
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to timestamp", v)
	}
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format: %q", s)
}

// ToString приводит значение к строке
func ToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case nil:
		return "", fmt.Errorf("value is NULL")
	default:
		return fmt.Sprintf("%v", x), nil
	}
}

// ToNullFloat приводит значение к *float64, nil = SQL NULL
func ToNullFloat(v any) (*float64, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &x, nil
	case float32:
		f := float64(x)
		return &f, nil
	case int64:
		f := float64(x)
		return &f, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as float: %w", x, err)
		}
		return &f, nil
	case []byte:
		return ToNullFloat(string(x))
	default:
		return nil, fmt.Errorf("cannot convert %T to float", v)
	}
}

// ToInt приводит значение к int64 (COUNT(*) и прочие агрегаты)
func ToInt(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case nil:
		return 0, fmt.Errorf("value is NULL")
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}
