// Package geo приводит координаты, введённые людьми, к каноническому виду "lat,lng".
// Это единственная реализация разбора: ею пользуются и приём обращений, и выдача точек на карту.
package geo

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Status - итог нормализации строки координат.
type Status int

const (
	// Absent - координаты не переданы.
	Absent Status = iota
	// Valid - координаты разобраны и лежат в допустимых пределах.
	Valid
	// Invalid - строка не распознана или вне диапазона; значение отброшено.
	Invalid
)

// String возвращает метку статуса для логов, метрик и заголовков.
func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "absent"
	}
}

// Point - пара десятичных градусов.
type Point struct {
	Lat float64
	Lng float64
}

// String форматирует точку в канонический вид.
func (p Point) String() string {
	return formatDegrees(p.Lat) + "," + formatDegrees(p.Lng)
}

// Result - результат Normalize.
type Result struct {
	Status Status
	Point  Point
	// Value заполнен только при Status == Valid.
	Value string
}

// MaxInputLength - строка длиннее заведомо не координаты и отбрасывается без разбора.
const MaxInputLength = 100

const (
	minLat = -90.0
	maxLat = 90.0
	minLng = -180.0
	maxLng = 180.0
)

var (
	// "<num>, <num>"
	plainPairRe = regexp.MustCompile(`^([+-]?\d+(?:\.\d+)?)\s*,\s*([+-]?\d+(?:\.\d+)?)$`)
	// "<num>°?<N|S|E|W>?" - одна половина пары, суффикс может стоять вплотную к числу.
	cardinalPartRe = regexp.MustCompile(`(?i)^([+-]?\d+(?:\.\d+)?)\s*°?\s*([NSEW])?$`)
)

// Normalize разбирает строку координат. Функция чистая и идемпотентна по сохраняемому
// значению: NormalizePtr(r.Stored()).Stored() == r.Stored() для r = Normalize(x) и любого x.
// Отброшенная строка ничего не сохраняет, поэтому повторный разбор Invalid даёт Absent.
func Normalize(raw string) Result {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Result{Status: Absent}
	}
	if utf8.RuneCountInString(s) > MaxInputLength {
		return Result{Status: Invalid}
	}

	point, ok := parsePlainPair(s)
	if !ok {
		point, ok = parseCardinalPair(s)
	}
	if !ok || !inRange(point) {
		return Result{Status: Invalid}
	}

	return Result{Status: Valid, Point: point, Value: point.String()}
}

// Stored возвращает то, что попадает в хранилище: каноническую строку или nil.
func (r Result) Stored() *string {
	if r.Status != Valid {
		return nil
	}
	value := r.Value
	return &value
}

// NormalizePtr - вариант Normalize для необязательного поля.
func NormalizePtr(raw *string) Result {
	if raw == nil {
		return Result{Status: Absent}
	}
	return Normalize(*raw)
}

// Parse возвращает точку, если строка распознаётся.
func Parse(raw string) (Point, bool) {
	res := Normalize(raw)
	return res.Point, res.Status == Valid
}

func parsePlainPair(s string) (Point, bool) {
	m := plainPairRe.FindStringSubmatch(s)
	if m == nil {
		return Point{}, false
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Point{}, false
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Point{}, false
	}
	return Point{Lat: lat, Lng: lng}, true
}

func parseCardinalPair(s string) (Point, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, false
	}

	lat, ok := parseCardinalPart(parts[0], "N", "S")
	if !ok {
		return Point{}, false
	}
	lng, ok := parseCardinalPart(parts[1], "E", "W")
	if !ok {
		return Point{}, false
	}
	return Point{Lat: lat, Lng: lng}, true
}

// parseCardinalPart разбирает половину пары; positive/negative - допустимые для оси суффиксы.
func parseCardinalPart(part, positive, negative string) (float64, bool) {
	m := cardinalPartRe.FindStringSubmatch(strings.TrimSpace(part))
	if m == nil {
		return 0, false
	}

	num, suffix := m[1], strings.ToUpper(m[2])
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if suffix == "" {
		return v, true
	}

	// Знак вместе с буквой стороны света неоднозначен: "-25S" не угадываем.
	if strings.HasPrefix(num, "-") || strings.HasPrefix(num, "+") {
		return 0, false
	}

	switch suffix {
	case positive:
		return v, true
	case negative:
		return -v, true
	default:
		// Буква от другой оси, например "25E" на месте широты.
		return 0, false
	}
}

func inRange(p Point) bool {
	return p.Lat >= minLat && p.Lat <= maxLat && p.Lng >= minLng && p.Lng <= maxLng
}

func formatDegrees(v float64) string {
	if v == 0 {
		v = 0 // убираем -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
