// Package planning contiene los servicios de dominio del motor de planeación:
// aritmética de semanas ISO-8601, proyección semanal de inventario y programación inversa
// de pedidos a partir de tiempos de entrega.
//
// Todo el paquete es puro: no accede a repositorios ni al reloj del sistema. La semana
// "actual" siempre llega como parámetro.
package planning

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/scm-api/internal/domain"
)

const weekDuration = 7 * 24 * time.Hour

// Week semana ISO-8601 (lunes a domingo; la semana 1 contiene el primer jueves del año).
// Se serializa como "2026-W05".
type Week struct {
	Year int
	Week int
}

// WeekOf devuelve la semana ISO a la que pertenece t (en la zona horaria de t).
func WeekOf(t time.Time) Week {
	y, w := t.ISOWeek()
	return Week{Year: y, Week: w}
}

// WeeksInYear devuelve 52 o 53: el 28 de diciembre siempre cae en la última semana ISO del año.
func WeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// Validate verifica que la semana exista en su año ISO.
func (w Week) Validate() error {
	if w.Year < 1 || w.Week < 1 || w.Week > WeeksInYear(w.Year) {
		return fmt.Errorf("%w: semana ISO %d-W%02d inexistente", domain.ErrInvalidInput, w.Year, w.Week)
	}
	return nil
}

// Start devuelve el lunes 00:00 UTC de la semana.
func (w Week) Start() time.Time {
	// El 4 de enero siempre pertenece a la semana 1.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	sinceMonday := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -sinceMonday+(w.Week-1)*7)
}

// AddWeeks desplaza la semana n posiciones (n negativo retrocede), cruzando años de 52 y 53 semanas.
func (w Week) AddWeeks(n int) Week {
	return WeekOf(w.Start().AddDate(0, 0, 7*n))
}

// WeeksUntil devuelve cuántas semanas hay desde w hasta other (negativo si other es anterior).
func (w Week) WeeksUntil(other Week) int {
	return int(other.Start().Sub(w.Start()) / weekDuration)
}

// Before informa si w es anterior a other.
func (w Week) Before(other Week) bool {
	if w.Year != other.Year {
		return w.Year < other.Year
	}
	return w.Week < other.Week
}

// After informa si w es posterior a other.
func (w Week) After(other Week) bool {
	return other.Before(w)
}

// IsZero informa si la semana no fue asignada.
func (w Week) IsZero() bool {
	return w.Year == 0 && w.Week == 0
}

func (w Week) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}

// ParseWeek interpreta "2026-W05" (también acepta "2026W05" y minúsculas).
func ParseWeek(s string) (Week, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	idx := strings.Index(s, "W")
	if idx <= 0 {
		return Week{}, fmt.Errorf("%w: semana %q, formato esperado AAAA-Www", domain.ErrInvalidInput, s)
	}
	year, err := strconv.Atoi(strings.TrimSuffix(s[:idx], "-"))
	if err != nil {
		return Week{}, fmt.Errorf("%w: año de semana %q", domain.ErrInvalidInput, s)
	}
	week, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return Week{}, fmt.Errorf("%w: número de semana %q", domain.ErrInvalidInput, s)
	}
	w := Week{Year: year, Week: week}
	if err := w.Validate(); err != nil {
		return Week{}, err
	}
	return w, nil
}

// MarshalText serializa la semana en formato ISO (usado por encoding/json).
func (w Week) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText interpreta la semana desde texto ISO.
func (w *Week) UnmarshalText(b []byte) error {
	parsed, err := ParseWeek(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
