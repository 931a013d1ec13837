package quota

import (
	"fmt"
	"strconv"
)

// LegacyUnlimited es el valor que los planes antiguos usaban como "ilimitado".
// Solo se interpreta al cargar; la lógica de negocio nunca compara contra él.
const LegacyUnlimited int64 = 999999

// Limit es un tope de plan: un entero no negativo o el centinela ilimitado.
// El valor cero de Limit es un tope de 0 (nada permitido).
type Limit struct {
	value     int64
	unlimited bool
}

// Unlimited devuelve el centinela explícito.
func Unlimited() Limit { return Limit{unlimited: true} }

// Of devuelve un tope finito.
func Of(n int64) Limit {
	if n < 0 {
		n = 0
	}
	return Limit{value: n}
}

// FromRaw normaliza los datos almacenados: nil y 999999 significan ilimitado.
func FromRaw(raw *int64) Limit {
	if raw == nil || *raw >= LegacyUnlimited {
		return Unlimited()
	}
	return Of(*raw)
}

// Raw devuelve la representación persistida (nil = ilimitado).
func (l Limit) Raw() *int64 {
	if l.unlimited {
		return nil
	}
	v := l.value
	return &v
}

func (l Limit) IsUnlimited() bool { return l.unlimited }

// Value devuelve el tope finito; para ilimitado devuelve -1.
func (l Limit) Value() int64 {
	if l.unlimited {
		return -1
	}
	return l.value
}

// Allows indica si con current unidades existentes se admite una más.
func (l Limit) Allows(current int64) bool {
	return l.unlimited || current < l.value
}

// Ratio devuelve current/limit en porcentaje (0 para ilimitado o tope 0).
func (l Limit) Ratio(current int64) float64 {
	if l.unlimited || l.value == 0 {
		return 0
	}
	return float64(current) * 100 / float64(l.value)
}

func (l Limit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return strconv.FormatInt(l.value, 10)
}

// MarshalJSON serializa ilimitado como null.
func (l Limit) MarshalJSON() ([]byte, error) {
	if l.unlimited {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(l.value, 10)), nil
}

// UnmarshalJSON acepta null, "unlimited" o un entero (999999 se normaliza).
func (l *Limit) UnmarshalJSON(b []byte) error {
	s := string(b)
	switch s {
	case "null", `"unlimited"`:
		*l = Unlimited()
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("límite inválido %q: %w", s, err)
	}
	*l = FromRaw(&n)
	return nil
}
