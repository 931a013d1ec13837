package quota

import (
	"github.com/jhoicas/Boutique-api/internal/domain"
)

// Limits topes por recurso. Un recurso ausente del mapa se trata como ilimitado.
type Limits map[Resource]Limit

// For devuelve el tope para r.
func (l Limits) For(r Resource) Limit {
	if lim, ok := l[r]; ok {
		return lim
	}
	return Unlimited()
}

// Flags banderas de funcionalidad activas.
type Flags map[Feature]bool

// Enabled indica si f está activa (ausente = desactivada).
func (f Flags) Enabled(feat Feature) bool { return f[feat] }

// Counters uso actual por recurso.
type Counters map[Resource]int64

// Verb tipo de acción sobre un recurso.
type Verb int

const (
	VerbRead Verb = iota
	VerbCreate
	VerbUpdate
	VerbDelete
)

// Action acción a admitir. Resource vacío = sin tope; Feature vacío = sin bandera.
type Action struct {
	Verb     Verb
	Resource Resource
	Feature  Feature
}

// Decide es la regla pura de admisión. Devuelve nil (admitido) o un *domain.Error.
//   - Lecturas y borrados nunca se deniegan por cuota.
//   - Una bandera requerida y desactivada deniega siempre, incluso en lectura.
//   - Create o update de un recurso con tope: current >= limit deniega.
func Decide(limits Limits, flags Flags, usage Counters, a Action) error {
	if a.Feature != "" && !flags.Enabled(a.Feature) {
		return domain.NewFeatureUnavailable(string(a.Feature))
	}
	if a.Verb == VerbRead || a.Verb == VerbDelete || a.Resource == "" {
		return nil
	}
	lim := limits.For(a.Resource)
	current := usage[a.Resource]
	// create y update comparten la regla: current >= limit deniega.
	if !lim.Allows(current) {
		return domain.NewQuotaExceeded(a.Resource.Label(), current, lim.Value())
	}
	return nil
}

// Thresholds porcentajes de aviso de uso.
var Thresholds = []int{80, 95}

// Crossed devuelve los umbrales alcanzados por current respecto a lim (vacío si ilimitado).
func Crossed(lim Limit, current int64) []int {
	if lim.IsUnlimited() || lim.Value() == 0 {
		return nil
	}
	ratio := lim.Ratio(current)
	var out []int
	for _, t := range Thresholds {
		if ratio >= float64(t) {
			out = append(out, t)
		}
	}
	return out
}
