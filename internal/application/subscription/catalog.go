package subscription

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// Catalog planes en memoria. Se carga al arrancar; Reload reemplaza el mapa de forma atómica.
type Catalog struct {
	mu     sync.RWMutex
	byID   map[int64]*entity.Plan
	byName map[string]*entity.Plan
	list   []*entity.Plan
}

// NewCatalog construye el catálogo a partir de planes ya normalizados.
func NewCatalog(plans []*entity.Plan) *Catalog {
	c := &Catalog{}
	c.Replace(plans)
	return c
}

// LoadCatalog lee los planes del repositorio.
func LoadCatalog(ctx context.Context, repo repository.PlanRepository) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Reload(ctx, repo); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload vuelve a leer los planes y reemplaza el contenido.
func (c *Catalog) Reload(ctx context.Context, repo repository.PlanRepository) error {
	plans, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("catálogo de planes: %w", err)
	}
	c.Replace(plans)
	return nil
}

// Replace sustituye todos los planes.
func (c *Catalog) Replace(plans []*entity.Plan) {
	byID := make(map[int64]*entity.Plan, len(plans))
	byName := make(map[string]*entity.Plan, len(plans))
	list := make([]*entity.Plan, 0, len(plans))
	for _, p := range plans {
		byID[p.ID] = p
		byName[p.Name] = p
		list = append(list, p)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].SortOrder < list[j].SortOrder })
	c.mu.Lock()
	c.byID, c.byName, c.list = byID, byName, list
	c.mu.Unlock()
}

// Get plan por nombre interno.
func (c *Catalog) Get(name string) (*entity.Plan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byName[name]
	return p, ok
}

// ByID plan por id.
func (c *Catalog) ByID(id int64) (*entity.Plan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

// ListActive planes activos ordenados por sort_order.
func (c *Catalog) ListActive() []*entity.Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*entity.Plan, 0, len(c.list))
	for _, p := range c.list {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// LimitFor tope de un recurso para el plan nombrado.
func (c *Catalog) LimitFor(planName string, r quota.Resource) (quota.Limit, bool) {
	p, ok := c.Get(planName)
	if !ok {
		return quota.Limit{}, false
	}
	return p.LimitFor(r), true
}

// Free plan por defecto. Si falta del catálogo se usa un plan sin nada permitido.
func (c *Catalog) Free() *entity.Plan {
	if p, ok := c.Get(entity.PlanFree); ok {
		return p
	}
	return &entity.Plan{Name: entity.PlanFree, Display: "Free", Limits: quota.Limits{
		quota.ResourceWarehouses: quota.Of(0), quota.ResourceUsers: quota.Of(0), quota.ResourceProducts: quota.Of(0),
		quota.ResourceInvoices: quota.Of(0), quota.ResourceInventories: quota.Of(0), quota.ResourceTransfers: quota.Of(0),
	}}
}

// Resolve busca por id numérico, nombre interno o display, sin distinguir mayúsculas ni acentos.
func (c *Catalog) Resolve(ref string) (*entity.Plan, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if p, ok := c.ByID(id); ok {
			return p, true
		}
	}
	want := fold(ref)
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.list {
		if fold(p.Name) == want || fold(p.Display) == want {
			return p, true
		}
	}
	return nil, false
}

// fold quita diacríticos y aplica case folding ("Entreprise Élite" == "entreprise elite").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}
