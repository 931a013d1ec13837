package subscription

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

type plansFile struct {
	Plans []planYAML `yaml:"plans"`
}

type planYAML struct {
	Name         string          `yaml:"name"`
	Display      string          `yaml:"display"`
	MonthlyPrice string          `yaml:"monthly_price"`
	YearlyPrice  string          `yaml:"yearly_price"`
	AlertLevel   string          `yaml:"alert_level"`
	SupportLevel string          `yaml:"support_level"`
	SortOrder    int             `yaml:"sort_order"`
	Active       *bool           `yaml:"active"`
	Limits       map[string]any  `yaml:"limits"`
	Features     map[string]bool `yaml:"features"`
}

// ParsePlans lee el catálogo en YAML. Los topes null, "unlimited" o 999999 se normalizan a ilimitado.
func ParsePlans(r io.Reader) ([]*entity.Plan, error) {
	var f plansFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("planes: yaml: %w", err)
	}
	out := make([]*entity.Plan, 0, len(f.Plans))
	for i, py := range f.Plans {
		p, err := py.toPlan()
		if err != nil {
			return nil, fmt.Errorf("planes[%d] %s: %w", i, py.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// LoadPlansFile abre y parsea el archivo de planes.
func LoadPlansFile(path string) ([]*entity.Plan, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("planes: %w", err)
	}
	defer fh.Close()
	return ParsePlans(fh)
}

// Seed inserta o actualiza los planes por nombre en una sola transacción.
func Seed(ctx context.Context, tx repository.TxRunner, plans []*entity.Plan) error {
	return tx.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		for _, p := range plans {
			if err := uow.Plans().Upsert(ctx, p); err != nil {
				return fmt.Errorf("planes: upsert %s: %w", p.Name, err)
			}
		}
		return nil
	})
}

func (py planYAML) toPlan() (*entity.Plan, error) {
	if py.Name == "" {
		return nil, fmt.Errorf("nombre vacío")
	}
	monthly, err := parsePrice(py.MonthlyPrice)
	if err != nil {
		return nil, fmt.Errorf("monthly_price: %w", err)
	}
	yearly, err := parsePrice(py.YearlyPrice)
	if err != nil {
		return nil, fmt.Errorf("yearly_price: %w", err)
	}
	limits := make(quota.Limits, len(quota.Resources))
	for _, r := range quota.Resources {
		limits[r] = quota.Unlimited()
	}
	for k, v := range py.Limits {
		r, ok := quota.ParseResource(k)
		if !ok {
			return nil, fmt.Errorf("recurso desconocido %q", k)
		}
		lim, err := parseLimit(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		limits[r] = lim
	}
	flags := make(quota.Flags, len(py.Features))
	for k, v := range py.Features {
		f, ok := quota.ParseFeature(k)
		if !ok {
			return nil, fmt.Errorf("funcionalidad desconocida %q", k)
		}
		flags[f] = v
	}
	active := true
	if py.Active != nil {
		active = *py.Active
	}
	display := py.Display
	if display == "" {
		display = py.Name
	}
	return &entity.Plan{
		Name: py.Name, Display: display, MonthlyPrice: monthly, YearlyPrice: yearly,
		Limits: limits, Features: flags, AlertLevel: py.AlertLevel, SupportLevel: py.SupportLevel,
		Active: active, SortOrder: py.SortOrder,
	}, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseLimit(v any) (quota.Limit, error) {
	switch x := v.(type) {
	case nil:
		return quota.Unlimited(), nil
	case string:
		if x == "unlimited" {
			return quota.Unlimited(), nil
		}
		return quota.Limit{}, fmt.Errorf("valor %q inválido", x)
	case int:
		n := int64(x)
		return quota.FromRaw(&n), nil
	case int64:
		return quota.FromRaw(&x), nil
	default:
		return quota.Limit{}, fmt.Errorf("tipo %T inválido", v)
	}
}
