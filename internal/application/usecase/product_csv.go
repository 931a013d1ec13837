package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Boutique-api/internal/application/audit"
	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// csvColumns cabecera del export; el import acepta cualquier subconjunto que incluya sku, name y sale_price.
var csvColumns = []string{
	"sku", "barcode", "name", "description", "category", "purchase_price", "sale_price", "wholesale_price",
	"currency", "unit_of_measure", "min_stock", "max_stock", "reorder_point", "state", "active", "total_quantity",
}

// MaxImportRows filas máximas por importación.
const MaxImportRows = 5000

// Export catálogo del tenant en CSV (bandera export_csv).
func (uc *ProductUseCase) Export(ctx context.Context, sc entity.SecurityContext, requested string) ([]byte, error) {
	tenantID, empty := dto.ScopeTenant(sc, requested)
	if empty || tenantID == "" {
		return nil, domain.NewValidation(map[string]string{"entreprise": "requerida para exportar"})
	}
	if err := uc.guard.Admit(ctx, uc.store, tenantID, quota.Action{Verb: quota.VerbRead, Feature: quota.FeatureExportCSV}); err != nil {
		return nil, err
	}
	views, _, err := uc.store.Products().List(ctx, repository.ProductFilter{TenantID: tenantID}, repository.Page{})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvColumns); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	for _, v := range views {
		barcode := ""
		if v.Barcode != nil {
			barcode = *v.Barcode
		}
		wholesale := ""
		if v.WholesalePrice != nil {
			wholesale = v.WholesalePrice.String()
		}
		reorder := ""
		if v.ReorderPoint != nil {
			reorder = strconv.FormatInt(*v.ReorderPoint, 10)
		}
		rec := []string{
			v.SKU, barcode, v.Name, v.Description, v.CategoryName, v.PurchasePrice.String(), v.SalePrice.String(), wholesale,
			v.Currency, v.UnitOfMeasure, strconv.FormatInt(v.MinStock, 10), strconv.FormatInt(v.MaxStock, 10), reorder,
			v.State, strconv.FormatBool(v.Active), strconv.FormatInt(v.TotalQuantity, 10),
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return buf.Bytes(), nil
}

type csvRow map[string]string

func (r csvRow) dec(key string, fields map[string]string) decimal.Decimal {
	s := strings.TrimSpace(r[key])
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		fields[key] = "decimal inválido"
	}
	return d
}

func (r csvRow) int(key string, fields map[string]string) int64 {
	s := strings.TrimSpace(r[key])
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fields[key] = "entero inválido"
	}
	return n
}

// request convierte la fila en un alta. categories resuelve nombre de categoría a id.
func (r csvRow) request(categories map[string]int64) (dto.CreateProductRequest, error) {
	fields := map[string]string{}
	in := dto.CreateProductRequest{
		SKU: strings.TrimSpace(r["sku"]), Name: strings.TrimSpace(r["name"]), Description: r["description"],
		PurchasePrice: r.dec("purchase_price", fields), SalePrice: r.dec("sale_price", fields),
		Currency: strings.TrimSpace(r["currency"]), UnitOfMeasure: strings.TrimSpace(r["unit_of_measure"]),
		MinStock: r.int("min_stock", fields), MaxStock: r.int("max_stock", fields), State: strings.TrimSpace(r["state"]),
	}
	if b := strings.TrimSpace(r["barcode"]); b != "" {
		in.Barcode = &b
	}
	if strings.TrimSpace(r["wholesale_price"]) != "" {
		w := r.dec("wholesale_price", fields)
		in.WholesalePrice = &w
	}
	if strings.TrimSpace(r["reorder_point"]) != "" {
		n := r.int("reorder_point", fields)
		in.ReorderPoint = &n
	}
	if name := strings.TrimSpace(r["category"]); name != "" {
		id, ok := categories[strings.ToLower(name)]
		if !ok {
			fields["category"] = "categoría desconocida"
		} else {
			in.CategoryID = &id
		}
	}
	if len(fields) > 0 {
		return in, domain.NewValidation(fields)
	}
	return in, dto.Validate(in)
}

// Import crea los productos del CSV (bandera import_csv). Cada fila es su propia transacción
// y pasa por la cuota de productos; los SKU existentes del tenant se omiten.
func (uc *ProductUseCase) Import(ctx context.Context, sc entity.SecurityContext, requested string, body io.Reader) (*dto.ImportResult, error) {
	if !sc.IsAdmin() {
		return nil, domain.Errorf(domain.ErrForbidden, "solo un administrador importa productos")
	}
	tenantID, err := owner(sc, requested)
	if err != nil {
		return nil, err
	}
	if err := uc.guard.Admit(ctx, uc.store, tenantID, quota.Action{Verb: quota.VerbRead, Feature: quota.FeatureImportCSV}); err != nil {
		return nil, err
	}
	r := csv.NewReader(body)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, domain.NewValidation(map[string]string{"file": "CSV vacío o ilegible"})
	}
	index := map[string]int{}
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, need := range []string{"sku", "name", "sale_price"} {
		if _, ok := index[need]; !ok {
			return nil, domain.NewValidation(map[string]string{"file": "falta la columna " + need})
		}
	}
	cats, _, err := uc.store.Categories().List(ctx, tenantID, repository.Page{})
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	categories := make(map[string]int64, len(cats))
	for _, c := range cats {
		categories[strings.ToLower(c.Name)] = c.ID
	}

	res := &dto.ImportResult{Errors: map[string]string{}}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		key := "ligne " + strconv.Itoa(line)
		if err != nil {
			res.Errors[key] = "fila ilegible"
			continue
		}
		if line-1 > MaxImportRows {
			return nil, domain.NewValidation(map[string]string{"file": fmt.Sprintf("máximo %d filas", MaxImportRows)})
		}
		row := csvRow{}
		for name, i := range index {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		in, err := row.request(categories)
		if err != nil {
			res.Errors[key] = err.Error()
			continue
		}
		existing, err := uc.store.Products().GetBySKU(ctx, in.SKU)
		if err != nil {
			return nil, fmt.Errorf("import: %w", err)
		}
		if existing != nil {
			if existing.TenantID == tenantID {
				res.Skipped++
			} else {
				res.Errors[key] = "sku " + in.SKU + " ya utilizado"
			}
			continue
		}
		err = uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
			_, err := uc.createInTx(ctx, uow, tenantID, in)
			return err
		})
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrDuplicate),
			errors.Is(err, domain.ErrQuotaExceeded):
			res.Errors[key] = err.Error()
		default:
			return nil, err
		}
	}
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	err = uc.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return audit.RecordFor(ctx, uow, sc, tenantID, entity.AuditProductImport, "importación CSV de productos", nil,
			map[string]any{"created": res.Created, "skipped": res.Skipped, "errors": len(res.Errors)})
	})
	if err != nil {
		return nil, err
	}
	if res.Created > 0 {
		invalidate(ctx, uc.cache, uc.log, tenantID, ports.EndpointProducts, ports.EndpointSubscriptions)
	}
	return res, nil
}
