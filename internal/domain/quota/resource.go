package quota

// Resource identifica un recurso con tope de plan.
type Resource string

const (
	ResourceWarehouses  Resource = "warehouses"
	ResourceUsers       Resource = "users"
	ResourceProducts    Resource = "products"
	ResourceInvoices    Resource = "invoices_per_month"
	ResourceInventories Resource = "inventories_per_month"
	ResourceTransfers   Resource = "transfers_per_month"
)

// Resources todos los recursos con tope, en orden estable.
var Resources = []Resource{
	ResourceWarehouses,
	ResourceUsers,
	ResourceProducts,
	ResourceInvoices,
	ResourceInventories,
	ResourceTransfers,
}

// Label nombre legible usado en los mensajes de denegación.
func (r Resource) Label() string {
	switch r {
	case ResourceWarehouses:
		return "boutiques"
	case ResourceUsers:
		return "utilisateurs"
	case ResourceProducts:
		return "produits"
	case ResourceInvoices:
		return "factures du mois"
	case ResourceInventories:
		return "inventaires du mois"
	case ResourceTransfers:
		return "transferts du mois"
	default:
		return string(r)
	}
}

// Monthly indica si el contador del recurso se reinicia cada mes.
func (r Resource) Monthly() bool {
	return r == ResourceInvoices || r == ResourceInventories || r == ResourceTransfers
}

// ParseResource acepta el nombre interno o el alias corto (users, products...).
func ParseResource(s string) (Resource, bool) {
	switch s {
	case "warehouses", "boutiques", "max_warehouses":
		return ResourceWarehouses, true
	case "users", "max_users":
		return ResourceUsers, true
	case "products", "produits", "max_products":
		return ResourceProducts, true
	case "invoices", "invoices_per_month", "max_invoices_per_month":
		return ResourceInvoices, true
	case "inventories", "inventories_per_month", "max_inventories_per_month":
		return ResourceInventories, true
	case "transfers", "transfers_per_month", "max_transfers_per_month":
		return ResourceTransfers, true
	}
	return "", false
}

// Feature bandera de funcionalidad de plan.
type Feature string

const (
	FeatureInventory      Feature = "inventory"
	FeatureTransfers      Feature = "transfers"
	FeatureBarcode        Feature = "barcode"
	FeaturePartners       Feature = "partners"
	FeatureExportCSV      Feature = "export_csv"
	FeatureExportExcel    Feature = "export_excel"
	FeatureImportCSV      Feature = "import_csv"
	FeatureAPI            Feature = "api"
	FeatureMultiTenant    Feature = "multi_tenant"
	FeatureAnalytics      Feature = "analytics"
	FeatureCustomBranding Feature = "custom_branding"
)

// Features todas las banderas conocidas.
var Features = []Feature{
	FeatureInventory,
	FeatureTransfers,
	FeatureBarcode,
	FeaturePartners,
	FeatureExportCSV,
	FeatureExportExcel,
	FeatureImportCSV,
	FeatureAPI,
	FeatureMultiTenant,
	FeatureAnalytics,
	FeatureCustomBranding,
}

// ParseFeature valida un nombre de bandera.
func ParseFeature(s string) (Feature, bool) {
	for _, f := range Features {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}
