package usecase_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/application/usecase"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/testutil"
)

type fakeStorage struct {
	keys  []string
	bytes int64
}

func (f *fakeStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	n, err := io.Copy(io.Discard, body)
	f.keys = append(f.keys, key)
	f.bytes += n
	return err
}

func (f *fakeStorage) URL(key string) string { return "https://cdn.test/" + key }

type suite struct {
	env        *testutil.Env
	tenants    *usecase.TenantUseCase
	warehouses *usecase.WarehouseUseCase
	users      *usecase.UserUseCase
	products   *usecase.ProductUseCase
	parties    *usecase.PartyUseCase
	verify     *usecase.VerificationUseCase
	storage    *fakeStorage
}

func newSuite(t *testing.T) *suite {
	t.Helper()
	env := testutil.NewEnv(t)
	log := env.Log.Zerolog()
	cache := ports.NopInvalidator{}
	storage := &fakeStorage{}
	verify := usecase.NewVerificationUseCase(env.Store, env.Clock)
	return &suite{
		env:        env,
		tenants:    usecase.NewTenantUseCase(env.Store, env.Manager, verify, storage, cache, log, env.Clock),
		warehouses: usecase.NewWarehouseUseCase(env.Store, env.Guard, cache, log, env.Clock),
		users:      usecase.NewUserUseCase(env.Store, env.Guard, cache, log, env.Clock),
		products:   usecase.NewProductUseCase(env.Store, env.Guard, storage, cache, log, env.Clock),
		parties:    usecase.NewPartyUseCase(env.Store, cache, log, env.Clock),
		verify:     verify,
		storage:    storage,
	}
}

func signup() dto.SignupRequest {
	return dto.SignupRequest{
		Name: "Boutique Lumière", Email: "Patron@Lumiere.test", Username: "patron",
		Password: "secret-123", FirstName: "Léa",
	}
}

var codeRe = regexp.MustCompile(`\b(\d{6})\b`)

// ─── Alta de entreprise ───────────────────────────────────────────────────

func TestSignup_CreaEntrepriseBoutiqueYSuperadmin(t *testing.T) {
	s := newSuite(t)
	res, err := s.tenants.Signup(context.Background(), signup())
	require.NoError(t, err)

	assert.Len(t, res.Tenant.ID, usecase.TenantIDLength)
	assert.Equal(t, strings.ToUpper(res.Tenant.ID), res.Tenant.ID)
	assert.Equal(t, "patron@lumiere.test", res.Tenant.Email)
	assert.Equal(t, "Boutique Lumière", res.Warehouse.Name, "sin nombre explícito la boutique toma el de la entreprise")
	assert.Equal(t, entity.RoleSuperadmin, res.User.Role)
	assert.Equal(t, res.Tenant.ID, res.User.TenantID)
	assert.Equal(t, entity.PlanFree, res.Subscription.Plan.Name)
	assert.NotNil(t, res.Subscription.TrialEndAt)

	u, err := s.env.Store.Users().GetByUsername(context.Background(), "patron")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-123", u.PasswordHash)

	var sent bool
	for _, m := range s.env.Store.Messages() {
		if m.Kind == entity.NotifyEmailVerification && m.Recipients[0] == "patron@lumiere.test" {
			sent = true
		}
	}
	assert.True(t, sent, "el alta encola el código de verificación")
}

func TestSignup_UsuarioDuplicadoNoDejaRastro(t *testing.T) {
	s := newSuite(t)
	_, err := s.tenants.Signup(context.Background(), signup())
	require.NoError(t, err)

	req := signup()
	req.Name = "Autre"
	req.Email = "autre@x.test"
	_, err = s.tenants.Signup(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrDuplicate)

	env, err := s.tenants.List(context.Background(), testutil.Platform(), nil, dto.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, env.Count, "la entreprise del alta fallida se revierte")
}

func TestSignup_ValidaCampos(t *testing.T) {
	s := newSuite(t)
	req := signup()
	req.Password = "corta"
	req.Email = "no-es-correo"
	_, err := s.tenants.Signup(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	d := domain.DetailsOf(err)
	assert.Contains(t, d, "password")
	assert.Contains(t, d, "email")
}

// ─── Verificación de correo ───────────────────────────────────────────────

func lastCode(t *testing.T, s *suite, email string) string {
	t.Helper()
	var code string
	for _, m := range s.env.Store.Messages() {
		if m.Kind == entity.NotifyEmailVerification && m.Recipients[0] == email {
			code = codeRe.FindStringSubmatch(m.Body)[1]
		}
	}
	require.NotEmpty(t, code)
	return code
}

func TestVerifyCode_MarcaCorreoVerificado(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	_, err := s.tenants.Signup(ctx, signup())
	require.NoError(t, err)
	code := lastCode(t, s, "patron@lumiere.test")

	bad := "000000"
	if code == bad {
		bad = "111111"
	}
	require.ErrorIs(t, s.verify.VerifyCode(ctx, dto.VerifyCodeRequest{Email: "patron@lumiere.test", Code: bad}), domain.ErrInvalidInput)
	require.NoError(t, s.verify.VerifyCode(ctx, dto.VerifyCodeRequest{Email: "patron@lumiere.test", Code: code}))

	u, err := s.env.Store.Users().GetByUsername(ctx, "patron")
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)

	assert.Error(t, s.verify.VerifyCode(ctx, dto.VerifyCodeRequest{Email: "patron@lumiere.test", Code: code}), "un código usado no vale dos veces")
	assert.ErrorIs(t, s.verify.ResendCode(ctx, dto.ResendCodeRequest{Email: "patron@lumiere.test"}), domain.ErrInvalidInput)
}

func TestResendCode_CorreoDesconocidoEsSilencioso(t *testing.T) {
	s := newSuite(t)
	require.NoError(t, s.verify.ResendCode(context.Background(), dto.ResendCodeRequest{Email: "nadie@x.test"}))
	assert.Empty(t, s.env.Store.Messages())
}

// ─── Entreprises ──────────────────────────────────────────────────────────

func TestTenantList_FiltraPorTenant(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	s.env.Tenant(t, "TENANT0002", "B")
	boss := s.env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)

	own, err := s.tenants.List(context.Background(), testutil.Ctx(boss), nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, own.Results, 1)
	assert.Equal(t, "TENANT0001", own.Results[0].ID)

	all, err := s.tenants.List(context.Background(), testutil.Platform(), nil, dto.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Count)

	_, err = s.tenants.Get(context.Background(), testutil.Ctx(boss), "TENANT0002")
	assert.ErrorIs(t, err, domain.ErrNotFound, "otra entreprise se oculta como inexistente")
}

func TestTenantUpdate_IgnoraVaciosYExigeSuperadmin(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	boss := s.env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)
	clerk := s.env.User(t, "TENANT0001", "clerk", entity.RoleAdmin, nil)
	empty, city := "", "Lyon"

	res, err := s.tenants.Update(context.Background(), testutil.Ctx(boss), "TENANT0001",
		dto.UpdateTenantRequest{Name: &empty, City: &city})
	require.NoError(t, err)
	assert.Equal(t, "A", res.Name)
	assert.Equal(t, "Lyon", res.City)

	_, err = s.tenants.Update(context.Background(), testutil.Ctx(clerk), "TENANT0001", dto.UpdateTenantRequest{City: &city})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	off := false
	_, err = s.tenants.Update(context.Background(), testutil.Ctx(boss), "TENANT0001", dto.UpdateTenantRequest{Active: &off})
	assert.ErrorIs(t, err, domain.ErrForbidden, "solo la plataforma desactiva")
}

func TestTenantDelete_SoloPlataformaYSinDatos(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	s.env.Tenant(t, "TENANT0002", "B")
	s.env.Warehouse(t, "TENANT0002", "Dépôt")
	boss := s.env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)

	assert.ErrorIs(t, s.tenants.Delete(context.Background(), testutil.Ctx(boss), "TENANT0001"), domain.ErrForbidden)
	assert.ErrorIs(t, s.tenants.Delete(context.Background(), testutil.Platform(), "TENANT0002"), domain.ErrConflict)
	assert.ErrorIs(t, s.tenants.Delete(context.Background(), testutil.Platform(), "NOEXISTE00"), domain.ErrNotFound)
}

func TestUploadLogo_GuardaClaveOpaca(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	boss := s.env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)
	body := []byte("\x89PNG....")

	res, err := s.tenants.UploadLogo(context.Background(), testutil.Ctx(boss), "TENANT0001", usecase.Upload{
		Filename: "Logo.PNG", ContentType: "image/png", Size: int64(len(body)), Body: bytes.NewReader(body),
	})
	require.NoError(t, err)
	require.Len(t, s.storage.keys, 1)
	assert.Equal(t, s.storage.keys[0], res.LogoPath)
	assert.Regexp(t, `^tenants/TENANT0001/logo/[0-9a-f-]{36}\.png$`, res.LogoPath)

	_, err = s.tenants.UploadLogo(context.Background(), testutil.Ctx(boss), "TENANT0001", usecase.Upload{
		Filename: "doc.pdf", ContentType: "application/pdf", Size: 10, Body: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─── Boutiques y usuarios ─────────────────────────────────────────────────

func TestWarehouseCreate_RespetaCuota(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	s.env.Warehouse(t, "TENANT0001", "Centre")
	boss := s.env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)

	_, err := s.warehouses.Create(context.Background(), testutil.Ctx(boss), dto.CreateWarehouseRequest{Name: "Nord"})
	require.ErrorIs(t, err, domain.ErrQuotaExceeded, "Free admite una sola boutique")
	assert.Contains(t, err.Error(), "1/1")

	s.env.SetPlan(t, "TENANT0001", entity.PlanBasic)
	w, err := s.warehouses.Create(context.Background(), testutil.Ctx(boss), dto.CreateWarehouseRequest{Name: "Nord", Entreprise: "TENANT0002"})
	require.NoError(t, err)
	assert.Equal(t, "TENANT0001", w.TenantID, "el tenant del cuerpo se ignora")
}

func TestWarehouseCreate_UsuarioSinRolAdmin(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	u := s.env.User(t, "TENANT0001", "vendeur", entity.RoleUser, nil)
	_, err := s.warehouses.Create(context.Background(), testutil.Ctx(u), dto.CreateWarehouseRequest{Name: "Nord"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUserCreate_ContraseñaTemporalYCopiaAlSuperadmin(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	w := s.env.Warehouse(t, "TENANT0001", "Centre")
	boss := s.env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)

	res, err := s.users.Create(context.Background(), testutil.Ctx(boss), "", dto.CreateUserRequest{
		Username: "marie", Email: "Marie@Mail.test", WarehouseID: &w.ID, SendEmail: true,
	})
	require.NoError(t, err)
	assert.Len(t, res.TemporaryPassword, usecase.TempPasswordLength)
	assert.Equal(t, entity.RoleUser, res.User.Role)
	assert.Equal(t, "TENANT0001", res.User.TenantID)

	msgs := s.env.Store.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"marie@mail.test"}, msgs[0].Recipients)
	assert.Equal(t, []string{"boss@mail.test"}, msgs[0].CC)
	assert.Contains(t, msgs[0].Body, res.TemporaryPassword)
}

func TestUserCreate_Restricciones(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	s.env.Tenant(t, "TENANT0002", "B")
	other := s.env.Warehouse(t, "TENANT0002", "Ailleurs")
	admin := s.env.User(t, "TENANT0001", "admin", entity.RoleAdmin, nil)
	ctx := context.Background()

	_, err := s.users.Create(ctx, testutil.Ctx(admin), "", dto.CreateUserRequest{Username: "chef", Role: entity.RoleSuperadmin})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = s.users.Create(ctx, testutil.Ctx(admin), "", dto.CreateUserRequest{Username: "x1", WarehouseID: &other.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.users.Create(ctx, testutil.Ctx(admin), "", dto.CreateUserRequest{Username: "x2", SendEmail: true})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "enviar credenciales exige correo")

	// Free: 2 usuarios; admin ya cuenta como uno.
	_, err = s.users.Create(ctx, testutil.Ctx(admin), "", dto.CreateUserRequest{Username: "x3"})
	require.NoError(t, err)
	_, err = s.users.Create(ctx, testutil.Ctx(admin), "", dto.CreateUserRequest{Username: "x4"})
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
}

func TestUserGet_OtroTenantEsNotFound(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	s.env.Tenant(t, "TENANT0002", "B")
	a := s.env.User(t, "TENANT0001", "a", entity.RoleAdmin, nil)
	b := s.env.User(t, "TENANT0002", "b", entity.RoleAdmin, nil)

	_, err := s.users.GetByID(context.Background(), testutil.Ctx(a), b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := s.users.List(context.Background(), testutil.Ctx(a), usecase.UserQuery{Tenant: "TENANT0002"}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Results, "pedir otro tenant devuelve vacío")
}

// ─── Productos ────────────────────────────────────────────────────────────

func productReq(sku string) dto.CreateProductRequest {
	return dto.CreateProductRequest{SKU: sku, Name: "Robe " + sku, PurchasePrice: decimal.NewFromInt(20), SalePrice: decimal.NewFromInt(45)}
}

func TestProductCreate_FuerzaTenantYDefaults(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	u := s.env.User(t, "TENANT0001", "vendeur", entity.RoleUser, nil)

	req := productReq("R-1")
	req.Entreprise = "TENANT0002"
	p, err := s.products.Create(context.Background(), testutil.Ctx(u), req)
	require.NoError(t, err)
	assert.Equal(t, "TENANT0001", p.TenantID)
	assert.Equal(t, usecase.DefaultCurrency, p.Currency)
	assert.Equal(t, entity.ProductStateNew, p.State)

	_, err = s.products.Create(context.Background(), testutil.Ctx(u), productReq("R-1"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	neg := productReq("R-2")
	neg.SalePrice = decimal.NewFromInt(-1)
	_, err = s.products.Create(context.Background(), testutil.Ctx(u), neg)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUpdate_BloqueaCambioDeEntreprise(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	u := s.env.User(t, "TENANT0001", "vendeur", entity.RoleAdmin, nil)
	p := s.env.Product(t, "TENANT0001", "R-1", 20, 45)
	other, empty, name := "TENANT0002", "", "Robe longue"

	_, err := s.products.Update(context.Background(), testutil.Ctx(u), p.ID, dto.UpdateProductRequest{Entreprise: &other})
	assert.ErrorIs(t, err, domain.ErrCrossTenant)

	res, err := s.products.Update(context.Background(), testutil.Ctx(u), p.ID, dto.UpdateProductRequest{Entreprise: &empty, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Robe longue", res.Name)
}

func TestProductUpdate_EnElTopeSeDeniega(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	s.env.SetPlan(t, "TENANT0001", entity.PlanFree) // máximo 100 productos
	u := s.env.User(t, "TENANT0001", "vendeur", entity.RoleAdmin, nil)
	p := s.env.Product(t, "TENANT0001", "R-0", 20, 45)
	name := "Robe longue"

	_, err := s.products.Update(context.Background(), testutil.Ctx(u), p.ID, dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err, "bajo el tope")

	for i := 1; i < 100; i++ {
		s.env.Product(t, "TENANT0001", fmt.Sprintf("R-%d", i), 20, 45)
	}
	_, err = s.products.Update(context.Background(), testutil.Ctx(u), p.ID, dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
}

func TestProductDelete_ConStockEsConflicto(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	w := s.env.Warehouse(t, "TENANT0001", "Centre")
	admin := s.env.User(t, "TENANT0001", "admin", entity.RoleAdmin, nil)
	p := s.env.Product(t, "TENANT0001", "R-1", 20, 45)
	s.env.Stock(t, p.ID, w.ID, 3)

	assert.ErrorIs(t, s.products.Delete(context.Background(), testutil.Ctx(admin), p.ID), domain.ErrConflict)
	s.env.Stock(t, p.ID, w.ID, 0)
	require.NoError(t, s.products.Delete(context.Background(), testutil.Ctx(admin), p.ID))
	_, err := s.products.GetByID(context.Background(), testutil.Ctx(admin), p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductList_CargaCategoria(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	u := s.env.User(t, "TENANT0001", "vendeur", entity.RoleUser, nil)
	cat, err := s.parties.CreateCategory(context.Background(), testutil.Ctx(u), "", dto.CreateCategoryRequest{Name: "Robes"})
	require.NoError(t, err)

	req := productReq("R-1")
	req.CategoryID = &cat.ID
	_, err = s.products.Create(context.Background(), testutil.Ctx(u), req)
	require.NoError(t, err)

	list, err := s.products.List(context.Background(), testutil.Ctx(u), usecase.ProductQuery{}, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Results, 1)
	assert.Equal(t, "Robes", list.Results[0].CategoryName)
}

func TestProductExport_RequiereBandera(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	u := s.env.User(t, "TENANT0001", "vendeur", entity.RoleUser, nil)
	s.env.Product(t, "TENANT0001", "R-1", 20, 45)

	_, err := s.products.Export(context.Background(), testutil.Ctx(u), "")
	require.ErrorIs(t, err, domain.ErrFeatureUnavailable)

	s.env.SetPlan(t, "TENANT0001", entity.PlanBasic)
	out, err := s.products.Export(context.Background(), testutil.Ctx(u), "")
	require.NoError(t, err)
	recs, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "sku", recs[0][0])
	assert.Equal(t, "R-1", recs[1][0])
}

func TestProductImport_CuotaPorFilaYOmiteExistentes(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	s.env.SetPlan(t, "TENANT0001", entity.PlanBasic)
	admin := s.env.User(t, "TENANT0001", "admin", entity.RoleAdmin, nil)
	s.env.Product(t, "TENANT0001", "R-1", 20, 45)

	body := "sku,name,sale_price,purchase_price\n" +
		"R-1,Déjà là,45,20\n" +
		"R-2,Jupe,\"39,90\",15\n" +
		"R-3,,10,5\n" +
		"R-4,Veste,abc,5\n"
	res, err := s.products.Import(context.Background(), testutil.Ctx(admin), "", strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Contains(t, res.Errors, "ligne 4")
	assert.Contains(t, res.Errors, "ligne 5")

	p, err := s.env.Store.Products().GetBySKU(context.Background(), "R-2")
	require.NoError(t, err)
	assert.True(t, p.SalePrice.Equal(decimal.RequireFromString("39.90")))
}

func TestProductImport_SinColumnasObligatorias(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	s.env.SetPlan(t, "TENANT0001", entity.PlanBasic)
	admin := s.env.User(t, "TENANT0001", "admin", entity.RoleAdmin, nil)
	_, err := s.products.Import(context.Background(), testutil.Ctx(admin), "", strings.NewReader("sku,name\nA,B\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─── Terceros ─────────────────────────────────────────────────────────────

func TestParties_PorTipoYTenant(t *testing.T) {
	s := newSuite(t)
	s.env.Tenant(t, "TENANT0001", "A")
	s.env.Tenant(t, "TENANT0002", "B")
	a := s.env.User(t, "TENANT0001", "a", entity.RoleUser, nil)
	b := s.env.User(t, "TENANT0002", "b", entity.RoleUser, nil)
	ctx := context.Background()

	c, err := s.parties.Create(ctx, testutil.Ctx(a), entity.PartyCustomer, "", dto.CreatePartyRequest{Name: "Mme Durand"})
	require.NoError(t, err)
	_, err = s.parties.Create(ctx, testutil.Ctx(a), entity.PartySupplier, "", dto.CreatePartyRequest{Name: "Textiles SA"})
	require.NoError(t, err)
	_, err = s.parties.Create(ctx, testutil.Ctx(a), "vip", "", dto.CreatePartyRequest{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := s.parties.List(ctx, testutil.Ctx(a), entity.PartyCustomer, "", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Results, 1)
	assert.Equal(t, "Mme Durand", list.Results[0].Name)

	_, err = s.parties.Get(ctx, testutil.Ctx(b), entity.PartyCustomer, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.parties.Get(ctx, testutil.Ctx(a), entity.PartySupplier, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "el tipo forma parte de la identidad")
}
