package outbox

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// Constructores de mensajes. El cuerpo es texto plano; el renderizado HTML y SMTP quedan fuera.

// PlanChanged aviso de cambio de plan a los superadmins del tenant.
func PlanChanged(tenant *entity.Tenant, to []string, oldPlan, newPlan *entity.Plan) *entity.OutboxMessage {
	return &entity.OutboxMessage{
		TenantID:   tenant.ID,
		Kind:       entity.NotifyPlanChanged,
		Recipients: to,
		Subject:    fmt.Sprintf("[%s] Changement de plan : %s → %s", tenant.Name, oldPlan.Display, newPlan.Display),
		Body: fmt.Sprintf("Bonjour,\n\nL'abonnement de %s est passé du plan %s au plan %s.\n",
			tenant.Name, oldPlan.Display, newPlan.Display),
		Payload: payload(map[string]any{"old_plan": oldPlan.Name, "new_plan": newPlan.Name}),
	}
}

// TransferParty destinatario de un aviso de transferencia.
type TransferParty struct {
	Email string
	Role  string // initiator, superadmin, destination
}

// Transfer un mensaje por destinatario: iniciador (confirmación), superadmin (visibilidad)
// y admin de la boutique destino (recepción). El llamante ya eliminó duplicados.
func Transfer(tenantID string, to TransferParty, docRef, product string, qty int64, src, dst string) *entity.OutboxMessage {
	var intro string
	switch to.Role {
	case "initiator":
		intro = "Votre transfert a été enregistré."
	case "destination":
		intro = fmt.Sprintf("La boutique %s va recevoir un transfert.", dst)
	default:
		intro = "Un transfert inter-boutiques a été effectué."
	}
	return &entity.OutboxMessage{
		TenantID:   tenantID,
		Kind:       entity.NotifyTransfer,
		Recipients: []string{to.Email},
		Subject:    fmt.Sprintf("Transfert %s", docRef),
		Body: fmt.Sprintf("%s\n\nProduit : %s\nQuantité : %d\nDe : %s\nVers : %s\nRéférence : %s\n",
			intro, product, qty, src, dst, docRef),
		Payload: payload(map[string]any{"doc_ref": docRef, "role": to.Role, "quantity": qty}),
	}
}

// UserCreated credenciales al nuevo usuario con copia al superadmin si la dirección difiere.
func UserCreated(tenantID string, u *entity.User, tempPassword string, cc []string) *entity.OutboxMessage {
	return &entity.OutboxMessage{
		TenantID:   tenantID,
		Kind:       entity.NotifyUserCreated,
		Recipients: []string{u.Email},
		CC:         cc,
		Subject:    "Votre compte a été créé",
		Body: fmt.Sprintf("Bonjour %s,\n\nIdentifiant : %s\nMot de passe temporaire : %s\n\nMerci de le changer à la première connexion.\n",
			u.FullName(), u.Username, tempPassword),
		Payload: payload(map[string]any{"user_id": u.ID}),
	}
}

// LimitWarning aviso de umbral de uso alcanzado.
func LimitWarning(tenantID string, to []string, resource string, threshold int, current, limit int64) *entity.OutboxMessage {
	return &entity.OutboxMessage{
		TenantID:   tenantID,
		Kind:       entity.NotifyLimitWarning,
		Recipients: to,
		Subject:    fmt.Sprintf("Vous avez atteint %d%% de votre limite de %s", threshold, resource),
		Body: fmt.Sprintf("Utilisation actuelle : %d/%d %s (%d%%).\nPensez à passer à un plan supérieur.\n",
			current, limit, resource, threshold),
		Payload: payload(map[string]any{"resource": resource, "threshold": threshold, "current": current, "limit": limit}),
	}
}

// TrialEnding aviso de fin de periodo de prueba.
func TrialEnding(tenantID string, to []string, days int) *entity.OutboxMessage {
	return &entity.OutboxMessage{
		TenantID:   tenantID,
		Kind:       entity.NotifyTrialEnding,
		Recipients: to,
		Subject:    fmt.Sprintf("Votre essai se termine dans %d jour(s)", days),
		Body:       fmt.Sprintf("Votre période d'essai se termine dans %d jour(s).\n", days),
		Payload:    payload(map[string]any{"days": days}),
	}
}

// ExpiryWarning aviso de vencimiento de la suscripción.
func ExpiryWarning(tenantID string, to []string, days int) *entity.OutboxMessage {
	return &entity.OutboxMessage{
		TenantID:   tenantID,
		Kind:       entity.NotifyExpiryWarning,
		Recipients: to,
		Subject:    fmt.Sprintf("Votre abonnement expire dans %d jour(s)", days),
		Body:       fmt.Sprintf("Votre abonnement expire dans %d jour(s). Pensez à le renouveler.\n", days),
		Payload:    payload(map[string]any{"days": days}),
	}
}

// StockLine fila de un aviso de stock.
type StockLine struct {
	SKU, Product, Warehouse string
	Quantity, MinStock      int64
}

// StockAlert un mensaje por (tenant, tipo) agrupando todas las filas.
func StockAlert(tenantID, kind string, to []string, lines []StockLine) *entity.OutboxMessage {
	title := "Stock faible"
	if kind == entity.NotifyStockOut {
		title = "Rupture de stock"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s : %d produit(s)\n\n", title, len(lines))
	for _, l := range lines {
		fmt.Fprintf(&b, "- %s %s (%s) : %d / min %d\n", l.SKU, l.Product, l.Warehouse, l.Quantity, l.MinStock)
	}
	return &entity.OutboxMessage{
		TenantID:   tenantID,
		Kind:       kind,
		Recipients: to,
		Subject:    fmt.Sprintf("%s : %d produit(s)", title, len(lines)),
		Body:       b.String(),
		Payload:    payload(map[string]any{"rows": len(lines)}),
	}
}

// Summary resumen periódico de uso.
func Summary(tenantID string, to []string, lines []string) *entity.OutboxMessage {
	return &entity.OutboxMessage{
		TenantID:   tenantID,
		Kind:       entity.NotifySummary,
		Recipients: to,
		Subject:    "Résumé de votre activité",
		Body:       strings.Join(lines, "\n") + "\n",
	}
}

// EmailCode código de verificación de correo.
func EmailCode(tenantID, email, code string, minutes int) *entity.OutboxMessage {
	return &entity.OutboxMessage{
		TenantID:   tenantID,
		Kind:       entity.NotifyEmailVerification,
		Recipients: []string{email},
		Subject:    "Code de vérification",
		Body:       fmt.Sprintf("Votre code de vérification est %s. Il est valable %d minutes.\n", code, minutes),
	}
}

// Contact reenvía el formulario de contacto a la dirección de la plataforma.
func Contact(platform string, m *entity.ContactMessage) *entity.OutboxMessage {
	return &entity.OutboxMessage{
		Kind:       entity.NotifyContact,
		Recipients: []string{platform},
		Subject:    "[Contact] " + m.Subject,
		Body:       fmt.Sprintf("De : %s <%s>\n\n%s\n", m.Name, m.Email, m.Message),
	}
}
