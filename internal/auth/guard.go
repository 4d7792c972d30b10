package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
)

// Tabela estática de acesso por prefixo de rota. O ledger e o agregador
// nunca avaliam permissões — confiam que o pedido já passou por aqui.
type routeAccess struct {
	prefix string
	roles  []models.UserRole
}

var accessTable = []routeAccess{
	// base: qualquer perfil autenticado
	{"/api", []models.UserRole{models.RoleAdmin, models.RoleOperator}},
	// prefixos mais longos sobrepõem-se à entrada base
	{"/api/admin", []models.UserRole{models.RoleAdmin}},
	{"/api/reports", []models.UserRole{models.RoleAdmin}},
	{"/api/audit-logs", []models.UserRole{models.RoleAdmin}},
}

// IsAllowed procura o prefixo registado mais longo que cobre o caminho; se
// nenhum cobrir, a rota é pública. Com correspondência, o perfil tem de
// pertencer ao conjunto permitido.
func IsAllowed(path string, role models.UserRole) bool {
	var match *routeAccess
	for i := range accessTable {
		entry := &accessTable[i]
		if !strings.HasPrefix(path, entry.prefix) {
			continue
		}
		if match == nil || len(entry.prefix) > len(match.prefix) {
			match = entry
		}
	}

	if match == nil {
		return true
	}
	for _, r := range match.roles {
		if r == role {
			return true
		}
	}
	return false
}

// RequireAccess aplica a tabela de prefixos ao pedido atual. Corre depois do
// JWTMiddleware, que já colocou o perfil no contexto.
func RequireAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Não foi possível determinar o perfil")
		}
		if !IsAllowed(c.Path(), role) {
			return fiber.NewError(fiber.StatusForbidden, "Sem permissão para esta operação")
		}
		return c.Next()
	}
}
