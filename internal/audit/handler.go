package audit

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/database"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
)

// GET /api/audit-logs?entity_type=order&entity_id=12&limit=100
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.AuditLog{})

		if et := c.Query("entity_type"); et != "" {
			dbq = dbq.Where("entity_type = ?", et)
		}
		if eidStr := c.Query("entity_id"); eidStr != "" {
			var eid uint
			if _, err := fmt.Sscan(eidStr, &eid); err != nil || eid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "entity_id inválido")
			}
			dbq = dbq.Where("entity_id = ?", eid)
		}

		limit := 100
		if lStr := c.Query("limit"); lStr != "" {
			if _, err := fmt.Sscan(lStr, &limit); err != nil || limit < 1 || limit > 1000 {
				return fiber.NewError(fiber.StatusBadRequest, "limit inválido (1-1000)")
			}
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at desc, id desc").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Registos de auditoria não listados")
		}

		return c.JSON(logs)
	}
}
