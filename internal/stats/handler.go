package stats

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
)

// GET /api/statistics?event_id=1&state=confirmed&mode=sold|catalog
func EventSummaryHandler(agg *Aggregator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var eventID uint
		if eidStr := c.Query("event_id"); eidStr != "" {
			if _, err := fmt.Sscan(eidStr, &eventID); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "event_id inválido")
			}
		}

		var stateFilter *models.OrderState
		if stateStr := c.Query("state"); stateStr != "" {
			state := models.OrderState(stateStr)
			if state != models.OrderStateConfirmed && state != models.OrderStateVoid {
				return fiber.NewError(fiber.StatusBadRequest, "state inválido (confirmed|void)")
			}
			stateFilter = &state
		}

		mode := ModeSoldOnly
		switch c.Query("mode", "sold") {
		case "sold":
			mode = ModeSoldOnly
		case "catalog":
			mode = ModeFullCatalog
		default:
			return fiber.NewError(fiber.StatusBadRequest, "mode inválido (sold|catalog)")
		}

		summary, err := agg.EventSummary(eventID, stateFilter, mode)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				// nunca responder com zeros quando a leitura falhou
				log.Printf("[ERROR] estatísticas do evento %d indisponíveis: %v", eventID, err)
				return fiber.NewError(fiber.StatusServiceUnavailable, "Estatísticas temporariamente indisponíveis, tenta novamente")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao calcular estatísticas")
		}

		return c.JSON(summary)
	}
}
