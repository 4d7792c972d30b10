package report

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/database"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/stats"
)

// GET /api/reports/event/:id/xlsx — relatório completo, catálogo inteiro
// (artigos sem vendas aparecem com quantidade 0)
func EventReportHandler(agg *stats.Aggregator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var eventID uint
		if _, err := fmt.Sscan(c.Params("id"), &eventID); err != nil || eventID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var ev models.Event
		if err := database.DB.First(&ev, "id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Evento não encontrado")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Evento não consultado")
		}

		summary, err := agg.EventSummary(eventID, nil, stats.ModeFullCatalog)
		if err != nil {
			if errors.Is(err, stats.ErrUnavailable) {
				log.Printf("[ERROR] relatório do evento %d indisponível: %v", eventID, err)
				return fiber.NewError(fiber.StatusServiceUnavailable, "Relatório temporariamente indisponível, tenta novamente")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar o relatório")
		}

		f, err := BuildEventReport(&ev, summary)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao gerar o ficheiro")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="relatorio-%s.xlsx"`, ev.StartDate.Format("2006-01-02")))

		if err := f.Write(c.Response().BodyWriter()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Erro ao enviar o ficheiro")
		}
		return nil
	}
}
