package event

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/database"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
)

type EventResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Active    bool   `json:"active"`
}

type CreateEventRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"` // "YYYY-MM-DD"
	EndDate   string `json:"end_date"`
}

type UpdateEventRequest struct {
	Name      *string `json:"name"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

func toEventResponse(ev models.Event) EventResponse {
	return EventResponse{
		ID:        ev.ID,
		Name:      ev.Name,
		StartDate: ev.StartDate.Format("2006-01-02"),
		EndDate:   ev.EndDate.Format("2006-01-02"),
		Active:    ev.Active,
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// GET /api/events
func ListEventsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var events []models.Event
		if err := database.DB.Order("start_date desc").Find(&events).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Eventos não listados")
		}

		res := make([]EventResponse, 0, len(events))
		for _, ev := range events {
			res = append(res, toEventResponse(ev))
		}
		return c.JSON(res)
	}
}

// GET /api/events/active — 204 quando nenhum evento está ativo
func GetActiveEventHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ev models.Event
		err := database.DB.Where("active = ?", true).First(&ev).Error
		if err == gorm.ErrRecordNotFound {
			return c.SendStatus(fiber.StatusNoContent)
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Evento ativo não consultado")
		}
		return c.JSON(toEventResponse(ev))
	}
}

// POST /api/admin/events
func CreateEventHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateEventRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome é obrigatório")
		}

		start, err := parseDate(body.StartDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start_date inválida, formato 'YYYY-MM-DD'")
		}
		end, err := parseDate(body.EndDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "end_date inválida, formato 'YYYY-MM-DD'")
		}
		if !end.After(start) {
			return fiber.NewError(fiber.StatusBadRequest, "end_date tem de ser posterior a start_date")
		}

		var existing models.Event
		if err := database.DB.Where("name = ?", body.Name).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Já existe um evento com este nome")
		}

		ev := models.Event{
			Name:      body.Name,
			StartDate: start,
			EndDate:   end,
		}

		if err := database.DB.Create(&ev).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Evento não criado")
		}

		return c.Status(fiber.StatusCreated).JSON(toEventResponse(ev))
	}
}

// PUT /api/admin/events/:id
func UpdateEventHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ev models.Event
		if err := database.DB.First(&ev, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Evento não encontrado")
		}

		var body UpdateEventRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Name != nil {
			if *body.Name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome não pode ser vazio")
			}
			ev.Name = *body.Name
		}
		if body.StartDate != nil {
			start, err := parseDate(*body.StartDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start_date inválida")
			}
			ev.StartDate = start
		}
		if body.EndDate != nil {
			end, err := parseDate(*body.EndDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end_date inválida")
			}
			ev.EndDate = end
		}
		if !ev.EndDate.After(ev.StartDate) {
			return fiber.NewError(fiber.StatusBadRequest, "end_date tem de ser posterior a start_date")
		}

		if err := database.DB.Save(&ev).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Evento não atualizado")
		}

		return c.JSON(toEventResponse(ev))
	}
}

// POST /api/admin/events/:id/activate — no máximo um evento ativo de cada
// vez: desativa os restantes na mesma transação
func ActivateEventHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ev models.Event
		if err := database.DB.First(&ev, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Evento não encontrado")
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Event{}).Where("active = ?", true).Update("active", false).Error; err != nil {
				return err
			}
			return tx.Model(&models.Event{}).Where("id = ?", ev.ID).Update("active", true).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Evento não ativado")
		}

		ev.Active = true
		return c.JSON(toEventResponse(ev))
	}
}
