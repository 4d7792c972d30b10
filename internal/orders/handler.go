package orders

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/audit"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/auth"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/database"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/pricing"
)

type OrderLineRequest struct {
	ItemID   uint `json:"item_id"`
	Quantity int  `json:"quantity"`
}

type OrderRequest struct {
	CustomerName    string                 `json:"customer_name"`
	Contact         string                 `json:"contact"`
	FulfillmentType models.FulfillmentType `json:"fulfillment_type"` // default eat_in
	Notes           string                 `json:"notes"`
	EventID         uint                   `json:"event_id"`
	Lines           []OrderLineRequest     `json:"lines"`
}

type OrderLineResponse struct {
	ItemID                uint            `json:"item_id"`
	Quantity              int             `json:"quantity"`
	UnitPriceAtOrder      decimal.Decimal `json:"unit_price_at_order"`
	TaxRatePercentAtOrder int             `json:"tax_rate_percent_at_order"`
	ExclusiveSubtotal     decimal.Decimal `json:"exclusive_subtotal"`
	TaxAmount             decimal.Decimal `json:"tax_amount"`
	LineTotal             decimal.Decimal `json:"line_total"`
}

type OrderResponse struct {
	ID                  uint                   `json:"id"`
	DailySequenceNumber int                    `json:"daily_sequence_number"`
	CreatedDateKey      string                 `json:"created_date_key"`
	CustomerName        string                 `json:"customer_name"`
	Contact             string                 `json:"contact,omitempty"`
	FulfillmentType     models.FulfillmentType `json:"fulfillment_type"`
	Notes               string                 `json:"notes,omitempty"`
	EventID             uint                   `json:"event_id"`
	State               models.OrderState      `json:"state"`
	SupersededByID      *uint                  `json:"superseded_by_id,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	Lines               []OrderLineResponse    `json:"lines"`
	OrderSubtotal       decimal.Decimal        `json:"order_subtotal"`
	OrderTax            decimal.Decimal        `json:"order_tax"`
	OrderTotal          decimal.Decimal        `json:"order_total"`
}

func toOrderResponse(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:                  o.ID,
		DailySequenceNumber: o.DailySequenceNumber,
		CreatedDateKey:      o.CreatedDateKey,
		CustomerName:        o.CustomerName,
		Contact:             o.Contact,
		FulfillmentType:     o.FulfillmentType,
		Notes:               o.Notes,
		EventID:             o.EventID,
		State:               o.State,
		SupersededByID:      o.SupersededByID,
		CreatedAt:           o.CreatedAt,
		Lines:               make([]OrderLineResponse, 0, len(o.Lines)),
		OrderSubtotal:       decimal.Zero,
		OrderTax:            decimal.Zero,
	}

	for _, line := range o.Lines {
		bd := pricing.Line(line.UnitPriceAtOrder, line.TaxRatePercentAtOrder, line.Quantity)
		resp.Lines = append(resp.Lines, OrderLineResponse{
			ItemID:                line.ItemID,
			Quantity:              line.Quantity,
			UnitPriceAtOrder:      line.UnitPriceAtOrder,
			TaxRatePercentAtOrder: line.TaxRatePercentAtOrder,
			ExclusiveSubtotal:     bd.ExclusiveSubtotal,
			TaxAmount:             bd.TaxAmount,
			LineTotal:             bd.Total(),
		})
		resp.OrderSubtotal = resp.OrderSubtotal.Add(bd.ExclusiveSubtotal)
		resp.OrderTax = resp.OrderTax.Add(bd.TaxAmount)
	}
	resp.OrderTotal = resp.OrderSubtotal.Add(resp.OrderTax)

	return resp
}

func actingUser(c *fiber.Ctx) (uint, string, error) {
	userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Não foi possível identificar o utilizador")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Utilizador não encontrado")
	}
	return userID, user.Name, nil
}

// mapLedgerError traduz a taxonomia do ledger para respostas HTTP. O caso
// OrphanedHeaderError fica registado com contexto para reconciliação manual
// e o cliente recebe uma mensagem genérica.
func mapLedgerError(err error) error {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return fiber.NewError(fiber.StatusBadRequest, vErr.Error())
	}
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Encomenda não encontrada")
	}
	if errors.Is(err, ErrInvalidTransition) {
		return fiber.NewError(fiber.StatusConflict, "Encomenda já anulada")
	}
	if errors.Is(err, ErrSequenceAllocationFailed) {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Sistema ocupado, tenta registar novamente")
	}
	var oErr *OrphanedHeaderError
	if errors.As(err, &oErr) {
		log.Printf("[ERROR] reconciliação manual necessária: %v (ts=%s)", oErr, time.Now().Format(time.RFC3339))
		return fiber.NewError(fiber.StatusInternalServerError, "Erro ao registar; tenta novamente ou contacta o suporte")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Erro ao processar a encomenda")
}

// POST /api/orders
func RegisterOrderHandler(ledger *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := actingUser(c)
		if err != nil {
			return err
		}

		var body OrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo do pedido inválido")
		}

		// sem event_id explícito, usar o evento ativo
		if body.EventID == 0 {
			var active models.Event
			if err := database.DB.Where("active = ?", true).First(&active).Error; err == nil {
				body.EventID = active.ID
			}
		}

		in := NewOrder{
			CustomerName:    body.CustomerName,
			Contact:         body.Contact,
			FulfillmentType: body.FulfillmentType,
			Notes:           body.Notes,
			RegisteredBy:    userID,
			EventID:         body.EventID,
			Lines:           make([]NewOrderLine, 0, len(body.Lines)),
		}
		for _, l := range body.Lines {
			in.Lines = append(in.Lines, NewOrderLine{ItemID: l.ItemID, Quantity: l.Quantity})
		}

		order, err := ledger.Register(in)
		if err != nil {
			return mapLedgerError(err)
		}

		resp := toOrderResponse(order)

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			EntityID:    order.ID,
			Action:      models.AuditActionRegister,
			Description: fmt.Sprintf("Encomenda nº %d registada (%s)", order.DailySequenceNumber, order.CustomerName),
			After:       resp,
		}); logErr != nil {
			fmt.Printf("Registo de auditoria falhou: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/orders?event_id=1&state=confirmed&date=2026-08-30
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Order{}).Preload("Lines")

		if eidStr := c.Query("event_id"); eidStr != "" {
			var eid uint
			if _, err := fmt.Sscan(eidStr, &eid); err != nil || eid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "event_id inválido")
			}
			dbq = dbq.Where("event_id = ?", eid)
		}
		if stateStr := c.Query("state"); stateStr != "" {
			state := models.OrderState(stateStr)
			if state != models.OrderStateConfirmed && state != models.OrderStateVoid {
				return fiber.NewError(fiber.StatusBadRequest, "state inválido (confirmed|void)")
			}
			dbq = dbq.Where("state = ?", state)
		}
		if dateStr := c.Query("date"); dateStr != "" {
			if _, err := time.Parse("2006-01-02", dateStr); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date inválida, formato 'YYYY-MM-DD'")
			}
			dbq = dbq.Where("created_date_key = ?", dateStr)
		}

		var list []models.Order
		if err := dbq.Order("created_date_key desc, daily_sequence_number desc").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Encomendas não listadas")
		}

		res := make([]OrderResponse, 0, len(list))
		for i := range list {
			res = append(res, toOrderResponse(&list[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/orders/:id
func GetOrderHandler(ledger *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		order, err := ledger.Get(id)
		if err != nil {
			return mapLedgerError(err)
		}
		return c.JSON(toOrderResponse(order))
	}
}

// POST /api/orders/:id/void
func VoidOrderHandler(ledger *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := actingUser(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		alreadyVoid, err := ledger.Void(id)
		if err != nil {
			return mapLedgerError(err)
		}

		if !alreadyVoid {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "order",
				EntityID:    id,
				Action:      models.AuditActionVoid,
				Description: fmt.Sprintf("Encomenda %d anulada", id),
			}); logErr != nil {
				fmt.Printf("Registo de auditoria falhou: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{
			"id":           id,
			"state":        models.OrderStateVoid,
			"already_void": alreadyVoid,
		})
	}
}

// PUT /api/orders/:id — anula a original e regista uma sucessora. Na falha
// parcial (original anulada, sucessora por registar) a resposta identifica
// explicitamente a situação: a encomenda do cliente saiu do conjunto
// Confirmed e alguém tem de a voltar a registar.
func EditOrderHandler(ledger *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := actingUser(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var body OrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo do pedido inválido")
		}

		in := NewOrder{
			CustomerName:    body.CustomerName,
			Contact:         body.Contact,
			FulfillmentType: body.FulfillmentType,
			Notes:           body.Notes,
			RegisteredBy:    userID,
			EventID:         body.EventID,
			Lines:           make([]NewOrderLine, 0, len(body.Lines)),
		}
		for _, l := range body.Lines {
			in.Lines = append(in.Lines, NewOrderLine{ItemID: l.ItemID, Quantity: l.Quantity})
		}

		successor, err := ledger.Edit(id, in)
		if err != nil {
			var rErr *ReplacementFailedError
			if errors.As(err, &rErr) {
				log.Printf("[ERROR] edição da encomenda %d: original anulada, substituta falhou: %v", id, rErr.Err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":           "A encomenda original foi anulada mas a substituta não ficou registada; regista-a de novo",
					"original_voided": true,
					"voided_order_id": rErr.VoidedOrderID,
				})
			}
			return mapLedgerError(err)
		}

		resp := toOrderResponse(successor)

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			EntityID:    id,
			Action:      models.AuditActionEdit,
			Description: fmt.Sprintf("Encomenda %d substituída pela nº %d (id %d)", id, successor.DailySequenceNumber, successor.ID),
			After:       resp,
		}); logErr != nil {
			fmt.Printf("Registo de auditoria falhou: %v\n", logErr)
		}

		return c.JSON(resp)
	}
}
