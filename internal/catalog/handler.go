package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/audit"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/auth"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/config"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/database"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
)

type ItemResponse struct {
	ID             uint                `json:"id"`
	Name           string              `json:"name"`
	Category       models.ItemCategory `json:"category"`
	UnitPrice      decimal.Decimal     `json:"unit_price"`
	TaxRatePercent int                 `json:"tax_rate_percent"`
	OnMenu         bool                `json:"on_menu"`
	ImageRef       string              `json:"image_ref,omitempty"`
}

type CreateItemRequest struct {
	Name           string              `json:"name"`
	Category       models.ItemCategory `json:"category"`
	UnitPrice      decimal.Decimal     `json:"unit_price"` // preço com IVA incluído
	TaxRatePercent int                 `json:"tax_rate_percent"`
	OnMenu         *bool               `json:"on_menu"`
}

type UpdateItemRequest struct {
	Name           *string              `json:"name"`
	Category       *models.ItemCategory `json:"category"`
	UnitPrice      *decimal.Decimal     `json:"unit_price"`
	TaxRatePercent *int                 `json:"tax_rate_percent"`
	OnMenu         *bool                `json:"on_menu"`
}

func toItemResponse(it models.Item) ItemResponse {
	return ItemResponse{
		ID:             it.ID,
		Name:           it.Name,
		Category:       it.Category,
		UnitPrice:      it.UnitPrice,
		TaxRatePercent: it.TaxRatePercent,
		OnMenu:         it.OnMenu,
		ImageRef:       it.ImageRef,
	}
}

// GET /api/items (todos os utilizadores autenticados)
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.Item
		if err := database.DB.Order("name asc").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Artigos não listados")
		}

		res := make([]ItemResponse, 0, len(items))
		for _, it := range items {
			res = append(res, toItemResponse(it))
		}
		return c.JSON(res)
	}
}

// GET /api/menu — apenas artigos visíveis na ementa
func ListMenuHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.Item
		if err := database.DB.Where("on_menu = ?", true).Order("name asc").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ementa não listada")
		}

		res := make([]ItemResponse, 0, len(items))
		for _, it := range items {
			res = append(res, toItemResponse(it))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/items (só admin)
func CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome é obrigatório")
		}
		if !body.Category.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Categoria inválida (soup|food|dessert|drink|alcohol|giveaway)")
		}
		if body.UnitPrice.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Preço não pode ser negativo")
		}
		if !models.ValidTaxRatePercent(body.TaxRatePercent) {
			return fiber.NewError(fiber.StatusBadRequest, "Taxa de IVA inválida (23|13|6|0)")
		}

		// Nome único sem distinguir maiúsculas
		var existing models.Item
		if err := database.DB.Where("LOWER(name) = LOWER(?)", body.Name).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Já existe um artigo com este nome")
		}

		onMenu := true
		if body.OnMenu != nil {
			onMenu = *body.OnMenu
		}

		item := models.Item{
			Name:           body.Name,
			Category:       body.Category,
			UnitPrice:      body.UnitPrice.Round(2),
			TaxRatePercent: body.TaxRatePercent,
			OnMenu:         onMenu,
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Artigo não criado")
		}

		writeItemAudit(c, models.AuditActionCreate, item, nil, fmt.Sprintf("Artigo criado: %s", item.Name))

		return c.Status(fiber.StatusCreated).JSON(toItemResponse(item))
	}
}

// PUT /api/admin/items/:id
// Atualizar o preço NÃO altera linhas de encomendas já registadas: as linhas
// guardam uma cópia do preço e da taxa no momento do registo.
func UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.Item
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Artigo não encontrado")
		}
		before := toItemResponse(item)

		var body UpdateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome não pode ser vazio")
			}
			var existing models.Item
			if err := database.DB.Where("LOWER(name) = LOWER(?) AND id <> ?", name, item.ID).First(&existing).Error; err == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Já existe um artigo com este nome")
			}
			item.Name = name
		}
		if body.Category != nil {
			if !body.Category.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Categoria inválida")
			}
			item.Category = *body.Category
		}
		if body.UnitPrice != nil {
			if body.UnitPrice.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Preço não pode ser negativo")
			}
			item.UnitPrice = body.UnitPrice.Round(2)
		}
		if body.TaxRatePercent != nil {
			if !models.ValidTaxRatePercent(*body.TaxRatePercent) {
				return fiber.NewError(fiber.StatusBadRequest, "Taxa de IVA inválida (23|13|6|0)")
			}
			item.TaxRatePercent = *body.TaxRatePercent
		}
		if body.OnMenu != nil {
			item.OnMenu = *body.OnMenu
		}

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Artigo não atualizado")
		}

		writeItemAudit(c, models.AuditActionUpdate, item, before, fmt.Sprintf("Artigo atualizado: %s", item.Name))

		return c.JSON(toItemResponse(item))
	}
}

// DELETE /api/admin/items/:id — recusado se o artigo aparece em encomendas
func DeleteItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.Item
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Artigo não encontrado")
		}

		var refCount int64
		if err := database.DB.Model(&models.OrderLine{}).Where("item_id = ?", item.ID).Count(&refCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Verificação de utilização falhou")
		}
		if refCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Artigo com encomendas registadas não pode ser apagado; retira-o da ementa")
		}

		if err := database.DB.Delete(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Artigo não apagado")
		}

		writeItemAudit(c, models.AuditActionDelete, item, toItemResponse(item), fmt.Sprintf("Artigo apagado: %s", item.Name))

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/items/:id/image — multipart upload; o ficheiro é guardado
// com um nome UUID e a referência fica no artigo
func UploadItemImageHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.Item
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Artigo não encontrado")
		}

		file, err := c.FormFile("image")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ficheiro 'image' em falta")
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".webp":
			// ok
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Formato não suportado (jpg|jpeg|png|webp)")
		}

		if err := os.MkdirAll(cfg.ItemImagePath, 0o755); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Pasta de imagens indisponível")
		}

		fileName := uuid.NewString() + ext
		if err := c.SaveFile(file, filepath.Join(cfg.ItemImagePath, fileName)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Imagem não guardada")
		}

		// apagar a imagem anterior, se existir
		if item.ImageRef != "" {
			_ = os.Remove(filepath.Join(cfg.ItemImagePath, item.ImageRef))
		}

		item.ImageRef = fileName
		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Artigo não atualizado")
		}

		return c.JSON(toItemResponse(item))
	}
}

// GET /api/items/:id/image
func GetItemImageHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.Item
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Artigo não encontrado")
		}
		if item.ImageRef == "" {
			return fiber.NewError(fiber.StatusNotFound, "Artigo sem imagem")
		}

		return c.SendFile(filepath.Join(cfg.ItemImagePath, item.ImageRef))
	}
}

func writeItemAudit(c *fiber.Ctx, action models.AuditAction, item models.Item, before any, description string) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)

	var user models.User
	userName := ""
	if err := database.DB.First(&user, "id = ?", userID).Error; err == nil {
		userName = user.Name
	}

	if err := audit.WriteLog(audit.LogOptions{
		UserID:      userID,
		UserName:    userName,
		EntityType:  "item",
		EntityID:    item.ID,
		Action:      action,
		Description: description,
		Before:      before,
		After:       toItemResponse(item),
	}); err != nil {
		// falha de auditoria não bloqueia a operação
		fmt.Printf("Registo de auditoria falhou: %v\n", err)
	}
}
