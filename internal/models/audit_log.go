package models

import "time"

type AuditAction string

const (
	AuditActionCreate   AuditAction = "create"
	AuditActionUpdate   AuditAction = "update"
	AuditActionDelete   AuditAction = "delete"
	AuditActionRegister AuditAction = "register" // registo de encomenda
	AuditActionVoid     AuditAction = "void"     // anulação de encomenda
	AuditActionEdit     AuditAction = "edit"     // edição (anula + regista sucessora)
)

// Registo de auditoria append-only. As encomendas nunca são alteradas no
// lugar (a edição anula e cria uma nova), por isso não existe "undo".
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID   uint   `json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"` // nome do utilizador (denormalizado)

	// Entidade afetada (ex: "order", "item", "event")
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	// Estado antes e depois (JSON)
	BeforeData string `gorm:"type:jsonb" json:"before_data"`
	AfterData  string `gorm:"type:jsonb" json:"after_data"`
}
