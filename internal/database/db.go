package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/config"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	// TranslateError: violações de unicidade chegam como gorm.ErrDuplicatedKey,
	// de que o ledger depende para repetir a atribuição do número diário.
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Ligação à base de dados falhou: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Item{},
		&models.Order{},
		&models.OrderLine{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("Erro no AutoMigrate: %v", err)
	}

	log.Println("Ligação à base de dados estabelecida. Migração concluída.")
}
