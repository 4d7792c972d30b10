package main

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/audit"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/auth"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/catalog"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/config"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/database"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/event"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/orders"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/report"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/stats"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/store"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	st := store.New(database.DB)
	ledger := orders.NewLedger(st, st, nil)
	aggregator := stats.NewAggregator(st)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Erro inesperado:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Erro inesperado do servidor",
			})
		},
	})

	// CORS: origens separadas por vírgula na variável de ambiente
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Autenticação pública
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Rotas autenticadas; a tabela de prefixos decide os perfis
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))
	protected.Use(auth.RequireAccess())

	protected.Get("/auth/me", auth.MeHandler())

	// Gestão (só admin, prefixo /api/admin na tabela de acesso)
	adminRoutes := protected.Group("/admin")

	adminRoutes.Post("/users", auth.CreateUserHandler())

	// Catálogo
	adminRoutes.Post("/items", catalog.CreateItemHandler())
	adminRoutes.Put("/items/:id", catalog.UpdateItemHandler())
	adminRoutes.Delete("/items/:id", catalog.DeleteItemHandler())
	adminRoutes.Post("/items/:id/image", catalog.UploadItemImageHandler(cfg))

	// Eventos
	adminRoutes.Post("/events", event.CreateEventHandler())
	adminRoutes.Put("/events/:id", event.UpdateEventHandler())
	adminRoutes.Post("/events/:id/activate", event.ActivateEventHandler())

	// Consulta do catálogo e da ementa
	protected.Get("/items", catalog.ListItemsHandler())
	protected.Get("/items/:id/image", catalog.GetItemImageHandler(cfg))
	protected.Get("/menu", catalog.ListMenuHandler())

	// Eventos (consulta)
	protected.Get("/events", event.ListEventsHandler())
	protected.Get("/events/active", event.GetActiveEventHandler())

	// Encomendas
	protected.Post("/orders", orders.RegisterOrderHandler(ledger))
	protected.Get("/orders", orders.ListOrdersHandler())
	protected.Get("/orders/:id", orders.GetOrderHandler(ledger))
	protected.Post("/orders/:id/void", orders.VoidOrderHandler(ledger))
	protected.Put("/orders/:id", orders.EditOrderHandler(ledger))

	// Estatísticas
	protected.Get("/statistics", stats.EventSummaryHandler(aggregator))

	// Relatório para impressão (só admin)
	protected.Get("/reports/event/:id/xlsx", report.EventReportHandler(aggregator))

	// Auditoria (só admin)
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Servidor a correr na porta:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
