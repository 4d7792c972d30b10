package config

import (
	"log"
	"os"
)

type Config struct {
	HTTPPort      string
	DatabaseDSN   string
	JWTSecret     string
	CORSOrigins   string
	ItemImagePath string // pasta onde ficam as fotografias dos artigos
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=mosense port=5432 sslmode=disable"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		ItemImagePath: getEnv("ITEM_IMAGE_PATH", "./item-images"), // default para desenvolvimento local
	}

	// Verificações de segurança para produção
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] Variável de ambiente JWT_SECRET não definida! Obrigatória em produção.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET tem de ter pelo menos 32 caracteres! Risco de segurança.")
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=mosense port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN com valor por omissão; em produção define a tua ligação Postgres.")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS com valor por omissão; em produção define o teu domínio.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
