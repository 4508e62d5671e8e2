package app

import (
	"context"
	"fmt"
	"log"

	"quizbook/internal/config"
	"quizbook/internal/database"
	handlers "quizbook/internal/handler"
	"quizbook/internal/mail"
	"quizbook/internal/repository"
	"quizbook/internal/service"
	"quizbook/internal/storage"
)

type App struct {
	Cfg      *config.Config
	DB       database.MethodsDB
	Repo     *repository.Repository
	Services *service.Service
	Handlers *handlers.Handlers
}

// New connects the database, object storage and mailer and wires the
// services on top of them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
	if err != nil {
		db.CloseDB()
		return nil, fmt.Errorf("could not initialize MinIO: %w", err)
	}

	mailer, err := mail.New(cfg.Mail)
	if err != nil {
		db.CloseDB()
		return nil, fmt.Errorf("could not initialize mailer: %w", err)
	}

	store := repository.NewStore(db.GetDB().DB)
	services := service.NewService(store.Repository, store, cfg, minioClient, mailer)

	return &App{
		Cfg:      cfg,
		DB:       db,
		Repo:     store.Repository,
		Services: services,
		Handlers: handlers.NewHandlers(services, db, cfg),
	}, nil
}

// NewTokensOnly wires just enough for token maintenance commands.
func NewTokensOnly(cfg *config.Config) (*App, error) {
	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	store := repository.NewStore(db.GetDB().DB)
	return &App{
		Cfg:      cfg,
		DB:       db,
		Repo:     store.Repository,
		Services: &service.Service{Token: service.NewTokenService(store.Repository, store, cfg.JWT)},
	}, nil
}

func (a *App) Close() {
	if err := a.DB.CloseDB(); err != nil {
		log.Printf("could not close database: %v", err)
	}
}
