package app

import (
	"context"

	"chatRelay/configs"
	"chatRelay/internal/handlers"
	"chatRelay/internal/logger"
	"chatRelay/internal/realtime"
	"chatRelay/internal/repositories"
	"chatRelay/internal/servers/database"
	"chatRelay/internal/servers/http"
	"chatRelay/internal/services"

	"github.com/redis/go-redis/v9"
)

type App struct{}

func NewApp() *App {
	return &App{}
}

// LetsGo wires the whole process together: config, storage, the realtime hub
// and the HTTP server, then blocks until shutdown.
func (app *App) LetsGo() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := configs.GetConfig()
	log := logger.New(config.Viper.GetString("log.level"))

	rdb := initializeRedis(config)

	db, err := database.Connect(config)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}

	authRepo := repositories.NewAuthenticationRepository(db)
	chatRepo := repositories.NewChatRepository(db)
	friendshipRepo := repositories.NewFriendshipRepository(db)

	authService := services.NewAuthenticationService(authRepo, config, rdb, *log)
	chatService := services.NewChatService(chatRepo, authRepo)
	friendshipService := services.NewFriendshipService(friendshipRepo)

	hub := realtime.NewHub(
		chatService,
		friendshipService,
		authService,
		rdb,
		config.Viper.GetString("redis.channel"),
		*log,
	)
	hub.Start(ctx)

	restHandler := handlers.NewRestHandler(authService, chatService, friendshipService, hub, *log)
	socketHandler := handlers.NewSocketHandler(authService, chatService, hub, *log)

	http.NewHttpServer(config, restHandler, socketHandler, hub, *log).Run(ctx)
}

// initializeRedis returns nil when no address is configured, which keeps the
// relay and the status cache disabled.
func initializeRedis(config *configs.Config) *redis.Client {
	addr := config.Viper.GetString("redis.addr")
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Viper.GetString("redis.password"),
		DB:       config.Viper.GetInt("redis.db"),
	})
}
