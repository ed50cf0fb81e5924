package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatRelay/configs"
	"chatRelay/internal/handlers"
	"chatRelay/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

type HttpServer struct {
	config        *configs.Config
	restHandler   *handlers.RestHandler
	socketHandler *handlers.SocketHandler
	hub           *realtime.Hub
	router        *gin.Engine
	log           zerolog.Logger
}

func NewHttpServer(
	config *configs.Config,
	restHandler *handlers.RestHandler,
	socketHandler *handlers.SocketHandler,
	hub *realtime.Hub,
	log zerolog.Logger,
) *HttpServer {
	return &HttpServer{
		config:        config,
		restHandler:   restHandler,
		socketHandler: socketHandler,
		hub:           hub,
		log:           log.With().Str("component", "http").Logger(),
	}
}

// Run sets up the routes, serves until a shutdown signal arrives and then
// drains: first the HTTP listener, then the hub with every live socket.
func (hs *HttpServer) Run(ctx context.Context) {
	hs.router = gin.New()
	hs.router.Use(gin.Recovery())
	hs.setupRoutes()

	server := hs.startServer()
	hs.waitForShutdown(ctx, server)
}

func (hs *HttpServer) setupRoutes() {
	hs.router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	hs.router.POST("/login", hs.restHandler.Login)
	hs.router.POST("/register", hs.restHandler.Register)

	hs.router.GET("/ws", hs.socketHandler.HandleSocketRoute)

	authenticated := hs.router.Group("/", hs.restHandler.MustAuthenticateMiddleware())
	{
		authenticated.GET("/users", hs.restHandler.GetAllUsersWithPagination)

		authenticated.POST("/conversations", hs.restHandler.CreateConversation)
		authenticated.GET("/conversations", hs.restHandler.GetUserConversations)
		authenticated.PUT("/conversations/:id", hs.restHandler.UpdateConversationName)
		authenticated.GET("/conversations/:id/members", hs.restHandler.GetConversationMembers)
		authenticated.POST("/conversations/:id/members", hs.restHandler.AddMember)
		authenticated.DELETE("/conversations/:id/members/:memberId", hs.restHandler.KickMember)
		authenticated.POST("/conversations/:id/transfer-admin", hs.restHandler.TransferAdmin)
		authenticated.GET("/conversations/:id/messages", hs.restHandler.GetMessagesByConversationID)
		authenticated.POST("/conversations/:id/messages", hs.restHandler.SendMessage)

		authenticated.POST("/friends/requests", hs.restHandler.SendFriendRequest)
		authenticated.POST("/friends/requests/:id/accept", hs.restHandler.AcceptFriendRequest)
		authenticated.GET("/friends", hs.restHandler.GetFriends)
	}
}

func (hs *HttpServer) startServer() *http.Server {
	addr := fmt.Sprintf(":%d", hs.config.Viper.GetInt("server.port"))
	server := &http.Server{
		Addr:    addr,
		Handler: hs.router,
	}

	go func() {
		hs.log.Info().Str("addr", addr).Msg("http server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			hs.log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	return server
}

func (hs *HttpServer) waitForShutdown(ctx context.Context, server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case <-ctx.Done():
	}
	hs.log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		hs.log.Error().Err(err).Msg("forced shutdown")
	}

	hs.hub.Stop()
	hs.log.Info().Msg("server exited")
}
