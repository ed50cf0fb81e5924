package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"chatRelay/internal/enums"
	"chatRelay/internal/errs"
	"chatRelay/internal/models"
	socketModels "chatRelay/internal/models/socket"
	"chatRelay/internal/msgs"
	"chatRelay/internal/realtime"
	"chatRelay/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// socketRequest is a single client-to-server frame. Type selects the
// operation; the remaining fields are read per type.
type socketRequest struct {
	Type           string `json:"type"`
	ConversationID uint   `json:"conversation_id"`
	Content        string `json:"content"`
}

type SocketHandler struct {
	authService *services.AuthenticationService
	chatService *services.ChatService
	hub         *realtime.Hub
	upgrader    websocket.Upgrader
	log         zerolog.Logger
}

func NewSocketHandler(
	authService *services.AuthenticationService,
	chatService *services.ChatService,
	hub *realtime.Hub,
	log zerolog.Logger,
) *SocketHandler {
	return &SocketHandler{
		authService: authService,
		chatService: chatService,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log.With().Str("component", "socket").Logger(),
	}
}

// HandleSocketRoute authenticates the request, upgrades it and runs the read
// loop until the client goes away. The token comes from the "token" query
// parameter or the Authorization header; an invalid one is rejected before
// the upgrade.
func (sh *SocketHandler) HandleSocketRoute(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		token = ctx.GetHeader("Authorization")
	}

	claims, authErr := sh.authService.VerifyToken(token)
	if authErr != nil && !websocket.IsWebSocketUpgrade(ctx.Request) {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: msgs.MsgYouMustLoginFirst,
			Errors:  []error{errs.ErrUnauthorized},
		})
		return
	}

	ws, err := sh.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		sh.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	// An unauthenticated upgrade is refused with a policy-violation close
	// before the connection is ever registered.
	if authErr != nil {
		_ = ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"),
			time.Now().Add(time.Second),
		)
		_ = ws.Close()
		return
	}
	userID := claims.ID

	conn := realtime.NewWebsocketConn(ws)
	sh.hub.Connect(userID, conn)
	defer sh.hub.Disconnect(userID, conn)

	sh.sendEvent(conn, userID, socketModels.NewConnectedEvent())
	sh.log.Info().Uint("user_id", userID).Msg("websocket connected")

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			sh.log.Info().Err(err).Uint("user_id", userID).Msg("websocket closed")
			return
		}

		var request socketRequest
		if err := json.Unmarshal(data, &request); err != nil {
			// A malformed frame is the client's problem, not a reason to
			// drop the connection.
			sh.sendEvent(conn, userID, socketModels.NewErrorEvent("invalid message format"))
			continue
		}

		sh.handleRequest(conn, userID, &request)
	}
}

func (sh *SocketHandler) handleRequest(conn realtime.Conn, userID uint, request *socketRequest) {
	switch request.Type {
	case enums.SOCKET_EVENT_PING:
		sh.sendEvent(conn, userID, socketModels.NewPongEvent())

	case enums.SOCKET_EVENT_JOIN_CONVERSATION:
		sh.handleJoinConversation(conn, userID, request.ConversationID)

	case enums.SOCKET_EVENT_CREATE_MESSAGE:
		sh.handleCreateMessage(conn, userID, request)

	default:
		sh.sendEvent(conn, userID, socketModels.NewErrorEvent("unknown message type"))
	}
}

// handleJoinConversation verifies membership against the store and refreshes
// the cached member set so this user is included in subsequent fan-outs.
func (sh *SocketHandler) handleJoinConversation(conn realtime.Conn, userID, conversationID uint) {
	if conversationID < 1 || !sh.chatService.CheckUserInConversation(userID, conversationID) {
		sh.sendEvent(conn, userID, socketModels.NewErrorEvent(errs.ErrNotAMember.Error()))
		return
	}
	sh.hub.Membership.Invalidate(conversationID)
	sh.sendEvent(conn, userID, socketModels.NewJoinedConversationEvent(conversationID))
}

// handleCreateMessage re-checks membership on every message, persists it and
// fans it out to the conversation.
func (sh *SocketHandler) handleCreateMessage(conn realtime.Conn, userID uint, request *socketRequest) {
	if request.ConversationID < 1 || !sh.chatService.CheckUserInConversation(userID, request.ConversationID) {
		sh.sendEvent(conn, userID, socketModels.NewErrorEvent(errs.ErrNotAMember.Error()))
		return
	}

	record, saveErrs := sh.chatService.SaveMessage(request.ConversationID, userID, request.Content)
	if len(saveErrs) > 0 {
		sh.sendEvent(conn, userID, socketModels.NewErrorEvent(saveErrs[0].Error()))
		return
	}

	if _, err := sh.hub.Engine.DeliverToConversation(request.ConversationID, socketModels.NewMessageEvent(record)); err != nil {
		sh.log.Warn().Err(err).Uint("conversation_id", request.ConversationID).Msg("failed to fan out message")
		sh.sendEvent(conn, userID, socketModels.NewErrorEvent("delivery failed"))
	}
}

func (sh *SocketHandler) sendEvent(conn realtime.Conn, userID uint, event socketModels.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		sh.log.Error().Err(err).Str("event", event.Type).Msg("failed to marshal event")
		return
	}
	if err := conn.WriteMessage(data); err != nil {
		sh.log.Warn().Err(err).Uint("user_id", userID).Msg("failed to write event")
	}
}
