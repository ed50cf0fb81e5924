package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"chatRelay/internal/errs"
	"chatRelay/internal/models"
	socketModels "chatRelay/internal/models/socket"
	"chatRelay/internal/msgs"
	"chatRelay/internal/realtime"
	"chatRelay/internal/services"
	"chatRelay/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type RestHandler struct {
	authService       *services.AuthenticationService
	chatService       *services.ChatService
	friendshipService *services.FriendshipService
	hub               *realtime.Hub
	log               zerolog.Logger
}

func NewRestHandler(
	authService *services.AuthenticationService,
	chatService *services.ChatService,
	friendshipService *services.FriendshipService,
	hub *realtime.Hub,
	log zerolog.Logger,
) *RestHandler {
	return &RestHandler{
		authService:       authService,
		chatService:       chatService,
		friendshipService: friendshipService,
		hub:               hub,
		log:               log.With().Str("component", "rest").Logger(),
	}
}

func (rh *RestHandler) Login(ctx *gin.Context) {
	var errors []error

	var loginData models.LoginRequestBody
	if err := ctx.BindJSON(&loginData); err != nil {
		errors = append(errors, errs.ErrInvalidRequestBody)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  errors,
		})
		return
	}

	loginResponse, loginErrs := rh.authService.Login(&loginData)
	if len(loginErrs) > 0 {
		errors = append(errors, loginErrs...)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  errors,
		})
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    loginResponse,
	})
}

func (rh *RestHandler) Register(ctx *gin.Context) {
	var errors []error

	var user models.User
	if err := ctx.BindJSON(&user); err != nil {
		errors = append(errors, errs.ErrInvalidRequestBody)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  errors,
		})
		return
	}

	_, registerErrs := rh.authService.Register(&user)
	if len(registerErrs) > 0 {
		errors = append(errors, registerErrs...)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  errors,
		})
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgUserCreatedSuccessfully,
	})
}

func (rh *RestHandler) GetAllUsersWithPagination(ctx *gin.Context) {
	page, size := paginationParams(ctx)

	response, listErrs := rh.authService.GetAllUsersWithPagination(page, size)
	if len(listErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  listErrs,
		})
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    response,
	})
}

// CreateConversation creates a direct or group conversation, primes the
// membership index with the fresh member set and tells the members about the
// new room.
func (rh *RestHandler) CreateConversation(ctx *gin.Context) {
	userID := utils.GetUserIdFromContext(ctx)
	if userID < 1 {
		rh.abortUnauthorized(ctx)
		return
	}

	var body models.CreateConversationRequestBody
	if err := ctx.BindJSON(&body); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrInvalidRequestBody},
		})
		return
	}

	conversation, createErrs := rh.chatService.CreateConversation(userID, &body)
	if len(createErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  createErrs,
		})
		return
	}

	if memberIDs, err := rh.chatService.GetConversationMemberIds(conversation.ID); err == nil {
		rh.hub.Membership.NoteMembership(conversation.ID, memberIDs)
		rh.hub.Engine.DeliverToUsers(memberIDs, socketModels.NewJoinedConversationEvent(conversation.ID))
	} else {
		rh.log.Warn().Err(err).Uint("conversation_id", conversation.ID).Msg("failed to prime membership after create")
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    conversation.ToConversationInfo(),
	})
}

func (rh *RestHandler) GetUserConversations(ctx *gin.Context) {
	userID := utils.GetUserIdFromContext(ctx)
	if userID < 1 {
		rh.abortUnauthorized(ctx)
		return
	}
	page, size := paginationParams(ctx)

	conversations, listErrs := rh.chatService.GetUserConversations(userID, page, size)
	if len(listErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  listErrs,
		})
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    conversations,
	})
}

// UpdateConversationName renames a conversation and fans the updated info out
// to its members.
func (rh *RestHandler) UpdateConversationName(ctx *gin.Context) {
	userID := utils.GetUserIdFromContext(ctx)
	if userID < 1 {
		rh.abortUnauthorized(ctx)
		return
	}
	conversationID, ok := conversationIDParam(ctx)
	if !ok {
		return
	}

	var body models.UpdateConversationRequestBody
	if err := ctx.BindJSON(&body); err != nil || body.Name == "" {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrInvalidRequestBody},
		})
		return
	}

	conversation, updateErrs := rh.chatService.UpdateConversationName(userID, conversationID, body.Name)
	if len(updateErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  updateErrs,
		})
		return
	}

	info := conversation.ToConversationInfo()
	if _, err := rh.hub.Engine.DeliverToConversation(conversationID, socketModels.NewConversationUpdatedEvent(info)); err != nil {
		rh.log.Warn().Err(err).Uint("conversation_id", conversationID).Msg("failed to fan out conversation update")
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    info,
	})
}

// AddMember adds a user to the conversation by email and invalidates the
// cached member set so the newcomer receives the very next fan-out.
func (rh *RestHandler) AddMember(ctx *gin.Context) {
	userID := utils.GetUserIdFromContext(ctx)
	if userID < 1 {
		rh.abortUnauthorized(ctx)
		return
	}
	conversationID, ok := conversationIDParam(ctx)
	if !ok {
		return
	}

	var body models.AddMemberRequestBody
	if err := ctx.BindJSON(&body); err != nil || body.Email == "" {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrInvalidRequestBody},
		})
		return
	}

	added, addErrs := rh.chatService.AddMemberByEmail(userID, conversationID, body.Email)
	if len(addErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  addErrs,
		})
		return
	}

	rh.hub.Membership.Invalidate(conversationID)
	rh.hub.Engine.DeliverToUsers([]uint{added.ID}, socketModels.NewJoinedConversationEvent(conversationID))

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    added.ToUserResponse(),
	})
}

// KickMember removes a member, drops them from the cached member set and
// notifies both sides: the remaining members and the kicked user.
func (rh *RestHandler) KickMember(ctx *gin.Context) {
	userID := utils.GetUserIdFromContext(ctx)
	if userID < 1 {
		rh.abortUnauthorized(ctx)
		return
	}
	conversationID, ok := conversationIDParam(ctx)
	if !ok {
		return
	}
	memberIDInt, err := strconv.Atoi(ctx.Param("memberId"))
	if err != nil || memberIDInt < 1 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrMemberNotFound},
		})
		return
	}
	memberID := uint(memberIDInt)

	kicked, kickErrs := rh.chatService.KickMember(userID, conversationID, memberID)
	if len(kickErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  kickErrs,
		})
		return
	}

	// Invalidate first so the fan-out below resolves the post-kick member set
	// and the kicked user no longer receives room events.
	rh.hub.Membership.Invalidate(conversationID)

	var by *models.UserResponse
	if actor, err := rh.authService.GetUserById(userID); err == nil {
		by = actor.ToUserResponse()
	}
	if _, err := rh.hub.Engine.DeliverToConversation(conversationID, socketModels.NewMemberKickedEvent(conversationID, kicked.ToUserResponse(), by)); err != nil {
		rh.log.Warn().Err(err).Uint("conversation_id", conversationID).Msg("failed to fan out member kick")
	}
	rh.hub.Engine.DeliverToUsers([]uint{memberID}, socketModels.NewKickedFromConversationEvent(conversationID, "you have been removed from this conversation"))

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
	})
}

// TransferAdmin hands the admin role over, records the system message and
// fans the transfer out to the conversation.
func (rh *RestHandler) TransferAdmin(ctx *gin.Context) {
	userID := utils.GetUserIdFromContext(ctx)
	if userID < 1 {
		rh.abortUnauthorized(ctx)
		return
	}
	conversationID, ok := conversationIDParam(ctx)
	if !ok {
		return
	}

	var body models.TransferAdminRequestBody
	if err := ctx.BindJSON(&body); err != nil || body.NewAdminID < 1 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrInvalidRequestBody},
		})
		return
	}

	notice := fmt.Sprintf("admin role transferred from user %d to user %d", userID, body.NewAdminID)
	record, transferErrs := rh.chatService.TransferAdmin(userID, conversationID, body.NewAdminID, notice)
	if len(transferErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  transferErrs,
		})
		return
	}

	if _, err := rh.hub.Engine.DeliverToConversation(conversationID, socketModels.NewAdminTransferredEvent(conversationID, userID, body.NewAdminID, record)); err != nil {
		rh.log.Warn().Err(err).Uint("conversation_id", conversationID).Msg("failed to fan out admin transfer")
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    record,
	})
}

func (rh *RestHandler) GetConversationMembers(ctx *gin.Context) {
	userID := utils.GetUserIdFromContext(ctx)
	if userID < 1 {
		rh.abortUnauthorized(ctx)
		return
	}
	conversationID, ok := conversationIDParam(ctx)
	if !ok {
		return
	}

	members, memberErrs := rh.chatService.GetConversationMembers(userID, conversationID)
	if len(memberErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  memberErrs,
		})
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    members,
	})
}

func (rh *RestHandler) GetMessagesByConversationID(ctx *gin.Context) {
	userID := utils.GetUserIdFromContext(ctx)
	if userID < 1 {
		rh.abortUnauthorized(ctx)
		return
	}
	conversationID, ok := conversationIDParam(ctx)
	if !ok {
		return
	}
	if !rh.chatService.CheckUserInConversation(userID, conversationID) {
		ctx.AbortWithStatusJSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrNotAMember},
		})
		return
	}
	page, size := paginationParams(ctx)

	messages, listErrs := rh.chatService.GetMessages(conversationID, page, size)
	if len(listErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  listErrs,
		})
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    messages,
	})
}

// SendMessage persists a message over REST and fans it out to the
// conversation exactly like a socket-originated one.
func (rh *RestHandler) SendMessage(ctx *gin.Context) {
	userID := utils.GetUserIdFromContext(ctx)
	if userID < 1 {
		rh.abortUnauthorized(ctx)
		return
	}
	conversationID, ok := conversationIDParam(ctx)
	if !ok {
		return
	}
	if !rh.chatService.CheckUserInConversation(userID, conversationID) {
		ctx.AbortWithStatusJSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrNotAMember},
		})
		return
	}

	var body models.MessageRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrInvalidRequestBody},
		})
		return
	}

	record, saveErrs := rh.chatService.SaveMessage(conversationID, userID, body.Content)
	if len(saveErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  saveErrs,
		})
		return
	}

	if _, err := rh.hub.Engine.DeliverToConversation(conversationID, socketModels.NewMessageEvent(record)); err != nil {
		rh.log.Warn().Err(err).Uint("conversation_id", conversationID).Msg("failed to fan out message")
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    record,
	})
}

func (rh *RestHandler) SendFriendRequest(ctx *gin.Context) {
	userID := utils.GetUserIdFromContext(ctx)
	if userID < 1 {
		rh.abortUnauthorized(ctx)
		return
	}

	var body models.FriendRequestBody
	if err := ctx.BindJSON(&body); err != nil || body.UserID < 1 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrInvalidRequestBody},
		})
		return
	}

	friendship, requestErrs := rh.friendshipService.SendFriendRequest(userID, body.UserID)
	if len(requestErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  requestErrs,
		})
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    friendship,
	})
}

// AcceptFriendRequest accepts a pending request; the new friend immediately
// learns the accepter's presence through a targeted status event.
func (rh *RestHandler) AcceptFriendRequest(ctx *gin.Context) {
	userID := utils.GetUserIdFromContext(ctx)
	if userID < 1 {
		rh.abortUnauthorized(ctx)
		return
	}
	friendshipIDInt, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || friendshipIDInt < 1 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrFriendshipNotFound},
		})
		return
	}

	friendship, acceptErrs := rh.friendshipService.AcceptFriendRequest(uint(friendshipIDInt), userID)
	if len(acceptErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  acceptErrs,
		})
		return
	}

	rh.hub.Engine.DeliverToUsers(
		[]uint{friendship.RequesterID},
		socketModels.NewUserStatusEvent(userID, rh.hub.Registry.IsOnline(userID)),
	)

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    friendship,
	})
}

func (rh *RestHandler) GetFriends(ctx *gin.Context) {
	userID := utils.GetUserIdFromContext(ctx)
	if userID < 1 {
		rh.abortUnauthorized(ctx)
		return
	}

	friends, friendErrs := rh.friendshipService.GetFriends(userID)
	if len(friendErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  friendErrs,
		})
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    friends,
	})
}

func (rh *RestHandler) abortUnauthorized(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
		Success: false,
		Message: msgs.MsgOperationFailed,
		Errors:  []error{errs.ErrUnauthorized},
	})
}

func paginationParams(ctx *gin.Context) (int, int) {
	page, err := strconv.Atoi(ctx.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(ctx.Query("size"))
	if err != nil || size < 1 {
		size = 10
	}
	return page, size
}

func conversationIDParam(ctx *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrInvalidConversationId},
		})
		return 0, false
	}
	return uint(id), true
}
