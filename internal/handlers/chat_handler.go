package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"rewear-server/internal/managers"
	"rewear-server/internal/schemas"
	"rewear-server/internal/utils"
)

type ChatHdl interface {
	SendMessage(ctx *gin.Context)
	GetMessages(ctx *gin.Context)
}

type ChatHandler struct {
	DatabaseManager managers.DatabaseMgr
}

func NewChatHandler(databaseManager *managers.DatabaseMgr) ChatHdl {
	return &ChatHandler{
		DatabaseManager: *databaseManager,
	}
}

// SendMessage stores the caller's message together with the assistant's
// response and returns both.
func (handler *ChatHandler) SendMessage(ctx *gin.Context) {
	claims := ctx.MustGet(utils.ClaimsKey.String()).(jwt.MapClaims)
	jwtUserId := claims["sub"].(string)

	chatRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.ChatMessageRequest)

	messageId := uuid.New()
	createdAt := time.Now()
	response := assistantResponse(chatRequest.Message)

	queryString := `INSERT INTO rewear_schema.chat_messages
		(message_id, user_id, message, response, is_ai_response, created_at) VALUES ($1, $2, $3, $4, true, $5)`
	if _, err := handler.DatabaseManager.GetPool().Exec(ctx, queryString, messageId, jwtUserId,
		chatRequest.Message, response, createdAt); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	messageDto := &schemas.ChatMessageDTO{
		ID:           messageId,
		Message:      chatRequest.Message,
		Response:     response,
		IsAIResponse: true,
		CreatedAt:    createdAt.Format(time.RFC3339),
	}
	utils.WriteAndLogResponse(ctx, messageDto, http.StatusCreated)
}

// GetMessages returns the caller's chat history, newest first.
func (handler *ChatHandler) GetMessages(ctx *gin.Context) {
	claims := ctx.MustGet(utils.ClaimsKey.String()).(jwt.MapClaims)
	jwtUserId := claims["sub"].(string)

	offset, limit := utils.ParsePaginationParams(ctx)

	var totalRecords int
	queryString := `SELECT COUNT(*) FROM rewear_schema.chat_messages WHERE user_id = $1`
	if err := handler.DatabaseManager.GetPool().QueryRow(ctx, queryString, jwtUserId).Scan(&totalRecords); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	queryString = `SELECT message_id, message, response, is_ai_response, created_at
		FROM rewear_schema.chat_messages WHERE user_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`
	rows, err := handler.DatabaseManager.GetPool().Query(ctx, queryString, jwtUserId, offset, limit)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	messages := make([]schemas.ChatMessageDTO, 0, limit)
	for rows.Next() {
		message := schemas.ChatMessageDTO{}
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&message.ID, &message.Message, &message.Response, &message.IsAIResponse, &createdAt); err != nil {
			utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}
		message.CreatedAt = createdAt.Time.Format(time.RFC3339)
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.SendPaginatedResponse(ctx, messages, offset, limit, totalRecords)
}

// cannedResponses maps keywords to assistant answers. First match wins, in
// the order listed here.
var cannedResponses = []struct {
	keyword  string
	response string
}{
	{"hello", "Hi there! I'm the ReWear assistant. Ask me about listing items, swapping or how points work."},
	{"point", "You earn points by giving away items and spend them to request items from others. Your balance is shown on your profile, and every item lists its price in points."},
	{"swap", "To swap, open an item you like and propose an exchange. The owner can accept or reject your proposal, and you can cancel it while it is pending."},
	{"exchange", "To swap, open an item you like and propose an exchange. The owner can accept or reject your proposal, and you can cancel it while it is pending."},
	{"list", "To list an item, go to your profile and add a title, category, condition and some photos. Honest condition descriptions get the best responses."},
	{"size", "Sizes are free text on each listing. Check the size field and ask the owner if you are unsure; measurements beat labels."},
	{"ship", "Shipping is arranged between the two of you after an exchange is accepted. Many members prefer local handovers."},
	{"thank", "You're welcome! Happy swapping."},
}

const defaultResponse = "I can help with listing items, proposing swaps and understanding points. Could you tell me a bit more about what you need?"

// assistantResponse picks a canned answer based on keywords in the message.
func assistantResponse(message string) string {
	lowered := strings.ToLower(message)
	for _, candidate := range cannedResponses {
		if strings.Contains(lowered, candidate.keyword) {
			return candidate.response
		}
	}
	return defaultResponse
}
