package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"rewear-server/internal/managers"
	"rewear-server/internal/schemas"
	"rewear-server/internal/utils"
)

type ExchangeHdl interface {
	CreateExchange(ctx *gin.Context)
	GetExchanges(ctx *gin.Context)
	GetExchange(ctx *gin.Context)
	AcceptExchange(ctx *gin.Context)
	RejectExchange(ctx *gin.Context)
	CancelExchange(ctx *gin.Context)
	CompleteExchange(ctx *gin.Context)
}

type ExchangeHandler struct {
	DatabaseManager managers.DatabaseMgr
}

func NewExchangeHandler(databaseManager *managers.DatabaseMgr) ExchangeHdl {
	return &ExchangeHandler{
		DatabaseManager: *databaseManager,
	}
}

// CreateExchange proposes an exchange for somebody else's available item. The
// points amount is fixed here from the item's current price and never changes
// afterwards. The proposer's balance is not checked until acceptance.
func (handler *ExchangeHandler) CreateExchange(ctx *gin.Context) {
	tx := utils.BeginTransaction(ctx, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(ctx, tx, err)
	}()

	claims := ctx.MustGet(utils.ClaimsKey.String()).(jwt.MapClaims)
	jwtUserId := claims["sub"].(string)

	createRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.CreateExchangeRequest)

	var ownerId uuid.UUID
	var isAvailable bool
	var pricePoints int
	queryString := `SELECT owner_id, is_available, price_points FROM rewear_schema.items WHERE item_id = $1 FOR UPDATE`
	if err = tx.QueryRow(ctx, queryString, createRequest.ItemID).Scan(&ownerId, &isAvailable, &pricePoints); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.ItemNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if ownerId.String() == jwtUserId {
		err = errors.New("own item")
		utils.WriteAndLogError(ctx, schemas.OwnItemExchange, http.StatusBadRequest, err)
		return
	}

	if !isAvailable {
		err = errors.New("item unavailable")
		utils.WriteAndLogError(ctx, schemas.ItemUnavailable, http.StatusConflict, err)
		return
	}

	var pendingCount int
	queryString = `SELECT COUNT(*) FROM rewear_schema.exchanges
		WHERE item_id = $1 AND requesting_user_id = $2 AND status = $3`
	if err = tx.QueryRow(ctx, queryString, createRequest.ItemID, jwtUserId, schemas.ExchangeStatusPending).Scan(&pendingCount); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if pendingCount > 0 {
		err = errors.New("pending exchange exists")
		utils.WriteAndLogError(ctx, schemas.ExchangeAlreadyExists, http.StatusConflict, err)
		return
	}

	pointsExchanged := 0
	if schemas.ExchangeType(createRequest.ExchangeType) == schemas.ExchangeTypePointsExchange {
		pointsExchanged = pricePoints
	}

	exchangeId := uuid.New()
	createdAt := time.Now()

	queryString = `INSERT INTO rewear_schema.exchanges
		(exchange_id, item_id, offering_user_id, requesting_user_id, exchange_type, status, message, points_exchanged, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`
	if _, err = tx.Exec(ctx, queryString, exchangeId, createRequest.ItemID, ownerId, jwtUserId,
		createRequest.ExchangeType, schemas.ExchangeStatusPending, createRequest.Message,
		pointsExchanged, createdAt); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	handler.writeExchange(ctx, exchangeId.String(), http.StatusCreated)
}

// GetExchanges lists the caller's exchanges, optionally filtered by role
// (incoming or outgoing) and status, newest first.
func (handler *ExchangeHandler) GetExchanges(ctx *gin.Context) {
	claims := ctx.MustGet(utils.ClaimsKey.String()).(jwt.MapClaims)
	jwtUserId := claims["sub"].(string)

	offset, limit := utils.ParsePaginationParams(ctx)

	role := ctx.Query(utils.ExchangeRoleParamKey)
	status := ctx.Query(utils.ExchangeStatusParamKey)
	if status != "" && !schemas.ExchangeStatus(status).IsValid() {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("unknown status"))
		return
	}

	args := []any{jwtUserId}
	var filter string
	switch role {
	case "incoming":
		filter = ` WHERE e.offering_user_id = $1`
	case "outgoing":
		filter = ` WHERE e.requesting_user_id = $1`
	case "":
		filter = ` WHERE (e.offering_user_id = $1 OR e.requesting_user_id = $1)`
	default:
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("unknown role"))
		return
	}

	if status != "" {
		args = append(args, status)
		filter += ` AND e.status = $2`
	}

	countQuery := `SELECT COUNT(*) FROM rewear_schema.exchanges e` + filter
	var totalRecords int
	if err := handler.DatabaseManager.GetPool().QueryRow(ctx, countQuery, args...).Scan(&totalRecords); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	args = append(args, offset, limit)
	queryString := exchangeSelectColumns + filter +
		` ORDER BY e.created_at DESC OFFSET $` + itoa(len(args)-1) + ` LIMIT $` + itoa(len(args))
	rows, err := handler.DatabaseManager.GetPool().Query(ctx, queryString, args...)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	exchanges, err := scanExchangeRows(rows)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.SendPaginatedResponse(ctx, exchanges, offset, limit, totalRecords)
}

// GetExchange returns a single exchange. Only the two parties may see it.
func (handler *ExchangeHandler) GetExchange(ctx *gin.Context) {
	claims := ctx.MustGet(utils.ClaimsKey.String()).(jwt.MapClaims)
	jwtUserId := claims["sub"].(string)
	exchangeId := ctx.Param(utils.ExchangeIdKey)

	var offeringUserId, requestingUserId uuid.UUID
	queryString := `SELECT offering_user_id, requesting_user_id FROM rewear_schema.exchanges WHERE exchange_id = $1`
	err := handler.DatabaseManager.GetPool().QueryRow(ctx, queryString, exchangeId).Scan(&offeringUserId, &requestingUserId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.ExchangeNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if offeringUserId.String() != jwtUserId && requestingUserId.String() != jwtUserId {
		utils.WriteAndLogError(ctx, schemas.Forbidden, http.StatusForbidden, errors.New("not a party"))
		return
	}

	handler.writeExchange(ctx, exchangeId, http.StatusOK)
}

// AcceptExchange moves a pending exchange to accepted. Only the item owner may
// accept. For a points exchange the points move here, and the debit fails the
// request if the requester's balance is too low. The item becomes unavailable.
func (handler *ExchangeHandler) AcceptExchange(ctx *gin.Context) {
	handler.transitionExchange(ctx, schemas.ExchangeStatusAccepted)
}

// RejectExchange moves a pending exchange to rejected. Only the item owner may
// reject. No points move.
func (handler *ExchangeHandler) RejectExchange(ctx *gin.Context) {
	handler.transitionExchange(ctx, schemas.ExchangeStatusRejected)
}

// CancelExchange cancels a pending or accepted exchange. Either party may
// cancel. Cancelling an accepted points exchange reverses the transfer and
// makes the item available again.
func (handler *ExchangeHandler) CancelExchange(ctx *gin.Context) {
	handler.transitionExchange(ctx, schemas.ExchangeStatusCancelled)
}

// CompleteExchange moves an accepted exchange to completed. Either party may
// complete. The points already moved at acceptance.
func (handler *ExchangeHandler) CompleteExchange(ctx *gin.Context) {
	handler.transitionExchange(ctx, schemas.ExchangeStatusCompleted)
}

// transitionExchange performs a lifecycle transition inside one transaction.
// The exchange row is locked first, so two concurrent transitions on the same
// exchange serialize and the loser sees the new status and fails the
// transition check.
func (handler *ExchangeHandler) transitionExchange(ctx *gin.Context, target schemas.ExchangeStatus) {
	tx := utils.BeginTransaction(ctx, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(ctx, tx, err)
	}()

	claims := ctx.MustGet(utils.ClaimsKey.String()).(jwt.MapClaims)
	jwtUserId := claims["sub"].(string)
	exchangeId := ctx.Param(utils.ExchangeIdKey)

	exchange := schemas.Exchange{}
	queryString := `SELECT item_id, offering_user_id, requesting_user_id, exchange_type, status, points_exchanged
		FROM rewear_schema.exchanges WHERE exchange_id = $1 FOR UPDATE`
	err = tx.QueryRow(ctx, queryString, exchangeId).Scan(&exchange.ItemID, &exchange.OfferingUserID,
		&exchange.RequestingUserID, &exchange.ExchangeType, &exchange.Status, &exchange.PointsExchanged)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.ExchangeNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	isOwner := exchange.OfferingUserID.String() == jwtUserId
	isRequester := exchange.RequestingUserID.String() == jwtUserId
	if !isOwner && !isRequester {
		err = errors.New("not a party")
		utils.WriteAndLogError(ctx, schemas.Forbidden, http.StatusForbidden, err)
		return
	}

	// Accepting and rejecting is the owner's call; the requester can only
	// cancel or complete.
	if (target == schemas.ExchangeStatusAccepted || target == schemas.ExchangeStatusRejected) && !isOwner {
		err = errors.New("owner only")
		utils.WriteAndLogError(ctx, schemas.Forbidden, http.StatusForbidden, err)
		return
	}

	if !exchange.Status.CanTransition(target) {
		err = errors.New("invalid transition")
		utils.WriteAndLogError(ctx, schemas.InvalidTransition, http.StatusConflict, err)
		return
	}

	switch target {
	case schemas.ExchangeStatusAccepted:
		if err = handler.settleAcceptance(ctx, tx, &exchange); err != nil {
			return
		}
	case schemas.ExchangeStatusCancelled:
		if exchange.Status == schemas.ExchangeStatusAccepted {
			if err = handler.reverseAcceptance(ctx, tx, &exchange); err != nil {
				return
			}
		}
	}

	queryString = `UPDATE rewear_schema.exchanges SET status = $1, updated_at = $2 WHERE exchange_id = $3`
	if _, err = tx.Exec(ctx, queryString, target, time.Now(), exchangeId); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	handler.writeExchange(ctx, exchangeId, http.StatusOK)
}

// settleAcceptance moves the points from the requester to the owner and takes
// the item off the market. The debit is conditional on the balance, so a
// requester who spent their points since proposing cannot go negative.
func (handler *ExchangeHandler) settleAcceptance(ctx *gin.Context, tx pgx.Tx, exchange *schemas.Exchange) error {
	if exchange.ExchangeType == schemas.ExchangeTypePointsExchange && exchange.PointsExchanged > 0 {
		queryString := `UPDATE rewear_schema.users SET points = points - $1, updated_at = $2
			WHERE user_id = $3 AND points >= $1`
		commandTag, err := tx.Exec(ctx, queryString, exchange.PointsExchanged, time.Now(), exchange.RequestingUserID)
		if err != nil {
			utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
			return err
		}
		if commandTag.RowsAffected() == 0 {
			err = errors.New("insufficient points")
			utils.WriteAndLogError(ctx, schemas.InsufficientPoints, http.StatusConflict, err)
			return err
		}

		queryString = `UPDATE rewear_schema.users SET points = points + $1, updated_at = $2 WHERE user_id = $3`
		if _, err = tx.Exec(ctx, queryString, exchange.PointsExchanged, time.Now(), exchange.OfferingUserID); err != nil {
			utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
			return err
		}
	}

	queryString := `UPDATE rewear_schema.items SET is_available = false, updated_at = $1 WHERE item_id = $2`
	if _, err := tx.Exec(ctx, queryString, time.Now(), exchange.ItemID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}

	return nil
}

// reverseAcceptance undoes the effects of an acceptance: the points flow back
// to the requester and the item returns to the market. The owner's balance is
// checked the same way the requester's was on acceptance.
func (handler *ExchangeHandler) reverseAcceptance(ctx *gin.Context, tx pgx.Tx, exchange *schemas.Exchange) error {
	if exchange.ExchangeType == schemas.ExchangeTypePointsExchange && exchange.PointsExchanged > 0 {
		queryString := `UPDATE rewear_schema.users SET points = points - $1, updated_at = $2
			WHERE user_id = $3 AND points >= $1`
		commandTag, err := tx.Exec(ctx, queryString, exchange.PointsExchanged, time.Now(), exchange.OfferingUserID)
		if err != nil {
			utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
			return err
		}
		if commandTag.RowsAffected() == 0 {
			err = errors.New("insufficient points")
			utils.WriteAndLogError(ctx, schemas.InsufficientPoints, http.StatusConflict, err)
			return err
		}

		queryString = `UPDATE rewear_schema.users SET points = points + $1, updated_at = $2 WHERE user_id = $3`
		if _, err = tx.Exec(ctx, queryString, exchange.PointsExchanged, time.Now(), exchange.RequestingUserID); err != nil {
			utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
			return err
		}
	}

	queryString := `UPDATE rewear_schema.items SET is_available = true, updated_at = $1 WHERE item_id = $2`
	if _, err := tx.Exec(ctx, queryString, time.Now(), exchange.ItemID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}

	return nil
}

// writeExchange loads a single exchange and writes it with the given status code.
func (handler *ExchangeHandler) writeExchange(ctx *gin.Context, exchangeId string, statusCode int) {
	queryString := exchangeSelectColumns + ` WHERE e.exchange_id = $1`
	rows, err := handler.DatabaseManager.GetPool().Query(ctx, queryString, exchangeId)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	exchanges, err := scanExchangeRows(rows)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if len(exchanges) == 0 {
		utils.WriteAndLogError(ctx, schemas.ExchangeNotFound, http.StatusNotFound, errors.New("exchange not found"))
		return
	}

	utils.WriteAndLogResponse(ctx, &exchanges[0], statusCode)
}

// exchangeSelectColumns selects everything an ExchangeDTO needs.
const exchangeSelectColumns = `SELECT e.exchange_id, e.item_id, i.title, o.username, r.username,
	e.exchange_type, e.status, e.message, e.points_exchanged, e.created_at
	FROM rewear_schema.exchanges e
	INNER JOIN rewear_schema.items i ON e.item_id = i.item_id
	INNER JOIN rewear_schema.users o ON e.offering_user_id = o.user_id
	INNER JOIN rewear_schema.users r ON e.requesting_user_id = r.user_id`

// scanExchangeRows converts rows produced by exchangeSelectColumns into DTOs.
func scanExchangeRows(rows pgx.Rows) ([]schemas.ExchangeDTO, error) {
	exchanges := make([]schemas.ExchangeDTO, 0)
	for rows.Next() {
		exchange := schemas.ExchangeDTO{}
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&exchange.ID, &exchange.ItemID, &exchange.ItemTitle, &exchange.OfferingUser,
			&exchange.RequestingUser, &exchange.ExchangeType, &exchange.Status, &exchange.Message,
			&exchange.PointsExchanged, &createdAt); err != nil {
			return nil, err
		}
		exchange.CreatedAt = createdAt.Time.Format(time.RFC3339)
		exchanges = append(exchanges, exchange)
	}

	return exchanges, rows.Err()
}
