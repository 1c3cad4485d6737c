package handlers

import (
	"errors"
	"net/http"
	"strconv"
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

const featuredItemsLimit = 10

type ItemHdl interface {
	CreateItem(ctx *gin.Context)
	GetItems(ctx *gin.Context)
	GetFeaturedItems(ctx *gin.Context)
	GetItem(ctx *gin.Context)
	UpdateItem(ctx *gin.Context)
	DeleteItem(ctx *gin.Context)
	UploadItemImage(ctx *gin.Context)
}

type ItemHandler struct {
	DatabaseManager managers.DatabaseMgr
	FileManager     managers.FileMgr
}

func NewItemHandler(databaseManager *managers.DatabaseMgr, fileManager *managers.FileMgr) ItemHdl {
	return &ItemHandler{
		DatabaseManager: *databaseManager,
		FileManager:     *fileManager,
	}
}

// CreateItem lists a new clothing item owned by the caller.
func (handler *ItemHandler) CreateItem(ctx *gin.Context) {
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

	createRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.CreateItemRequest)

	itemId := uuid.New()
	createdAt := time.Now()

	queryString := `INSERT INTO rewear_schema.items
		(item_id, owner_id, title, description, category, condition, size, brand, color, material,
		 price_points, image_urls, is_available, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, '{}', true, false, $12, $12)`
	if _, err = tx.Exec(ctx, queryString, itemId, jwtUserId, createRequest.Title, createRequest.Description,
		createRequest.Category, createRequest.Condition, createRequest.Size, createRequest.Brand,
		createRequest.Color, createRequest.Material, createRequest.PricePoints, createdAt); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	owner := schemas.OwnerDTO{}
	queryString = `SELECT username, full_name, avatar_url FROM rewear_schema.users WHERE user_id = $1`
	if err = tx.QueryRow(ctx, queryString, jwtUserId).Scan(&owner.Username, &owner.FullName, &owner.AvatarURL); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	itemDto := &schemas.ItemDTO{
		ID:          itemId,
		Title:       createRequest.Title,
		Description: createRequest.Description,
		Category:    createRequest.Category,
		Condition:   createRequest.Condition,
		Size:        createRequest.Size,
		Brand:       createRequest.Brand,
		Color:       createRequest.Color,
		Material:    createRequest.Material,
		PricePoints: createRequest.PricePoints,
		ImageURLs:   []string{},
		IsAvailable: true,
		IsFeatured:  false,
		CreatedAt:   createdAt.Format(time.RFC3339),
		Owner:       owner,
	}
	utils.WriteAndLogResponse(ctx, itemDto, http.StatusCreated)
}

// GetItems returns available items, optionally filtered by category and a
// free-text search over title and description, in a pagination envelope.
func (handler *ItemHandler) GetItems(ctx *gin.Context) {
	offset, limit := utils.ParsePaginationParams(ctx)

	category := ctx.Query(utils.CategoryParamKey)
	if category != "" && !schemas.ItemCategory(category).IsValid() {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("unknown category"))
		return
	}
	search := ctx.Query(utils.SearchParamKey)

	filter := ` WHERE i.is_available = true`
	args := make([]any, 0, 4)
	if category != "" {
		args = append(args, category)
		filter += ` AND i.category = $1`
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		placeholder := `$` + itoa(len(args))
		filter += ` AND (i.title ILIKE ` + placeholder + ` OR i.description ILIKE ` + placeholder +
			` OR i.brand ILIKE ` + placeholder + ` OR i.color ILIKE ` + placeholder + `)`
	}

	countQuery := `SELECT COUNT(*) FROM rewear_schema.items i` + filter
	var totalRecords int
	if err := handler.DatabaseManager.GetPool().QueryRow(ctx, countQuery, args...).Scan(&totalRecords); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	args = append(args, offset, limit)
	queryString := itemSelectColumns + filter +
		` ORDER BY i.created_at DESC OFFSET $` + itoa(len(args)-1) + ` LIMIT $` + itoa(len(args))
	rows, err := handler.DatabaseManager.GetPool().Query(ctx, queryString, args...)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	items, err := scanItemRows(rows)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.SendPaginatedResponse(ctx, items, offset, limit, totalRecords)
}

// GetFeaturedItems returns up to ten featured, still available items for the
// landing page.
func (handler *ItemHandler) GetFeaturedItems(ctx *gin.Context) {
	queryString := itemSelectColumns +
		` WHERE i.is_featured = true AND i.is_available = true ORDER BY i.created_at DESC LIMIT $1`
	rows, err := handler.DatabaseManager.GetPool().Query(ctx, queryString, featuredItemsLimit)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	items, err := scanItemRows(rows)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(ctx, items, http.StatusOK)
}

// GetItem returns a single item with its owner snippet.
func (handler *ItemHandler) GetItem(ctx *gin.Context) {
	itemId := ctx.Param(utils.ItemIdKey)

	queryString := itemSelectColumns + ` WHERE i.item_id = $1`
	rows, err := handler.DatabaseManager.GetPool().Query(ctx, queryString, itemId)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	items, err := scanItemRows(rows)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if len(items) == 0 {
		utils.WriteAndLogError(ctx, schemas.ItemNotFound, http.StatusNotFound, errors.New("item not found"))
		return
	}

	utils.WriteAndLogResponse(ctx, &items[0], http.StatusOK)
}

// UpdateItem applies a partial update to an item the caller owns. Absent
// fields keep their current value.
func (handler *ItemHandler) UpdateItem(ctx *gin.Context) {
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
	itemId := ctx.Param(utils.ItemIdKey)

	updateRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.UpdateItemRequest)

	item := schemas.Item{}
	queryString := `SELECT owner_id, title, description, category, condition, size, brand, color, material,
		price_points, is_available FROM rewear_schema.items WHERE item_id = $1 FOR UPDATE`
	err = tx.QueryRow(ctx, queryString, itemId).Scan(&item.OwnerID, &item.Title, &item.Description,
		&item.Category, &item.Condition, &item.Size, &item.Brand, &item.Color, &item.Material,
		&item.PricePoints, &item.IsAvailable)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.ItemNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if item.OwnerID.String() != jwtUserId {
		err = errors.New("not the owner")
		utils.WriteAndLogError(ctx, schemas.Forbidden, http.StatusForbidden, err)
		return
	}

	applyItemUpdate(&item, updateRequest)

	queryString = `UPDATE rewear_schema.items SET title = $1, description = $2, category = $3, condition = $4,
		size = $5, brand = $6, color = $7, material = $8, price_points = $9, is_available = $10, updated_at = $11
		WHERE item_id = $12`
	if _, err = tx.Exec(ctx, queryString, item.Title, item.Description, item.Category, item.Condition,
		item.Size, item.Brand, item.Color, item.Material, item.PricePoints, item.IsAvailable,
		time.Now(), itemId); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	handler.GetItem(ctx)
}

// DeleteItem removes an item the caller owns. Exchanges referencing the item
// are removed with it.
func (handler *ItemHandler) DeleteItem(ctx *gin.Context) {
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
	itemId := ctx.Param(utils.ItemIdKey)

	var ownerId uuid.UUID
	queryString := `SELECT owner_id FROM rewear_schema.items WHERE item_id = $1 FOR UPDATE`
	if err = tx.QueryRow(ctx, queryString, itemId).Scan(&ownerId); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.ItemNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if ownerId.String() != jwtUserId {
		err = errors.New("not the owner")
		utils.WriteAndLogError(ctx, schemas.Forbidden, http.StatusForbidden, err)
		return
	}

	// An accepted exchange holds the item until it is completed or cancelled
	var acceptedCount int
	queryString = `SELECT COUNT(*) FROM rewear_schema.exchanges WHERE item_id = $1 AND status = $2`
	if err = tx.QueryRow(ctx, queryString, itemId, schemas.ExchangeStatusAccepted).Scan(&acceptedCount); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if acceptedCount > 0 {
		err = errors.New("item has an accepted exchange")
		utils.WriteAndLogError(ctx, schemas.InvalidTransition, http.StatusConflict, err)
		return
	}

	queryString = `DELETE FROM rewear_schema.items WHERE item_id = $1`
	if _, err = tx.Exec(ctx, queryString, itemId); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UploadItemImage stores an image for an item the caller owns and appends its
// URL to the item's image list.
func (handler *ItemHandler) UploadItemImage(ctx *gin.Context) {
	claims := ctx.MustGet(utils.ClaimsKey.String()).(jwt.MapClaims)
	jwtUserId := claims["sub"].(string)
	itemId := ctx.Param(utils.ItemIdKey)

	var ownerId uuid.UUID
	queryString := `SELECT owner_id FROM rewear_schema.items WHERE item_id = $1`
	if err := handler.DatabaseManager.GetPool().QueryRow(ctx, queryString, itemId).Scan(&ownerId); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.ItemNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if ownerId.String() != jwtUserId {
		utils.WriteAndLogError(ctx, schemas.Forbidden, http.StatusForbidden, errors.New("not the owner"))
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	imageUrl, customErr := handler.FileManager.SaveImage(fileHeader, "item")
	if customErr != nil {
		utils.WriteAndLogError(ctx, customErr, uploadErrorStatus(customErr), errors.New(customErr.Message))
		return
	}

	queryString = `UPDATE rewear_schema.items SET image_urls = array_append(image_urls, $1), updated_at = $2 WHERE item_id = $3`
	if _, err := handler.DatabaseManager.GetPool().Exec(ctx, queryString, imageUrl, time.Now(), itemId); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(ctx, &schemas.ImageUploadDTO{ImageURL: imageUrl}, http.StatusOK)
}

// itemSelectColumns selects everything an ItemDTO needs, owner included.
const itemSelectColumns = `SELECT i.item_id, i.title, i.description, i.category, i.condition, i.size, i.brand,
	i.color, i.material, i.price_points, i.image_urls, i.is_available, i.is_featured, i.created_at,
	u.username, u.full_name, u.avatar_url
	FROM rewear_schema.items i INNER JOIN rewear_schema.users u ON i.owner_id = u.user_id`

// scanItemRows converts rows produced by itemSelectColumns into DTOs.
func scanItemRows(rows pgx.Rows) ([]schemas.ItemDTO, error) {
	items := make([]schemas.ItemDTO, 0)
	for rows.Next() {
		item := schemas.ItemDTO{}
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Category, &item.Condition,
			&item.Size, &item.Brand, &item.Color, &item.Material, &item.PricePoints, &item.ImageURLs,
			&item.IsAvailable, &item.IsFeatured, &createdAt,
			&item.Owner.Username, &item.Owner.FullName, &item.Owner.AvatarURL); err != nil {
			return nil, err
		}
		item.CreatedAt = createdAt.Time.Format(time.RFC3339)
		if item.ImageURLs == nil {
			item.ImageURLs = []string{}
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// applyItemUpdate copies the set fields of a partial update onto the item.
func applyItemUpdate(item *schemas.Item, update *schemas.UpdateItemRequest) {
	if update.Title != nil {
		item.Title = *update.Title
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.Category != nil {
		item.Category = schemas.ItemCategory(*update.Category)
	}
	if update.Condition != nil {
		item.Condition = schemas.ItemCondition(*update.Condition)
	}
	if update.Size != nil {
		item.Size = *update.Size
	}
	if update.Brand != nil {
		item.Brand = *update.Brand
	}
	if update.Color != nil {
		item.Color = *update.Color
	}
	if update.Material != nil {
		item.Material = *update.Material
	}
	if update.PricePoints != nil {
		item.PricePoints = *update.PricePoints
	}
	if update.IsAvailable != nil {
		item.IsAvailable = *update.IsAvailable
	}
}
