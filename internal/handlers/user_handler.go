package handlers

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"

	"rewear-server/internal/managers"
	"rewear-server/internal/schemas"
	"rewear-server/internal/utils"
)

type UserHdl interface {
	RegisterUser(ctx *gin.Context)
	VerifyUser(ctx *gin.Context)
	ResendVerificationToken(ctx *gin.Context)
	LoginUser(ctx *gin.Context)
	RefreshToken(ctx *gin.Context)
	GetOwnProfile(ctx *gin.Context)
	GetUserProfile(ctx *gin.Context)
	UpdateProfile(ctx *gin.Context)
	ChangePassword(ctx *gin.Context)
	UploadAvatar(ctx *gin.Context)
}

type UserHandler struct {
	DatabaseManager managers.DatabaseMgr
	JWTManager      managers.JWTMgr
	MailManager     managers.MailMgr
	FileManager     managers.FileMgr
	Validator       *utils.Validator
	StartingPoints  int
}

func NewUserHandler(databaseManager *managers.DatabaseMgr, jwtManager *managers.JWTMgr, mailManager *managers.MailMgr, fileManager *managers.FileMgr, startingPoints int) UserHdl {
	return &UserHandler{
		DatabaseManager: *databaseManager,
		JWTManager:      *jwtManager,
		MailManager:     *mailManager,
		FileManager:     *fileManager,
		Validator:       utils.GetValidator(),
		StartingPoints:  startingPoints,
	}
}

// RegisterUser creates a new account with the configured starting points
// balance and sends a verification code by mail.
func (handler *UserHandler) RegisterUser(ctx *gin.Context) {
	tx := utils.BeginTransaction(ctx, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(ctx, tx, err)
	}()

	registrationRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.RegistrationRequest)

	// Check that the mail domain can actually receive mail
	if !handler.Validator.VerifyEmail(registrationRequest.Email) {
		err = errors.New("email unreachable")
		utils.WriteAndLogError(ctx, schemas.EmailUnreachable, http.StatusBadRequest, err)
		return
	}

	if err = checkUsernameEmailTaken(ctx, tx, registrationRequest.Username, registrationRequest.Email); err != nil {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registrationRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	userId := uuid.New()
	createdAt := time.Now()

	queryString := `INSERT INTO rewear_schema.users
		(user_id, username, email, password, full_name, bio, avatar_url, points, is_active, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, '', '', $6, true, false, $7, $7)`
	if _, err = tx.Exec(ctx, queryString, userId, registrationRequest.Username, registrationRequest.Email,
		hashedPassword, registrationRequest.FullName, handler.StartingPoints, createdAt); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = handler.generateAndSendToken(ctx, tx, registrationRequest.Email, registrationRequest.Username, userId); err != nil {
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	userDto := &schemas.UserDTO{
		Username: registrationRequest.Username,
		Email:    registrationRequest.Email,
		FullName: registrationRequest.FullName,
	}
	utils.WriteAndLogResponse(ctx, userDto, http.StatusCreated)
}

// VerifyUser marks an account as verified if the submitted code matches an
// unexpired verification token.
func (handler *UserHandler) VerifyUser(ctx *gin.Context) {
	tx := utils.BeginTransaction(ctx, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(ctx, tx, err)
	}()

	verificationRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.VerificationRequest)
	username := ctx.Param(utils.UsernameKey)

	user, err := retrieveUserByUsername(ctx, tx, username)
	if err != nil {
		return
	}

	if user.IsVerified {
		err = errors.New("already verified")
		utils.WriteAndLogError(ctx, schemas.UserAlreadyVerified, http.StatusAlreadyReported, err)
		return
	}

	var expiresAt pgtype.Timestamptz
	queryString := `SELECT expires_at FROM rewear_schema.verification_tokens WHERE user_id = $1 AND token = $2`
	if err = tx.QueryRow(ctx, queryString, user.ID, verificationRequest.Token).Scan(&expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.InvalidVerificationCode, http.StatusBadRequest, err)
			return
		}
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if time.Now().After(expiresAt.Time) {
		err = errors.New("token expired")
		utils.WriteAndLogError(ctx, schemas.InvalidVerificationCode, http.StatusBadRequest, err)
		return
	}

	queryString = `UPDATE rewear_schema.users SET is_verified = true, updated_at = $1 WHERE user_id = $2`
	if _, err = tx.Exec(ctx, queryString, time.Now(), user.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	queryString = `DELETE FROM rewear_schema.verification_tokens WHERE user_id = $1`
	if _, err = tx.Exec(ctx, queryString, user.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}

	if mailErr := handler.MailManager.SendConfirmationMail(user.Email, user.Username); mailErr != nil {
		utils.LogMessageWithFieldsAndError(ctx, "warn", "Error sending confirmation mail", mailErr)
	}

	// Verification logs the user in right away
	handler.issueTokenPair(ctx, user.ID.String(), user.Username)
}

// ResendVerificationToken invalidates any previous verification code and
// mails a fresh one.
func (handler *UserHandler) ResendVerificationToken(ctx *gin.Context) {
	tx := utils.BeginTransaction(ctx, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() {
		utils.RollbackTransaction(ctx, tx, err)
	}()

	username := ctx.Param(utils.UsernameKey)

	user, err := retrieveUserByUsername(ctx, tx, username)
	if err != nil {
		return
	}

	if user.IsVerified {
		err = errors.New("already verified")
		utils.WriteAndLogError(ctx, schemas.UserAlreadyVerified, http.StatusAlreadyReported, err)
		return
	}

	queryString := `DELETE FROM rewear_schema.verification_tokens WHERE user_id = $1`
	if _, err = tx.Exec(ctx, queryString, user.ID); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = handler.generateAndSendToken(ctx, tx, user.Email, user.Username, *user.ID); err != nil {
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}
	ctx.Status(http.StatusNoContent)
}

// LoginUser checks the credentials and issues a token pair. Unknown usernames
// and wrong passwords produce the same response.
func (handler *UserHandler) LoginUser(ctx *gin.Context) {
	loginRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.LoginRequest)

	var userId uuid.UUID
	var passwordHash []byte
	queryString := `SELECT user_id, password FROM rewear_schema.users WHERE username = $1 AND is_active = true`
	err := handler.DatabaseManager.GetPool().QueryRow(ctx, queryString, loginRequest.Username).Scan(&userId, &passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.InvalidCredentials, http.StatusUnauthorized, err)
			return
		}
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword(passwordHash, []byte(loginRequest.Password)); err != nil {
		utils.WriteAndLogError(ctx, schemas.InvalidCredentials, http.StatusUnauthorized, err)
		return
	}

	handler.issueTokenPair(ctx, userId.String(), loginRequest.Username)
}

// RefreshToken issues a fresh token pair in exchange for a valid refresh token.
func (handler *UserHandler) RefreshToken(ctx *gin.Context) {
	refreshRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.RefreshTokenRequest)

	claims, err := handler.JWTManager.ValidateJWT(refreshRequest.RefreshToken)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	mapClaims := claims.(jwt.MapClaims)
	refresh, ok := mapClaims["refresh"].(string)
	if !ok || refresh != "true" {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, errors.New("not a refresh token"))
		return
	}

	userId, _ := mapClaims["sub"].(string)
	username, _ := mapClaims["username"].(string)

	handler.issueTokenPair(ctx, userId, username)
}

// GetOwnProfile returns the caller's account including the points balance.
func (handler *UserHandler) GetOwnProfile(ctx *gin.Context) {
	claims := ctx.MustGet(utils.ClaimsKey.String()).(jwt.MapClaims)
	jwtUserId := claims["sub"].(string)

	user := schemas.UserProfileDTO{}
	var createdAt pgtype.Timestamptz
	queryString := `SELECT user_id, username, email, full_name, bio, avatar_url, points, is_verified, created_at
		FROM rewear_schema.users WHERE user_id = $1`
	err := handler.DatabaseManager.GetPool().QueryRow(ctx, queryString, jwtUserId).
		Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Bio, &user.AvatarURL,
			&user.Points, &user.IsVerified, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	user.CreatedAt = createdAt.Time.Format(time.RFC3339)

	utils.WriteAndLogResponse(ctx, &user, http.StatusOK)
}

// GetUserProfile returns another user's public profile. The email address and
// points balance are never exposed here.
func (handler *UserHandler) GetUserProfile(ctx *gin.Context) {
	username := ctx.Param(utils.UsernameKey)

	profile := schemas.PublicProfileDTO{}
	queryString := `SELECT u.username, u.full_name, u.bio, u.avatar_url,
		(SELECT COUNT(*) FROM rewear_schema.items i WHERE i.owner_id = u.user_id AND i.is_available = true)
		FROM rewear_schema.users u WHERE u.username = $1 AND u.is_active = true`
	err := handler.DatabaseManager.GetPool().QueryRow(ctx, queryString, username).
		Scan(&profile.Username, &profile.FullName, &profile.Bio, &profile.AvatarURL, &profile.Items)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(ctx, &profile, http.StatusOK)
}

// UpdateProfile changes the caller's display name, bio and avatar reference.
func (handler *UserHandler) UpdateProfile(ctx *gin.Context) {
	claims := ctx.MustGet(utils.ClaimsKey.String()).(jwt.MapClaims)
	jwtUserId := claims["sub"].(string)

	updateRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.UpdateProfileRequest)

	userDto := schemas.UserDTO{}
	queryString := `UPDATE rewear_schema.users SET full_name = $1, bio = $2, avatar_url = $3, updated_at = $4
		WHERE user_id = $5 RETURNING username, email, full_name`
	err := handler.DatabaseManager.GetPool().QueryRow(ctx, queryString, updateRequest.FullName, updateRequest.Bio,
		updateRequest.AvatarURL, time.Now(), jwtUserId).Scan(&userDto.Username, &userDto.Email, &userDto.FullName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(ctx, &userDto, http.StatusOK)
}

// ChangePassword replaces the caller's password after checking the old one.
func (handler *UserHandler) ChangePassword(ctx *gin.Context) {
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

	passwordRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.ChangePasswordRequest)

	var passwordHash []byte
	queryString := `SELECT password FROM rewear_schema.users WHERE user_id = $1`
	if err = tx.QueryRow(ctx, queryString, jwtUserId).Scan(&passwordHash); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = bcrypt.CompareHashAndPassword(passwordHash, []byte(passwordRequest.OldPassword)); err != nil {
		utils.WriteAndLogError(ctx, schemas.InvalidCredentials, http.StatusForbidden, err)
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(passwordRequest.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	queryString = `UPDATE rewear_schema.users SET password = $1, updated_at = $2 WHERE user_id = $3`
	if _, err = tx.Exec(ctx, queryString, newHash, time.Now(), jwtUserId); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(ctx, tx); err != nil {
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UploadAvatar stores a new avatar image and updates the caller's profile.
func (handler *UserHandler) UploadAvatar(ctx *gin.Context) {
	claims := ctx.MustGet(utils.ClaimsKey.String()).(jwt.MapClaims)
	jwtUserId := claims["sub"].(string)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	imageUrl, customErr := handler.FileManager.SaveImage(fileHeader, "avatar")
	if customErr != nil {
		utils.WriteAndLogError(ctx, customErr, uploadErrorStatus(customErr), errors.New(customErr.Message))
		return
	}

	queryString := `UPDATE rewear_schema.users SET avatar_url = $1, updated_at = $2 WHERE user_id = $3`
	if _, err := handler.DatabaseManager.GetPool().Exec(ctx, queryString, imageUrl, time.Now(), jwtUserId); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(ctx, &schemas.ImageUploadDTO{ImageURL: imageUrl}, http.StatusOK)
}

// issueTokenPair generates an access and a refresh token and writes them.
func (handler *UserHandler) issueTokenPair(ctx *gin.Context, userId, username string) {
	token, err := handler.JWTManager.GenerateJWT(userId, username, false)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	refreshToken, err := handler.JWTManager.GenerateJWT(userId, username, true)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	tokenPairDto := &schemas.TokenPairDTO{
		Token:        token,
		RefreshToken: refreshToken,
	}
	utils.WriteAndLogResponse(ctx, tokenPairDto, http.StatusOK)
}

// generateAndSendToken stores a fresh six-digit verification code and mails it.
func (handler *UserHandler) generateAndSendToken(ctx *gin.Context, tx pgx.Tx, email, username string, userId uuid.UUID) error {
	token := generateVerificationToken()
	tokenId := uuid.New()
	expiresAt := time.Now().Add(2 * time.Hour)

	queryString := `INSERT INTO rewear_schema.verification_tokens (token_id, user_id, token, expires_at) VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, queryString, tokenId, userId, token, expiresAt); err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}

	if err := handler.MailManager.SendVerificationMail(email, username, token); err != nil {
		utils.WriteAndLogError(ctx, schemas.EmailNotSent, http.StatusInternalServerError, err)
		return err
	}

	return nil
}

// checkUsernameEmailTaken writes a conflict response if the username or email
// is already registered.
func checkUsernameEmailTaken(ctx *gin.Context, tx pgx.Tx, username, email string) error {
	queryString := `SELECT username, email FROM rewear_schema.users WHERE username = $1 OR email = $2`
	rows, err := tx.Query(ctx, queryString, username, email)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var foundUsername, foundEmail string
		if err := rows.Scan(&foundUsername, &foundEmail); err != nil {
			utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
			return err
		}

		if foundUsername == username {
			err := errors.New("username taken")
			utils.WriteAndLogError(ctx, schemas.UsernameTaken, http.StatusConflict, err)
			return err
		}

		err := errors.New("email taken")
		utils.WriteAndLogError(ctx, schemas.EmailTaken, http.StatusConflict, err)
		return err
	}

	return nil
}

// retrieveUserByUsername loads the account identified by the given username,
// writing a not-found response if it does not exist.
func retrieveUserByUsername(ctx *gin.Context, tx pgx.Tx, username string) (*schemas.User, error) {
	user := schemas.User{}
	queryString := `SELECT user_id, username, email, is_verified FROM rewear_schema.users WHERE username = $1 AND is_active = true`
	err := tx.QueryRow(ctx, queryString, username).Scan(&user.ID, &user.Username, &user.Email, &user.IsVerified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(ctx, schemas.UserNotFound, http.StatusNotFound, err)
			return nil, err
		}
		utils.WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return nil, err
	}

	return &user, nil
}

func generateVerificationToken() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

func uploadErrorStatus(customErr *schemas.CustomError) int {
	if customErr == schemas.FileTooLarge {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
