package routing

import (
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"rewear-server/internal/managers"
	"rewear-server/internal/managers/mocks"
	"rewear-server/internal/schemas"
	"rewear-server/internal/utils"
)

// User is the request payload used for registration and login tests.
type User struct {
	UserId         string `json:"-"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	Password       string `json:"password"`
	HashedPassword string `json:"-"`
	Email          string `json:"email"`
}

func setupMocks(t *testing.T) (*mocks.MockDatabaseManager, managers.JWTMgr, *mocks.MockMailManager, *mocks.MockFileManager) {
	poolMock, err := pgxmock.NewPool()
	if err != nil {
		log.Errorf("Error creating mock database pool: %v", err)
	}

	databaseMgrMock := &mocks.MockDatabaseManager{}
	databaseMgrMock.On("GetPool").Return(poolMock)

	t.Setenv("ENVIRONMENT", "test")
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		log.Errorf("Error generating key pair: %v", err)
	}
	jwtMgr := managers.NewJWTManager(privateKey, publicKey)

	mailMgrMock := &mocks.MockMailManager{}
	mailMgrMock.On("SendVerificationMail", mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)
	mailMgrMock.On("SendConfirmationMail", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	fileMgrMock := &mocks.MockFileManager{}
	fileMgrMock.On("UploadDir").Return(t.TempDir())

	// No real MX lookups in tests
	utils.GetValidator().VerifyEmail = func(email string) bool { return true }

	return databaseMgrMock, jwtMgr, mailMgrMock, fileMgrMock
}

func TestUserRegistration(t *testing.T) {
	createUserRequest := func() User {
		return User{
			Username: "testUser",
			FullName: "Test User",
			Password: "test.Password123",
			Email:    "test@example.com",
		}
	}

	createUserRequestWithInvalidEmail := func() User {
		u := createUserRequest()
		u.Email = "test@example@.com"
		return u
	}

	createUserRequestWithDuplicateUsername := func() User {
		u := createUserRequest()
		u.Username = "duplicateUser"
		u.Email = "duplicate@example.com"
		return u
	}

	testCases := []struct {
		name         string
		user         User
		status       int
		responseBody map[string]interface{}
	}{
		{
			"ValidRegistration",
			createUserRequest(),
			http.StatusCreated,
			map[string]interface{}{
				"username":  "testUser",
				"full_name": "Test User",
				"email":     "test@example.com",
			},
		},
		{
			"InvalidEmail",
			createUserRequestWithInvalidEmail(),
			http.StatusBadRequest,
			map[string]interface{}{
				"error": map[string]interface{}{
					"code":    "ERR-001",
					"message": "The request body is invalid. Please check the request body and try again.",
				},
			},
		},
		{
			"DuplicateUsername",
			createUserRequestWithDuplicateUsername(),
			http.StatusConflict,
			map[string]interface{}{
				"error": map[string]interface{}{
					"code":    "ERR-002",
					"message": "The username is already taken. Please try another username.",
				},
			},
		},
		{
			"UnreachableEmail",
			createUserRequest(),
			http.StatusBadRequest,
			map[string]interface{}{
				"error": map[string]interface{}{
					"code":    "ERR-022",
					"message": "The email address appears to be unreachable. Please check the address and try again.",
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			databaseMgrMock, jwtMgr, mailMgrMock, fileMgrMock := setupMocks(t)

			router := InitRouter(databaseMgrMock, mailMgrMock, jwtMgr, fileMgrMock, 100)

			server := httptest.NewServer(router)
			defer server.Close()

			poolMock := databaseMgrMock.GetPool().(pgxmock.PgxPoolIface)

			switch tc.name {
			case "InvalidEmail":
				// Validation fails before any database call
			case "UnreachableEmail":
				utils.GetValidator().VerifyEmail = func(email string) bool { return false }
				poolMock.ExpectBegin()
				poolMock.ExpectRollback()
			case "DuplicateUsername":
				poolMock.ExpectBegin()
				poolMock.ExpectQuery("SELECT username, email").WithArgs(tc.user.Username, tc.user.Email).
					WillReturnRows(pgxmock.NewRows([]string{"username", "email"}).AddRow(tc.user.Username, tc.user.Email))
				poolMock.ExpectRollback()
			default:
				poolMock.ExpectBegin()
				poolMock.ExpectQuery("SELECT username, email").WithArgs(tc.user.Username, tc.user.Email).
					WillReturnRows(pgxmock.NewRows([]string{"username", "email"}))
				poolMock.ExpectExec("INSERT INTO rewear_schema.users").
					WithArgs(pgxmock.AnyArg(), tc.user.Username, tc.user.Email, pgxmock.AnyArg(), tc.user.FullName, 100, pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				poolMock.ExpectExec("INSERT INTO rewear_schema.verification_tokens").
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				poolMock.ExpectCommit()
			}

			expect := httpexpect.Default(t, server.URL)
			request := expect.POST("/api/users").WithJSON(tc.user)
			response := request.Expect().Status(tc.status)
			response.JSON().IsEqual(tc.responseBody)

			if err := poolMock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}

func TestUserLogin(t *testing.T) {
	createLoginRequest := func() User {
		u := User{
			UserId:   uuid.New().String(),
			Username: "testUser",
			Password: "test.Password123",
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		u.HashedPassword = string(hash)

		return u
	}

	testCases := []struct {
		name   string
		user   User
		status int
	}{
		{"ValidLogin", createLoginRequest(), http.StatusOK},
		{"UnknownUser", createLoginRequest(), http.StatusUnauthorized},
		{"WrongPassword", createLoginRequest(), http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			databaseMgrMock, jwtMgr, mailMgrMock, fileMgrMock := setupMocks(t)

			router := InitRouter(databaseMgrMock, mailMgrMock, jwtMgr, fileMgrMock, 100)

			server := httptest.NewServer(router)
			defer server.Close()

			poolMock := databaseMgrMock.GetPool().(pgxmock.PgxPoolIface)
			userId, _ := uuid.Parse(tc.user.UserId)

			switch tc.name {
			case "UnknownUser":
				poolMock.ExpectQuery("SELECT user_id, password").WithArgs(tc.user.Username).
					WillReturnRows(pgxmock.NewRows([]string{"user_id", "password"}))
			case "WrongPassword":
				tc.user.Password = "wrong.Password123"
				poolMock.ExpectQuery("SELECT user_id, password").WithArgs(tc.user.Username).
					WillReturnRows(pgxmock.NewRows([]string{"user_id", "password"}).AddRow(userId, []byte(tc.user.HashedPassword)))
			default:
				poolMock.ExpectQuery("SELECT user_id, password").WithArgs(tc.user.Username).
					WillReturnRows(pgxmock.NewRows([]string{"user_id", "password"}).AddRow(userId, []byte(tc.user.HashedPassword)))
			}

			expect := httpexpect.Default(t, server.URL)
			request := expect.POST("/api/users/login").WithJSON(tc.user)
			response := request.Expect().Status(tc.status)

			if tc.status == http.StatusOK {
				response.JSON().Object().Value("token").String().NotEmpty()
				response.JSON().Object().Value("refreshToken").String().NotEmpty()
			} else {
				response.JSON().Object().Value("error").Object().Value("code").IsEqual("ERR-017")
			}

			if err := poolMock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}

func TestExchangeAccept(t *testing.T) {
	ownerId := uuid.New()
	requesterId := uuid.New()
	itemId := uuid.New()
	exchangeId := uuid.New()

	testCases := []struct {
		name   string
		status int
	}{
		{"AcceptMovesPoints", http.StatusOK},
		{"InsufficientPoints", http.StatusConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			databaseMgrMock, jwtMgr, mailMgrMock, fileMgrMock := setupMocks(t)

			router := InitRouter(databaseMgrMock, mailMgrMock, jwtMgr, fileMgrMock, 100)

			server := httptest.NewServer(router)
			defer server.Close()

			jwtToken, _ := jwtMgr.GenerateJWT(ownerId.String(), "owner", false)

			poolMock := databaseMgrMock.GetPool().(pgxmock.PgxPoolIface)

			poolMock.ExpectBegin()
			poolMock.ExpectQuery("SELECT item_id, offering_user_id").WithArgs(exchangeId.String()).
				WillReturnRows(pgxmock.NewRows([]string{"item_id", "offering_user_id", "requesting_user_id", "exchange_type", "status", "points_exchanged"}).
					AddRow(&itemId, &ownerId, &requesterId, schemas.ExchangeTypePointsExchange, schemas.ExchangeStatusPending, 30))

			if tc.name == "InsufficientPoints" {
				poolMock.ExpectExec("UPDATE rewear_schema.users").
					WithArgs(30, pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				poolMock.ExpectRollback()
			} else {
				poolMock.ExpectExec("UPDATE rewear_schema.users").
					WithArgs(30, pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				poolMock.ExpectExec("UPDATE rewear_schema.users").
					WithArgs(30, pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				poolMock.ExpectExec("UPDATE rewear_schema.items").
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				poolMock.ExpectExec("UPDATE rewear_schema.exchanges").
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), exchangeId.String()).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				poolMock.ExpectCommit()
				poolMock.ExpectQuery("SELECT e.exchange_id").WithArgs(exchangeId.String()).
					WillReturnRows(pgxmock.NewRows([]string{"exchange_id", "item_id", "title", "offering", "requesting", "exchange_type", "status", "message", "points_exchanged", "created_at"}).
						AddRow(exchangeId, itemId, "Denim Jacket", "owner", "requester", "points_exchange", "accepted", "", 30, time.Now()))
			}

			expect := httpexpect.Default(t, server.URL)
			request := expect.PUT("/api/exchanges/" + exchangeId.String() + "/accept").
				WithHeader("Authorization", "Bearer "+jwtToken)
			response := request.Expect().Status(tc.status)

			if tc.status == http.StatusOK {
				response.JSON().Object().Value("status").IsEqual("accepted")
				response.JSON().Object().Value("points_exchanged").IsEqual(30)
			} else {
				response.JSON().Object().Value("error").Object().Value("code").IsEqual("ERR-010")
			}

			if err := poolMock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}

func TestExchangeCancelFromAccepted(t *testing.T) {
	ownerId := uuid.New()
	requesterId := uuid.New()
	itemId := uuid.New()
	exchangeId := uuid.New()

	databaseMgrMock, jwtMgr, mailMgrMock, fileMgrMock := setupMocks(t)

	router := InitRouter(databaseMgrMock, mailMgrMock, jwtMgr, fileMgrMock, 100)

	server := httptest.NewServer(router)
	defer server.Close()

	// The requester cancels after acceptance; the transfer reverses and the
	// item returns to the market
	jwtToken, _ := jwtMgr.GenerateJWT(requesterId.String(), "requester", false)

	poolMock := databaseMgrMock.GetPool().(pgxmock.PgxPoolIface)

	poolMock.ExpectBegin()
	poolMock.ExpectQuery("SELECT item_id, offering_user_id").WithArgs(exchangeId.String()).
		WillReturnRows(pgxmock.NewRows([]string{"item_id", "offering_user_id", "requesting_user_id", "exchange_type", "status", "points_exchanged"}).
			AddRow(&itemId, &ownerId, &requesterId, schemas.ExchangeTypePointsExchange, schemas.ExchangeStatusAccepted, 30))
	// Debit the owner, credit the requester
	poolMock.ExpectExec("UPDATE rewear_schema.users").
		WithArgs(30, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	poolMock.ExpectExec("UPDATE rewear_schema.users").
		WithArgs(30, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// The item becomes available again
	poolMock.ExpectExec("UPDATE rewear_schema.items SET is_available = true").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	poolMock.ExpectExec("UPDATE rewear_schema.exchanges").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), exchangeId.String()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	poolMock.ExpectCommit()
	poolMock.ExpectQuery("SELECT e.exchange_id").WithArgs(exchangeId.String()).
		WillReturnRows(pgxmock.NewRows([]string{"exchange_id", "item_id", "title", "offering", "requesting", "exchange_type", "status", "message", "points_exchanged", "created_at"}).
			AddRow(exchangeId, itemId, "Denim Jacket", "owner", "requester", "points_exchange", "cancelled", "", 30, time.Now()))

	expect := httpexpect.Default(t, server.URL)
	request := expect.PUT("/api/exchanges/" + exchangeId.String() + "/cancel").
		WithHeader("Authorization", "Bearer "+jwtToken)
	response := request.Expect().Status(http.StatusOK)
	response.JSON().Object().Value("status").IsEqual("cancelled")
	response.JSON().Object().Value("points_exchanged").IsEqual(30)

	if err := poolMock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestExchangeProposeUnavailableItem(t *testing.T) {
	ownerId := uuid.New()
	requesterId := uuid.New()
	itemId := uuid.New()

	databaseMgrMock, jwtMgr, mailMgrMock, fileMgrMock := setupMocks(t)

	router := InitRouter(databaseMgrMock, mailMgrMock, jwtMgr, fileMgrMock, 100)

	server := httptest.NewServer(router)
	defer server.Close()

	jwtToken, _ := jwtMgr.GenerateJWT(requesterId.String(), "requester", false)

	poolMock := databaseMgrMock.GetPool().(pgxmock.PgxPoolIface)

	poolMock.ExpectBegin()
	poolMock.ExpectQuery("SELECT owner_id, is_available, price_points").WithArgs(itemId.String()).
		WillReturnRows(pgxmock.NewRows([]string{"owner_id", "is_available", "price_points"}).
			AddRow(ownerId, false, 30))
	poolMock.ExpectRollback()

	expect := httpexpect.Default(t, server.URL)
	request := expect.POST("/api/exchanges").
		WithHeader("Authorization", "Bearer "+jwtToken).
		WithJSON(map[string]interface{}{
			"item_id":       itemId.String(),
			"exchange_type": "points_exchange",
			"message":       "Would love this one",
		})
	response := request.Expect().Status(http.StatusConflict)
	response.JSON().Object().Value("error").Object().Value("code").IsEqual("ERR-009")

	if err := poolMock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestExchangeRejectByNonOwner(t *testing.T) {
	ownerId := uuid.New()
	requesterId := uuid.New()
	itemId := uuid.New()
	exchangeId := uuid.New()

	databaseMgrMock, jwtMgr, mailMgrMock, fileMgrMock := setupMocks(t)

	router := InitRouter(databaseMgrMock, mailMgrMock, jwtMgr, fileMgrMock, 100)

	server := httptest.NewServer(router)
	defer server.Close()

	// The requester tries to reject, which only the owner may do
	jwtToken, _ := jwtMgr.GenerateJWT(requesterId.String(), "requester", false)

	poolMock := databaseMgrMock.GetPool().(pgxmock.PgxPoolIface)

	poolMock.ExpectBegin()
	poolMock.ExpectQuery("SELECT item_id, offering_user_id").WithArgs(exchangeId.String()).
		WillReturnRows(pgxmock.NewRows([]string{"item_id", "offering_user_id", "requesting_user_id", "exchange_type", "status", "points_exchanged"}).
			AddRow(&itemId, &ownerId, &requesterId, schemas.ExchangeTypeDirectSwap, schemas.ExchangeStatusPending, 0))
	poolMock.ExpectRollback()

	expect := httpexpect.Default(t, server.URL)
	request := expect.PUT("/api/exchanges/" + exchangeId.String() + "/reject").
		WithHeader("Authorization", "Bearer "+jwtToken)
	response := request.Expect().Status(http.StatusForbidden)
	response.JSON().Object().Value("error").Object().Value("code").IsEqual("ERR-007")

	if err := poolMock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	databaseMgrMock, jwtMgr, mailMgrMock, fileMgrMock := setupMocks(t)

	router := InitRouter(databaseMgrMock, mailMgrMock, jwtMgr, fileMgrMock, 100)

	server := httptest.NewServer(router)
	defer server.Close()

	expect := httpexpect.Default(t, server.URL)

	// No token, garbage token and refresh token all yield the same response
	expect.GET("/api/exchanges").Expect().Status(http.StatusUnauthorized).
		JSON().Object().Value("error").Object().Value("code").IsEqual("ERR-014")

	expect.GET("/api/exchanges").WithHeader("Authorization", "Bearer not.a.token").
		Expect().Status(http.StatusUnauthorized).
		JSON().Object().Value("error").Object().Value("code").IsEqual("ERR-014")

	refreshToken, _ := jwtMgr.GenerateJWT(uuid.New().String(), "someone", true)
	expect.GET("/api/exchanges").WithHeader("Authorization", "Bearer "+refreshToken).
		Expect().Status(http.StatusUnauthorized).
		JSON().Object().Value("error").Object().Value("code").IsEqual("ERR-014")
}

func TestTraceIdHeaderExposed(t *testing.T) {
	databaseMgrMock, jwtMgr, mailMgrMock, fileMgrMock := setupMocks(t)

	router := InitRouter(databaseMgrMock, mailMgrMock, jwtMgr, fileMgrMock, 100)

	server := httptest.NewServer(router)
	defer server.Close()

	expect := httpexpect.Default(t, server.URL)
	response := expect.GET("/").WithHeader("Origin", "http://localhost:5173").Expect().Status(http.StatusOK)

	response.Header("X-Trace-Id").NotEmpty()
	response.Header("Access-Control-Expose-Headers").Contains("X-Trace-Id")
}
