package main

import (
	"fmt"
	"log"
	"os"

	"vinhousing-server/routes"
	"vinhousing-server/services"
	"vinhousing-server/storage"
	"vinhousing-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeRedis()
	routes.Events = services.NewRedisEmitter(storage.Redis)

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Get("/me", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetMe)
		user.Get("/search", accessTokenVerifierMiddleware, routes.SearchUsers)
	}

	organizations := app.Party("/api/organizations")
	{
		organizations.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateOrganization)
		organizations.Get("/", routes.ListOrganizations)
		organizations.Get("/{id:uint}", routes.GetOrganization)
		organizations.Post("/{id:uint}/affiliations", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.AddAffiliation)
	}

	properties := app.Party("/api/properties")
	{
		properties.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateProperty)
		properties.Get("/", routes.ListProperties)
		properties.Get("/{id:uint}", routes.GetProperty)
		properties.Patch("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UpdateProperty)
		properties.Post("/{id:uint}/rooms", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateRoom)
	}

	listings := app.Party("/api/listings")
	{
		listings.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateListing)
		listings.Get("/", routes.ListListings)
		listings.Get("/{id:uint}", routes.GetListing)
		listings.Patch("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UpdateListing)
	}

	rentalRequests := app.Party("/api/rental-requests", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		rentalRequests.Post("/", routes.CreateRentalRequest)
		rentalRequests.Get("/", routes.ListRentalRequests)
		rentalRequests.Get("/{id:uint}", routes.GetRentalRequest)
		rentalRequests.Patch("/{id:uint}/status", routes.UpdateRentalRequestStatus)
		rentalRequests.Put("/{id:uint}/status", routes.UpdateRentalRequestStatus)
	}

	contracts := app.Party("/api/contracts", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		contracts.Post("/", routes.CreateContract)
		contracts.Get("/", routes.ListContracts)
		contracts.Get("/{id:uint}", routes.GetContract)
		contracts.Patch("/{id:uint}", routes.UpdateContract)
		contracts.Put("/{id:uint}", routes.UpdateContract)
		contracts.Post("/{id:uint}/sign", routes.SignContract)
	}

	issues := app.Party("/api/issues", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		issues.Post("/", routes.CreateIssue)
		issues.Get("/", routes.ListIssues)
		issues.Get("/{id:uint}", routes.GetIssue)
		issues.Patch("/{id:uint}/status", routes.UpdateIssueStatus)
		issues.Put("/{id:uint}/status", routes.UpdateIssueStatus)
		issues.Post("/{id:uint}/attachments", routes.AddIssueAttachment)
	}

	reviews := app.Party("/api/reviews")
	{
		reviews.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateReview)
		reviews.Get("/", routes.ListReviews)
	}

	verifications := app.Party("/api/verifications", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		verifications.Post("/", routes.CreateVerification)
		verifications.Get("/", utils.AdminOnlyMiddleware, routes.ListVerifications)
		verifications.Patch("/{id:uint}", utils.AdminOnlyMiddleware, routes.ReviewVerification)
	}

	notifications := app.Party("/api/notifications", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		notifications.Get("/", routes.ListNotifications)
		notifications.Patch("/{id:uint}/read", routes.MarkNotificationRead)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/stats", routes.AdminStats)
		admin.Get("/activity", routes.AdminActivity)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
