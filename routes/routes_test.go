package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"vinhousing-server/models"
	"vinhousing-server/storage"
	"vinhousing-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// buildTestApp creates a minimal Iris app over an in-memory database with the
// contract, issue and admin routes mounted behind the real JWT verifier.
func buildTestApp(t *testing.T) *iris.Application {
	t.Helper()
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")

	// Named in-memory DB so every pooled connection sees the same schema.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	storage.DB = db

	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	contracts := app.Party("/api/contracts", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		contracts.Post("/", CreateContract)
		contracts.Get("/{id:uint}", GetContract)
		contracts.Post("/{id:uint}/sign", SignContract)
	}

	rentalRequests := app.Party("/api/rental-requests", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		rentalRequests.Patch("/{id:uint}/status", UpdateRentalRequestStatus)
		rentalRequests.Put("/{id:uint}/status", UpdateRentalRequestStatus)
	}

	issues := app.Party("/api/issues", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		issues.Post("/", CreateIssue)
	}

	reviews := app.Party("/api/reviews", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		reviews.Post("/", CreateReview)
	}

	organizations := app.Party("/api/organizations", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		organizations.Post("/", CreateOrganization)
		organizations.Post("/{id:uint}/affiliations", AddAffiliation)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/stats", AdminStats)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}

	return app
}

// signTestToken returns a signed JWT for the given user
func signTestToken(t *testing.T, id uint, role string) string {
	t.Helper()
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 10*time.Minute)
	token, err := signer.Sign(utils.AccessToken{ID: id, Role: role})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(token)
}

func seedSignableContract(t *testing.T) (landlord, tenant models.User, contract models.Contract) {
	t.Helper()
	landlord = models.User{FullName: "L", Email: "landlord@test.local", Role: "landlord"}
	tenant = models.User{FullName: "T", Email: "tenant@test.local", Role: "tenant"}
	if err := storage.DB.Create(&landlord).Error; err != nil {
		t.Fatal(err)
	}
	if err := storage.DB.Create(&tenant).Error; err != nil {
		t.Fatal(err)
	}

	property := models.Property{OwnerUserID: landlord.ID, Address: "1 Test St", City: "Hanoi"}
	if err := storage.DB.Create(&property).Error; err != nil {
		t.Fatal(err)
	}
	listing := models.Listing{PropertyID: &property.ID, OwnerUserID: landlord.ID, Price: 1000, Status: "available"}
	if err := storage.DB.Create(&listing).Error; err != nil {
		t.Fatal(err)
	}

	contract = models.Contract{
		ListingID:      listing.ID,
		LandlordUserID: landlord.ID,
		StartDate:      time.Now(),
		Rent:           1000,
		Status:         models.ContractStatusDraft,
	}
	if err := storage.DB.Create(&contract).Error; err != nil {
		t.Fatal(err)
	}
	ct := models.ContractTenant{ContractID: contract.ID, TenantUserID: tenant.ID}
	if err := storage.DB.Create(&ct).Error; err != nil {
		t.Fatal(err)
	}
	return landlord, tenant, contract
}

func doJSON(app *iris.Application, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestSignContractEndpointStatusMapping(t *testing.T) {
	app := buildTestApp(t)
	_, tenant, contract := seedSignableContract(t)

	outsider := models.User{FullName: "O", Email: "outsider@test.local", Role: "tenant"}
	if err := storage.DB.Create(&outsider).Error; err != nil {
		t.Fatal(err)
	}

	path := fmt.Sprintf("/api/contracts/%d/sign", contract.ID)

	// No token
	resp := doJSON(app, http.MethodPost, path, "", nil)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}

	// Outsider -> 403
	resp = doJSON(app, http.MethodPost, path, signTestToken(t, outsider.ID, "tenant"), nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for outsider, got %d", resp.Code)
	}

	// Tenant signs -> 200
	resp = doJSON(app, http.MethodPost, path, signTestToken(t, tenant.ID, "tenant"), iris.Map{"signature_method": "checkbox"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on first signature, got %d: %s", resp.Code, resp.Body.String())
	}

	// Tenant signs again -> 409
	resp = doJSON(app, http.MethodPost, path, signTestToken(t, tenant.ID, "tenant"), nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate signature, got %d", resp.Code)
	}

	// Missing contract -> 404
	resp = doJSON(app, http.MethodPost, "/api/contracts/999999/sign", signTestToken(t, tenant.ID, "tenant"), nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing contract, got %d", resp.Code)
	}
}

func TestGetContractIncludesParties(t *testing.T) {
	app := buildTestApp(t)
	landlord, tenant, contract := seedSignableContract(t)

	resp := doJSON(app, http.MethodGet, fmt.Sprintf("/api/contracts/%d", contract.ID),
		signTestToken(t, landlord.ID, "landlord"), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Contract struct {
			ID      uint `json:"ID"`
			Tenants []struct {
				TenantUserID uint `json:"tenant_user_id"`
			} `json:"tenants"`
		} `json:"contract"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Contract.ID != contract.ID {
		t.Fatalf("expected contract %d, got %d", contract.ID, payload.Contract.ID)
	}
	if len(payload.Contract.Tenants) != 1 || payload.Contract.Tenants[0].TenantUserID != tenant.ID {
		t.Fatalf("expected tenant %d in payload, got %+v", tenant.ID, payload.Contract.Tenants)
	}
}

func TestUpdateRentalRequestStatusEndpoint(t *testing.T) {
	app := buildTestApp(t)
	landlord, tenant, contract := seedSignableContract(t)

	request := models.RentalRequest{
		ListingID:       contract.ListingID,
		RequesterUserID: tenant.ID,
		Status:          models.RequestStatusPending,
	}
	if err := storage.DB.Create(&request).Error; err != nil {
		t.Fatal(err)
	}
	path := fmt.Sprintf("/api/rental-requests/%d/status", request.ID)

	// Requester cannot accept their own request -> 403
	resp := doJSON(app, http.MethodPatch, path, signTestToken(t, tenant.ID, "tenant"), iris.Map{"status": "accepted"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for requester accept, got %d", resp.Code)
	}

	// Unknown status -> 400
	resp = doJSON(app, http.MethodPatch, path, signTestToken(t, landlord.ID, "landlord"), iris.Map{"status": "expired"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", resp.Code)
	}

	// Owner rejects, via PUT (registered alongside PATCH) -> 200
	resp = doJSON(app, http.MethodPut, path, signTestToken(t, landlord.ID, "landlord"), iris.Map{"status": "rejected"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner reject, got %d: %s", resp.Code, resp.Body.String())
	}

	// Terminal request -> 400
	resp = doJSON(app, http.MethodPatch, path, signTestToken(t, landlord.ID, "landlord"), iris.Map{"status": "accepted"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for resolved request, got %d", resp.Code)
	}
}

func TestCreateIssueAcceptsCriticalSeverity(t *testing.T) {
	app := buildTestApp(t)
	_, tenant, contract := seedSignableContract(t)

	resp := doJSON(app, http.MethodPost, "/api/issues", signTestToken(t, tenant.ID, "tenant"), iris.Map{
		"contract_id": contract.ID,
		"category":    "safety",
		"severity":    "critical",
		"description": "Front door lock is broken",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for critical severity, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Issue struct {
			Severity string `json:"severity"`
		} `json:"issue"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Issue.Severity != "critical" {
		t.Fatalf("expected severity critical, got %q", payload.Issue.Severity)
	}
}

func TestCreateContractAllowsZeroRent(t *testing.T) {
	app := buildTestApp(t)
	landlord, tenant, contract := seedSignableContract(t)

	request := models.RentalRequest{
		ListingID:       contract.ListingID,
		RequesterUserID: tenant.ID,
		Status:          models.RequestStatusAccepted,
	}
	if err := storage.DB.Create(&request).Error; err != nil {
		t.Fatal(err)
	}

	resp := doJSON(app, http.MethodPost, "/api/contracts", signTestToken(t, landlord.ID, "landlord"), iris.Map{
		"rental_request_id": request.ID,
		"start_date":        time.Now().Format(time.RFC3339),
		"rent":              0,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for zero rent, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Contract struct {
			Rent float64 `json:"rent"`
		} `json:"contract"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Contract.Rent != 0 {
		t.Fatalf("expected rent 0, got %v", payload.Contract.Rent)
	}
}

func TestCreateReviewDuplicateConflict(t *testing.T) {
	app := buildTestApp(t)
	landlord, tenant, contract := seedSignableContract(t)
	if err := storage.DB.Model(&contract).Update("status", models.ContractStatusSigned).Error; err != nil {
		t.Fatal(err)
	}

	body := iris.Map{
		"contract_id": contract.ID,
		"target_type": "user",
		"target_id":   landlord.ID,
		"rating":      4,
		"comment":     "Responsive landlord",
	}

	resp := doJSON(app, http.MethodPost, "/api/reviews", signTestToken(t, tenant.ID, "tenant"), body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first review, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(app, http.MethodPost, "/api/reviews", signTestToken(t, tenant.ID, "tenant"), body)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate review, got %d", resp.Code)
	}

	// Non-party -> 403
	outsider := models.User{FullName: "O2", Email: "outsider2@test.local", Role: "tenant"}
	if err := storage.DB.Create(&outsider).Error; err != nil {
		t.Fatal(err)
	}
	resp = doJSON(app, http.MethodPost, "/api/reviews", signTestToken(t, outsider.ID, "tenant"), body)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-party reviewer, got %d", resp.Code)
	}
}

func TestAddAffiliationDuplicateConflict(t *testing.T) {
	app := buildTestApp(t)

	owner := models.User{FullName: "Owner", Email: "org-owner@test.local", Role: "landlord"}
	member := models.User{FullName: "Member", Email: "org-member@test.local", Role: "tenant"}
	if err := storage.DB.Create(&owner).Error; err != nil {
		t.Fatal(err)
	}
	if err := storage.DB.Create(&member).Error; err != nil {
		t.Fatal(err)
	}

	resp := doJSON(app, http.MethodPost, "/api/organizations", signTestToken(t, owner.ID, "landlord"),
		iris.Map{"name": "Dorm Services", "org_type": "agency"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating organization, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		Organization struct {
			ID uint `json:"ID"`
		} `json:"organization"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	path := fmt.Sprintf("/api/organizations/%d/affiliations", created.Organization.ID)
	body := iris.Map{"user_id": member.ID}

	resp = doJSON(app, http.MethodPost, path, signTestToken(t, owner.ID, "landlord"), body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first affiliation, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(app, http.MethodPost, path, signTestToken(t, owner.ID, "landlord"), body)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate affiliation, got %d", resp.Code)
	}

	// Non-owner cannot add members
	resp = doJSON(app, http.MethodPost, path, signTestToken(t, member.ID, "tenant"), body)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", resp.Code)
	}
}

func TestAdminStatsRBAC(t *testing.T) {
	app := buildTestApp(t)

	// Tenant role -> 403
	resp := doJSON(app, http.MethodGet, "/api/admin/stats", signTestToken(t, 1, "tenant"), nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for tenant role, got %d", resp.Code)
	}

	// Admin role -> 200
	resp = doJSON(app, http.MethodGet, "/api/admin/stats", signTestToken(t, 1, "admin"), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin role, got %d", resp.Code)
	}
}
