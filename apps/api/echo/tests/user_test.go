package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/trezcool/progim/apps/api/echo"
	"github.com/trezcool/progim/core"
	"github.com/trezcool/progim/core/user"
)

func Test_userApi_login(t *testing.T) {
	resetDB(t)

	tests := []httpTest{
		{
			name: "missing fields", body: marchallObj(t, echoapi.LoginRequest{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: marchallObj(t, echoapi.LoginRequest{Username: "nadie", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, echoapi.LoginRequest{Username: "Monitoreo", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "login ok", body: marchallObj(t, echoapi.LoginRequest{Username: "Monitoreo", Password: "Me2025"}),
			wantCode: http.StatusOK,
		},
		{
			name: "username is case-insensitive", body: marchallObj(t, echoapi.LoginRequest{Username: "monitoreo", Password: "Me2025"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling LoginResponse: %v", err)
				}
				if resp.Token == "" {
					t.Error("login succeeded but no token was returned")
				}
			}
		})
	}
}

func Test_userApi_loginSetsLastLogin(t *testing.T) {
	resetDB(t)

	body := marchallObj(t, echoapi.LoginRequest{Username: "admin", Password: "admin123"})
	req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: code = %v; body %v", rec.Code, rec.Body.String())
	}

	if usr := getUser(t, "admin"); usr.LastLogin.IsZero() {
		t.Error("LastLogin was not recorded")
	}
}

func Test_userApi_me(t *testing.T) {
	resetDB(t)

	usr := getUser(t, "Monitoreo")

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "me", token: getToken(t, usr), wantCode: http.StatusOK, wantData: marchallObj(t, usr)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	resetDB(t)

	usr := getUser(t, "Monitoreo")

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * core.Conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Username:     usr.Username,
		IsAdmin:      usr.IsAdmin(),
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "token refreshed", token: getToken(t, usr), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling LoginResponse: %v", err)
				}
				if resp.Token == "" {
					t.Error("refresh succeeded but no token was returned")
				}
			}
		})
	}
}

func Test_userApi_query(t *testing.T) {
	resetDB(t)

	monitoreo := getUser(t, "Monitoreo")
	admin := getUser(t, "admin")

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", token: getToken(t, monitoreo), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "get all", token: getToken(t, admin), wantCode: http.StatusOK,
			wantData: marchallList(t, monitoreo, admin),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_register(t *testing.T) {
	resetDB(t)

	monitoreo := getUser(t, "Monitoreo")
	admin := getUser(t, "admin")
	adminToken := getToken(t, admin)

	newUsr := user.NewUser{Username: "reporter", Email: "reporter@test.gt", FullName: "Report Er", Password: "s3cret"}

	tests := []httpTest{
		{name: "auth required", body: marchallObj(t, newUsr), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", token: getToken(t, monitoreo), body: marchallObj(t, newUsr),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "username too short", token: adminToken,
			body:     marchallObj(t, user.NewUser{Username: "ab", Password: "s3cret"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "username must be at least 3 characters in length"}),
		},
		{name: "registered", token: adminToken, body: marchallObj(t, newUsr), wantCode: http.StatusCreated},
		{
			name: "username taken", token: adminToken,
			body:     marchallObj(t, user.NewUser{Username: "Monitoreo", Password: "s3cret"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "a user with this username already exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("unmarshalling User: %v", err)
				}
				if usr.ID == "" || usr.Username != newUsr.Username || usr.Role != user.RoleUser {
					t.Errorf("unexpected created user: %+v", usr)
				}
			}
		})
	}
}

func Test_userApi_assignments(t *testing.T) {
	resetDB(t)

	monitoreo := getUser(t, "Monitoreo")
	admin := getUser(t, "admin")
	adminToken := getToken(t, admin)

	assignments := []user.Assignment{
		{Username: "Monitoreo", Responsibles: []string{"Equipo Técnico", "Equipo QA"}},
	}

	t.Run("auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/v1/users/assignments")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("empty by default", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/assignments", getToken(t, monitoreo))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("save requires admin", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/assignments", getToken(t, monitoreo), marchallObj(t, assignments))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("save and read back", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Assignments saved."})}
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/assignments", adminToken, marchallObj(t, assignments))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)

		tt = httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, assignments)}
		req, rec = newAuthRequest(http.MethodGet, "/v1/users/assignments", adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
