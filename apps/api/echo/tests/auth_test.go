package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/trezcool/kelasi/apps/api/echo"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/user"
	testutil "github.com/trezcool/kelasi/tests"
)

func Test_userApi_login(t *testing.T) {
	db.Reset()

	usr := testutil.CreateUser(t, usrRepo, "awe", "mdr", user.RoleAdmin)

	invalidCreds := marchallObj(t, httpErr{Error: "invalid username or password"})

	tests := []httpTest{
		{
			name: "empty credentials", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			}),
		},
		// unknown user and wrong password must be indistinguishable
		{name: "unknown user", body: []byte(`{"username": "lol", "password": "mdr"}`), wantCode: http.StatusUnauthorized, wantData: invalidCreds},
		{name: "wrong password", body: []byte(`{"username": "awe", "password": "lol"}`), wantCode: http.StatusUnauthorized, wantData: invalidCreds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("login ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/auth/login", []byte(`{"username": " AWE ", "password": "mdr"}`))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp echoapi.LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal() failed, %v", err)
		}
		if resp.Token == "" {
			t.Error("token is empty")
		}
		if resp.UserID != usr.ID {
			t.Errorf("userId = %d; want %d", resp.UserID, usr.ID)
		}
		if resp.Role != user.RoleAdmin {
			t.Errorf("role = %s; want %s", resp.Role, user.RoleAdmin)
		}

		// the returned token must authenticate
		req, rec = newAuthRequest(http.MethodGet, "/api/auth/me", resp.Token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
	})
}

func Test_userApi_me(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "admin", "admin123", user.RoleAdmin)
	std := testutil.CreateStudent(t, usrRepo, stdRepo, "evelyn", "evelyn123", "Evelyn")
	stdUsr, err := usrRepo.GetUserByID(context.Background(), std.UserID)
	if err != nil {
		t.Fatalf("GetUserByID() failed, %v", err)
	}
	math := testutil.CreateCourse(t, crsRepo, "Math", "#4CAF50")
	art := testutil.CreateCourse(t, crsRepo, "Art", "#E91E63")
	testutil.EnrollStudent(t, stdRepo, std.ID, math.ID, art.ID)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin has no student profile", token: getToken(t, admin), wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.MeResponse{ID: admin.ID, Username: "admin", Role: user.RoleAdmin}),
		},
		{
			name: "student gets profile and courses", token: getToken(t, stdUsr), wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.MeResponse{
				ID:          stdUsr.ID,
				Username:    "evelyn",
				Role:        user.RoleStudent,
				StudentID:   &std.ID,
				DisplayName: "Evelyn",
				Courses:     []course.Course{art, math},
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/auth/me", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
