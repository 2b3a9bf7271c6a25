package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	echoapi "github.com/trezcool/kelasi/apps/api/echo"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/user"
	testutil "github.com/trezcool/kelasi/tests"
)

func Test_adminApi_students(t *testing.T) {
	db.Reset()
	ctx := context.Background()

	admin := testutil.CreateUser(t, usrRepo, "admin", "admin123", user.RoleAdmin)
	std1 := testutil.CreateStudent(t, usrRepo, stdRepo, "evelyn", "evelyn123", "Evelyn")
	std2 := testutil.CreateStudent(t, usrRepo, stdRepo, "henry", "henry123", "Henry")
	std1Usr, err := usrRepo.GetUserByID(ctx, std1.UserID)
	if err != nil {
		t.Fatalf("GetUserByID() failed, %v", err)
	}

	adminToken := getToken(t, admin)
	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	tests := []httpTest{
		{name: "auth required", method: http.MethodGet, path: "/api/admin/students", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin required", method: http.MethodGet, path: "/api/admin/students", token: getToken(t, std1Usr), wantCode: http.StatusForbidden, wantData: forbidden},
		{
			name: "roster is ordered by display name", method: http.MethodGet, path: "/api/admin/students", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, std1, std2),
		},
		{
			name: "create: missing fields", method: http.MethodPost, path: "/api/admin/students", body: []byte(`{}`),
			token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username":    "this field is required",
				"password":    "this field is required",
				"displayName": "this field is required",
			}),
		},
		{
			name: "create: bad username", method: http.MethodPost, path: "/api/admin/students",
			body:  []byte(`{"username": "bad name!", "password": "pwd", "displayName": "Bad"}`),
			token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "only alphanumeric characters and underscores are allowed"}),
		},
		{
			name: "create: duplicate username", method: http.MethodPost, path: "/api/admin/students",
			body:  []byte(`{"username": "EVELYN", "password": "pwd", "displayName": "Evelyn Again"}`),
			token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "username already exists"}),
		},
		{
			name: "update: unknown student", method: http.MethodPatch, path: "/api/admin/students/999",
			body:  []byte(`{"displayName": "Nobody"}`),
			token: adminToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
		{
			name: "update: empty display name", method: http.MethodPatch, path: "/api/admin/students/" + itoa(std1.ID),
			body:  []byte(`{"displayName": "  "}`),
			token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"displayName": "displayName cannot be empty"}),
		},
		{
			name: "delete: unknown student", method: http.MethodDelete, path: "/api/admin/students/999",
			token: adminToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("create ok", func(t *testing.T) {
		body := []byte(`{"username": " Mali ", "password": "mali123", "displayName": "Mali"}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/students", adminToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var std student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &std); err != nil {
			t.Fatalf("json.Unmarshal() failed, %v", err)
		}
		if std.Username != "mali" {
			t.Errorf("username = %s; want mali", std.Username)
		}
		if std.DisplayName != "Mali" {
			t.Errorf("display_name = %s; want Mali", std.DisplayName)
		}

		// the backing account can log in
		req, rec = newRequest(http.MethodPost, "/api/auth/login", []byte(`{"username": "mali", "password": "mali123"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("login failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("update display name and enrollments", func(t *testing.T) {
		math := testutil.CreateCourse(t, crsRepo, "Math", "#4CAF50")
		art := testutil.CreateCourse(t, crsRepo, "Art", "#E91E63")
		testutil.EnrollStudent(t, stdRepo, std1.ID, math.ID)

		body := marchallObj(t, map[string]interface{}{"displayName": "Evelyn R", "courseIds": []int{art.ID}})
		req, rec := newAuthRequest(http.MethodPatch, "/api/admin/students/"+itoa(std1.ID), adminToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got echoapi.StudentDetailResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal() failed, %v", err)
		}
		if got.DisplayName != "Evelyn R" {
			t.Errorf("display_name = %s; want Evelyn R", got.DisplayName)
		}
		// the whole enrollment set is replaced and echoed back
		if len(got.Courses) != 1 || got.Courses[0].ID != art.ID {
			t.Errorf("courses = %v; want [%v]", got.Courses, art)
		}
		courses, err := crsRepo.QueryCoursesByStudent(ctx, std1.ID)
		if err != nil {
			t.Fatalf("QueryCoursesByStudent() failed, %v", err)
		}
		if len(courses) != 1 || courses[0].ID != art.ID {
			t.Errorf("courses = %v; want [%v]", courses, art)
		}
	})

	t.Run("set courses", func(t *testing.T) {
		sci := testutil.CreateCourse(t, crsRepo, "Science", "#FF9800")

		req, rec := newAuthRequest(http.MethodPost, "/api/admin/students/"+itoa(std2.ID)+"/courses", adminToken,
			marchallObj(t, map[string]interface{}{"courseIds": []int{sci.ID}}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got echoapi.SetCoursesResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal() failed, %v", err)
		}
		if got.StudentID != std2.ID {
			t.Errorf("studentId = %v; want %v", got.StudentID, std2.ID)
		}
		if len(got.Courses) != 1 || got.Courses[0].ID != sci.ID {
			t.Errorf("courses = %v; want [%v]", got.Courses, sci)
		}

		courses, err := crsRepo.QueryCoursesByStudent(ctx, std2.ID)
		if err != nil {
			t.Fatalf("QueryCoursesByStudent() failed, %v", err)
		}
		if len(courses) != 1 || courses[0].ID != sci.ID {
			t.Errorf("courses = %v; want [%v]", courses, sci)
		}

		// missing courseIds
		req, rec = newAuthRequest(http.MethodPost, "/api/admin/students/"+itoa(std2.ID)+"/courses", adminToken, []byte(`{}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("delete cascades", func(t *testing.T) {
		math, err := crsRepo.QueryCoursesByStudent(ctx, std1.ID)
		if err != nil || len(math) == 0 {
			t.Fatalf("QueryCoursesByStudent() failed, %v", err)
		}
		testutil.CreateProgress(t, prgRepo, std1.ID, math[0].ID, 50, time.Now().UTC())

		req, rec := newAuthRequest(http.MethodDelete, "/api/admin/students/"+itoa(std1.ID), adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		if _, err = stdRepo.GetStudentByID(ctx, std1.ID); err != student.ErrNotFound {
			t.Errorf("student still exists; err = %v", err)
		}
		if _, err = usrRepo.GetUserByID(ctx, std1.UserID); err != user.ErrNotFound {
			t.Errorf("backing user still exists; err = %v", err)
		}
		entries, err := prgRepo.QueryProgressByStudent(ctx, std1.ID)
		if err != nil {
			t.Fatalf("QueryProgressByStudent() failed, %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("progress still exists; entries = %v", entries)
		}
	})
}

func Test_adminApi_studentProgressDelete(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "admin", "admin123", user.RoleAdmin)
	std1 := testutil.CreateStudent(t, usrRepo, stdRepo, "evelyn", "evelyn123", "Evelyn")
	std2 := testutil.CreateStudent(t, usrRepo, stdRepo, "henry", "henry123", "Henry")
	math := testutil.CreateCourse(t, crsRepo, "Math", "#4CAF50")
	prg := testutil.CreateProgress(t, prgRepo, std1.ID, math.ID, 50, time.Now().UTC())

	adminToken := getToken(t, admin)
	notFound := marchallObj(t, httpErr{Error: "progress record not found"})

	path := func(stdID, prgID int) string {
		return "/api/admin/students/" + itoa(stdID) + "/progress/" + itoa(prgID)
	}

	tests := []httpTest{
		{name: "unknown entry", method: http.MethodDelete, path: path(std1.ID, 999), token: adminToken, wantCode: http.StatusNotFound, wantData: notFound},
		// an entry owned by another student reads as not found
		{name: "entry of another student", method: http.MethodDelete, path: path(std2.ID, prg.ID), token: adminToken, wantCode: http.StatusNotFound, wantData: notFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("owned entry is deleted", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path(std1.ID, prg.ID), adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		entries, err := prgRepo.QueryProgressByStudent(context.Background(), std1.ID)
		if err != nil {
			t.Fatalf("QueryProgressByStudent() failed, %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("entry still exists; entries = %v", entries)
		}
	})
}

func Test_adminApi_courses(t *testing.T) {
	db.Reset()
	ctx := context.Background()

	admin := testutil.CreateUser(t, usrRepo, "admin", "admin123", user.RoleAdmin)
	std := testutil.CreateStudent(t, usrRepo, stdRepo, "evelyn", "evelyn123", "Evelyn")
	math := testutil.CreateCourse(t, crsRepo, "Math", "#4CAF50")
	art := testutil.CreateCourse(t, crsRepo, "Art", "#E91E63")
	testutil.EnrollStudent(t, stdRepo, std.ID, math.ID)
	testutil.CreateProgress(t, prgRepo, std.ID, math.ID, 50, time.Now().UTC())

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "auth required", method: http.MethodGet, path: "/api/admin/courses", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "catalog is ordered by name", method: http.MethodGet, path: "/api/admin/courses", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, art, math),
		},
		{
			name: "create: missing name", method: http.MethodPost, path: "/api/admin/courses", body: []byte(`{}`),
			token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "create: bad color", method: http.MethodPost, path: "/api/admin/courses",
			body:  []byte(`{"name": "Science", "color": "orange"}`),
			token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"color": "color must be a valid HEX color"}),
		},
		{
			name: "update: unknown course", method: http.MethodPatch, path: "/api/admin/courses/999",
			body:  []byte(`{"name": "Nope"}`),
			token: adminToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{
			name: "update: empty name", method: http.MethodPatch, path: "/api/admin/courses/" + itoa(math.ID),
			body:  []byte(`{"name": " "}`),
			token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "name cannot be empty"}),
		},
		{
			name: "delete: unknown course", method: http.MethodDelete, path: "/api/admin/courses/999",
			token: adminToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("create ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/courses", adminToken, []byte(`{"name": "Science", "color": "#FF9800"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var crs course.Course
		if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
			t.Fatalf("json.Unmarshal() failed, %v", err)
		}
		if crs.Name != "Science" || crs.Color == nil || *crs.Color != "#FF9800" {
			t.Errorf("course = %+v; want Science #FF9800", crs)
		}
	})

	t.Run("update ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/admin/courses/"+itoa(art.ID), adminToken, []byte(`{"name": "Fine Art", "color": "#FFFFFF"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var crs course.Course
		if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
			t.Fatalf("json.Unmarshal() failed, %v", err)
		}
		if crs.Name != "Fine Art" || crs.Color == nil || *crs.Color != "#FFFFFF" {
			t.Errorf("course = %+v; want Fine Art #FFFFFF", crs)
		}
	})

	t.Run("delete cascades to enrollments and progress", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/admin/courses/"+itoa(math.ID), adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		courses, err := crsRepo.QueryCoursesByStudent(ctx, std.ID)
		if err != nil {
			t.Fatalf("QueryCoursesByStudent() failed, %v", err)
		}
		if len(courses) != 0 {
			t.Errorf("enrollment still exists; courses = %v", courses)
		}
		entries, err := prgRepo.QueryProgressByStudent(ctx, std.ID)
		if err != nil {
			t.Fatalf("QueryProgressByStudent() failed, %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("progress still exists; entries = %v", entries)
		}
	})
}

func Test_adminApi_userUpdate(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "admin", "admin123", user.RoleAdmin)
	usr := testutil.CreateUser(t, usrRepo, "awe", "mdr", user.RoleStudent)
	other := testutil.CreateUser(t, usrRepo, "other", "mdr", user.RoleStudent)

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{
			name: "unknown user", method: http.MethodPatch, path: "/api/admin/users/999", body: []byte(`{"username": "lol"}`),
			token: adminToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "user not found"}),
		},
		{
			name: "empty username", method: http.MethodPatch, path: "/api/admin/users/" + itoa(usr.ID), body: []byte(`{"username": " "}`),
			token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "username cannot be empty"}),
		},
		{
			name: "duplicate username", method: http.MethodPatch, path: "/api/admin/users/" + itoa(usr.ID),
			body:  marchallObj(t, map[string]string{"username": other.Username}),
			token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "username already exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("rename and reset password", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/admin/users/"+itoa(usr.ID), adminToken,
			[]byte(`{"username": "Renamed", "password": "newpwd"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		// old credentials are gone, new ones log in
		req, rec = newRequest(http.MethodPost, "/api/auth/login", []byte(`{"username": "awe", "password": "mdr"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("old credentials still work! code = %v", rec.Code)
		}
		req, rec = newRequest(http.MethodPost, "/api/auth/login", []byte(`{"username": "renamed", "password": "newpwd"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("new credentials rejected! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}

func Test_adminApi_studentProgressExport(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "admin", "admin123", user.RoleAdmin)
	std := testutil.CreateStudent(t, usrRepo, stdRepo, "evelyn", "evelyn123", "Evelyn")
	math := testutil.CreateCourse(t, crsRepo, "Math", "#4CAF50")
	testutil.CreateProgress(t, prgRepo, std.ID, math.ID, 50, time.Now().UTC())

	adminToken := getToken(t, admin)

	t.Run("unknown student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/admin/students/999/progress/export", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("export ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/admin/students/"+itoa(std.ID)+"/progress/export", adminToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		wantType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		if got := rec.Header().Get("Content-Type"); got != wantType {
			t.Errorf("Content-Type = %s; want %s", got, wantType)
		}
		if rec.Body.Len() == 0 {
			t.Error("empty workbook")
		}
	})
}
