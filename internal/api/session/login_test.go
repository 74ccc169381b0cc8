package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/log-dashboard/log-dashboard/internal/auth/keycloak"
	"github.com/log-dashboard/log-dashboard/internal/config"
	"github.com/log-dashboard/log-dashboard/internal/db/repositories"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeRealm stands in for a Keycloak token endpoint. It accepts exactly one
// username/password pair and issues a signed token carrying the given roles.
func fakeRealm(t *testing.T, username, password string, roles []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/protocol/openid-connect/token") {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("username") != username || r.PostForm.Get("password") != password {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Invalid user credentials"}`)
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"preferred_username": username,
			"realm_access":       map[string]interface{}{"roles": roles},
		})
		signed, err := token.SignedString([]byte("realm-test-key"))
		if err != nil {
			t.Fatalf("failed to sign test token: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","expires_in":300}`, signed)
	}))
}

func newLoginRouter(t *testing.T, realmURL string) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	provider, err := keycloak.NewProvider(&config.KeycloakConfig{
		URL:      realmURL + "/realms/log-realm",
		ClientID: "log-dashboard",
	})
	if err != nil {
		t.Fatalf("failed to build provider: %v", err)
	}

	h := NewHandlers(provider, repositories.NewUserProfileRepository(db))
	r := gin.New()
	r.POST("/auth/login", h.LoginHandler())
	return r, mock
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	realm := fakeRealm(t, "alice", "hunter2", []string{"developer", "offline_access"})
	defer realm.Close()

	r, mock := newLoginRouter(t, realm.URL)
	mock.ExpectExec("INSERT INTO user_profiles").
		WithArgs("alice", "developer", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := postLogin(r, `{"username":"alice","password":"hunter2"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["access_token"] == "" {
		t.Error("expected an access token")
	}
	if body["token_type"] != "Bearer" {
		t.Errorf("token_type = %v, want Bearer", body["token_type"])
	}
	if body["username"] != "alice" || body["role"] != "developer" {
		t.Errorf("identity = %v/%v, want alice/developer", body["username"], body["role"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	realm := fakeRealm(t, "alice", "hunter2", []string{"developer"})
	defer realm.Close()

	r, _ := newLoginRouter(t, realm.URL)
	w := postLogin(r, `{"username":"alice","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogin_RealmUnreachable(t *testing.T) {
	realm := fakeRealm(t, "alice", "hunter2", []string{"developer"})
	realm.Close() // shut down before use

	r, _ := newLoginRouter(t, realm.URL)
	w := postLogin(r, `{"username":"alice","password":"hunter2"}`)
	// An unreachable realm is reported the same way as bad credentials.
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	realm := fakeRealm(t, "alice", "hunter2", []string{"developer"})
	defer realm.Close()

	r, _ := newLoginRouter(t, realm.URL)
	for _, body := range []string{`{}`, `{"username":"alice"}`, `{"password":"hunter2"}`, `not json`} {
		w := postLogin(r, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

// The login must not fail just because the profile cache write does.
func TestLogin_ProfileUpsertFailureIsNonFatal(t *testing.T) {
	realm := fakeRealm(t, "alice", "hunter2", []string{"admin"})
	defer realm.Close()

	r, mock := newLoginRouter(t, realm.URL)
	mock.ExpectExec("INSERT INTO user_profiles").
		WillReturnError(fmt.Errorf("connection refused"))

	w := postLogin(r, `{"username":"alice","password":"hunter2"}`)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 despite profile write failure", w.Code)
	}
}
