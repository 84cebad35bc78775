package echoapi

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/muchiri/karibu/core"
	"github.com/muchiri/karibu/core/campus"
	emailsvc "github.com/muchiri/karibu/services/email"
	logsvc "github.com/muchiri/karibu/services/logger"
	dummydb "github.com/muchiri/karibu/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func jsonBytes(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("jsonBytes() failed: %v", err)
	}
	return data
}

func testConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	return conf
}

func initApp(t *testing.T) (*Server, *campus.Service, *core.Config) {
	t.Helper()
	conf := testConfig()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("initApp() failed: %v", err)
	}
	svc := campus.NewService(
		dummydb.NewBoundaryStore(db),
		dummydb.NewLocationRegistry(db),
		dummydb.NewVisibleCache(db),
		logsvc.NewConsoleLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags)),
		emailsvc.NewConsoleService(conf),
		conf,
	)

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logsvc.NewConsoleLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags)),
		CampusSvc:      svc,
		DisableReqLogs: true,
	})
	return server, svc, conf
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, role string) string {
	t.Helper()
	token, err := GenerateToken(conf, &Claims{Role: role, Name: "Test " + role})
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}
