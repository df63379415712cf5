package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"personal-chat/auth"
	"personal-chat/domain"
	"personal-chat/infrastructure/ws"
	"personal-chat/repositories"
	"personal-chat/runtime"
	"personal-chat/runtime/workers"
	"personal-chat/services"
	"personal-chat/storage"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.Default()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens := auth.NewTokenIssuer("unit-test-secret", time.Hour)
	authService := services.NewAuthService(repositories.NewUserRepository(db), tokens)

	engine := runtime.NewEngine(log, workers.NewSupervisor(log),
		runtime.NewPresenceRegistry(), runtime.NewRegistry(),
		repositories.NewConversationRepository(db, log), nil,
		16, time.Second)
	chatService := services.NewChatService(engine)

	files, err := storage.NewDiskStore(log, t.TempDir(), "")
	require.NoError(t, err)

	server := httptest.NewServer(NewRouter(log, tokens, authService, chatService,
		files, ws.NewHandler(log, chatService, 16)))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func registerAlice(t *testing.T, server *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, server.URL+"/api/register", map[string]string{
		"firstName": "Alice",
		"lastName":  "Martin",
		"email":     "alice@example.com",
		"password":  "Str0ng!pass",
	})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func authorizedGet(t *testing.T, url, token string) *http.Response {
	t.Helper()
	request, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	request.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	return resp
}

func TestRouter_Health(t *testing.T) {
	req := require.New(t)
	server := startServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	req.NoError(err)
	defer func() { _ = resp.Body.Close() }()
	req.Equal(http.StatusOK, resp.StatusCode)
}

func TestRouter_Register_Login_Roundtrip(t *testing.T) {
	req := require.New(t)
	server := startServer(t)
	registerAlice(t, server)

	// Registering the same email again conflicts
	resp := postJSON(t, server.URL+"/api/register", map[string]string{
		"firstName": "Alice",
		"lastName":  "Martin",
		"email":     "alice@example.com",
		"password":  "Str0ng!pass",
	})
	_ = resp.Body.Close()
	req.Equal(http.StatusConflict, resp.StatusCode)

	// Correct credentials log in
	resp = postJSON(t, server.URL+"/api/login", map[string]string{
		"email":    "alice@example.com",
		"password": "Str0ng!pass",
	})
	_ = resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	// Wrong ones do not
	resp = postJSON(t, server.URL+"/api/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	_ = resp.Body.Close()
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_Protected_Routes_Require_Token(t *testing.T) {
	req := require.New(t)
	server := startServer(t)

	resp, err := http.Get(server.URL + "/api/users")
	req.NoError(err)
	_ = resp.Body.Close()
	req.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = authorizedGet(t, server.URL+"/api/users", "not-a-real-token")
	_ = resp.Body.Close()
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_ListUsers(t *testing.T) {
	req := require.New(t)
	server := startServer(t)
	token := registerAlice(t, server)

	resp := authorizedGet(t, server.URL+"/api/users", token)
	defer func() { _ = resp.Body.Close() }()
	req.Equal(http.StatusOK, resp.StatusCode)

	var users []repositories.User
	req.NoError(json.NewDecoder(resp.Body).Decode(&users))
	req.Len(users, 1)
	req.Equal("alice@example.com", users[0].Email)
	req.Empty(users[0].PasswordHash)
}

func TestRouter_FetchConversation(t *testing.T) {
	req := require.New(t)
	server := startServer(t)
	token := registerAlice(t, server)

	// Missing participants is a client error
	resp := authorizedGet(t, server.URL+"/api/conversation?a=alice", token)
	_ = resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = authorizedGet(t, server.URL+"/api/conversation?a=alice&b=bob", token)
	defer func() { _ = resp.Body.Close() }()
	req.Equal(http.StatusOK, resp.StatusCode)

	var conversation domain.Conversation
	req.NoError(json.NewDecoder(resp.Body).Decode(&conversation))
	req.Empty(conversation.Messages)
}

func TestRouter_Upload_And_Download(t *testing.T) {
	req := require.New(t)
	server := startServer(t)
	token := registerAlice(t, server)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "notes.txt")
	req.NoError(err)
	_, err = part.Write([]byte("hello upload"))
	req.NoError(err)
	req.NoError(form.Close())

	request, err := http.NewRequest(http.MethodPost, server.URL+"/api/upload", &buf)
	req.NoError(err)
	request.Header.Set("Content-Type", form.FormDataContentType())
	request.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(request)
	req.NoError(err)
	defer func() { _ = resp.Body.Close() }()
	req.Equal(http.StatusCreated, resp.StatusCode)

	var descriptor domain.FileDescriptor
	req.NoError(json.NewDecoder(resp.Body).Decode(&descriptor))
	req.Equal("notes.txt", descriptor.Name)
	req.Equal(int64(len("hello upload")), descriptor.Size)

	// The stored file is served back under /uploads/
	download, err := http.Get(server.URL + descriptor.URL)
	req.NoError(err)
	defer func() { _ = download.Body.Close() }()
	req.Equal(http.StatusOK, download.StatusCode)
	data, err := io.ReadAll(download.Body)
	req.NoError(err)
	req.Equal("hello upload", string(data))
}
