package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/social-hub/backend/internal/models"
	"github.com/anonto42/social-hub/backend/internal/repositories"
	"github.com/anonto42/social-hub/backend/internal/services"
	"github.com/anonto42/social-hub/backend/internal/validators"
	"github.com/anonto42/social-hub/backend/pkg/realtime"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	e       *echo.Echo
	hub     *realtime.Hub
	service *services.RelationService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	hub := realtime.NewHub(64, zerolog.Nop())
	validator := validators.NewValidator()
	service := services.NewRelationService(repositories.NewMemoryStore(), hub, validator, zerolog.Nop())

	e := echo.New()
	e.Validator = validator
	e.GET("/health", NewHealthHandler(hub).HealthCheck)
	api := e.Group("/api/v1")
	NewUserHandler(service).RegisterUserRoutes(api)
	NewGroupHandler(service).RegisterGroupRoutes(api)
	NewPostHandler(service).RegisterPostRoutes(api)
	NewLikeHandler(service).RegisterLikeRoutes(api)
	NewCommentHandler(service).RegisterCommentRoutes(api)
	NewMessageHandler(service).RegisterMessageRoutes(api)
	NewSocketHandler(service, hub, zerolog.Nop()).RegisterSocketRoutes(e)
	t.Cleanup(hub.Close)

	return &testServer{e: e, hub: hub, service: service}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["message"]
}

func (s *testServer) createUser(t *testing.T, name, email string) models.User {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/users", echo.Map{"name": name, "email": email})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.User](t, rec)
}

func (s *testServer) createGroup(t *testing.T, name string) models.Group {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/groups", echo.Map{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Group](t, rec)
}

func (s *testServer) createPost(t *testing.T, author, content string) models.Post {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/posts", echo.Map{"author": author, "content": content})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Post](t, rec)
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "Ada", "ada@example.com")
	assert.NotEmpty(t, user.ID)
	assert.Empty(t, user.Groups)

	rec := s.do(http.MethodPost, "/api/v1/users", echo.Map{"name": "Ada Again", "email": "ADA@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User with this email already registered", errorMessage(t, rec))

	rec = s.do(http.MethodPost, "/api/v1/users", echo.Map{"name": "Bob", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/users", "{bad json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request payload", errorMessage(t, rec))

	rec = s.do(http.MethodGet, "/api/v1/users/"+user.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada@example.com", decode[models.User](t, rec).Email)

	rec = s.do(http.MethodGet, "/api/v1/users/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", errorMessage(t, rec))

	rec = s.do(http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.User](t, rec), 1)
}

func TestJoinGroupRoute(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "Ada", "ada@example.com")
	group := s.createGroup(t, "Readers")

	rec := s.do(http.MethodPost, "/api/v1/groups/bad-id/join", echo.Map{"user_id": user.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "group not found", errorMessage(t, rec))

	rec = s.do(http.MethodPost, "/api/v1/groups/"+group.ID+"/join", echo.Map{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for i := 0; i < 2; i++ {
		rec = s.do(http.MethodPost, "/api/v1/groups/"+group.ID+"/join", echo.Map{"user_id": user.ID})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body struct {
			Message string       `json:"message"`
			Group   models.Group `json:"group"`
			User    models.User  `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "User joined the group", body.Message)
		assert.Equal(t, []string{user.ID}, body.Group.Members)
		assert.Equal(t, []string{group.ID}, body.User.Groups)
	}
}

func TestLikeAndCommentRoutes(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "Ada", "ada@example.com")
	post := s.createPost(t, user.ID, "hello")

	for i := 0; i < 2; i++ {
		rec := s.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/like", echo.Map{"user_id": user.ID})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := s.do(http.MethodGet, "/api/v1/posts/"+post.ID+"/likes/count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, rec)["likes_count"])

	rec = s.do(http.MethodPost, "/api/v1/posts/missing/like", echo.Map{"user_id": user.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "post not found", errorMessage(t, rec))

	rec = s.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/comments", echo.Map{"author": user.ID, "text": "nice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode[models.Message](t, rec)
	assert.Equal(t, models.MessageKindComment, comment.Kind)
	assert.Equal(t, post.ID, comment.Target)

	rec = s.do(http.MethodGet, "/api/v1/posts/"+post.ID+"/comments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Message](t, rec), 1)

	rec = s.do(http.MethodPost, "/api/v1/posts/missing/comments", echo.Map{"author": user.ID, "text": "nice"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostAndMessageRoutes(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "Ada", "ada@example.com")
	group := s.createGroup(t, "Readers")

	rec := s.do(http.MethodPost, "/api/v1/posts", echo.Map{"author": "ghost", "content": "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "author not found", errorMessage(t, rec))

	rec = s.do(http.MethodPost, "/api/v1/posts", echo.Map{"author": user.ID, "content": "in group", "group": group.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	s.createPost(t, user.ID, "outside")

	rec = s.do(http.MethodGet, "/api/v1/posts?group_id="+group.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decode[[]models.Post](t, rec)
	require.Len(t, posts, 1)
	assert.Equal(t, "in group", posts[0].Content)

	for _, content := range []string{"first", "second"} {
		rec = s.do(http.MethodPost, "/api/v1/groups/"+group.ID+"/messages", echo.Map{"sender": user.ID, "content": content})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec = s.do(http.MethodGet, "/api/v1/groups/"+group.ID+"/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decode[[]models.Message](t, rec)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(0), body["observers"])
}

func TestHTTPError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{&services.Error{Kind: services.ErrValidation}, http.StatusBadRequest},
		{&services.Error{Kind: services.ErrNotFound, Entity: "post"}, http.StatusNotFound},
		{&services.Error{Kind: services.ErrDuplicateEmail}, http.StatusConflict},
		{&services.Error{Kind: services.ErrStorageUnavailable}, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, httpError(tt.err).Code, tt.err.Error())
	}
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	connected := readFrame(t, conn)
	require.Equal(t, "connected", connected.Event)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(echo.Map{"event": event, "data": data}))
}

func TestSocket_JoinBroadcastsToEverySession(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "Ada", "ada@example.com")
	group := s.createGroup(t, "Readers")
	srv := httptest.NewServer(s.e)
	t.Cleanup(srv.Close)

	sender := dial(t, srv)
	other := dial(t, srv)

	send(t, sender, "joinGroup", echo.Map{"user_id": user.ID, "group_id": group.ID})
	for _, conn := range []*websocket.Conn{sender, other} {
		f := readFrame(t, conn)
		require.Equal(t, services.EventGroupUpdated, f.Event)
		var g models.Group
		require.NoError(t, json.Unmarshal(f.Data, &g))
		assert.Equal(t, group.ID, g.ID)
		assert.Equal(t, []string{user.ID}, g.Members)
	}
}

func TestSocket_FailuresReplyToSenderOnly(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "Ada", "ada@example.com")
	srv := httptest.NewServer(s.e)
	t.Cleanup(srv.Close)

	sender := dial(t, srv)
	other := dial(t, srv)

	send(t, sender, "join", echo.Map{"user_id": user.ID, "group_id": "bad-id"})
	f := readFrame(t, sender)
	require.Equal(t, "error", f.Event)
	var reply map[string]string
	require.NoError(t, json.Unmarshal(f.Data, &reply))
	assert.Equal(t, "join", reply["event"])
	assert.Equal(t, "group not found", reply["message"])

	send(t, sender, "dance", nil)
	f = readFrame(t, sender)
	require.Equal(t, "error", f.Event)
	require.NoError(t, json.Unmarshal(f.Data, &reply))
	assert.Equal(t, `unknown event "dance"`, reply["message"])

	// the other session sees the next broadcast and nothing before it
	send(t, sender, "newPost", echo.Map{"author": user.ID, "content": "hello"})
	assert.Equal(t, services.EventPostCreated, readFrame(t, other).Event)
	assert.Equal(t, services.EventPostCreated, readFrame(t, sender).Event)
}

func TestSocket_CommentsAndMessages(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "Ada", "ada@example.com")
	group := s.createGroup(t, "Readers")
	post := s.createPost(t, user.ID, "hello")
	srv := httptest.NewServer(s.e)
	t.Cleanup(srv.Close)

	conn := dial(t, srv)

	send(t, conn, "newComment", echo.Map{"post_id": post.ID, "author": user.ID, "text": "nice"})
	assert.Equal(t, services.EventCommentAdded, readFrame(t, conn).Event)

	send(t, conn, "sendMessage", echo.Map{"group_id": group.ID, "sender": user.ID, "content": "hi all"})
	f := readFrame(t, conn)
	require.Equal(t, services.EventNewMessage, f.Event)
	var msg models.Message
	require.NoError(t, json.Unmarshal(f.Data, &msg))
	assert.Equal(t, "hi all", msg.Content)

	send(t, conn, "likePost", echo.Map{"user_id": user.ID, "post_id": post.ID})
	f = readFrame(t, conn)
	require.Equal(t, services.EventPostLiked, f.Event)
	var liked models.Post
	require.NoError(t, json.Unmarshal(f.Data, &liked))
	assert.Equal(t, []string{user.ID}, liked.LikedBy)
}
