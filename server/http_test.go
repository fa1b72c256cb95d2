package server

import (
	"batepapo/errors"
	"batepapo/mocks"
	"batepapo/moderation"
	"batepapo/repositories"
	"batepapo/services"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testBackend struct {
	server       *httptest.Server
	participants repositories.ParticipantRepository
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	log := slog.Default()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	moderator, err := moderation.NewModerator([]string{"badger"}, '*', log)
	require.NoError(t, err)

	participantRepository := repositories.NewParticipantRepository(db, log)
	messageRepository := repositories.NewMessageRepository(db, log, nil)
	messageIndex := repositories.NewMessageIndex(writer, log)

	presenceService := services.NewPresenceService(participantRepository, log)
	messageService := services.NewMessageService(messageRepository, messageIndex, &moderator, log)

	ts := httptest.NewServer(New(presenceService, messageService, log).Router())
	t.Cleanup(ts.Close)

	return &testBackend{server: ts, participants: participantRepository}
}

func (b *testBackend) do(t *testing.T, method, path, user string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	request, err := http.NewRequest(method, b.server.URL+path, reader)
	require.NoError(t, err)
	if user != "" {
		request.Header.Set("User", user)
	}
	response, err := b.server.Client().Do(request)
	require.NoError(t, err)
	t.Cleanup(func() { _ = response.Body.Close() })
	return response
}

func decodeList(t *testing.T, response *http.Response) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.NewDecoder(response.Body).Decode(&out))
	return out
}

func TestChatScenario_EndToEnd(t *testing.T) {
	req := require.New(t)
	backend := newTestBackend(t)

	// Register alice, then reject the duplicate while she is still live.
	response := backend.do(t, http.MethodPost, "/participants", "", map[string]string{"name": "alice"})
	req.Equal(http.StatusCreated, response.StatusCode)

	response = backend.do(t, http.MethodPost, "/participants", "", map[string]string{"name": "alice"})
	req.Equal(http.StatusConflict, response.StatusCode)

	// Too-short names are a validation failure, not a conflict.
	response = backend.do(t, http.MethodPost, "/participants", "", map[string]string{"name": "a"})
	req.Equal(http.StatusUnprocessableEntity, response.StatusCode)

	// Alice broadcasts; bob can read it without being registered.
	response = backend.do(t, http.MethodPost, "/messages", "alice", map[string]string{
		"to": "everyone", "text": "hi", "type": "broadcast",
	})
	req.Equal(http.StatusCreated, response.StatusCode)

	response = backend.do(t, http.MethodGet, "/messages", "bob", nil)
	req.Equal(http.StatusOK, response.StatusCode)
	messages := decodeList(t, response)
	req.Len(messages, 1)
	req.Equal("hi", messages[0]["text"])
	req.Equal("alice", messages[0]["from"])

	// Past the inactivity threshold with no heartbeat, alice disappears.
	threshold := 20 * time.Minute
	evicted, err := backend.participants.DeleteInactive(time.Now().UTC().Add(threshold+time.Second), threshold)
	req.NoError(err)
	req.Equal(1, evicted)

	response = backend.do(t, http.MethodGet, "/participants", "", nil)
	req.Equal(http.StatusOK, response.StatusCode)
	req.Empty(decodeList(t, response))

	// Her messages survive her eviction.
	response = backend.do(t, http.MethodGet, "/messages", "bob", nil)
	req.Equal(http.StatusOK, response.StatusCode)
	req.Len(decodeList(t, response), 1)
}

func TestPrivateMessages_Visibility(t *testing.T) {
	req := require.New(t)
	backend := newTestBackend(t)

	response := backend.do(t, http.MethodPost, "/messages", "alice", map[string]string{
		"to": "bob", "text": "psst", "type": "private",
	})
	req.Equal(http.StatusCreated, response.StatusCode)

	for _, user := range []string{"alice", "bob"} {
		response = backend.do(t, http.MethodGet, "/messages", user, nil)
		req.Equal(http.StatusOK, response.StatusCode)
		req.Len(decodeList(t, response), 1)
	}

	response = backend.do(t, http.MethodGet, "/messages", "carol", nil)
	req.Equal(http.StatusOK, response.StatusCode)
	req.Empty(decodeList(t, response))
}

func TestListMessages_Limit(t *testing.T) {
	req := require.New(t)
	backend := newTestBackend(t)

	for _, text := range []string{"t1", "t2", "t3", "t4", "t5"} {
		response := backend.do(t, http.MethodPost, "/messages", "alice", map[string]string{
			"to": "everyone", "text": text, "type": "broadcast",
		})
		req.Equal(http.StatusCreated, response.StatusCode)
		time.Sleep(time.Millisecond)
	}

	response := backend.do(t, http.MethodGet, "/messages?limit=2", "bob", nil)
	req.Equal(http.StatusOK, response.StatusCode)
	messages := decodeList(t, response)
	req.Len(messages, 2)
	req.Equal("t4", messages[0]["text"])
	req.Equal("t5", messages[1]["text"])

	response = backend.do(t, http.MethodGet, "/messages?limit=0", "bob", nil)
	req.Equal(http.StatusUnprocessableEntity, response.StatusCode)

	response = backend.do(t, http.MethodGet, "/messages?limit=abc", "bob", nil)
	req.Equal(http.StatusBadRequest, response.StatusCode)
}

func TestPostMessage_Validation_And_Identity(t *testing.T) {
	req := require.New(t)
	backend := newTestBackend(t)

	// Identity header is mandatory for posting.
	response := backend.do(t, http.MethodPost, "/messages", "", map[string]string{
		"to": "everyone", "text": "hi", "type": "broadcast",
	})
	req.Equal(http.StatusBadRequest, response.StatusCode)

	response = backend.do(t, http.MethodPost, "/messages", "alice", map[string]string{
		"to": "everyone", "text": "hi", "type": "shout",
	})
	req.Equal(http.StatusUnprocessableEntity, response.StatusCode)

	response = backend.do(t, http.MethodPost, "/messages", "alice", map[string]string{
		"to": "everyone", "type": "broadcast",
	})
	req.Equal(http.StatusUnprocessableEntity, response.StatusCode)
}

func TestPostMessage_Censors_Banned_Words(t *testing.T) {
	req := require.New(t)
	backend := newTestBackend(t)

	response := backend.do(t, http.MethodPost, "/messages", "alice", map[string]string{
		"to": "everyone", "text": "you badger", "type": "broadcast",
	})
	req.Equal(http.StatusCreated, response.StatusCode)

	response = backend.do(t, http.MethodGet, "/messages", "bob", nil)
	messages := decodeList(t, response)
	req.Len(messages, 1)
	req.Equal("you ******", messages[0]["text"])
}

func TestHeartbeat(t *testing.T) {
	req := require.New(t)
	backend := newTestBackend(t)

	response := backend.do(t, http.MethodPost, "/status", "ghost", nil)
	req.Equal(http.StatusNotFound, response.StatusCode)

	response = backend.do(t, http.MethodPost, "/participants", "", map[string]string{"name": "alice"})
	req.Equal(http.StatusCreated, response.StatusCode)

	response = backend.do(t, http.MethodPost, "/status", "alice", nil)
	req.Equal(http.StatusOK, response.StatusCode)

	var participant map[string]any
	req.NoError(json.NewDecoder(response.Body).Decode(&participant))
	req.Equal("alice", participant["name"])
	req.NotZero(participant["lastHeartbeat"])
}

func TestSearchMessages(t *testing.T) {
	req := require.New(t)
	backend := newTestBackend(t)

	response := backend.do(t, http.MethodPost, "/messages", "alice", map[string]string{
		"to": "everyone", "text": "deployment finished", "type": "broadcast",
	})
	req.Equal(http.StatusCreated, response.StatusCode)
	response = backend.do(t, http.MethodPost, "/messages", "alice", map[string]string{
		"to": "bob", "text": "secret deployment", "type": "private",
	})
	req.Equal(http.StatusCreated, response.StatusCode)

	response = backend.do(t, http.MethodGet, "/messages/search?q=deployment", "carol", nil)
	req.Equal(http.StatusOK, response.StatusCode)
	req.Len(decodeList(t, response), 1)

	response = backend.do(t, http.MethodGet, "/messages/search?q=deployment", "bob", nil)
	req.Equal(http.StatusOK, response.StatusCode)
	req.Len(decodeList(t, response), 2)

	response = backend.do(t, http.MethodGet, "/messages/search", "bob", nil)
	req.Equal(http.StatusBadRequest, response.StatusCode)
}

func TestStoreFailures_Map_To_500(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	presence := mocks.NewMockIPresenceService(ctrl)
	messages := mocks.NewMockIMessageService(ctrl)
	ts := httptest.NewServer(New(presence, messages, slog.Default()).Router())
	defer ts.Close()

	presence.EXPECT().
		List().
		Return(nil, fmt.Errorf("%w: timeout", errors.ErrStoreUnavailable)).
		Times(1)

	response, err := ts.Client().Get(ts.URL + "/participants")
	req.NoError(err)
	defer response.Body.Close()
	req.Equal(http.StatusInternalServerError, response.StatusCode)

	// The caller gets a generic body, not the internal failure.
	var body map[string]string
	req.NoError(json.NewDecoder(response.Body).Decode(&body))
	req.Equal("internal error", body["error"])
}
