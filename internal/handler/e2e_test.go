package handler

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/whatsapp-events-bot/internal/command"
	"github.com/k-negishi/whatsapp-events-bot/internal/domain"
	"github.com/k-negishi/whatsapp-events-bot/internal/usecase"
)

// memoryRepository イベントをメモリ上に保持するリポジトリ
type memoryRepository struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *memoryRepository) Get(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (r *memoryRepository) Put(_ context.Context, event domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.events {
		if e.ID == id {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memoryRepository) FindByOwner(_ context.Context, userPhone string) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, e := range r.events {
		if e.UserPhone == userPhone {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryRepository) FindByOwnerAndName(ctx context.Context, userPhone, name string) ([]domain.Event, error) {
	owned, _ := r.FindByOwner(ctx, userPhone)
	var out []domain.Event
	for _, e := range owned {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out, nil
}

// recordingMessenger 送信メッセージを記録する
type recordingMessenger struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMessenger) SendMessage(_ context.Context, _, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, text)
	return nil
}

func (m *recordingMessenger) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1]
}

type unusedBlobStore struct{}

func (unusedBlobStore) Upload(context.Context, string, []byte) (string, error) {
	panic("unexpected upload")
}

type unusedMediaFetcher struct{}

func (unusedMediaFetcher) Fetch(context.Context, string) ([]byte, error) {
	panic("unexpected media fetch")
}

type e2eFixture struct {
	repo      *memoryRepository
	messenger *recordingMessenger
	handler   *Handler
}

func newE2EFixture() *e2eFixture {
	repo := &memoryRepository{}
	messenger := &recordingMessenger{}
	dispatcher := usecase.NewDispatcher(repo, unusedBlobStore{}, messenger, unusedMediaFetcher{}, "events.example.com", discardLogger())
	return &e2eFixture{
		repo:      repo,
		messenger: messenger,
		handler:   New(dispatcher, repo, discardLogger()),
	}
}

func (f *e2eFixture) send(t *testing.T, from, body string) events.APIGatewayProxyResponse {
	t.Helper()
	form := url.Values{}
	if from != "" {
		form.Set("From", from)
	}
	form.Set("Body", body)

	resp, err := f.handler.HandleAPIGateway(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Resource:   "/messages",
		Body:       form.Encode(),
	})
	require.NoError(t, err)
	return resp
}

const e2eSender = "whatsapp:+393473843886"

func TestE2E_ListWithoutEvents(t *testing.T) {
	f := newE2EFixture()

	resp := f.send(t, e2eSender, "list")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "You have no events created yet. Please create an event first.", f.messenger.last())
}

func TestE2E_DeleteWithoutEvents(t *testing.T) {
	f := newE2EFixture()

	resp := f.send(t, e2eSender, "Delete: Partyyy")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, f.messenger.last(), "no events created yet")
}

func TestE2E_UnknownCommandShowsHelp(t *testing.T) {
	f := newE2EFixture()

	resp := f.send(t, e2eSender, "hello")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	reply := f.messenger.last()
	for _, want := range []string{"Create", "Delete:", "List", "Event name", "Date", "Address", "Description"} {
		assert.Contains(t, reply, want)
	}
}

func TestE2E_MissingSender(t *testing.T) {
	f := newE2EFixture()

	resp := f.send(t, "", "list")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.messenger.sent)
}

func TestE2E_CreateListReadDelete(t *testing.T) {
	f := newE2EFixture()

	f.send(t, e2eSender, "Create\nParty\n2024-06-01\n123 Main St\nBring snacks\nand drinks")
	require.Len(t, f.repo.events, 1)
	created := f.repo.events[0]
	assert.Equal(t, []string{command.AckMessage, command.EventCreatedMessage(created, command.EventLink("events.example.com", created.ID))}, f.messenger.sent)

	f.send(t, e2eSender, "Create\nParty\n2024-07-01\nElsewhere")
	assert.Equal(t, command.DuplicateMessage, f.messenger.last())
	assert.Len(t, f.repo.events, 1)

	f.send(t, e2eSender, "List")
	assert.Contains(t, f.messenger.last(), "*Party*")
	assert.Contains(t, f.messenger.last(), "https://events.example.com/event/"+created.ID)

	resp, err := f.handler.HandleAPIGateway(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		Path:           "/event/" + created.ID,
		PathParameters: map[string]string{"id": created.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, `"description":"Bring snacks\nand drinks"`)

	// 他のユーザーからは削除できない
	f.send(t, "whatsapp:+100", "Delete: Party")
	assert.Equal(t, command.NoEventsMessage, f.messenger.last())
	assert.Len(t, f.repo.events, 1)

	f.send(t, e2eSender, "Delete: Party")
	assert.Equal(t, command.DeletedMessage, f.messenger.last())
	assert.Empty(t, f.repo.events)
}
