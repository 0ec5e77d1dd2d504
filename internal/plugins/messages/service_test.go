package messages

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Subodhrana390/cropsense/internal/apperror"
	"github.com/Subodhrana390/cropsense/internal/plugins/auth"
)

// mockMessageRepo implements MessageRepository with an in-memory slice.
type mockMessageRepo struct {
	messages  []Message
	createErr error
	listErr   error
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *Message) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockMessageRepo) ListConversation(ctx context.Context, userA, userB string) ([]Message, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Message
	for _, msg := range m.messages {
		if (msg.FromUserID == userA && msg.ToUserID == userB) ||
			(msg.FromUserID == userB && msg.ToUserID == userA) {
			out = append(out, msg)
		}
	}
	return out, nil
}

// mockUserRepo implements the slice of auth.UserRepository this service
// needs: FindByID and ListExcluding.
type mockUserRepo struct {
	users []auth.User
}

func (m *mockUserRepo) Create(ctx context.Context, user *auth.User) error {
	return errors.New("unexpected Create call")
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*auth.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return nil, errors.New("unexpected FindByEmail call")
}

func (m *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return false, errors.New("unexpected EmailExists call")
}

func (m *mockUserRepo) ListExcluding(ctx context.Context, id string) ([]auth.User, error) {
	var out []auth.User
	for _, u := range m.users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out, nil
}

func newTestService() (MessageService, *mockMessageRepo) {
	repo := &mockMessageRepo{}
	users := &mockUserRepo{users: []auth.User{
		{ID: "u1", Name: "Asha"},
		{ID: "u2", Name: "Ravi"},
		{ID: "u3", Name: "Meena"},
	}}
	return NewMessageService(repo, users), repo
}

func TestPartners_ExcludesSelf(t *testing.T) {
	svc, _ := newTestService()

	partners, err := svc.Partners(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, partners, 2)
	for _, p := range partners {
		assert.NotEqual(t, "u1", p.ID)
		assert.NotEmpty(t, p.Name)
	}
}

func TestSend_Success(t *testing.T) {
	svc, repo := newTestService()

	msg, err := svc.Send(context.Background(), "u1", "u2", SendRequest{Text: "How is the wheat doing?"})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "u1", msg.FromUserID)
	assert.Equal(t, "u2", msg.ToUserID)
	assert.Equal(t, "How is the wheat doing?", msg.Text)

	require.Len(t, repo.messages, 1)
}

func TestSend_SanitizesMarkup(t *testing.T) {
	svc, repo := newTestService()

	msg, err := svc.Send(context.Background(), "u1", "u2", SendRequest{
		Text: `  <script>alert("x")</script>see you at the market  `,
	})
	require.NoError(t, err)
	assert.Equal(t, "see you at the market", msg.Text)
	assert.Equal(t, msg.Text, repo.messages[0].Text)
}

func TestSend_PlainTextComparisonSurvives(t *testing.T) {
	svc, _ := newTestService()

	msg, err := svc.Send(context.Background(), "u1", "u2", SendRequest{Text: "yield was 1 < 2 tons"})
	require.NoError(t, err)
	assert.Equal(t, "yield was 1 < 2 tons", msg.Text)
}

func TestSend_MarkupOnlyMessageRejected(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.Send(context.Background(), "u1", "u2", SendRequest{Text: "<b></b>"})
	require.Error(t, err)
	assert.Equal(t, 422, apperror.SafeCode(err))
	assert.Empty(t, repo.messages)
}

func TestSend_ToSelfRejected(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Send(context.Background(), "u1", "u1", SendRequest{Text: "hello me"})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.SafeCode(err))
}

func TestSend_UnknownPartnerRejected(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.Send(context.Background(), "u1", "nobody", SendRequest{Text: "hello"})
	require.Error(t, err)
	assert.Equal(t, 404, apperror.SafeCode(err))
	assert.Empty(t, repo.messages)
}

func TestConversation_BothDirectionsInOrder(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Send(context.Background(), "u1", "u2", SendRequest{Text: "first"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), "u2", "u1", SendRequest{Text: "second"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), "u1", "u3", SendRequest{Text: "other thread"})
	require.NoError(t, err)

	msgs, err := svc.Conversation(context.Background(), "u1", "u2")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)

	// Same thread from the other side.
	mirror, err := svc.Conversation(context.Background(), "u2", "u1")
	require.NoError(t, err)
	assert.Equal(t, msgs, mirror)
}

func TestConversation_UnknownPartner(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Conversation(context.Background(), "u1", "nobody")
	require.Error(t, err)
	assert.Equal(t, 404, apperror.SafeCode(err))
}

func TestSend_StorageFailureIsGeneric(t *testing.T) {
	repo := &mockMessageRepo{createErr: errors.New("mariadb: duplicate entry on idx_messages_pair")}
	users := &mockUserRepo{users: []auth.User{{ID: "u1"}, {ID: "u2"}}}
	svc := NewMessageService(repo, users)

	_, err := svc.Send(context.Background(), "u1", "u2", SendRequest{Text: "hi"})
	require.Error(t, err)
	assert.Equal(t, 500, apperror.SafeCode(err))
	assert.NotContains(t, apperror.SafeMessage(err), "idx_messages_pair")
}
