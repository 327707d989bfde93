package chat

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fintari/gramthread/domains/directory"
)

// MockClient tracks calls to the directory boundary.
type MockClient struct {
	mock.Mock

	handlers []func(directory.Event)
}

func (m *MockClient) BroadcastText(ctx context.Context, threadID, clientContext, text string) (directory.BroadcastAck, error) {
	args := m.Called(ctx, threadID, clientContext, text)
	return args.Get(0).(directory.BroadcastAck), args.Error(1)
}

func (m *MockClient) BroadcastPhoto(ctx context.Context, threadID, clientContext string, photo []byte) (directory.BroadcastAck, error) {
	args := m.Called(ctx, threadID, clientContext, photo)
	return args.Get(0).(directory.BroadcastAck), args.Error(1)
}

func (m *MockClient) BroadcastVoice(ctx context.Context, threadID, clientContext string, voice []byte) (directory.BroadcastAck, error) {
	args := m.Called(ctx, threadID, clientContext, voice)
	return args.Get(0).(directory.BroadcastAck), args.Error(1)
}

func (m *MockClient) ApproveThread(ctx context.Context, threadID string) error {
	args := m.Called(ctx, threadID)
	return args.Error(0)
}

func (m *MockClient) DeleteItem(ctx context.Context, threadID, itemID string) error {
	args := m.Called(ctx, threadID, itemID)
	return args.Error(0)
}

func (m *MockClient) MarkItemSeen(ctx context.Context, threadID, itemID string) error {
	args := m.Called(ctx, threadID, itemID)
	return args.Error(0)
}

func (m *MockClient) IndicateTypingActivity(ctx context.Context, threadID string, active bool) error {
	args := m.Called(ctx, threadID, active)
	return args.Error(0)
}

// OnEvent records the handler without mock bookkeeping so tests can push
// events through Emit.
func (m *MockClient) OnEvent(handler func(directory.Event)) {
	m.handlers = append(m.handlers, handler)
}

func (m *MockClient) Emit(evt directory.Event) {
	for _, h := range m.handlers {
		h(evt)
	}
}
