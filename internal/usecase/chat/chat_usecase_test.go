package chat_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/repository/memory"
	"github.com/anondate/anondate-backend/internal/usecase/chat"
)

func setup(t *testing.T) (*memory.Store, *chat.UseCase) {
	t.Helper()
	store := memory.NewStore()
	uc := chat.NewUseCase(store.Conversations(), store.Messages(), store.Profiles(), store.Blocks())
	for _, id := range []string{"alice", "bob", "eve"} {
		require.NoError(t, store.Profiles().Create(context.Background(), &domain.Profile{
			UserID:   id,
			AnonName: "User#" + id,
		}))
	}
	return store, uc
}

func startConversation(t *testing.T, uc *chat.UseCase) string {
	t.Helper()
	res, err := uc.Start(context.Background(), "alice", "bob")
	require.NoError(t, err)
	require.True(t, res.Created)
	return res.ConversationID
}

func TestStartIdempotentBothOrders(t *testing.T) {
	ctx := context.Background()
	_, uc := setup(t)

	first, err := uc.Start(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, first.Created)

	retry, err := uc.Start(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, retry.Created)
	assert.Equal(t, first.ConversationID, retry.ConversationID)

	reversed, err := uc.Start(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, reversed.Created)
	assert.Equal(t, first.ConversationID, reversed.ConversationID)
}

func TestStartRejectsSelf(t *testing.T) {
	_, uc := setup(t)
	_, err := uc.Start(context.Background(), "alice", "alice")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStartUnknownPartner(t *testing.T) {
	_, uc := setup(t)
	_, err := uc.Start(context.Background(), "alice", "ghost")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestStartBlockedPair(t *testing.T) {
	ctx := context.Background()
	store, uc := setup(t)
	require.NoError(t, store.Blocks().Upsert(ctx, &domain.Block{BlockerID: "bob", BlockedID: "alice"}))

	_, err := uc.Start(ctx, "alice", "bob")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestPostAndReadMessages(t *testing.T) {
	ctx := context.Background()
	_, uc := setup(t)
	convID := startConversation(t, uc)

	_, err := uc.PostMessage(ctx, convID, "alice", &chat.PostRequest{Text: "  hey there  "})
	require.NoError(t, err)
	_, err = uc.PostMessage(ctx, convID, "bob", &chat.PostRequest{Text: "hi!"})
	require.NoError(t, err)

	page, err := uc.GetMessages(ctx, convID, "alice")
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)

	assert.Equal(t, "hey there", page.Messages[0].Text)
	assert.Equal(t, "me", page.Messages[0].Sender)
	assert.Equal(t, "them", page.Messages[1].Sender)
	assert.False(t, page.Messages[1].Timestamp.Before(page.Messages[0].Timestamp))
	assert.Equal(t, 0, page.RevealLevel)
	assert.Equal(t, "Chat", page.RevealStage)
}

func TestPostMessageValidation(t *testing.T) {
	ctx := context.Background()
	_, uc := setup(t)
	convID := startConversation(t, uc)

	_, err := uc.PostMessage(ctx, convID, "alice", &chat.PostRequest{Text: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.PostMessage(ctx, convID, "alice", &chat.PostRequest{Text: "this is SPAM really"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	page, err := uc.GetMessages(ctx, convID, "alice")
	require.NoError(t, err)
	assert.Empty(t, page.Messages)
}

func TestNonMemberAccessDenied(t *testing.T) {
	ctx := context.Background()
	_, uc := setup(t)
	convID := startConversation(t, uc)

	_, err := uc.GetMessages(ctx, convID, "eve")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = uc.PostMessage(ctx, convID, "eve", &chat.PostRequest{Text: "let me in"})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = uc.ConfirmReveal(ctx, convID, "eve")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	// Nothing leaked into the log.
	page, err := uc.GetMessages(ctx, convID, "alice")
	require.NoError(t, err)
	assert.Empty(t, page.Messages)
}

func TestRevealHandshake(t *testing.T) {
	ctx := context.Background()
	_, uc := setup(t)
	convID := startConversation(t, uc)

	st, err := uc.ConfirmReveal(ctx, convID, "alice")
	require.NoError(t, err)
	assert.False(t, st.Advanced)
	assert.True(t, st.AwaitingPartner)
	assert.Equal(t, 0, st.RevealLevel)

	// A repeat vote from the same member changes nothing.
	st, err = uc.ConfirmReveal(ctx, convID, "alice")
	require.NoError(t, err)
	assert.False(t, st.Advanced)
	assert.Equal(t, 0, st.RevealLevel)

	st, err = uc.ConfirmReveal(ctx, convID, "bob")
	require.NoError(t, err)
	assert.True(t, st.Advanced)
	assert.Equal(t, 1, st.RevealLevel)
	assert.Equal(t, "Interests", st.Stage)

	page, err := uc.GetMessages(ctx, convID, "alice")
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "system", page.Messages[0].Sender)
	assert.Equal(t, "Interests revealed", page.Messages[0].Text)
	assert.False(t, page.AwaitingPartner)
}

func TestRevealReachesTerminalAndStops(t *testing.T) {
	ctx := context.Background()
	_, uc := setup(t)
	convID := startConversation(t, uc)

	for level := 1; level <= domain.MaxRevealLevel; level++ {
		_, err := uc.ConfirmReveal(ctx, convID, "alice")
		require.NoError(t, err)
		st, err := uc.ConfirmReveal(ctx, convID, "bob")
		require.NoError(t, err)
		assert.True(t, st.Advanced)
		assert.Equal(t, level, st.RevealLevel)
	}

	_, err := uc.ConfirmReveal(ctx, convID, "alice")
	assert.ErrorIs(t, err, domain.ErrValidation)

	page, err := uc.GetMessages(ctx, convID, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.MaxRevealLevel, page.RevealLevel)
	assert.True(t, page.FullyRevealed)
	assert.Equal(t, "Identity", page.RevealStage)
}

func TestListUnreadFlag(t *testing.T) {
	ctx := context.Background()
	_, uc := setup(t)
	convID := startConversation(t, uc)

	_, err := uc.PostMessage(ctx, convID, "alice", &chat.PostRequest{Text: "hello"})
	require.NoError(t, err)

	bobList, err := uc.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobList, 1)
	assert.True(t, bobList[0].Unread)
	assert.Equal(t, "alice", bobList[0].PartnerID)
	assert.Equal(t, "User#alice", bobList[0].PartnerName)
	require.NotNil(t, bobList[0].LastMessage)
	assert.Equal(t, "hello", *bobList[0].LastMessage)

	// The sender has read their own message.
	aliceList, err := uc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceList, 1)
	assert.False(t, aliceList[0].Unread)

	_, err = uc.GetMessages(ctx, convID, "bob")
	require.NoError(t, err)
	bobList, err = uc.List(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, bobList[0].Unread)
}

func TestUnreadFlipsBackAfterRead(t *testing.T) {
	ctx := context.Background()
	store, uc := setup(t)
	convID := startConversation(t, uc)

	_, err := uc.PostMessage(ctx, convID, "alice", &chat.PostRequest{Text: "first"})
	require.NoError(t, err)
	_, err = uc.GetMessages(ctx, convID, "bob")
	require.NoError(t, err)

	list, err := uc.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.False(t, list[0].Unread)

	// A new partner message after the read must flag unread again.
	_, err = uc.PostMessage(ctx, convID, "alice", &chat.PostRequest{Text: "second"})
	require.NoError(t, err)

	list, err = uc.List(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, list[0].Unread)

	conv, err := store.Conversations().GetByID(ctx, convID)
	require.NoError(t, err)
	lastRead := conv.LastReadFor("bob")
	require.NotNil(t, lastRead)
	assert.True(t, conv.LastActive.After(*lastRead))
}

func TestPostMarksSenderReadAtomically(t *testing.T) {
	ctx := context.Background()
	store, uc := setup(t)
	convID := startConversation(t, uc)

	msg, err := uc.PostMessage(ctx, convID, "alice", &chat.PostRequest{Text: "hello"})
	require.NoError(t, err)

	conv, err := store.Conversations().GetByID(ctx, convID)
	require.NoError(t, err)
	lastRead := conv.LastReadFor("alice")
	require.NotNil(t, lastRead)
	assert.True(t, lastRead.Equal(msg.Timestamp))

	list, err := uc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Unread)
}

func TestConcurrentPostsAllStored(t *testing.T) {
	ctx := context.Background()
	_, uc := setup(t)
	convID := startConversation(t, uc)

	const perMember = 25
	var wg sync.WaitGroup
	for _, member := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(sender string) {
			defer wg.Done()
			for i := 0; i < perMember; i++ {
				_, err := uc.PostMessage(ctx, convID, sender,
					&chat.PostRequest{Text: fmt.Sprintf("%s %d", sender, i)})
				assert.NoError(t, err)
			}
		}(member)
	}
	wg.Wait()

	page, err := uc.GetMessages(ctx, convID, "alice")
	require.NoError(t, err)
	require.Len(t, page.Messages, 2*perMember)

	seen := make(map[string]bool, len(page.Messages))
	for i, m := range page.Messages {
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
		if i > 0 {
			assert.True(t, m.Timestamp.After(page.Messages[i-1].Timestamp))
		}
	}
}

func TestListOrderedByActivity(t *testing.T) {
	ctx := context.Background()
	_, uc := setup(t)

	first, err := uc.Start(ctx, "alice", "bob")
	require.NoError(t, err)
	second, err := uc.Start(ctx, "alice", "eve")
	require.NoError(t, err)

	_, err = uc.PostMessage(ctx, second.ConversationID, "alice", &chat.PostRequest{Text: "newer"})
	require.NoError(t, err)
	_, err = uc.PostMessage(ctx, first.ConversationID, "alice", &chat.PostRequest{Text: "newest"})
	require.NoError(t, err)

	list, err := uc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ConversationID, list[0].ID)
	assert.Equal(t, second.ConversationID, list[1].ID)
}
