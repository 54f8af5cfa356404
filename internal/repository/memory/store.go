// Package memory provides mutex-guarded in-memory implementations of the
// repository contracts. They back the use case and HTTP tests, where a live
// PostgreSQL server is not available.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/repository"
)

// Store holds every table behind one mutex so cross-repository operations
// (message append + conversation snapshot) stay atomic, matching the
// transactional behavior of the postgres package.
type Store struct {
	mu sync.Mutex

	users    map[string]*domain.User
	byEmail  map[string]string
	profiles map[string]*domain.Profile
	prefs    map[string]*domain.Preference
	blocks   map[[2]string]*domain.Block
	convs    map[string]*domain.Conversation
	byPair   map[[2]string]string
	messages map[string][]*domain.Message
	last     time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		byEmail:  make(map[string]string),
		profiles: make(map[string]*domain.Profile),
		prefs:    make(map[string]*domain.Preference),
		blocks:   make(map[[2]string]*domain.Block),
		convs:    make(map[string]*domain.Conversation),
		byPair:   make(map[[2]string]string),
		messages: make(map[string][]*domain.Message),
	}
}

func (s *Store) Users() repository.UserRepository               { return (*userRepo)(s) }
func (s *Store) Profiles() repository.ProfileRepository         { return (*profileRepo)(s) }
func (s *Store) Preferences() repository.PreferenceRepository   { return (*prefRepo)(s) }
func (s *Store) Blocks() repository.BlockRepository             { return (*blockRepo)(s) }
func (s *Store) Conversations() repository.ConversationRepository { return (*convRepo)(s) }
func (s *Store) Messages() repository.MessageRepository         { return (*msgRepo)(s) }

// next returns a strictly increasing wall-clock timestamp. Staying on the
// wall clock keeps these stamps comparable with read-marks the use cases
// take from time.Now; the bump keeps order deterministic when the clock
// does not move between calls.
func (s *Store) next() time.Time {
	now := time.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Millisecond)
	}
	s.last = now
	return now
}

// --- users ---

type userRepo Store

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	now := s.next()
	user.CreatedAt = now
	user.LastActive = now
	cp := *user
	s.users[user.ID] = &cp
	s.byEmail[user.Email] = user.ID
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (r *userRepo) TouchLastActive(_ context.Context, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastActive = s.next()
	return nil
}

// --- profiles ---

type profileRepo Store

func (r *profileRepo) Create(_ context.Context, profile *domain.Profile) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *profile
	s.profiles[profile.UserID] = &cp
	return nil
}

func (r *profileRepo) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *profileRepo) Update(_ context.Context, profile *domain.Profile) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.UserID]; !ok {
		return domain.ErrProfileNotFound
	}
	cp := *profile
	s.profiles[profile.UserID] = &cp
	return nil
}

func (r *profileRepo) SaveAnswers(_ context.Context, userID string, answers domain.AnswerMap) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.Answers = answers
	return nil
}

func (r *profileRepo) ListExcept(_ context.Context, userID string) ([]*domain.Profile, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Profile, 0, len(s.profiles))
	for id, p := range s.profiles {
		if id == userID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// --- preferences ---

type prefRepo Store

func (r *prefRepo) Create(_ context.Context, pref *domain.Preference) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *pref
	s.prefs[pref.UserID] = &cp
	return nil
}

func (r *prefRepo) GetByUserID(_ context.Context, userID string) (*domain.Preference, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prefs[userID]
	if !ok {
		return nil, domain.ErrPreferenceNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *prefRepo) Update(_ context.Context, pref *domain.Preference) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prefs[pref.UserID]; !ok {
		return domain.ErrPreferenceNotFound
	}
	cp := *pref
	s.prefs[pref.UserID] = &cp
	return nil
}

// --- blocks ---

type blockRepo Store

func (r *blockRepo) Upsert(_ context.Context, block *domain.Block) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{block.BlockerID, block.BlockedID}
	if existing, ok := s.blocks[key]; ok {
		existing.Reason = block.Reason
		return nil
	}
	cp := *block
	cp.CreatedAt = s.next()
	s.blocks[key] = &cp
	return nil
}

func (r *blockRepo) IsBlockedEitherDirection(_ context.Context, a, b string) (bool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ab := s.blocks[[2]string{a, b}]
	_, ba := s.blocks[[2]string{b, a}]
	return ab || ba, nil
}

func (r *blockRepo) ListBlockedWith(_ context.Context, userID string) ([]string, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for key := range s.blocks {
		if key[0] == userID {
			ids = append(ids, key[1])
		} else if key[1] == userID {
			ids = append(ids, key[0])
		}
	}
	return ids, nil
}

// --- conversations ---

type convRepo Store

func (r *convRepo) CreateOrGet(_ context.Context, conv *domain.Conversation) (*domain.Conversation, bool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	low, high := domain.NormalizePair(conv.UserLow, conv.UserHigh)
	pair := [2]string{low, high}
	if id, ok := s.byPair[pair]; ok {
		cp := *s.convs[id]
		return &cp, false, nil
	}
	now := s.next()
	created := &domain.Conversation{
		ID:         conv.ID,
		UserLow:    low,
		UserHigh:   high,
		LastActive: now,
		CreatedAt:  now,
	}
	s.convs[created.ID] = created
	s.byPair[pair] = created.ID
	cp := *created
	return &cp, true, nil
}

func (r *convRepo) GetByID(_ context.Context, id string) (*domain.Conversation, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *convRepo) ListForUser(_ context.Context, userID string) ([]*domain.Conversation, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Conversation
	for _, c := range s.convs {
		if c.HasUser(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActive.After(out[j].LastActive) })
	return out, nil
}

func (r *convRepo) ListPartnerIDs(_ context.Context, userID string) ([]string, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, c := range s.convs {
		if other, ok := c.OtherUserID(userID); ok {
			ids = append(ids, other)
		}
	}
	return ids, nil
}

func (r *convRepo) CastRevealVote(_ context.Context, id, voterID string, target int) (*domain.Conversation, bool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, false, domain.ErrConversationNotFound
	}
	if c.RevealLevel != target-1 {
		cp := *c
		return &cp, false, nil
	}
	switch voterID {
	case c.UserLow:
		v := target
		c.VoteLow = &v
	case c.UserHigh:
		v := target
		c.VoteHigh = &v
	default:
		return nil, false, domain.ErrAccessDenied
	}
	advanced := c.VoteLow != nil && c.VoteHigh != nil && *c.VoteLow == target && *c.VoteHigh == target
	if advanced {
		c.RevealLevel = target
		c.VoteLow = nil
		c.VoteHigh = nil
	}
	cp := *c
	return &cp, advanced, nil
}

func (r *convRepo) MarkRead(_ context.Context, id, userID string, at time.Time) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return domain.ErrConversationNotFound
	}
	t := at
	switch userID {
	case c.UserLow:
		c.LowLastRead = &t
	case c.UserHigh:
		c.HighLastRead = &t
	}
	return nil
}

// --- messages ---

type msgRepo Store

func (r *msgRepo) Append(_ context.Context, msg *domain.Message) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[msg.ConversationID]
	if !ok {
		return domain.ErrConversationNotFound
	}
	msg.CreatedAt = s.next()
	cp := *msg
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], &cp)
	content := msg.Content
	c.LastMessage = &content
	c.LastActive = msg.CreatedAt
	// The sender has seen their own message.
	t := msg.CreatedAt
	switch msg.SenderID {
	case c.UserLow:
		c.LowLastRead = &t
	case c.UserHigh:
		c.HighLastRead = &t
	}
	return nil
}

func (r *msgRepo) ListByConversation(_ context.Context, conversationID string) ([]*domain.Message, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[conversationID]
	out := make([]*domain.Message, len(msgs))
	for i, m := range msgs {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}
