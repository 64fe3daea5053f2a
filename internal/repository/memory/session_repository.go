package memory

import (
	"context"
	"sort"

	"mentor-ai-be/internal/entity"

	"github.com/google/uuid"
)

type ChatSessionRepository struct {
	uow *UnitOfWork
}

func (r *ChatSessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	return r.uow.run(func() error {
		s := r.uow.store
		if session.Id == uuid.Nil {
			session.Id = uuid.New()
		}
		now := s.now()
		s.sessionSequence++
		session.Sequence = s.sessionSequence
		session.CreatedAt = now
		session.UpdatedAt = &now

		id := session.Id
		s.sessions[id] = copySession(session)
		r.uow.record(func() {
			delete(s.sessions, id)
			s.sessionSequence--
		})
		return nil
	})
}

func (r *ChatSessionRepository) FindOwned(ctx context.Context, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	var found *entity.ChatSession
	err := r.uow.run(func() error {
		if s, ok := r.uow.store.sessions[sessionId]; ok && s.UserId == userId {
			found = copySession(s)
		}
		return nil
	})
	return found, err
}

func (r *ChatSessionRepository) FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.ChatSession, error) {
	result := []*entity.ChatSession{}
	err := r.uow.run(func() error {
		for _, s := range r.uow.store.sessions {
			if s.UserId == userId {
				result = append(result, copySession(s))
			}
		}
		return nil
	})
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Sequence < result[j].Sequence
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, err
}

func (r *ChatSessionRepository) CountByUser(ctx context.Context, userId uuid.UUID) (int64, error) {
	var count int64
	err := r.uow.run(func() error {
		for _, s := range r.uow.store.sessions {
			if s.UserId == userId {
				count++
			}
		}
		return nil
	})
	return count, err
}

// Delete cascades to the session's messages.
func (r *ChatSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.uow.run(func() error {
		s := r.uow.store
		session, ok := s.sessions[id]
		if !ok {
			return nil
		}
		messages := s.messages[id]
		delete(s.sessions, id)
		delete(s.messages, id)
		r.uow.record(func() {
			s.sessions[id] = session
			if messages != nil {
				s.messages[id] = messages
			}
		})
		return nil
	})
}
