// Package blog implements the post authoring workflow: validate, persist,
// then best-effort push notification to the author and to admins.
package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tskinner/inkwell/internal/model"
	"github.com/tskinner/inkwell/internal/notify"
	"github.com/tskinner/inkwell/internal/push"
	"github.com/tskinner/inkwell/internal/store"
	"github.com/tskinner/inkwell/internal/websocket"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("post not found")
	ErrForbidden  = errors.New("not the post owner")
)

// Notifier dispatches one payload to a set of recipients. Implemented by
// notify.Dispatcher.
type Notifier interface {
	Dispatch(recipients []model.User, payload push.Payload) []notify.Outcome
}

type Service struct {
	posts    *store.PostStore
	users    *store.UserStore
	notifier Notifier
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewService(posts *store.PostStore, users *store.UserStore, notifier Notifier, hub *websocket.Hub, logger *slog.Logger) *Service {
	return &Service{posts: posts, users: users, notifier: notifier, hub: hub, logger: logger}
}

func (s *Service) broadcast(action string, id int64) {
	if s.hub != nil {
		s.hub.Broadcast(websocket.NewMessage("post", action, id, nil))
	}
}

func validatePost(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(title) > model.MaxPostTitleLen {
		return "", "", fmt.Errorf("%w: title must be at most %d characters", ErrValidation, model.MaxPostTitleLen)
	}
	if strings.TrimSpace(content) == "" {
		return "", "", fmt.Errorf("%w: content is required", ErrValidation)
	}
	return title, content, nil
}

// CreatePost validates and persists a new post for authorID, then sends
// best-effort push notifications: a confirmation to the author, and a
// "new blog" notice to every admin except the author. Once the post is
// persisted the method always succeeds; notification outcomes are logged
// and discarded. Persist-then-notify ordering is load-bearing.
func (s *Service) CreatePost(ctx context.Context, authorID int64, title, content string) (*model.Post, error) {
	title, content, err := validatePost(title, content)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.Create(title, content, authorID)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.notifyCreated(post, authorID)
	s.broadcast("created", post.ID)

	return post, nil
}

func (s *Service) notifyCreated(post *model.Post, authorID int64) {
	author, err := s.users.GetByID(authorID)
	if err != nil || author == nil {
		s.logger.Error("author lookup for notification", "post_id", post.ID, "user_id", authorID, "error", err)
		return
	}

	s.logOutcomes("self", s.notifier.Dispatch([]model.User{*author}, notify.PostCreated(post)))

	admins, err := s.users.ListAdmins(author.ID)
	if err != nil {
		s.logger.Error("admin lookup for notification", "post_id", post.ID, "error", err)
		return
	}
	if len(admins) == 0 {
		return
	}

	s.logOutcomes("admin", s.notifier.Dispatch(admins, notify.AdminPostCreated(post, author)))
}

func (s *Service) logOutcomes(kind string, outcomes []notify.Outcome) {
	delivered, skipped := 0, 0
	for _, o := range outcomes {
		if o.Delivered {
			delivered++
		}
		if o.Skipped {
			skipped++
		}
	}
	s.logger.Info("push dispatch", "kind", kind, "recipients", len(outcomes), "delivered", delivered, "skipped", skipped)
}

// GetPost returns the post or ErrNotFound.
func (s *Service) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

// ListPosts returns all posts, newest first.
func (s *Service) ListPosts(ctx context.Context) ([]model.Post, error) {
	return s.posts.List()
}

// UpdatePost validates and applies an owner-only edit. No notifications are
// sent on this path.
func (s *Service) UpdatePost(ctx context.Context, userID, id int64, title, content string) (*model.Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, ErrForbidden
	}

	title, content, err = validatePost(title, content)
	if err != nil {
		return nil, err
	}

	updated, err := s.posts.Update(id, title, content)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	s.broadcast("updated", id)
	return updated, nil
}

// DeletePost applies an owner-only hard delete. No notifications are sent.
func (s *Service) DeletePost(ctx context.Context, userID, id int64) error {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return ErrForbidden
	}

	if err := s.posts.Delete(id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	s.broadcast("deleted", id)
	return nil
}
