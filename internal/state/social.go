package state

import (
	"context"
	"fmt"

	"alcyxob/gym-dashboard/internal/domain"
)

// --- Notifications ---

// Notify prepends a notification for userID.
func (s *Store) Notify(ctx context.Context, userID, message string) domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notifyLocked(userID, message)
	s.persist(ctx, KeyNotifications, s.notifications)
	return n
}

// notifyLocked prepends without persisting. Caller holds s.mu.
func (s *Store) notifyLocked(userID, message string) domain.Notification {
	n := domain.Notification{
		ID:        s.newID(),
		UserID:    userID,
		Message:   message,
		CreatedAt: s.now(),
	}
	s.notifications = append([]domain.Notification{n}, s.notifications...)
	return n
}

// NotificationsFor returns userID's notifications, newest first.
func (s *Store) NotificationsFor(userID string) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// MarkNotificationRead flips IsRead on one of userID's notifications.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.notifications, func(n domain.Notification) bool { return n.ID == id && n.UserID == userID })
	if i < 0 {
		return ErrNotificationNotFound
	}
	if !s.notifications[i].IsRead {
		s.notifications[i].IsRead = true
		s.persist(ctx, KeyNotifications, s.notifications)
	}
	return nil
}

// MarkAllNotificationsRead returns how many notifications changed.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for i := range s.notifications {
		if s.notifications[i].UserID == userID && !s.notifications[i].IsRead {
			s.notifications[i].IsRead = true
			changed++
		}
	}
	if changed > 0 {
		s.persist(ctx, KeyNotifications, s.notifications)
	}
	return changed
}

// --- Messages ---

// ConversationID derives the same key for (a, b) and (b, a).
func ConversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

// SendMessage appends msg with a fresh ID and timestamp, unread.
func (s *Store) SendMessage(ctx context.Context, msg domain.Message) (domain.Message, error) {
	if msg.SenderID == "" || msg.ReceiverID == "" || msg.Text == "" {
		return domain.Message{}, fmt.Errorf("%w: sender, receiver and text are required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := msg
	m.ID = s.newID()
	m.ConversationID = ConversationID(msg.SenderID, msg.ReceiverID)
	m.Timestamp = s.now()
	m.IsRead = false
	s.messages = append(s.messages, m)
	s.persist(ctx, KeyMessages, s.messages)
	return m, nil
}

// Conversation returns the messages of one conversation in send order.
func (s *Store) Conversation(conversationID string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Message{}
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out
}

// UnreadMessageCount counts messages addressed to userID that are still unread.
func (s *Store) UnreadMessageCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.ReceiverID == userID && !m.IsRead {
			n++
		}
	}
	return n
}

// MarkMessagesAsRead flips IsRead for messages in the conversation received by
// userID. Messages userID sent are left alone. It returns how many changed.
func (s *Store) MarkMessagesAsRead(ctx context.Context, conversationID, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for i := range s.messages {
		m := &s.messages[i]
		if m.ConversationID == conversationID && m.ReceiverID == userID && !m.IsRead {
			m.IsRead = true
			changed++
		}
	}
	if changed > 0 {
		s.persist(ctx, KeyMessages, s.messages)
	}
	return changed
}

// --- Social feed ---

// Posts returns the feed, newest first.
func (s *Store) Posts() []domain.SocialPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SocialPost, len(s.posts))
	for i, p := range s.posts {
		out[i] = p.Clone()
	}
	return out
}

// AddPost prepends a post to the feed.
func (s *Store) AddPost(ctx context.Context, post domain.SocialPost) (domain.SocialPost, error) {
	if post.AuthorID == "" || post.Content == "" {
		return domain.SocialPost{}, fmt.Errorf("%w: author and content are required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.Type == "" {
		post.Type = domain.PostText
	}
	p := s.prependPostLocked(post)
	s.persist(ctx, KeyPosts, s.posts)
	return p.Clone(), nil
}

// prependPostLocked stamps and prepends without persisting. Caller holds s.mu.
func (s *Store) prependPostLocked(post domain.SocialPost) domain.SocialPost {
	p := post.Clone()
	p.ID = s.newID()
	p.CreatedAt = s.now()
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Comments == nil {
		p.Comments = []domain.Comment{}
	}
	s.posts = append([]domain.SocialPost{p}, s.posts...)
	return p
}

// LikePost toggles userID in the post's like set and reports whether the user
// now likes the post. Calling it twice undoes the first call.
func (s *Store) LikePost(ctx context.Context, postID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.postIndex(postID)
	if i < 0 {
		return false, ErrPostNotFound
	}
	p := &s.posts[i]
	liked := !containsString(p.Likes, userID)
	if liked {
		p.Likes = append(p.Likes, userID)
	} else {
		p.Likes = removeString(p.Likes, userID)
	}
	s.persist(ctx, KeyPosts, s.posts)
	return liked, nil
}

// AddComment appends a comment to a post.
func (s *Store) AddComment(ctx context.Context, postID string, comment domain.Comment) (domain.Comment, error) {
	if comment.AuthorID == "" || comment.Text == "" {
		return domain.Comment{}, fmt.Errorf("%w: author and text are required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.postIndex(postID)
	if i < 0 {
		return domain.Comment{}, ErrPostNotFound
	}
	c := comment
	c.ID = s.newID()
	c.CreatedAt = s.now()
	s.posts[i].Comments = append(s.posts[i].Comments, c)
	s.persist(ctx, KeyPosts, s.posts)
	return c, nil
}

func (s *Store) postIndex(id string) int {
	return indexOf(s.posts, func(p domain.SocialPost) bool { return p.ID == id })
}

// --- Announcements ---

func (s *Store) Announcements() []domain.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.announcements)
}

// AddAnnouncement prepends a gym-wide announcement.
func (s *Store) AddAnnouncement(ctx context.Context, a domain.Announcement) (domain.Announcement, error) {
	if a.Title == "" {
		return domain.Announcement{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.newID()
	a.CreatedAt = s.now()
	s.announcements = append([]domain.Announcement{a}, s.announcements...)
	s.persist(ctx, KeyAnnouncements, s.announcements)
	return a, nil
}
