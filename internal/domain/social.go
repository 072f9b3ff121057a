package domain

import "time"

// Notification belongs to one user; only IsRead changes after creation.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is a direct message inside a two-party conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
	IsRead         bool      `json:"isRead"`
}

type PostType string

const (
	PostText        PostType = "text"
	PostAchievement PostType = "achievement"
)

type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// SocialPost is a feed entry. Likes is a set of user IDs.
type SocialPost struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"authorId"`
	Type          PostType  `json:"type"`
	Content       string    `json:"content"`
	AchievementID string    `json:"achievementId,omitempty"`
	Likes         []string  `json:"likes"`
	Comments      []Comment `json:"comments"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (p SocialPost) Clone() SocialPost {
	p.Likes = append([]string(nil), p.Likes...)
	p.Comments = append([]Comment(nil), p.Comments...)
	return p
}

type Announcement struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
