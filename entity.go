package threads

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the entity variants sharing the base id/author/content
// shape.
type Kind string

const (
	KindPost    Kind = "post"
	KindAnswer  Kind = "answer"
	KindComment Kind = "comment"
	KindReply   Kind = "reply"
)

// Identifiable is the only contract the generic collection machinery places on
// an entity: a stable string id, unique within its collection.
type Identifiable interface {
	EntityID() string
}

// Session is the caller identity supplied by the authentication collaborator.
// A nil *Session means signed out; every write intent must short-circuit into
// ErrSignInRequired before any local state changes.
type Session struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Author is the embedded author projection carried by every entity. Expert
// marks authoritative authors, which ranks their answers ahead of ordinary
// ones (see AnswerLess).
type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image,omitempty"`
	Expert bool   `json:"expert,omitempty"`
}

// LikeState pairs the session-local liked flag with the server-owned count.
type LikeState struct {
	Liked bool `json:"isLiked"`
	Count int  `json:"likes"`
}

// HelpfulState mirrors LikeState for answer helpful-votes.
type HelpfulState struct {
	Marked bool `json:"isHelpful"`
	Count  int  `json:"helpfulCount"`
}

// ReviewStatus is the moderation review state of an answer.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Post is the root content unit. IsAdopted is true iff some child answer is
// adopted. ChildCount tracks answers for questions and comments otherwise.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"content"`
	Tags       []string  `json:"tags,omitempty"`
	Author     Author    `json:"author"`
	IsQuestion bool      `json:"isQuestion"`
	IsAdopted  bool      `json:"isAdopted"`
	Like       LikeState `json:"likeState"`
	Bookmarked bool      `json:"isBookmarked"`
	ChildCount int       `json:"commentCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (p Post) EntityID() string { return p.ID }

// Answer is a child of exactly one question post.
type Answer struct {
	ID        string       `json:"id"`
	PostID    string       `json:"postId"`
	Body      string       `json:"content"`
	Author    Author       `json:"author"`
	Helpful   HelpfulState `json:"helpfulState"`
	IsAdopted bool         `json:"isAdopted"`
	Review    ReviewStatus `json:"reviewStatus,omitempty"`
	Replies   []Reply      `json:"replies,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (a Answer) EntityID() string { return a.ID }

// Comment is a child of exactly one non-question post. Replies nest one level
// only; a reply never owns further replies.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Body      string    `json:"content"`
	Author    Author    `json:"author"`
	Like      LikeState `json:"likeState"`
	Replies   []Reply   `json:"replies,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c Comment) EntityID() string { return c.ID }

// Reply is the leaf entity attached to an answer or comment.
type Reply struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId"`
	Body      string    `json:"content"`
	Author    Author    `json:"author"`
	Like      LikeState `json:"likeState"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r Reply) EntityID() string { return r.ID }

// tempIDPrefix keeps locally assigned ids in a namespace disjoint from server
// ids until creation is confirmed.
const tempIDPrefix = "tmp-"

// NewTempID returns a provisional entity id. An entity carrying a temp id is
// its own "saving" indicator; once the server confirms creation the temp id no
// longer exists in the collection.
func NewTempID() string {
	return tempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id belongs to the provisional namespace.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// ToggleLike returns a copy of p with the like flag flipped and the count
// adjusted. The receiver is not modified.
func (p Post) ToggleLike() Post {
	p.Like = p.Like.toggle()
	return p
}

// ToggleBookmark returns a copy of p with the bookmark flag flipped.
func (p Post) ToggleBookmark() Post {
	p.Bookmarked = !p.Bookmarked
	return p
}

// AddChildren returns a copy of p with ChildCount adjusted by delta, floored
// at zero.
func (p Post) AddChildren(delta int) Post {
	p.ChildCount += delta
	if p.ChildCount < 0 {
		p.ChildCount = 0
	}
	return p
}

// ToggleHelpful returns a copy of a with the helpful-vote flipped.
func (a Answer) ToggleHelpful() Answer {
	if a.Helpful.Marked {
		a.Helpful.Marked = false
		if a.Helpful.Count > 0 {
			a.Helpful.Count--
		}
	} else {
		a.Helpful.Marked = true
		a.Helpful.Count++
	}
	return a
}

// ToggleLike returns a copy of c with the like flipped.
func (c Comment) ToggleLike() Comment {
	c.Like = c.Like.toggle()
	return c
}

// ToggleLike returns a copy of r with the like flipped.
func (r Reply) ToggleLike() Reply {
	r.Like = r.Like.toggle()
	return r
}

func (s LikeState) toggle() LikeState {
	if s.Liked {
		s.Liked = false
		if s.Count > 0 {
			s.Count--
		}
		return s
	}
	s.Liked = true
	s.Count++
	return s
}
