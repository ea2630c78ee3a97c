package post

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Author is the structured author of a post. Clients may send either a
// plain name or a {firstName, lastName} object; both are stored in this form.
type Author struct {
	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName" bson:"lastName"`
}

var errAuthorShape = errors.New("`author` must be a string or an object with firstName/lastName")

// FullName is the display form of the author exposed to clients.
func (a Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// UnmarshalJSON accepts "Jane Doe" as well as {"firstName":"Jane","lastName":"Doe"}.
// A free-text name is kept verbatim in FirstName.
func (a *Author) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = Author{}
		return nil
	}
	switch b[0] {
	case '"':
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return errAuthorShape
		}
		*a = Author{FirstName: name}
		return nil
	case '{':
		type plain Author
		var p plain
		if err := json.Unmarshal(b, &p); err != nil {
			return errAuthorShape
		}
		*a = Author(p)
		return nil
	}
	return errAuthorShape
}

// Post is the stored blog post record.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Author      Author     `json:"author"`
	PublishDate *time.Time `json:"publishDate,omitempty"`
	Created     time.Time  `json:"created"`
}

// View is the wire representation of a post.
type View struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	PublishDate *time.Time `json:"publishDate,omitempty"`
	Created     time.Time  `json:"created"`
}

// Serialize flattens the post into its client-facing shape.
func (p *Post) Serialize() View {
	return View{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Author:      p.Author.FullName(),
		PublishDate: p.PublishDate,
		Created:     p.Created,
	}
}

// Clone returns a deep copy so stores never share memory with callers.
func (p *Post) Clone() *Post {
	c := *p
	if p.PublishDate != nil {
		t := *p.PublishDate
		c.PublishDate = &t
	}
	return &c
}

// Changes is the partial update applied by Update. Nil fields are left alone.
type Changes struct {
	Title   *string
	Content *string
	Author  *Author
}

// Empty reports whether the changeset touches no field.
func (c Changes) Empty() bool {
	return c.Title == nil && c.Content == nil && c.Author == nil
}

// Apply merges the changeset into p.
func (c Changes) Apply(p *Post) {
	if c.Title != nil {
		p.Title = *c.Title
	}
	if c.Content != nil {
		p.Content = *c.Content
	}
	if c.Author != nil {
		p.Author = *c.Author
	}
}

// Samples returns the two posts the service ships with for demos.
func Samples() []*Post {
	return []*Post{
		{Title: "My Day", Content: "It was a great day!", Author: Author{FirstName: "Svetlana"}},
		{Title: "Going to the Movies", Content: "We saw a great new movie called Titanic", Author: Author{FirstName: "Svetlana"}},
	}
}
