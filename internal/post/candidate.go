package post

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedBody is returned for a body that is not valid JSON.
var ErrMalformedBody = errors.New("malformed JSON in request body")

// publishDate layouts, tried in order.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02"}

// Candidate is a decoded request body. It remembers which keys the client
// actually sent, because validation is about key presence, not values.
type Candidate struct {
	ID          string
	Title       string
	Content     string
	Author      Author
	PublishDate *time.Time

	present map[string]bool
}

// DecodeCandidate parses a JSON object body. An empty body decodes as {}.
func DecodeCandidate(body []byte) (*Candidate, error) {
	c := &Candidate{present: map[string]bool{}}
	if len(bytes.TrimSpace(body)) == 0 {
		return c, nil
	}
	if !json.Valid(body) {
		return nil, ErrMalformedBody
	}
	if err := json.Unmarshal(body, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Has reports whether field was a key of the request body.
func (c *Candidate) Has(field string) bool {
	return c.present[field]
}

func (c *Candidate) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("request body must be a JSON object")
	}
	if raw == nil {
		return fmt.Errorf("request body must be a JSON object")
	}
	c.present = make(map[string]bool, len(raw))
	for k := range raw {
		c.present[k] = true
	}
	if v, ok := raw["id"]; ok {
		// only a string id can ever match a path id
		_ = json.Unmarshal(v, &c.ID)
	}
	var err error
	if v, ok := raw["title"]; ok {
		if c.Title, err = scalarString(v); err != nil {
			return fmt.Errorf("`title` must be a string")
		}
	}
	if v, ok := raw["content"]; ok {
		if c.Content, err = scalarString(v); err != nil {
			return fmt.Errorf("`content` must be a string")
		}
	}
	if v, ok := raw["author"]; ok {
		if err := c.Author.UnmarshalJSON(v); err != nil {
			return err
		}
	}
	if v, ok := raw["publishDate"]; ok {
		c.PublishDate = parseDate(v)
	}
	return nil
}

// scalarString casts a JSON scalar to text: strings as-is, numbers and
// booleans by their literal, null as "". Objects and arrays are rejected.
func scalarString(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	switch {
	case len(v) == 0:
		return "", nil
	case v[0] == '"':
		var s string
		err := json.Unmarshal(v, &s)
		return s, err
	case v[0] == '{' || v[0] == '[':
		return "", fmt.Errorf("not a scalar")
	case bytes.Equal(v, []byte("null")):
		return "", nil
	}
	return string(v), nil
}

// parseDate is best effort; an unrecognised value yields nil.
func parseDate(v json.RawMessage) *time.Time {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// Post builds a new record from the candidate. Id and created are left for the store.
func (c *Candidate) Post() *Post {
	return &Post{
		Title:       c.Title,
		Content:     c.Content,
		Author:      c.Author,
		PublishDate: c.PublishDate,
	}
}

// Changes returns the updatable fields the client sent.
func (c *Candidate) Changes() Changes {
	var ch Changes
	if c.Has("title") {
		t := c.Title
		ch.Title = &t
	}
	if c.Has("content") {
		s := c.Content
		ch.Content = &s
	}
	if c.Has("author") {
		a := c.Author
		ch.Author = &a
	}
	return ch
}
