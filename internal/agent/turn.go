// Package agent integrates knowledge base retrieval into the conversational
// turn lifecycle: transcript mirroring, context injection, and response teeing.
package agent

import "strings"

// Role identifies the speaker of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

type contentKind int

const (
	contentPlain contentKind = iota
	contentParts
)

// Content is a tagged variant over a turn's message body: either a plain
// string or a list of parts. The kind survives rewriting so downstream
// consumers see the shape they produced.
type Content struct {
	kind  contentKind
	plain string
	parts []string
}

// PlainContent wraps a single string body.
func PlainContent(text string) Content {
	return Content{kind: contentPlain, plain: text}
}

// PartsContent wraps a multi-part body.
func PartsContent(parts ...string) Content {
	return Content{kind: contentParts, parts: parts}
}

// IsParts reports whether the content is the multi-part variant.
func (c Content) IsParts() bool {
	return c.kind == contentParts
}

// Text flattens the content to a single string. Parts are joined with a
// space, skipping blank entries.
func (c Content) Text() string {
	if c.kind == contentPlain {
		return c.plain
	}
	kept := make([]string, 0, len(c.parts))
	for _, part := range c.parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}

// Turn is one in-flight conversational message.
type Turn struct {
	Role    Role
	Content Content
}

// Rewrite replaces the turn's body with text, preserving the content shape:
// a multi-part body becomes a single-element part list, a plain body stays
// plain.
func (t *Turn) Rewrite(text string) {
	if t.Content.IsParts() {
		t.Content = PartsContent(text)
		return
	}
	t.Content = PlainContent(text)
}
