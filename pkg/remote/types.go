// Package remote defines the request/response boundary with the discussion
// platform's HTTP API. The backend owns the wire format; this package owns
// decoding it into typed pages and entities, classifying failures, and pacing
// outbound requests.
package remote

import "encoding/json"

// PageRequest describes one page fetch. When Cursor is set it is used
// verbatim and Page is ignored; otherwise the numeric page applies.
type PageRequest struct {
	Page   int
	Limit  int
	Cursor string
}

// Pagination is the server-reported position block accompanying every list
// response.
type Pagination struct {
	Page       int `json:"page" validate:"gte=0"`
	Limit      int `json:"limit" validate:"gte=0"`
	Total      int `json:"total" validate:"gte=0"`
	TotalPages int `json:"totalPages" validate:"gte=0"`
}

// Meta carries optional cursor-style continuation hints. HasMore is a
// pointer so "absent" stays distinguishable from "false".
type Meta struct {
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    *bool  `json:"hasMore,omitempty"`
}

// Page is one decoded list response.
type Page[E any] struct {
	Items      []E
	Pagination Pagination
	Meta       Meta
}

// envelope is the raw response shape shared by list and mutation endpoints.
// Data stays raw until the caller knows its concrete type.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination,omitempty"`
	Meta       *Meta           `json:"meta,omitempty"`
	Error      string          `json:"error,omitempty"`
	Code       string          `json:"code,omitempty"`
}
