package net

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"InkPDF/internal/export"
	"InkPDF/internal/ink"
	"InkPDF/internal/state"
)

// Host message types.
const (
	TypeGetPathData     = "getPathData"
	TypeLoadPathData    = "loadPathData"
	TypeGetBase64       = "getBase64"
	TypeClearAll        = "clearAll"
	TypeSetPage         = "setPage"
	TypeSession         = "session"
	TypePathDataChanged = "pathDataChanged"
)

type flattenRequest struct {
	Pages []export.PageSize `json:"pages"`
}

type clearRequest struct {
	// Confirmed must be set once the host has asked the user.
	Confirmed bool `json:"confirmed"`
}

type clearReply struct {
	Cleared bool `json:"cleared"`
}

type pageRequest struct {
	Page      int     `json:"page"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	PageCount int     `json:"pageCount,omitempty"`
}

type sessionReply struct {
	Session string   `json:"session"`
	Types   []string `json:"types"`
}

// RegisterEngine wires the viewer's host calls to e. pages supplies the
// document's page sizes when a flatten request does not carry them.
// onPage, when set, is told about page switches the host makes, so a
// local view can follow.
func RegisterEngine(b *Bridge, e *ink.Engine, pages func() []export.PageSize, onPage func(number int)) {
	b.Handle(TypeGetPathData, func(ctx context.Context, _ json.RawMessage) (any, error) {
		data, err := e.PathData()
		if err != nil {
			return nil, err
		}
		return json.RawMessage(data), nil
	})

	b.Handle(TypeLoadPathData, func(ctx context.Context, value json.RawMessage) (any, error) {
		return e.LoadPathData(value)
	})

	b.Handle(TypeGetBase64, func(ctx context.Context, value json.RawMessage) (any, error) {
		var req flattenRequest
		if len(value) > 0 {
			if err := json.Unmarshal(value, &req); err != nil {
				return nil, fmt.Errorf("decode flatten request: %w", err)
			}
		}
		if len(req.Pages) == 0 && pages != nil {
			req.Pages = pages()
		}
		data, err := e.Flatten(req.Pages)
		if err != nil {
			return nil, err
		}
		return base64.StdEncoding.EncodeToString(data), nil
	})

	b.Handle(TypeClearAll, func(ctx context.Context, value json.RawMessage) (any, error) {
		var req clearRequest
		if len(value) > 0 {
			if err := json.Unmarshal(value, &req); err != nil {
				return nil, fmt.Errorf("decode clear request: %w", err)
			}
		}
		ok := e.ClearAll(ink.ConfirmFunc(func(string) bool { return req.Confirmed }))
		return clearReply{Cleared: ok}, nil
	})

	b.Handle(TypeSetPage, func(ctx context.Context, value json.RawMessage) (any, error) {
		var req pageRequest
		if err := json.Unmarshal(value, &req); err != nil {
			return nil, fmt.Errorf("decode page request: %w", err)
		}
		if req.PageCount > 0 {
			e.SetPageCount(req.PageCount)
		}
		e.SetPage(req.Page, req.Width, req.Height)
		if onPage != nil {
			onPage(req.Page)
		}
		return nil, nil
	})

	b.Handle(TypeSession, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return sessionReply{Session: state.SessionID, Types: b.Types()}, nil
	})
}
