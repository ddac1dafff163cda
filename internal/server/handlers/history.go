package handlers

import (
	"context"

	"github.com/maruel/blogdb/internal/history"
	"github.com/maruel/blogdb/internal/server/dto"
)

// HistoryHandler serves the log of changes to the table files.
type HistoryHandler struct {
	repo  *history.Repo
	files map[string]string
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(svc *Services) *HistoryHandler {
	return &HistoryHandler{repo: svc.History, files: svc.Files}
}

// ListHistory returns recent commits, optionally restricted to one table.
func (h *HistoryHandler) ListHistory(ctx context.Context, req *dto.ListHistoryRequest) (*dto.ListHistoryResponse, error) {
	if h.repo == nil {
		return nil, dto.NotImplemented("history")
	}
	file := ""
	if req.Table != "" {
		var ok bool
		if file, ok = h.files[req.Table]; !ok {
			return nil, dto.NotFound("table").WithDetail("table", req.Table)
		}
	}
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}
	commits, err := h.repo.Log(ctx, file, limit)
	if err != nil {
		return nil, dto.InternalWithError("Failed to read history", err)
	}
	out := make([]dto.CommitResponse, 0, len(commits))
	for _, c := range commits {
		out = append(out, commitToResponse(c))
	}
	return &dto.ListHistoryResponse{Commits: out}, nil
}
