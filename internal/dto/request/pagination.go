package request

import "stay-nest/pkg/utils"

type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"limit" validate:"min=1,max=100"`
}

// NewPaginatedRequest clamps raw query values into a valid page.
func NewPaginatedRequest(page, perPage, defaultPerPage int) *PaginatedRequest {
	page, perPage = utils.NormalizePage(page, perPage, defaultPerPage)
	return &PaginatedRequest{Page: page, PerPage: perPage}
}

func (p PaginatedRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

func (p PaginatedRequest) Limit() int {
	if p.PerPage < 1 {
		return utils.DefaultPerPage
	}
	if p.PerPage > utils.MaxPerPage {
		return utils.MaxPerPage
	}
	return p.PerPage
}
