package comics

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/anoixa/comic-tracker/internal/comics"
	"github.com/anoixa/comic-tracker/internal/releases"
	"github.com/anoixa/comic-tracker/internal/schedule"
	"github.com/anoixa/comic-tracker/utils"
)

// StatusInvalidator 漫画变更后使状态报表失效
type StatusInvalidator interface {
	Invalidate(ctx context.Context) error
	Today() time.Time
	DefaultDays() int
}

// Handler 漫画处理器
type Handler struct {
	registry  *comics.Registry
	ledger    *releases.Ledger
	schedules *schedule.Inferencer
	status    StatusInvalidator
	baseURL   string
}

// NewHandler 创建漫画处理器
func NewHandler(registry *comics.Registry, ledger *releases.Ledger, schedules *schedule.Inferencer, status StatusInvalidator, baseURL string) *Handler {
	return &Handler{
		registry:  registry,
		ledger:    ledger,
		schedules: schedules,
		status:    status,
		baseURL:   baseURL,
	}
}

func (h *Handler) invalidate(ctx context.Context) {
	if err := h.status.Invalidate(ctx); err != nil {
		log.Printf("[comics] failed to invalidate status reports: %v", err)
	}
}

// comicRequest 创建或更新漫画的请求体，日期格式 yyyy-mm-dd
type comicRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Slug      string `json:"slug" binding:"omitempty,max=100"`
	Language  string `json:"language" binding:"omitempty,oneof=en no"`
	URL       string `json:"url" binding:"omitempty,max=255"`
	Rights    string `json:"rights" binding:"omitempty,max=100"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Active    *bool  `json:"active"`
}

func (r *comicRequest) toInput() (comics.Input, error) {
	in := comics.Input{
		Name:     strings.TrimSpace(r.Name),
		Slug:     strings.TrimSpace(r.Slug),
		Language: r.Language,
		URL:      strings.TrimSpace(r.URL),
		Rights:   strings.TrimSpace(r.Rights),
		Active:   r.Active,
	}

	var err error
	if in.StartDate, err = parseOptionalDate(r.StartDate); err != nil {
		return in, err
	}
	if in.EndDate, err = parseOptionalDate(r.EndDate); err != nil {
		return in, err
	}
	return in, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
