package releases

import (
	"time"

	"github.com/anoixa/comic-tracker/database/models"
	"github.com/anoixa/comic-tracker/utils"
)

// View release 的对外表示
type View struct {
	ID       uint      `json:"id"`
	Comic    string    `json:"comic,omitempty"`
	PubDate  string    `json:"pub_date"`
	StripID  uint      `json:"strip_id"`
	StripURL string    `json:"strip_url"`
	Checksum string    `json:"checksum,omitempty"`
	MimeType string    `json:"mime_type,omitempty"`
	Title    string    `json:"title,omitempty"`
	Text     string    `json:"text,omitempty"`
	Fetched  time.Time `json:"fetched,omitempty"`
}

// NewView 转换 release，Comic 和 Strip 未加载时对应字段留空
func NewView(r *models.Release, baseURL string) View {
	v := View{
		ID:       r.ID,
		Comic:    r.Comic.Slug,
		PubDate:  r.Date().Format(utils.DateLayout),
		StripID:  r.StripID,
		StripURL: utils.BuildStripURL(baseURL, r.StripID),
	}
	if r.Strip.ID != 0 {
		v.Checksum = r.Strip.Checksum
		v.MimeType = r.Strip.MimeType
		v.Title = r.Strip.Title
		v.Text = r.Strip.Text
		v.Fetched = r.Strip.Fetched
	}
	return v
}

// NewViews 批量转换
func NewViews(list []*models.Release, baseURL string) []View {
	views := make([]View, len(list))
	for i, r := range list {
		views[i] = NewView(r, baseURL)
	}
	return views
}
