package usecase

import (
	"strings"
	"time"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

const (
	DefaultPageSize = 10
	pageWindowSize  = 7
)

type FilterCriteria struct {
	Query    string     `json:"query"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
}

func DefaultCriteria() FilterCriteria {
	return FilterCriteria{Page: 1, PageSize: DefaultPageSize}
}

// FilterUpdate carries only what the user changed. A nil pointer means
// "keep"; the Set flags distinguish clearing a date bound from keeping it.
type FilterUpdate struct {
	Query       *string
	Page        *int
	SetDateFrom bool
	DateFrom    *time.Time
	SetDateTo   bool
	DateTo      *time.Time
}

// Apply returns the criteria after the update. Changing the query or either
// date bound sends the user back to page 1.
func (c FilterCriteria) Apply(u FilterUpdate) FilterCriteria {
	next := c
	reset := false

	if u.Query != nil && *u.Query != c.Query {
		next.Query = *u.Query
		reset = true
	}
	if u.SetDateFrom && !sameTime(u.DateFrom, c.DateFrom) {
		next.DateFrom = u.DateFrom
		reset = true
	}
	if u.SetDateTo && !sameTime(u.DateTo, c.DateTo) {
		next.DateTo = u.DateTo
		reset = true
	}

	switch {
	case reset:
		next.Page = 1
	case u.Page != nil:
		next.Page = *u.Page
	}
	if next.Page < 1 {
		next.Page = 1
	}
	if next.PageSize <= 0 {
		next.PageSize = DefaultPageSize
	}
	return next
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// View is the filtered, paginated slice of the collection the user sees.
// Rows[i] is the display projection of Items[i].
type View struct {
	Items      []entity.Lead `json:"items"`
	Rows       []Row         `json:"rows"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	PageCount  int           `json:"page_count"`
	PageWindow []int         `json:"page_window"`
}

// BuildView derives the visible page. It is pure: leads is not modified and
// nothing is cached between calls.
func BuildView(leads []entity.Lead, profile entity.ProviderProfile, c FilterCriteria) View {
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	// 1. Text filter
	query := strings.ToLower(strings.TrimSpace(c.Query))
	fields := profile.SearchFields()

	// 2. Date filter
	useDates := profile.DateFilter && (c.DateFrom != nil || c.DateTo != nil)
	var from, to time.Time
	if useDates {
		if c.DateFrom != nil {
			from = *c.DateFrom
		}
		if c.DateTo != nil {
			to = endOfDay(*c.DateTo)
		}
	}

	filtered := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		if l.Deactivated {
			continue
		}
		if query != "" && !strings.Contains(searchText(l, fields), query) {
			continue
		}
		if useDates {
			ts, ok := l.Timestamp(profile.TimestampField)
			if !ok {
				continue
			}
			if c.DateFrom != nil && ts.Before(from) {
				continue
			}
			if c.DateTo != nil && ts.After(to) {
				continue
			}
		}
		filtered = append(filtered, l)
	}

	// 3. Paginate
	total := len(filtered)
	pageCount := (total + pageSize - 1) / pageSize
	page := c.Page
	if page > pageCount {
		page = pageCount
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	items := make([]entity.Lead, 0, end-start)
	rows := make([]Row, 0, end-start)
	for _, l := range filtered[start:end] {
		items = append(items, l.Clone())
		rows = append(rows, RowFor(l, profile))
	}

	return View{
		Items:      items,
		Rows:       rows,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		PageCount:  pageCount,
		PageWindow: PageWindow(page, pageCount), // 4.
	}
}

// PageWindow returns min(7, pageCount) consecutive page numbers around page,
// shifted at the edges so the window is always full.
func PageWindow(page, pageCount int) []int {
	if pageCount <= 0 {
		return []int{}
	}
	size := pageWindowSize
	if pageCount < size {
		size = pageCount
	}

	start := page - size/2
	if start < 1 {
		start = 1
	}
	if start+size-1 > pageCount {
		start = pageCount - size + 1
	}

	window := make([]int, size)
	for i := range window {
		window[i] = start + i
	}
	return window
}

// Row is what the lead table shows for one lead. Fields the provider did
// not send read "N/A".
type Row struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func RowFor(l entity.Lead, p entity.ProviderProfile) Row {
	return Row{
		Name:      displayName(l, p.NameFields),
		Email:     l.Display(p.EmailField),
		Phone:     l.Display(p.PhoneField),
		Status:    l.Display(p.StatusField),
		CreatedAt: displayTime(l, p.TimestampField),
	}
}

func displayName(l entity.Lead, fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if v := strings.TrimSpace(l.Text(f)); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return entity.NotAvailable
	}
	return strings.Join(parts, " ")
}

// displayTime normalizes parseable timestamps to UTC minutes and shows
// anything else as sent.
func displayTime(l entity.Lead, field string) string {
	if ts, ok := l.Timestamp(field); ok {
		return ts.UTC().Format("2006-01-02 15:04")
	}
	return l.Display(field)
}

func searchText(l entity.Lead, fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, l.Text(f))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// endOfDay widens a bare date to cover the whole day.
func endOfDay(t time.Time) time.Time {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}
