package http

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"torrent-catalog/services/catalog/internal/entity"
)

const dateLayout = "2006-01-02"

// ParseTorrentFilter reads the search query. Malformed dates and sizes are
// ignored rather than rejected; toDate includes the whole day.
func ParseTorrentFilter(q url.Values) entity.TorrentFilter {
	f := entity.TorrentFilter{
		Title:       strings.TrimSpace(q.Get("title")),
		Description: strings.TrimSpace(q.Get("description")),
		SortField:   entity.SortByCreatedAt,
		Descending:  true,
	}

	if raw := q.Get("categories"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				f.Categories = append(f.Categories, c)
			}
		}
	}

	if from, err := time.Parse(dateLayout, q.Get("fromDate")); err == nil {
		f.From = &from
	}
	if to, err := time.Parse(dateLayout, q.Get("toDate")); err == nil {
		end := to.AddDate(0, 0, 1)
		f.To = &end
	}

	if v, err := strconv.ParseFloat(q.Get("minSize"), 64); err == nil {
		f.MinSize = &v
	}
	if v, err := strconv.ParseFloat(q.Get("maxSize"), 64); err == nil {
		f.MaxSize = &v
	}

	switch entity.SortField(q.Get("sort")) {
	case entity.SortBySize:
		f.SortField = entity.SortBySize
	case entity.SortByTitle:
		f.SortField = entity.SortByTitle
	}
	if strings.EqualFold(q.Get("order"), "asc") {
		f.Descending = false
	}

	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		f.Limit = limit
	}

	return f
}
