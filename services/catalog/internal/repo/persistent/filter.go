package persistent

import (
	"strings"

	"torrent-catalog/services/catalog/internal/entity"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const MaxListLimit = 100

var sortColumns = map[entity.SortField]string{
	entity.SortByCreatedAt: "created_at",
	entity.SortBySize:      "size",
	entity.SortByTitle:     "title",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a user substring into an ILIKE pattern matching it
// literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// OrderClause returns the ORDER BY for f, falling back to newest first for
// unknown columns.
func OrderClause(f entity.TorrentFilter) string {
	column, ok := sortColumns[f.SortField]
	if !ok {
		column = sortColumns[entity.SortByCreatedAt]
	}
	if f.Descending {
		return column + " DESC"
	}
	return column + " ASC"
}

// EffectiveLimit caps the page size at MaxListLimit.
func EffectiveLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func applyTorrentFilter(query *gorm.DB, f entity.TorrentFilter) *gorm.DB {
	if f.Title != "" {
		query = query.Where("title ILIKE ?", containsPattern(f.Title))
	}
	if f.Description != "" {
		query = query.Where("description ILIKE ?", containsPattern(f.Description))
	}
	if len(f.Categories) > 0 {
		query = query.Where("categories && ?", pq.Array(f.Categories))
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at < ?", *f.To)
	}
	if f.MinSize != nil {
		query = query.Where("size >= ?", *f.MinSize)
	}
	if f.MaxSize != nil {
		query = query.Where("size <= ?", *f.MaxSize)
	}

	return query.Order(OrderClause(f)).Limit(EffectiveLimit(f.Limit))
}
