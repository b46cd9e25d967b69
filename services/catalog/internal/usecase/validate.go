package usecase

import (
	"strings"
	"unicode/utf8"

	"torrent-catalog/services/catalog/internal/entity"
)

// NormalizeText trims text and cuts it to MaxCommentLen characters.
func NormalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if utf8.RuneCountInString(text) > entity.MaxCommentLen {
		text = strings.TrimSpace(string([]rune(text)[:entity.MaxCommentLen]))
	}
	return text, nil
}

func ValidateRating(rating int) error {
	if rating < entity.MinRating || rating > entity.MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// ValidateComment checks and normalizes a new comment before anything is
// written.
func ValidateComment(text string, rating int) (string, error) {
	if err := ValidateRating(rating); err != nil {
		return "", err
	}
	return NormalizeText(text)
}

// ValidatePatch normalizes an edit. At least one field must be present.
func ValidatePatch(patch entity.CommentPatch) (entity.CommentPatch, error) {
	if patch.Empty() {
		return patch, ErrNothingToUpdate
	}

	out := entity.CommentPatch{}
	if patch.Rating != nil {
		if err := ValidateRating(*patch.Rating); err != nil {
			return patch, err
		}
		rating := *patch.Rating
		out.Rating = &rating
	}
	if patch.Text != nil {
		text, err := NormalizeText(*patch.Text)
		if err != nil {
			return patch, err
		}
		out.Text = &text
	}
	return out, nil
}

// NormalizeCategories trims entries and drops blanks and duplicates, keeping
// the first occurrence order.
func NormalizeCategories(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ValidateTorrent checks and normalizes torrent metadata in place.
func ValidateTorrent(t *entity.Torrent) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return ErrEmptyTitle
	}
	if t.Size < 0 {
		return ErrInvalidSize
	}
	t.Description = strings.TrimSpace(t.Description)
	t.Categories = NormalizeCategories(t.Categories)
	return nil
}
