package profile

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"networkpro-client/internal/models"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize collapses a raw user-service payload into the canonical
// ProfileRecord. Older backend versions used different field names for the
// same data, so each canonical field drains its alias chain in order.
func Normalize(raw models.RawProfile) models.ProfileRecord {
	record := models.ProfileRecord{
		ID:           normalizeID(raw.ID),
		DisplayName:  displayName(raw),
		Headline:     firstNonEmpty(raw.Headline, raw.CurrentPosition, raw.Title),
		Company:      firstNonEmpty(raw.CurrentCompany, raw.Company),
		Location:     raw.Location,
		About:        firstNonEmpty(raw.Bio, raw.Summary, raw.About),
		Skills:       dedupeSkills(raw.Skills),
		Education:    raw.Education,
		AvatarRef:    raw.ProfilePictureURL,
		BannerRef:    raw.HeaderImage,
		ProfileViews: raw.ProfileViews,
		Followers:    raw.Followers,
	}

	record.Experience = raw.WorkExperiences
	if len(record.Experience) == 0 {
		record.Experience = raw.WorkExperience
	}

	return record
}

// displayName builds the name from fullName, else first + last, else a
// placeholder.
func displayName(raw models.RawProfile) string {
	if name := strings.TrimSpace(raw.FullName); name != "" {
		return name
	}
	first := strings.TrimSpace(raw.FirstName)
	last := strings.TrimSpace(raw.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	}
	return "Unknown User"
}

// normalizeID renders the backend id, numeric or string, as an opaque string.
func normalizeID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// dedupeSkills keeps the first occurrence of each skill, preserving order.
func dedupeSkills(skills []string) []string {
	if len(skills) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		normalized := NormalizeSkill(skill)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}

// NormalizeSkill trims and collapses internal whitespace.
func NormalizeSkill(skill string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(skill, " "))
}

// ValidSkill reports whether a normalized skill is within the accepted
// length bounds. Length is measured in characters, not bytes.
func ValidSkill(skill string) bool {
	n := utf8.RuneCountInString(skill)
	return n >= 1 && n <= 50
}
