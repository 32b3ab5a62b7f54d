package models

// RawProfile mirrors the user-service JSON payload. Field names vary between
// backend versions, so every alias the server has ever used is decoded here and
// collapsed by profile.Normalize. Raw payloads never travel past that boundary.
type RawProfile struct {
	ID                any               `json:"id"`
	FullName          string            `json:"fullName"`
	FirstName         string            `json:"firstName"`
	LastName          string            `json:"lastName"`
	Headline          string            `json:"headline"`
	CurrentPosition   string            `json:"currentPosition"`
	Title             string            `json:"title"`
	CurrentCompany    string            `json:"currentCompany"`
	Company           string            `json:"company"`
	Location          string            `json:"location"`
	Industry          string            `json:"industry"`
	Bio               string            `json:"bio"`
	Summary           string            `json:"summary"`
	About             string            `json:"about"`
	Skills            []string          `json:"skills"`
	WorkExperiences   []ExperienceEntry `json:"workExperiences"`
	WorkExperience    []ExperienceEntry `json:"workExperience"`
	Education         []EducationEntry  `json:"education"`
	ProfilePictureURL string            `json:"profilePictureUrl"`
	HeaderImage       string            `json:"headerImage"`
	ProfileViews      int               `json:"profileViews"`
	Followers         int               `json:"followers"`
}

// ExperienceEntry is one work history item in display order.
type ExperienceEntry struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	Location  string `json:"location"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Current   bool   `json:"current"`
	Summary   string `json:"description"`
}

// EducationEntry is one education history item in display order.
type EducationEntry struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy"`
	StartYear    string `json:"startYear"`
	EndYear      string `json:"endYear"`
}

// ProfileRecord is the canonical profile projection used by every screen.
// ID is immutable once set; everything else is replaceable.
type ProfileRecord struct {
	ID           string
	DisplayName  string
	Headline     string
	Company      string
	Location     string
	About        string
	Skills       []string
	Experience   []ExperienceEntry
	Education    []EducationEntry
	AvatarRef    string // absolute URL, relative path, or "" for no image
	BannerRef    string
	ProfileViews int
	Followers    int
}

// MaxSkills caps the skills list per profile.
const MaxSkills = 15

// PrivacySettings mirrors the user-service privacy-settings DTO.
type PrivacySettings struct {
	ID                      int64 `json:"id,omitempty"`
	ProfileVisible          bool  `json:"profileVisible"`
	ShowEmail               bool  `json:"showEmail"`
	ShowPhone               bool  `json:"showPhone"`
	ShowDateOfBirth         bool  `json:"showDateOfBirth"`
	ShowWorkExperience      bool  `json:"showWorkExperience"`
	ShowEducation           bool  `json:"showEducation"`
	ShowCertifications      bool  `json:"showCertifications"`
	AllowSearchByEmail      bool  `json:"allowSearchByEmail"`
	AllowSearchByPhone      bool  `json:"allowSearchByPhone"`
	AllowConnectionRequests bool  `json:"allowConnectionRequests"`
	AllowMessages           bool  `json:"allowMessages"`
}

// ProfileCompletion mirrors the user-service completion DTO.
type ProfileCompletion struct {
	CompletionPercentage int      `json:"completionPercentage"`
	IsComplete           bool     `json:"isComplete"`
	MissingFields        []string `json:"missingFields"`
}

// SearchQuery is the payload for POST /users/search.
type SearchQuery struct {
	Keyword            string   `json:"keyword,omitempty"`
	Location           string   `json:"location,omitempty"`
	Industry           string   `json:"industry,omitempty"`
	Skills             []string `json:"skills,omitempty"`
	Company            string   `json:"company,omitempty"`
	Institution        string   `json:"institution,omitempty"`
	MinExperienceYears int      `json:"minExperienceYears,omitempty"`
	MaxExperienceYears int      `json:"maxExperienceYears,omitempty"`
	Page               int      `json:"page,omitempty"`
	Size               int      `json:"size,omitempty"`
}
