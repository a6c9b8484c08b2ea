package models

type MatchStatus string

const (
	MatchFull    MatchStatus = "match"
	MatchPartial MatchStatus = "partial"
	MatchMissing MatchStatus = "missing"
)

type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

type CVSection string

const (
	SectionSummary    CVSection = "summary"
	SectionExperience CVSection = "experience"
	SectionSkills     CVSection = "skills"
	SectionProjects   CVSection = "projects"
	SectionOther      CVSection = "other"
)

type KeywordPlacement string

const (
	PlacementCV       KeywordPlacement = "cv"
	PlacementLinkedIn KeywordPlacement = "linkedin"
	PlacementBoth     KeywordPlacement = "both"
)

// MatchItem is one scored requirement of the posting.
type MatchItem struct {
	Requirement string      `json:"requirement" mapstructure:"requirement"`
	Status      MatchStatus `json:"status" mapstructure:"status" validate:"oneof=match partial missing"`
	Evidence    []string    `json:"evidence" mapstructure:"evidence"`
}

// GapItem is a deficiency of the candidate, independent of any single requirement.
type GapItem struct {
	Gap      string   `json:"gap" mapstructure:"gap"`
	Impact   Level    `json:"impact" mapstructure:"impact" validate:"oneof=high medium low"`
	HowToFix []string `json:"how_to_fix" mapstructure:"how_to_fix"`
}

type SuggestionItem struct {
	Section  CVSection `json:"section" mapstructure:"section" validate:"oneof=summary experience skills projects other"`
	Change   string    `json:"change" mapstructure:"change"`
	Reason   string    `json:"reason" mapstructure:"reason"`
	Priority Level     `json:"priority" mapstructure:"priority" validate:"oneof=high medium low"`
}

// LinkedInSuggestionItem keeps the section free-form: LinkedIn profile areas
// do not map onto CV sections.
type LinkedInSuggestionItem struct {
	Section  string `json:"section" mapstructure:"section"`
	Change   string `json:"change" mapstructure:"change"`
	Reason   string `json:"reason" mapstructure:"reason"`
	Priority Level  `json:"priority" mapstructure:"priority" validate:"oneof=high medium low"`
}

type ATSKeywordItem struct {
	Keyword    string           `json:"keyword" mapstructure:"keyword"`
	WhereToAdd KeywordPlacement `json:"where_to_add" mapstructure:"where_to_add" validate:"oneof=cv linkedin both"`
	Note       string           `json:"note" mapstructure:"note"`
}

// FitCore is the first-stage LLM answer. Its FitScore is advisory and never
// reaches the final report.
type FitCore struct {
	FitScore        int         `json:"fit_score" mapstructure:"fit_score" validate:"min=0,max=100"`
	Confidence      Level       `json:"confidence" mapstructure:"confidence" validate:"oneof=low medium high"`
	MustHaveMatch   []MatchItem `json:"must_have_match" mapstructure:"must_have_match" validate:"dive"`
	NiceToHaveMatch []MatchItem `json:"nice_to_have_match" mapstructure:"nice_to_have_match" validate:"dive"`
	Gaps            []GapItem   `json:"gaps" mapstructure:"gaps" validate:"dive"`
}

// FitSuggestions is the second-stage LLM answer. The zero value, once
// normalized, is the fallback used when that stage fails.
type FitSuggestions struct {
	Summary             string                   `json:"summary" mapstructure:"summary"`
	CVSuggestions       []SuggestionItem         `json:"cv_suggestions" mapstructure:"cv_suggestions" validate:"dive"`
	LinkedInSuggestions []LinkedInSuggestionItem `json:"linkedin_suggestions" mapstructure:"linkedin_suggestions" validate:"dive"`
	ATSKeywords         []ATSKeywordItem         `json:"ats_keywords" mapstructure:"ats_keywords" validate:"dive"`
	FinalNote           string                   `json:"final_note" mapstructure:"final_note"`
}

// FitReport is the merged result written to fit_report.json.
type FitReport struct {
	FitScore            int                      `json:"fit_score" validate:"min=0,max=100"`
	Confidence          Level                    `json:"confidence" validate:"oneof=low medium high"`
	Summary             string                   `json:"summary"`
	MustHaveMatch       []MatchItem              `json:"must_have_match" validate:"dive"`
	NiceToHaveMatch     []MatchItem              `json:"nice_to_have_match" validate:"dive"`
	Gaps                []GapItem                `json:"gaps" validate:"dive"`
	CVSuggestions       []SuggestionItem         `json:"cv_suggestions" validate:"dive"`
	LinkedInSuggestions []LinkedInSuggestionItem `json:"linkedin_suggestions" validate:"dive"`
	ATSKeywords         []ATSKeywordItem         `json:"ats_keywords" validate:"dive"`
	FinalNote           string                   `json:"final_note"`
}

// EmptySuggestions returns a FitSuggestions with every list allocated so it
// serializes as [] rather than null.
func EmptySuggestions() FitSuggestions {
	return FitSuggestions{
		CVSuggestions:       []SuggestionItem{},
		LinkedInSuggestions: []LinkedInSuggestionItem{},
		ATSKeywords:         []ATSKeywordItem{},
	}
}

// MergeReport combines both stages. score must be the locally computed one.
func MergeReport(core FitCore, sugg FitSuggestions, score int) FitReport {
	return FitReport{
		FitScore:            score,
		Confidence:          core.Confidence,
		Summary:             sugg.Summary,
		MustHaveMatch:       nonNil(core.MustHaveMatch),
		NiceToHaveMatch:     nonNil(core.NiceToHaveMatch),
		Gaps:                nonNil(core.Gaps),
		CVSuggestions:       nonNil(sugg.CVSuggestions),
		LinkedInSuggestions: nonNil(sugg.LinkedInSuggestions),
		ATSKeywords:         nonNil(sugg.ATSKeywords),
		FinalNote:           sugg.FinalNote,
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
