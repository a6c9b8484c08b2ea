package services

import (
	"sort"

	"alfredoptarigan/careermatch/internal/models"
)

type DecisionCode string

const (
	DecisionYes   DecisionCode = "YES"
	DecisionMaybe DecisionCode = "MAYBE"
	DecisionNo    DecisionCode = "NO"
)

const (
	strongScoreThreshold = 75
	decentScoreThreshold = 55
	highlightLimit       = 3
)

// Decision is the recommendation shown at the top of a report.
type Decision struct {
	Code     DecisionCode `json:"code"`
	Badge    string       `json:"badge"`
	Label    string       `json:"label"`
	Reason   string       `json:"reason"`
	NextStep string       `json:"next_step"`
}

const (
	labelYes   = "✅ Worth applying"
	labelMaybe = "⚠️ Worth applying only if highly motivated"
	labelNo    = "❌ Not worth applying (for now)"
)

// Decide maps a report onto YES, MAYBE or NO. A strong score is never turned
// into NO by gaps, only downgraded to MAYBE.
func Decide(report *models.FitReport) Decision {
	hasMissingMust := len(missingMustHaves(report)) > 0
	hasHighGap := false
	for _, g := range report.Gaps {
		if g.Impact == models.LevelHigh {
			hasHighGap = true
			break
		}
	}

	switch {
	case report.FitScore >= strongScoreThreshold && (hasMissingMust || hasHighGap):
		return Decision{
			Code:     DecisionMaybe,
			Badge:    "maybe",
			Label:    labelMaybe,
			Reason:   "Strong score, but there are gaps that could affect screening. Clarify them with concrete evidence or projects.",
			NextStep: "Apply only if you can clearly demonstrate or mitigate the highlighted gaps (examples, portfolio, interview framing).",
		}
	case report.FitScore >= strongScoreThreshold:
		return Decision{
			Code:     DecisionYes,
			Badge:    "yes",
			Label:    labelYes,
			Reason:   "Strong alignment with key requirements; remaining gaps are not blocking.",
			NextStep: "Apply and tailor your CV and LinkedIn profile to highlight your strengths.",
		}
	case report.FitScore >= decentScoreThreshold:
		return Decision{
			Code:     DecisionMaybe,
			Badge:    "maybe",
			Label:    labelMaybe,
			Reason:   "Decent alignment, but concrete evidence is needed to pass initial screening.",
			NextStep: "Apply only if you can clearly demonstrate the missing skills with real examples or projects.",
		}
	}

	reason := "Fit currently low."
	if hasMissingMust {
		reason = "Some key requirements appear missing, with a high risk of early screening rejection."
	} else if hasHighGap {
		reason = "There are high-impact gaps that likely block the role for now."
	}

	return Decision{
		Code:     DecisionNo,
		Badge:    "no",
		Label:    labelNo,
		Reason:   reason,
		NextStep: "Focus on better-aligned roles or build targeted projects before applying.",
	}
}

// Highlights are the display lists of a report, at most three entries each.
type Highlights struct {
	Strengths []string
	Blockers  []string
}

// Highlight picks matched then partially matched requirements as strengths,
// and the most severe gaps as blockers. Reports without gaps fall back to
// missing must-have requirements.
func Highlight(report *models.FitReport) Highlights {
	all := make([]models.MatchItem, 0, len(report.MustHaveMatch)+len(report.NiceToHaveMatch))
	all = append(all, report.MustHaveMatch...)
	all = append(all, report.NiceToHaveMatch...)

	strengths := make([]string, 0, highlightLimit)
	for _, status := range []models.MatchStatus{models.MatchFull, models.MatchPartial} {
		for _, item := range all {
			if item.Status == status && len(strengths) < highlightLimit {
				strengths = append(strengths, item.Requirement)
			}
		}
	}

	gaps := append([]models.GapItem(nil), report.Gaps...)
	sort.SliceStable(gaps, func(i, j int) bool {
		return impactRank(gaps[i].Impact) < impactRank(gaps[j].Impact)
	})

	blockers := make([]string, 0, highlightLimit)
	for _, g := range gaps {
		if len(blockers) == highlightLimit {
			break
		}
		blockers = append(blockers, g.Gap)
	}

	if len(gaps) == 0 {
		for _, item := range missingMustHaves(report) {
			if len(blockers) == highlightLimit {
				break
			}
			blockers = append(blockers, item.Requirement)
		}
	}

	return Highlights{Strengths: strengths, Blockers: blockers}
}

func impactRank(l models.Level) int {
	switch l {
	case models.LevelHigh:
		return 0
	case models.LevelMedium:
		return 1
	case models.LevelLow:
		return 2
	}
	return 3
}

func missingMustHaves(report *models.FitReport) []models.MatchItem {
	var missing []models.MatchItem
	for _, item := range report.MustHaveMatch {
		if item.Status == models.MatchMissing {
			missing = append(missing, item)
		}
	}
	return missing
}
