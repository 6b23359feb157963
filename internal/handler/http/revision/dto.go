package revision

import (
	"time"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/usecase/quality"
	revisionUC "draftdesk/internal/usecase/revision"
	"draftdesk/internal/usecase/strategy"
)

// VersionDTO is a version as returned by the history and restore endpoints.
type VersionDTO struct {
	ID               int64            `json:"id"`
	VersionNumber    int              `json:"version_number"`
	VersionType      string           `json:"version_type"`
	IsCurrent        bool             `json:"is_current"`
	Title            string           `json:"title"`
	MetaDescription  string           `json:"meta_description,omitempty"`
	FocusKeyword     string           `json:"focus_keyword,omitempty"`
	Content          string           `json:"content,omitempty"`
	WordCount        int              `json:"word_count"`
	HeadingStructure []entity.Heading `json:"heading_structure"`
	FAQs             []entity.FAQ     `json:"faqs"`
	RevisionType     string           `json:"revision_type,omitempty"`
	ChangesSummary   string           `json:"changes_summary,omitempty"`
	Provider         string           `json:"provider,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

func toVersionDTO(v *entity.Version, withContent bool) VersionDTO {
	out := VersionDTO{
		ID:               v.ID,
		VersionNumber:    v.VersionNumber,
		VersionType:      string(v.VersionType),
		IsCurrent:        v.IsCurrent,
		Title:            v.Title,
		MetaDescription:  v.MetaDescription,
		FocusKeyword:     v.FocusKeyword,
		WordCount:        v.WordCount,
		HeadingStructure: nonNil(v.HeadingStructure),
		FAQs:             nonNil(v.FAQs),
		RevisionType:     v.RevisionType,
		ChangesSummary:   v.ChangesSummary,
		Provider:         v.Provider,
		CreatedAt:        v.CreatedAt,
	}
	if withContent {
		out.Content = v.Content
	}
	return out
}

// ArticleStateDTO is the publish-related state of an article.
type ArticleStateDTO struct {
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	Status              string     `json:"status"`
	RiskLevel           string     `json:"risk_level"`
	QualityScore        int        `json:"quality_score"`
	HumanReviewed       bool       `json:"human_reviewed"`
	AutopublishDeadline *time.Time `json:"autopublish_deadline,omitempty"`
}

func toArticleStateDTO(a *entity.Article) ArticleStateDTO {
	return ArticleStateDTO{
		ID:                  a.ID,
		Title:               a.Title,
		Status:              string(a.Status),
		RiskLevel:           a.RiskLevel.String(),
		QualityScore:        a.QualityScore,
		HumanReviewed:       a.HumanReviewed,
		AutopublishDeadline: a.AutopublishDeadline,
	}
}

// ReviseResponse is returned by a successful revision. Progress lists every
// stage event in order.
type ReviseResponse struct {
	Result   *revisionUC.Result    `json:"result"`
	Progress []revisionUC.Progress `json:"progress"`
}

// ReviseFailure is returned by a failed revision.
type ReviseFailure struct {
	Error    string                `json:"error"`
	Stage    string                `json:"stage,omitempty"`
	Progress []revisionUC.Progress `json:"progress"`
}

// AnalysisResponse combines the quality report and the strategy analysis.
type AnalysisResponse struct {
	ArticleID int64             `json:"article_id"`
	Quality   quality.Report    `json:"quality"`
	Strategy  strategy.Analysis `json:"strategy"`
	Outline   quality.Outline   `json:"outline"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
