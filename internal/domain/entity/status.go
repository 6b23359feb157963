package entity

import (
	"fmt"
	"strings"
)

// Status is the pipeline stage of an article.
type Status string

const (
	StatusDrafting       Status = "drafting"
	StatusRefinement     Status = "refinement"
	StatusQAReview       Status = "qa_review"
	StatusReadyToPublish Status = "ready_to_publish"
	StatusPublished      Status = "published"
	StatusRejected       Status = "rejected"
)

// ParseStatus converts a stored string into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusDrafting, StatusRefinement, StatusQAReview,
		StatusReadyToPublish, StatusPublished, StatusRejected:
		return st, nil
	default:
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s)}
	}
}

// RiskLevel classifies how risky it is to publish without human review.
// Levels are ordered: a higher value is riskier.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

var riskNames = [...]string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}

func (r RiskLevel) String() string {
	if r < RiskLow || r > RiskCritical {
		return fmt.Sprintf("RiskLevel(%d)", int(r))
	}
	return riskNames[r]
}

// ParseRiskLevel parses a risk level name, case-insensitively.
func ParseRiskLevel(s string) (RiskLevel, error) {
	for i, name := range riskNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return RiskLevel(i), nil
		}
	}
	return RiskLow, &ValidationError{Field: "risk_level", Message: fmt.Sprintf("unknown risk level %q", s)}
}

// MarshalText implements encoding.TextMarshaler.
func (r RiskLevel) MarshalText() ([]byte, error) {
	if r < RiskLow || r > RiskCritical {
		return nil, fmt.Errorf("invalid risk level %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskLevel) UnmarshalText(b []byte) error {
	parsed, err := ParseRiskLevel(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// VersionType distinguishes the original snapshot from AI-produced ones.
type VersionType string

const (
	VersionOriginal   VersionType = "original"
	VersionAIRevision VersionType = "ai_revision"
)

// ParseVersionType converts a stored string into a VersionType.
func ParseVersionType(s string) (VersionType, error) {
	switch vt := VersionType(s); vt {
	case VersionOriginal, VersionAIRevision:
		return vt, nil
	default:
		return "", &ValidationError{Field: "version_type", Message: fmt.Sprintf("unknown version type %q", s)}
	}
}
