package domain

import "time"

// ContentType identifies what kind of content was analyzed.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeFile  ContentType = "file"
	ContentTypeImage ContentType = "image"
)

// ActualResult is the ground-truth label attached via feedback.
type ActualResult string

const (
	ActualResultAI      ActualResult = "ai"
	ActualResultHuman   ActualResult = "human"
	ActualResultUnknown ActualResult = "unknown"
)

// PreviewLength is the maximum number of characters of analyzed content
// stored alongside a ledger entry.
const PreviewLength = 500

// Verdict is the structured outcome of an AI-generation check. Probabilities
// and confidence are percentages in [0, 100].
type Verdict struct {
	AIProbability    float64  `json:"ai_probability"`
	AIDetected       bool     `json:"ai_detected"`
	ConfidenceScore  float64  `json:"confidence_score"`
	AIIndicators     []string `json:"ai_indicators"`
	HumanIndicators  []string `json:"human_indicators"`
	DetailedAnalysis string   `json:"detailed_analysis"`
	Recommendation   string   `json:"recommendation"`

	// ExtractedText is set for image analyses only: the text the model
	// read out of the image before judging it.
	ExtractedText string `json:"extracted_text,omitempty"`

	// Fallback is true when the provider's response could not be parsed
	// and a neutral verdict was substituted.
	Fallback bool `json:"fallback,omitempty"`
}

// AnalysisRecord is one append-only ledger entry for a completed analysis.
type AnalysisRecord struct {
	ID             int64
	UserID         string
	ContentType    ContentType
	FileName       string
	ContentPreview string
	AIProbability  float64
	AIDetected     bool
	AnalysisResult string // serialized verdict
	CreatedAt      time.Time

	// Joined feedback fields, populated by history listings. Feedback is
	// nil when no feedback row references this analysis.
	Feedback *FeedbackRecord
}

// TruncatePreview shortens content to the stored preview length.
func TruncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return string(runes[:PreviewLength])
}

// FeedbackRecord is one append-only user correction tied to an analysis.
type FeedbackRecord struct {
	ID            int64
	AnalysisID    int64
	UserID        string
	IsCorrect     bool
	ActualResult  ActualResult
	FeedbackNotes string
	CreatedAt     time.Time
}

// FeatureSnapshotVersion tags serialized feature snapshots so readers can
// evolve the schema without guessing.
const FeatureSnapshotVersion = 1

// FeatureSnapshot captures lightweight stylometric features of analyzed
// content, stored with learning samples for later model training.
type FeatureSnapshot struct {
	SchemaVersion       int     `json:"schema_version"`
	ContentLength       int     `json:"content_length"`
	WordCount           int     `json:"word_count"`
	SentenceCount       int     `json:"sentence_count"`
	AvgSentenceLength   float64 `json:"avg_sentence_length"`
	HasPersonalPronouns bool    `json:"has_personal_pronouns"`
	HasEmotionalWords   bool    `json:"has_emotional_words"`
	HasTypos            bool    `json:"has_typos"`
}

// LearningSample is one training example in the learning store. Samples are
// written twice per analysis lifecycle: once at analysis time with the
// model's own verdict as a provisional label, and once more when feedback
// supplies the ground truth.
type LearningSample struct {
	ID              int64
	ContentType     ContentType
	ContentFeatures string // serialized FeatureSnapshot
	ActualResult    ActualResult
	ConfidenceScore float64
	CreatedAt       time.Time
}

// DailyMetrics is the per-calendar-day accuracy rollup derived from the
// feedback ledger. AccuracyRate is a percentage rounded to two decimals.
type DailyMetrics struct {
	Date               string
	TotalAnalyses      int64
	CorrectPredictions int64
	AccuracyRate       float64
}

// DetectionStat is one row of the verdict distribution: how often each
// ground-truth label appears and the mean model probability for it.
type DetectionStat struct {
	ActualResult     ActualResult
	Count            int64
	AvgAIProbability float64
}
