// Package domain contains core business types and interfaces.
//
// This file defines subscription tiers, usage counters, and the pure
// limit-evaluation logic used by the quota service.
package domain

import "time"

// SubscriptionTier represents the pricing tier of a subscription plan.
type SubscriptionTier string

const (
	SubscriptionTierBasic     SubscriptionTier = "basic"
	SubscriptionTierPro       SubscriptionTier = "pro"
	SubscriptionTierUnlimited SubscriptionTier = "unlimited"
)

// UnlimitedValue marks a per-dimension limit as unbounded.
const UnlimitedValue = -1

// SubscriptionPlan is one entry of the static tier catalog.
// Seeded once at startup, immutable thereafter.
type SubscriptionPlan struct {
	Tier            SubscriptionTier
	Name            string
	Description     string
	Price           float64
	WordLimit       int64 // -1 = unlimited
	FileUploadLimit int64 // -1 = unlimited
	HasImageUpload  bool
	IsUnlimited     bool
}

// DefaultPlans is the catalog seeded at process start. Seeding uses
// insert-or-ignore keyed by tier, so redeploys never overwrite the catalog.
var DefaultPlans = []SubscriptionPlan{
	{
		Tier:            SubscriptionTierBasic,
		Name:            "Basic",
		Description:     "For everyday light use",
		Price:           0.0,
		WordLimit:       1000,
		FileUploadLimit: 5,
		HasImageUpload:  false,
		IsUnlimited:     false,
	},
	{
		Tier:            SubscriptionTierPro,
		Name:            "Professional",
		Description:     "Advanced features and higher daily limits",
		Price:           29.99,
		WordLimit:       10000,
		FileUploadLimit: 50,
		HasImageUpload:  true,
		IsUnlimited:     false,
	},
	{
		Tier:            SubscriptionTierUnlimited,
		Name:            "Unlimited",
		Description:     "All features with no usage limits",
		Price:           99.99,
		WordLimit:       UnlimitedValue,
		FileUploadLimit: UnlimitedValue,
		HasImageUpload:  true,
		IsUnlimited:     true,
	},
}

// BasicPlan returns the plan applied to users without a subscription row.
func BasicPlan() SubscriptionPlan {
	return DefaultPlans[0]
}

// UserSubscription is the single per-user subscription row with daily
// usage counters. Counters are only meaningful for the calendar date in
// LastUsageReset; a stale date means the counters must be read as zero.
type UserSubscription struct {
	ID             int64
	UserID         string
	Tier           SubscriptionTier
	DailyWordUsage int64
	DailyFileUsage int64
	LastUsageReset string // calendar date, YYYY-MM-DD
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SubscriptionSnapshot combines a plan with the user's current usage,
// as returned to clients at login.
type SubscriptionSnapshot struct {
	Plan           SubscriptionPlan
	DailyWordUsage int64
	DailyFileUsage int64
}

// UsageDecision is the outcome of a limit check for a proposed operation.
type UsageDecision struct {
	CanAnalyzeText  bool
	CanUploadFile   bool
	CanUploadImage  bool
	WordLimit       int64
	FileUploadLimit int64
	DailyWordUsage  int64
	DailyFileUsage  int64
}

// EvaluateUsage computes a usage decision for the given plan and current
// counters, assuming proposedWords additional words would be consumed.
//
// Rules:
//   - is_unlimited or a -1 limit always permits that dimension
//   - word boundary is inclusive: usage + proposed <= limit passes
//   - file boundary is strict: usage < limit passes
//   - image upload follows the plan flag only
func EvaluateUsage(plan SubscriptionPlan, wordUsage, fileUsage, proposedWords int64) UsageDecision {
	canAnalyzeText := plan.IsUnlimited || plan.WordLimit == UnlimitedValue ||
		(wordUsage+proposedWords) <= plan.WordLimit
	canUploadFile := plan.IsUnlimited || plan.FileUploadLimit == UnlimitedValue ||
		fileUsage < plan.FileUploadLimit

	return UsageDecision{
		CanAnalyzeText:  canAnalyzeText,
		CanUploadFile:   canUploadFile,
		CanUploadImage:  plan.HasImageUpload,
		WordLimit:       plan.WordLimit,
		FileUploadLimit: plan.FileUploadLimit,
		DailyWordUsage:  wordUsage,
		DailyFileUsage:  fileUsage,
	}
}

// DefaultDecision is the decision applied to users without a subscription
// row: the basic plan evaluated against zero usage.
func DefaultDecision(proposedWords int64) UsageDecision {
	return EvaluateUsage(BasicPlan(), 0, 0, proposedWords)
}

// Today returns the current calendar date in the server's local time zone,
// formatted the way last_usage_reset is stored. Quota rollover compares
// these strings for equality, so quotas reset at local midnight.
func Today() string {
	return time.Now().Format("2006-01-02")
}
