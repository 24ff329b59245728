// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	apperrors "travel-workers/internal/common/errors"
)

const Version = "1.0.0"

// Loyalty rule failures complete the job with an errorCode variable and are
// not listed here.
var ledgerCodes = []string{string(apperrors.ErrCodeInvalidInput), string(apperrors.ErrCodeStorageUnavailable)}

var activities = []Activity{
	{
		ID:          "interpret-search-query",
		DisplayName: "Interpret Search Query",
		Description: "Extracts a product category and location from free search text and builds the search suggestion",
		Category:    CategorySearch,
		TaskType:    "interpret-search-query",
		Inputs:      []string{"query", "enableAliases", "myLocation", "rememberLocation"},
		Outputs:     []string{"parsed", "hasSuggestion", "suggestion", "searchParams"},
		ErrorCodes: []string{
			string(apperrors.ErrCodeInvalidInput),
			string(apperrors.ErrCodeInvalidSearchQuery),
			string(apperrors.ErrCodeCatalogUnavailable),
		},
		Timeout: "5s",
		Tags:    []string{"query", "location"},
	},
	{
		ID:          "manage-location-aliases",
		DisplayName: "Manage Location Aliases",
		Description: "Lists, adds and removes custom location aliases and sets the saved near-me location",
		Category:    CategorySearch,
		TaskType:    "manage-location-aliases",
		Inputs:      []string{"action", "key", "target", "myLocation"},
		Outputs:     []string{"action", "aliases", "builtinCount", "shadowsBuiltin", "removed", "myLocation"},
		ErrorCodes: []string{
			string(apperrors.ErrCodeInvalidInput),
			string(apperrors.ErrCodeInvalidAlias),
			string(apperrors.ErrCodeStorageUnavailable),
		},
		Timeout: "5s",
		Tags:    []string{"aliases"},
	},
	{
		ID:          "reward-booking",
		DisplayName: "Reward Booking",
		Description: "Credits tier-scaled points for a completed booking and awards booking milestone badges",
		Category:    CategoryLoyalty,
		TaskType:    "reward-booking",
		Inputs:      []string{"id", "amount", "userId", "type", "checkInDate"},
		Outputs:     []string{"success", "points", "newBalance", "totalPoints", "tierUpgrade", "badgeAwarded", "errorCode"},
		ErrorCodes: []string{
			string(apperrors.ErrCodeInvalidBooking),
			string(apperrors.ErrCodeStorageUnavailable),
		},
		Timeout: "10s",
		Tags:    []string{"points", "badges"},
	},
	{
		ID:          "redeem-points",
		DisplayName: "Redeem Points",
		Description: "Redeems points from a user's available balance",
		Category:    CategoryLoyalty,
		TaskType:    "redeem-points",
		Inputs:      []string{"userId", "amount", "purpose", "metadata"},
		Outputs:     []string{"success", "newBalance", "redemptionValue", "transaction", "errorCode"},
		ErrorCodes:  ledgerCodes,
		Timeout:     "10s",
		Tags:        []string{"points"},
	},
	{
		ID:          "award-badge",
		DisplayName: "Award Badge",
		Description: "Awards a named badge, or checks milestone eligibility for an activity",
		Category:    CategoryLoyalty,
		TaskType:    "award-badge",
		Inputs:      []string{"userId", "badgeId", "activityType", "totalBookings"},
		Outputs:     []string{"success", "awarded", "badge", "pointsAwarded", "newBalance", "errorCode"},
		ErrorCodes:  ledgerCodes,
		Timeout:     "10s",
		Tags:        []string{"badges"},
	},
	{
		ID:          "get-loyalty-summary",
		DisplayName: "Get Loyalty Summary",
		Description: "Returns balance, tier progress, badges and recent history for a user",
		Category:    CategoryLoyalty,
		TaskType:    "get-loyalty-summary",
		Inputs:      []string{"userId", "bookingAmount", "recentTransactions"},
		Outputs:     []string{"availablePoints", "totalPoints", "tier", "nextTier", "badges", "history", "pointsPreview"},
		ErrorCodes:  []string{string(apperrors.ErrCodeInvalidInput)},
		Timeout:     "5s",
		Tags:        []string{"read-only"},
	},
	{
		ID:          "manage-referral",
		DisplayName: "Manage Referral",
		Description: "Records pending referrals and pays the referral bonus on conversion",
		Category:    CategoryLoyalty,
		TaskType:    "manage-referral",
		Inputs:      []string{"action", "userId", "referee"},
		Outputs:     []string{"success", "referee", "status", "pointsAwarded", "newBalance", "errorCode"},
		ErrorCodes:  ledgerCodes,
		Timeout:     "10s",
		Tags:        []string{"referrals"},
	},
}

// Default returns the registry of every activity this build serves, with
// retries and BPMN error codes derived from the shared error table.
func Default() *ActivityRegistry {
	out := make([]Activity, len(activities))
	for i, a := range activities {
		a.BPMNErrors = bpmnErrors(a.ErrorCodes)
		a.Retries = maxRetries(a.ErrorCodes)
		out[i] = a
	}
	return &ActivityRegistry{
		Version:    Version,
		Activities: out,
	}
}

func bpmnErrors(codes []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range codes {
		b, ok := apperrors.BPMNErrorMapping[apperrors.ErrorCode(c)]
		if !ok || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

func maxRetries(codes []string) int {
	n := 0
	for _, c := range codes {
		if r := apperrors.GetRetryCount(apperrors.ErrorCode(c)); r > n {
			n = r
		}
	}
	return n
}

// Find returns the activity serving taskType.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// TaskTypes lists the registered task types in registry order.
func (r *ActivityRegistry) TaskTypes() []string {
	out := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		out = append(out, a.TaskType)
	}
	return out
}

// Validate checks required fields, duplicate ids and task types, and that
// every error code is known to the BPMN mapping.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, a := range r.Activities {
		if a.ID == "" {
			return fmt.Errorf("activity missing required field: id")
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity id: %s", a.ID)
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: displayName", a.ID)
		}
		if a.Category == "" {
			return fmt.Errorf("activity %s missing required field: category", a.ID)
		}
		if a.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: taskType", a.ID)
		}
		if taskTypes[a.TaskType] {
			return fmt.Errorf("duplicate task type: %s", a.TaskType)
		}
		taskTypes[a.TaskType] = true

		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				return fmt.Errorf("activity %s has invalid timeout %q", a.ID, a.Timeout)
			}
		}
		for _, c := range a.ErrorCodes {
			if _, ok := apperrors.BPMNErrorMapping[apperrors.ErrorCode(c)]; !ok {
				return fmt.Errorf("activity %s lists unknown error code %s", a.ID, c)
			}
		}
	}
	return nil
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes reg to path, stamping LastUpdated.
func Save(reg *ActivityRegistry, path string, now time.Time) error {
	reg.LastUpdated = now.UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
