package rules

import "regexp"

// Rule describes a single secret detection pattern. The ID is persisted as the
// finding type and is a durable contract: renaming an ID orphans every
// historical finding of that type.
type Rule struct {
	ID          string
	Pattern     *regexp.Regexp
	Description string
}

// coreRules are evaluated in registration order for every line. The order is
// part of the scan output contract.
var coreRules = []Rule{
	{
		ID:          "aws_access_key_id",
		Pattern:     regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
		Description: "AWS Access Key ID",
	},
	{
		ID:          "github_pat",
		Pattern:     regexp.MustCompile(`\bghp_[A-Za-z0-9]{36}\b`),
		Description: "GitHub Personal Access Token",
	},
	{
		ID:          "github_token",
		Pattern:     regexp.MustCompile(`\bgho_[A-Za-z0-9]{36}\b`),
		Description: "GitHub OAuth Token",
	},
	{
		ID:          "slack_token",
		Pattern:     regexp.MustCompile(`\bxox[baprs]-[0-9]{10,13}-[0-9]{10,13}-[0-9]{10,13}-[a-zA-Z0-9]{24,}\b`),
		Description: "Slack Token",
	},
	{
		ID:          "stripe_secret_key",
		Pattern:     regexp.MustCompile(`\bsk_(live|test)_[0-9a-zA-Z]{24,}\b`),
		Description: "Stripe Secret Key",
	},
	{
		ID:          "openai_api_key",
		Pattern:     regexp.MustCompile(`\bsk-[A-Za-z0-9]{32,}\b`),
		Description: "OpenAI API Key",
	},
}

// highEntropyRule is advisory: a broad alphanumeric token matcher with a high
// false-positive rate, so it is opt-in and always registered last.
var highEntropyRule = Rule{
	ID:          "high_entropy",
	Pattern:     regexp.MustCompile(`\b[A-Za-z0-9_-]{32,}\b`),
	Description: "High entropy token (optional)",
}

// Rules returns the active rule set in evaluation order.
func Rules(includeHighEntropy bool) []Rule {
	out := make([]Rule, len(coreRules), len(coreRules)+1)
	copy(out, coreRules)
	if includeHighEntropy {
		out = append(out, highEntropyRule)
	}
	return out
}
