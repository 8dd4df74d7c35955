package mcpserver

// ScoringRules describes how suggestions are ranked, for LLM consumers that
// need to explain or reason about a suggestion list.
const ScoringRules = `# Reconnect Scoring Rules

Suggestions are the contacts most overdue for outreach.

## Inputs per contact

- frequencyDays: desired cadence in days (positive integer).
- priority: 1 (low) to 5 (high).
- lastContactedAt: time of the latest recorded call or text, or null if never contacted.

## Score

    daysSince    = floor((now - lastContactedAt) / 24h), never below 0
                   (infinite when the contact was never reached)
    overdueRatio = daysSince / frequencyDays
    score        = overdueRatio * priority

A contact is due when overdueRatio >= 1.

## Order

1. score, highest first
2. priority, highest first
3. fullName, case-insensitive A to Z
4. id, ascending

The first N contacts are returned, where N is the requested count or the
configured count for the mode (countDaily or countWeekly).

## Recording

Only record_interaction changes lastContactedAt. It becomes the latest
createdAt among the contact's interactions. Rankings are computed fresh on
every request, so a recorded interaction is reflected immediately.
`
