package model

import "strings"

type Condition string

const (
	ConditionAI    Condition = "AI"
	ConditionHuman Condition = "Human"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAI    Role = "ai"
	RoleHuman Role = "human"
)

// Mode hints accepted at session creation. Anything else means random.
const (
	ModeAI     = "AI"
	ModeHuman  = "HUMAN"
	ModeRandom = "RANDOM"
)

// ConditionForHint resolves a case-insensitive mode hint. ok is false when the
// hint does not force a condition and the caller must pick one.
func ConditionForHint(hint string) (condition Condition, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(hint)) {
	case ModeAI:
		return ConditionAI, true
	case ModeHuman:
		return ConditionHuman, true
	default:
		return "", false
	}
}
