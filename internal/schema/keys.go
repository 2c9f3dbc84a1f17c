package schema

import (
	"strings"

	"github.com/google/uuid"
)

// Record keys.

func AccountKey(id uuid.UUID) string   { return AccountKeyOf(id.String()) }
func AccountKeyOf(id string) string    { return "account:" + id }
func InviteKey(code string) string     { return "invite:" + code }
func CrisisKey(id string) string       { return "crisis:" + id }
func MessageKey(id string) string      { return "message:" + id }
func NotificationKey(id string) string { return "notification:" + id }

func IdentityEmailKey(email string) string {
	return "identity:email:" + strings.ToLower(strings.TrimSpace(email))
}

// InviteClaimKey is written create-only by the first consumer of a code.
func InviteClaimKey(code string) string { return "invite:" + code + ":claim" }

// Append-only logs.

func PsychologistPatientsLog(id uuid.UUID) string { return "psychologist:" + id.String() + ":patients" }
func PatientCrisesLog(id uuid.UUID) string        { return "patient:" + id.String() + ":crises" }
func PsychologistCrisesLog(id uuid.UUID) string   { return "psychologist:" + id.String() + ":crises" }
func ConversationLog(key string) string           { return "conversation:" + key }
func NotificationsLog(userID uuid.UUID) string    { return "user:" + userID.String() + ":notifications" }
