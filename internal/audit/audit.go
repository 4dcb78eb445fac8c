package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/agicotech/ForumApp/model"
)

var auditRepo AuditLogRepository

// Initialize wires the package to its backing repository. Must be called
// before any Record function.
func Initialize(repo AuditLogRepository) {
	auditRepo = repo
}

const (
	ActionRegister       = "Register"
	ActionLogin          = "Login"
	ActionChangePassword = "ChangePassword"
	ActionPromoteToAdmin = "PromoteToAdmin"
)

const EntityTypeUser = "User"

// ActionRecord describes one action to append to the audit trail. The entry
// timestamp is assigned at write time; the trail is append-only.
type ActionRecord struct {
	UserID     uint
	Action     string
	EntityType string
	EntityID   *uint
	Details    string
}

func RecordAction(ctx context.Context, record ActionRecord) error {
	return auditRepo.Create(ctx, &model.AuditLog{
		UserID:     record.UserID,
		Action:     record.Action,
		EntityType: record.EntityType,
		EntityID:   record.EntityID,
		Timestamp:  time.Now().UTC(),
		Details:    record.Details,
	})
}

func RecordRegister(ctx context.Context, userID uint) error {
	entityID := userID
	return RecordAction(ctx, ActionRecord{
		UserID:     userID,
		Action:     ActionRegister,
		EntityType: EntityTypeUser,
		EntityID:   &entityID,
	})
}

func RecordLogin(ctx context.Context, userID uint) error {
	return RecordAction(ctx, ActionRecord{
		UserID: userID,
		Action: ActionLogin,
	})
}

func RecordPasswordChange(ctx context.Context, userID uint) error {
	return RecordAction(ctx, ActionRecord{
		UserID: userID,
		Action: ActionChangePassword,
	})
}

func RecordPromotion(ctx context.Context, adminID uint, targetID uint) error {
	return RecordAction(ctx, ActionRecord{
		UserID:     adminID,
		Action:     ActionPromoteToAdmin,
		EntityType: EntityTypeUser,
		EntityID:   &targetID,
		Details:    fmt.Sprintf("User %d promoted to Admin", targetID),
	})
}

// RecordRequest appends the generic entry produced by the request audit
// middleware for an authenticated state-changing call. Action is the literal
// "METHOD PATH"; details carry the final response status.
func RecordRequest(ctx context.Context, userID uint, method string, path string, status int) error {
	return RecordAction(ctx, ActionRecord{
		UserID:  userID,
		Action:  fmt.Sprintf("%s %s", method, path),
		Details: fmt.Sprintf("Status: %d", status),
	})
}
