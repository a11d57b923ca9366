package handlers

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"qusar-backend/internal/models"
)

func TestRejectionNoticeCarriesReason(t *testing.T) {
	reason := "item damaged in storage"
	msg := rejectionNotice("ORD1700000000000123", reason)
	if !strings.Contains(msg, "ORD1700000000000123") {
		t.Fatalf("expected message to name the order, got %q", msg)
	}
	if !strings.Contains(msg, reason) {
		t.Fatalf("expected message to carry the seller's reason, got %q", msg)
	}
}

func TestRejectionNoticeWithoutReason(t *testing.T) {
	msg := rejectionNotice("ORD1700000000000123", "")
	if strings.Contains(msg, "Reason:") {
		t.Fatalf("empty reason must not add a reason line, got %q", msg)
	}
	if !strings.Contains(msg, "rejected by the seller") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestPlatformAdminFilterTargetsAdmins(t *testing.T) {
	filter := platformAdminFilter()
	clause, ok := filter["role"].(bson.M)
	if !ok {
		t.Fatalf("expected a role clause, got %v", filter)
	}
	roles, ok := clause["$in"].([]models.Role)
	if !ok {
		t.Fatalf("expected an $in list of roles, got %v", clause)
	}
	want := map[models.Role]bool{models.RoleAdmin: true, models.RoleSuperAdmin: true}
	if len(roles) != len(want) {
		t.Fatalf("expected %d roles, got %v", len(want), roles)
	}
	for _, r := range roles {
		if !want[r] {
			t.Fatalf("unexpected role %v in admin filter", r)
		}
	}
}
