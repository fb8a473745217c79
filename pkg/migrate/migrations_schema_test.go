package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/discope/discope-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one %s migration, found %d", suffix, len(matches))
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestBookingMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_bookings")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS bookings",
		"number bigint NOT NULL UNIQUE",
		"FOREIGN KEY (group_id) REFERENCES booking_line_groups(id) ON DELETE CASCADE",
		"UNIQUE (group_id, age_range_id)",
		"CHECK (slot IN ('morning', 'midday', 'evening'))",
		"DROP TABLE IF EXISTS bookings",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestBillingMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_billing")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS fundings",
		"CHECK (type IN ('installment', 'invoice', 'transfer'))",
		"CHECK (origin IN ('cashdesk', 'bank'))",
		"FOREIGN KEY (contract_id) REFERENCES contracts(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS fundings",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAlertMigrationKeepsOnePendingAlertPerCode(t *testing.T) {
	content := readMigration(t, "create_consumptions_and_alerts")
	if !strings.Contains(content, "CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_pending_code ON alerts(booking_id, code)") {
		t.Fatalf("missing pending alert uniqueness index")
	}
}
