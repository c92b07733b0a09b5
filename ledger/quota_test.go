package ledger

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"mod-helper/model"
	"mod-helper/utils"
)

// Jan 1 2024 is a Monday.
var quotaTestStart = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func setupQuota(t *testing.T, clock model.Clock, sink model.NotificationSink) *QuotaLedger {
	t.Helper()
	_, quota := newTestLedgers(t, clock, sink)
	if err := quota.UpsertConfig("guild-1", "role-1", "channel-1", 10); err != nil {
		t.Fatalf("UpsertConfig returned error: %v", err)
	}
	return quota
}

func TestCreditAccumulatesAndPasses(t *testing.T) {
	clock := newFakeClock(quotaTestStart)
	quota := setupQuota(t, clock, &captureSink{})

	key := model.RuleKey{Activity: "RunComplete"}
	if err := quota.AddRule("guild-1", "role-1", key, 5); err != nil {
		t.Fatalf("AddRule returned error: %v", err)
	}

	if err := quota.Credit("guild-1", "role-1", key, testMod); err != nil {
		t.Fatalf("Credit returned error: %v", err)
	}
	total, err := quota.CurrentTotal("guild-1", "role-1")
	if err != nil {
		t.Fatalf("CurrentTotal returned error: %v", err)
	}
	if total != 5 {
		t.Errorf("total after one credit = %d, want 5", total)
	}
	passed, err := quota.Passed("guild-1", "role-1")
	if err != nil {
		t.Fatalf("Passed returned error: %v", err)
	}
	if passed {
		t.Error("Passed = true at 5/10")
	}

	if err := quota.Credit("guild-1", "role-1", key, testMod); err != nil {
		t.Fatalf("Credit returned error: %v", err)
	}
	passed, err = quota.Passed("guild-1", "role-1")
	if err != nil {
		t.Fatalf("Passed returned error: %v", err)
	}
	if !passed {
		t.Error("Passed = false at 10/10")
	}
}

func TestCreditUnconfiguredActivityIsNoOp(t *testing.T) {
	clock := newFakeClock(quotaTestStart)
	quota := setupQuota(t, clock, &captureSink{})

	err := quota.Credit("guild-1", "role-1", model.RuleKey{Activity: "Assist"}, testMod)
	if err != nil {
		t.Fatalf("Credit returned error: %v", err)
	}
	total, err := quota.CurrentTotal("guild-1", "role-1")
	if err != nil {
		t.Fatalf("CurrentTotal returned error: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}

func TestCreditSpecificRulePreferredOverGeneral(t *testing.T) {
	clock := newFakeClock(quotaTestStart)
	quota := setupQuota(t, clock, &captureSink{})

	general := model.RuleKey{Activity: "RunComplete"}
	specific := model.RuleKey{Activity: "RunAssist", Variant: "oryx3"}
	if err := quota.AddRule("guild-1", "role-1", general, 2); err != nil {
		t.Fatalf("AddRule returned error: %v", err)
	}
	if err := quota.AddRule("guild-1", "role-1", specific, 7); err != nil {
		t.Fatalf("AddRule returned error: %v", err)
	}

	if err := quota.Credit("guild-1", "role-1", specific, testMod); err != nil {
		t.Fatalf("Credit returned error: %v", err)
	}
	// A variant with no specific rule falls back to the activity's rule.
	if err := quota.Credit("guild-1", "role-1", model.RuleKey{Activity: "RunComplete", Variant: "shatters"}, testMod); err != nil {
		t.Fatalf("Credit returned error: %v", err)
	}

	total, err := quota.CurrentTotal("guild-1", "role-1")
	if err != nil {
		t.Fatalf("CurrentTotal returned error: %v", err)
	}
	if total != 9 {
		t.Errorf("total = %d, want 9", total)
	}
}

func TestAddRuleEvictsOppositeSpecificity(t *testing.T) {
	clock := newFakeClock(quotaTestStart)
	quota := setupQuota(t, clock, &captureSink{})

	general := model.RuleKey{Activity: "RunComplete"}
	specific := model.RuleKey{Activity: "RunComplete", Variant: "oryx3"}

	if err := quota.AddRule("guild-1", "role-1", general, 2); err != nil {
		t.Fatalf("AddRule returned error: %v", err)
	}
	if err := quota.AddRule("guild-1", "role-1", specific, 7); err != nil {
		t.Fatalf("AddRule returned error: %v", err)
	}
	rules, err := quota.Rules("guild-1", "role-1")
	if err != nil {
		t.Fatalf("Rules returned error: %v", err)
	}
	if len(rules) != 1 || rules[0].Variant != "oryx3" {
		t.Fatalf("rules after specific add = %+v, want only the variant rule", rules)
	}

	// Adding the general rule back evicts the specific one.
	if err := quota.AddRule("guild-1", "role-1", general, 3); err != nil {
		t.Fatalf("AddRule returned error: %v", err)
	}
	rules, err = quota.Rules("guild-1", "role-1")
	if err != nil {
		t.Fatalf("Rules returned error: %v", err)
	}
	if len(rules) != 1 || rules[0].Variant != "" || rules[0].Points != 3 {
		t.Fatalf("rules after general add = %+v, want only the general rule", rules)
	}
}

func TestAddRuleRequiresConfig(t *testing.T) {
	clock := newFakeClock(quotaTestStart)
	_, quota := newTestLedgers(t, clock, &captureSink{})

	err := quota.AddRule("guild-1", "role-unconfigured", model.RuleKey{Activity: "RunComplete"}, 5)
	if !errors.Is(err, ErrNoQuotaConfig) {
		t.Fatalf("AddRule error = %v, want ErrNoQuotaConfig", err)
	}
}

func TestUpsertConfigEnforcesCap(t *testing.T) {
	clock := newFakeClock(quotaTestStart)
	_, quota := newTestLedgers(t, clock, &captureSink{})

	for i := 0; i < model.MaxQuotaConfigs; i++ {
		roleID := fmt.Sprintf("role-%d", i)
		if err := quota.UpsertConfig("guild-1", roleID, "channel-1", 10); err != nil {
			t.Fatalf("UpsertConfig %d returned error: %v", i, err)
		}
	}
	err := quota.UpsertConfig("guild-1", "role-overflow", "channel-1", 10)
	if !errors.Is(err, ErrQuotaCapReached) {
		t.Fatalf("UpsertConfig over cap error = %v, want ErrQuotaCapReached", err)
	}

	// Updating an existing config is not a creation and stays allowed.
	if err := quota.UpsertConfig("guild-1", "role-0", "channel-2", 20); err != nil {
		t.Fatalf("UpsertConfig update returned error: %v", err)
	}
	// Other guilds have their own cap.
	if err := quota.UpsertConfig("guild-2", "role-1", "channel-1", 10); err != nil {
		t.Fatalf("UpsertConfig in second guild returned error: %v", err)
	}
}

func TestResetOneArchivesAndClears(t *testing.T) {
	clock := newFakeClock(quotaTestStart)
	sink := &captureSink{}
	quota := setupQuota(t, clock, sink)

	key := model.RuleKey{Activity: "RunComplete"}
	if err := quota.AddRule("guild-1", "role-1", key, 5); err != nil {
		t.Fatalf("AddRule returned error: %v", err)
	}
	if err := quota.Credit("guild-1", "role-1", key, testMod); err != nil {
		t.Fatalf("Credit returned error: %v", err)
	}

	resetAt := clock.Now().Add(time.Hour)
	if err := quota.ResetOne("guild-1", "role-1", resetAt); err != nil {
		t.Fatalf("ResetOne returned error: %v", err)
	}

	total, err := quota.CurrentTotal("guild-1", "role-1")
	if err != nil {
		t.Fatalf("CurrentTotal returned error: %v", err)
	}
	if total != 0 {
		t.Errorf("total after reset = %d, want 0", total)
	}
	if sink.resetCount() != 1 {
		t.Fatalf("reset notifications = %d, want 1", sink.resetCount())
	}
	sink.mu.Lock()
	archived := sink.resets[0].archived
	sink.mu.Unlock()
	if len(archived) != 1 || archived[0].Points != 5 {
		t.Errorf("archived entries = %+v, want one 5-point entry", archived)
	}

	configs, err := quota.Configs("guild-1")
	if err != nil {
		t.Fatalf("Configs returned error: %v", err)
	}
	if len(configs) != 1 || configs[0].LastReset != resetAt.Unix() {
		t.Errorf("lastReset = %d, want %d", configs[0].LastReset, resetAt.Unix())
	}
}

func TestRemoveConfigDropsRulesAndLog(t *testing.T) {
	clock := newFakeClock(quotaTestStart)
	quota := setupQuota(t, clock, &captureSink{})

	key := model.RuleKey{Activity: "RunComplete"}
	if err := quota.AddRule("guild-1", "role-1", key, 5); err != nil {
		t.Fatalf("AddRule returned error: %v", err)
	}
	if err := quota.Credit("guild-1", "role-1", key, testMod); err != nil {
		t.Fatalf("Credit returned error: %v", err)
	}

	if err := quota.RemoveConfig("guild-1", "role-1"); err != nil {
		t.Fatalf("RemoveConfig returned error: %v", err)
	}
	if _, err := quota.CurrentTotal("guild-1", "role-1"); !errors.Is(err, ErrNoQuotaConfig) {
		t.Errorf("CurrentTotal after removal error = %v, want ErrNoQuotaConfig", err)
	}
	if err := quota.RemoveConfig("guild-1", "role-1"); !errors.Is(err, ErrNoQuotaConfig) {
		t.Errorf("second RemoveConfig error = %v, want ErrNoQuotaConfig", err)
	}
}

func TestResetEventsEmittedOutsideTenantLock(t *testing.T) {
	clock := newFakeClock(quotaTestStart)
	db := newTestDB(t)
	locks := utils.NewTenantLocks()
	sink := &reacquiringSink{locks: locks}
	quota := NewQuotaLedger(db, locks, clock, sink)

	if err := quota.UpsertConfig("guild-1", "role-1", "channel-1", 10); err != nil {
		t.Fatalf("UpsertConfig returned error: %v", err)
	}
	if err := quota.SetResetSchedule("guild-1", model.ResetSchedule{DayOfWeek: 1, MinuteOfDay: 0}); err != nil {
		t.Fatalf("SetResetSchedule returned error: %v", err)
	}

	if err := quota.ResetOne("guild-1", "role-1", clock.Now()); err != nil {
		t.Fatalf("ResetOne returned error: %v", err)
	}
	if _, err := quota.ResetDue("guild-1", time.Date(2024, time.January, 8, 0, 1, 0, 0, time.UTC)); err != nil {
		t.Fatalf("ResetDue returned error: %v", err)
	}
	if sink.resetCount() != 2 {
		t.Errorf("reset notifications = %d, want 2", sink.resetCount())
	}
}

func TestResetDueHonorsWeeklyBoundary(t *testing.T) {
	clock := newFakeClock(quotaTestStart)
	sink := &captureSink{}
	quota := setupQuota(t, clock, sink)

	if err := quota.SetResetSchedule("guild-1", model.ResetSchedule{DayOfWeek: 1, MinuteOfDay: 0}); err != nil {
		t.Fatalf("SetResetSchedule returned error: %v", err)
	}

	// Wednesday: the next Monday boundary has not been crossed yet.
	wednesday := time.Date(2024, time.January, 3, 9, 0, 0, 0, time.UTC)
	reset, err := quota.ResetDue("guild-1", wednesday)
	if err != nil {
		t.Fatalf("ResetDue returned error: %v", err)
	}
	if len(reset) != 0 {
		t.Fatalf("ResetDue on Wednesday reset %v, want none", reset)
	}

	// Just past the Monday boundary: exactly one reset, stamped with the
	// boundary instant rather than the sweep time.
	boundary := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	afterBoundary := boundary.Add(time.Minute)
	reset, err = quota.ResetDue("guild-1", afterBoundary)
	if err != nil {
		t.Fatalf("ResetDue returned error: %v", err)
	}
	if len(reset) != 1 || reset[0] != "role-1" {
		t.Fatalf("ResetDue past boundary reset %v, want [role-1]", reset)
	}
	configs, err := quota.Configs("guild-1")
	if err != nil {
		t.Fatalf("Configs returned error: %v", err)
	}
	if configs[0].LastReset != boundary.Unix() {
		t.Errorf("lastReset = %d, want boundary %d", configs[0].LastReset, boundary.Unix())
	}

	// Sweeping again before the next boundary does nothing.
	reset, err = quota.ResetDue("guild-1", afterBoundary.Add(time.Hour))
	if err != nil {
		t.Fatalf("ResetDue returned error: %v", err)
	}
	if len(reset) != 0 {
		t.Fatalf("second ResetDue reset %v, want none", reset)
	}
	if sink.resetCount() != 1 {
		t.Errorf("reset notifications = %d, want 1", sink.resetCount())
	}
}

func TestResetDueCollapsesMissedWeeks(t *testing.T) {
	clock := newFakeClock(quotaTestStart)
	sink := &captureSink{}
	quota := setupQuota(t, clock, sink)

	if err := quota.SetResetSchedule("guild-1", model.ResetSchedule{DayOfWeek: 1, MinuteOfDay: 0}); err != nil {
		t.Fatalf("SetResetSchedule returned error: %v", err)
	}

	// Three Monday boundaries passed while the process was down. Only one
	// reset fires, stamped with the most recent boundary.
	now := time.Date(2024, time.January, 25, 10, 0, 0, 0, time.UTC)
	reset, err := quota.ResetDue("guild-1", now)
	if err != nil {
		t.Fatalf("ResetDue returned error: %v", err)
	}
	if len(reset) != 1 {
		t.Fatalf("ResetDue after downtime reset %v, want one role", reset)
	}
	if sink.resetCount() != 1 {
		t.Errorf("reset notifications = %d, want 1", sink.resetCount())
	}

	lastBoundary := time.Date(2024, time.January, 22, 0, 0, 0, 0, time.UTC)
	configs, err := quota.Configs("guild-1")
	if err != nil {
		t.Fatalf("Configs returned error: %v", err)
	}
	if configs[0].LastReset != lastBoundary.Unix() {
		t.Errorf("lastReset = %d, want %d", configs[0].LastReset, lastBoundary.Unix())
	}
}
