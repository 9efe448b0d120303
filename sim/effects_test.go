package sim

import "testing"

func TestSlowStackingKeepsMaxDurationAndStrongestFactor(t *testing.T) {
	e := &Entity{HP: 100, MaxHP: 100}
	ApplyEffect(e, EffectSpec{Kind: EffectSlow, Duration: 60, Factor: 0.8})
	ApplyEffect(e, EffectSpec{Kind: EffectSlow, Duration: 30, Factor: 0.5})
	if len(e.Effects) != 1 {
		t.Fatalf("expected one merged slow, got %d effects", len(e.Effects))
	}
	if e.Effects[0].Remaining != 60 {
		t.Errorf("remaining = %d, want max duration 60", e.Effects[0].Remaining)
	}
	if e.Effects[0].Factor != 0.5 {
		t.Errorf("factor = %f, want strongest slow 0.5", e.Effects[0].Factor)
	}

	// A longer but weaker slow extends the duration without weakening it.
	ApplyEffect(e, EffectSpec{Kind: EffectSlow, Duration: 120, Factor: 0.9})
	if e.Effects[0].Remaining != 120 || e.Effects[0].Factor != 0.5 {
		t.Errorf("got remaining=%d factor=%f, want 120 / 0.5", e.Effects[0].Remaining, e.Effects[0].Factor)
	}
}

func TestRageStackingKeepsStrongestFactor(t *testing.T) {
	e := &Entity{HP: 100, MaxHP: 100}
	ApplyEffect(e, EffectSpec{Kind: EffectRage, Duration: 60, Factor: 1.2})
	ApplyEffect(e, EffectSpec{Kind: EffectRage, Duration: 30, Factor: 1.4})
	if len(e.Effects) != 1 {
		t.Fatalf("expected one merged rage, got %d effects", len(e.Effects))
	}
	if e.Effects[0].Factor != 1.4 {
		t.Errorf("factor = %f, want 1.4", e.Effects[0].Factor)
	}
}

func TestSpeedMultiplierClamped(t *testing.T) {
	e := &Entity{HP: 100, MaxHP: 100}
	ApplyEffect(e, EffectSpec{Kind: EffectRage, Duration: 60, Factor: 10})
	if got := SpeedMultiplier(e); got != 4.0 {
		t.Errorf("multiplier = %f, want clamp at 4", got)
	}

	e2 := &Entity{HP: 100, MaxHP: 100}
	ApplyEffect(e2, EffectSpec{Kind: EffectSlow, Duration: 60, Factor: 0.5})
	ApplyEffect(e2, EffectSpec{Kind: EffectRage, Duration: 60, Factor: 1.5})
	if got := SpeedMultiplier(e2); got != 0.75 {
		t.Errorf("multiplier = %f, want 0.75 (slow and rage multiply)", got)
	}
}

func TestStunAndSnareSemantics(t *testing.T) {
	stunned := &Entity{HP: 100, MaxHP: 100}
	ApplyEffect(stunned, EffectSpec{Kind: EffectStun, Duration: 10})
	if !Immobilized(stunned) || !Stunned(stunned) {
		t.Error("stun should block both movement and attacking")
	}

	snared := &Entity{HP: 100, MaxHP: 100}
	ApplyEffect(snared, EffectSpec{Kind: EffectSnare, Duration: 10})
	if !Immobilized(snared) {
		t.Error("snare should block movement")
	}
	if Stunned(snared) {
		t.Error("snare should not block attacking")
	}
}

func TestEffectExpiry(t *testing.T) {
	e := &Entity{HP: 100, MaxHP: 100}
	ApplyEffect(e, EffectSpec{Kind: EffectSlow, Duration: 2, Factor: 0.5})
	tickEntityEffects(e)
	if len(e.Effects) != 1 {
		t.Fatal("slow should survive its first tick")
	}
	tickEntityEffects(e)
	if len(e.Effects) != 0 {
		t.Error("slow should expire after its duration")
	}
	if got := SpeedMultiplier(e); got != 1.0 {
		t.Errorf("multiplier after expiry = %f, want 1", got)
	}
}

func TestLifetimeExpiryKills(t *testing.T) {
	e := &Entity{HP: 100, MaxHP: 100}
	ApplyEffect(e, EffectSpec{Kind: EffectLifetime, Duration: 3})
	tickEntityEffects(e)
	tickEntityEffects(e)
	if e.Dead {
		t.Fatal("entity died before its lifetime ran out")
	}
	tickEntityEffects(e)
	if !e.Dead || e.HP != 0 {
		t.Errorf("lifetime expiry should kill: dead=%v hp=%f", e.Dead, e.HP)
	}
}

func TestShieldExpirySubtractsRemainder(t *testing.T) {
	e := &Entity{HP: 100, MaxHP: 100}
	ApplyEffect(e, EffectSpec{Kind: EffectShield, Amount: 50, Duration: 2})
	if e.Shield != 50 {
		t.Fatalf("shield = %f, want 50", e.Shield)
	}

	// Chip the shield, then let the effect lapse: only what the grant still
	// covers is removed.
	e.TakeDamage(20)
	if e.Shield != 30 || e.HP != 100 {
		t.Fatalf("shield should absorb damage first: shield=%f hp=%f", e.Shield, e.HP)
	}
	tickEntityEffects(e)
	tickEntityEffects(e)
	if e.Shield != 0 {
		t.Errorf("shield after expiry = %f, want 0", e.Shield)
	}
	if e.HP != 100 {
		t.Errorf("hp = %f, shield expiry must not damage hull", e.HP)
	}
}

func TestSpawnerIntervalAndBudget(t *testing.T) {
	e := &Entity{HP: 100, MaxHP: 100}
	ApplyEffect(e, EffectSpec{
		Kind: EffectSpawner, Interval: 3, MaxSpawns: 2,
		Templates: []string{"Skeleton"},
	})

	var total int
	for i := 0; i < 12; i++ {
		total += len(tickEntityEffects(e))
	}
	if total != 2 {
		t.Errorf("spawned %d waves, want 2 (interval 3, budget 2 over 12 ticks)", total)
	}
	if len(e.Effects) != 0 {
		t.Error("exhausted spawner should be discarded")
	}
}

func TestSpawnerFiresInGame(t *testing.T) {
	g := newBareGame(1)
	parent := addUnit(t, g, "Knight", 0, 8, 8.5)
	ApplyEffect(parent, EffectSpec{
		Kind: EffectSpawner, Interval: 3, MaxSpawns: 1,
		Templates: []string{"Skeleton", "Skeleton", "Skeleton"},
	})

	stepN(t, g, 3)
	skeletons := 0
	for _, e := range g.store.Ordered() {
		if e.Name == "Skeleton" && !e.Dead {
			skeletons++
		}
	}
	if skeletons != 3 {
		t.Errorf("found %d skeletons, want 3", skeletons)
	}
}

func TestSplitConsumedOnce(t *testing.T) {
	e := &Entity{HP: 100, MaxHP: 100}
	ApplyEffect(e, EffectSpec{Kind: EffectSplit, Templates: []string{"Golemite", "Golemite"}})

	first := splitTemplates(e)
	if len(first) != 2 {
		t.Fatalf("split returned %d templates, want 2", len(first))
	}
	if second := splitTemplates(e); len(second) != 0 {
		t.Error("split must fire exactly once")
	}
}

func TestGolemSplitsOnDeath(t *testing.T) {
	g := newBareGame(1)
	golem := addUnit(t, g, "Golem", 0, 8, 8.5)
	golem.TakeDamage(golem.HP + golem.Shield)
	stepN(t, g, 1)

	if g.store.Live(golem.ID) != nil {
		t.Fatal("dead golem should be removed")
	}
	golemites := 0
	for _, e := range g.store.Ordered() {
		if e.Name == "Golemite" && !e.Dead {
			golemites++
		}
	}
	if golemites != 2 {
		t.Errorf("found %d golemites, want 2", golemites)
	}
}
