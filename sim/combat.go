package sim

// RetargetDelaySec is the pause after losing a locked target before the
// next acquisition scan.
const RetargetDelaySec = 0.25

// stepCombat runs targeting and attack execution for every combat-capable
// entity, in ascending ID order. Damage lands immediately, so an entity
// killed earlier in the phase is already invisible to later attackers;
// the end-of-tick removal only reclaims storage.
func (g *Game) stepCombat() {
	for _, e := range g.store.Ordered() {
		if e.Dead || !e.CanAttack() {
			continue
		}
		if e.DeployTicks > 0 || Stunned(e) {
			continue
		}
		if e.Cooldown > 0 {
			continue
		}

		// Lazy target validation: only re-evaluated at zero cooldown.
		// Losing a held lock starts the retarget pause before the next
		// acquisition scan.
		target := g.store.Live(e.TargetID)
		if target != nil && !g.validTarget(e, target) {
			target = nil
		}
		if target == nil {
			if e.TargetID != 0 {
				e.RetargetCD = Ticks(RetargetDelaySec)
			}
			e.ClearTarget()
			if e.RetargetCD > 0 {
				continue
			}
			target = g.acquireTarget(e)
			if target == nil {
				continue // no target is a normal outcome, keep advancing
			}
			e.TargetID = target.ID
			e.TargetLocked = true
		}

		if e.EdgeDistanceTo(target) > e.Range {
			continue
		}
		if e.LoadTicks > 0 {
			continue
		}

		if e.Ranged {
			g.spawnProjectile(e, target)
		} else {
			g.applyHit(e, target)
		}
		e.Cooldown = e.MaxCooldown
	}
}

// validTarget reports whether a locked target may be kept: live, opposing,
// filter-valid and inside sight range.
func (g *Game) validTarget(e, t *Entity) bool {
	if t.Side == e.Side || t.Kind == KindProjectile {
		return false
	}
	if !e.Filter.Admits(t) {
		return false
	}
	return e.DistanceTo(t) <= e.Sight
}

// acquireTarget scans all live opposing entities and picks the closest one
// admitted by the filter and inside sight range. Ties break toward the
// lowest entity ID so acquisition is deterministic.
func (g *Game) acquireTarget(e *Entity) *Entity {
	var best *Entity
	var bestDist float64
	for _, cand := range g.store.Ordered() {
		if cand.Dead || cand.Side == e.Side || cand.Kind == KindProjectile {
			continue
		}
		if !e.Filter.Admits(cand) {
			continue
		}
		d := e.DistanceTo(cand)
		if d > e.Sight {
			continue
		}
		if best == nil || d < bestDist {
			best = cand
			bestDist = d
		}
	}
	return best
}

// applyHit lands a melee attack: damage with the structure penalty, then
// the attacker's on-hit effects. A kill fires split-on-death immediately so
// the products exist before cleanup.
func (g *Game) applyHit(attacker, target *Entity) {
	dmg := attacker.Damage
	if target.Kind.IsStructure() {
		dmg *= attacker.TowerPenalty
	}
	died := target.TakeDamage(dmg)
	if !died {
		for _, spec := range attacker.OnHit {
			ApplyEffect(target, spec)
		}
		return
	}
	g.handleDeath(target)
}

// handleDeath fires death behavior for an entity that just died: the
// split-on-death effect spawns its template list at the last position.
func (g *Game) handleDeath(e *Entity) {
	templates := splitTemplates(e)
	for i, name := range templates {
		tmpl, ok := g.catalog.Units[name]
		if !ok {
			continue
		}
		off := spawnOffsets(len(templates))[i%len(templates)]
		child := tmpl.Instantiate(e.Side, e.X+off[0], e.Y+off[1])
		g.store.Add(child)
	}
}

// tickTimers advances per-entity countdowns: attack cooldown, retarget
// cooldown, deploy immobility and first-attack load delay.
func (g *Game) tickTimers() {
	for _, e := range g.store.Ordered() {
		if e.Dead {
			continue
		}
		if e.Cooldown > 0 {
			e.Cooldown--
		}
		if e.RetargetCD > 0 {
			e.RetargetCD--
		}
		if e.DeployTicks > 0 {
			e.DeployTicks--
			continue
		}
		if e.LoadTicks > 0 {
			e.LoadTicks--
		}
	}
}
