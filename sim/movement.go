package sim

import "math"

// stepMovement advances every mobile troop by one tick using the
// order-independent three-pass resolution: compute all candidate
// displacements, detect overlaps on the candidates, then apply with full
// suppression for flagged movers. No position mutates before every
// candidate is known, so results never depend on iteration order.
func (g *Game) stepMovement() {
	entities := g.store.Ordered()

	type candidate struct {
		e       *Entity
		nx, ny  float64
		moved   bool
		blocked bool
	}

	cands := make([]candidate, len(entities))

	// Pass 1: candidate displacement per entity.
	for i, e := range entities {
		cands[i] = candidate{e: e, nx: e.X, ny: e.Y}
		if e.Dead || e.Kind != KindTroop || e.Speed <= 0 {
			continue
		}
		if e.DeployTicks > 0 || Immobilized(e) {
			continue
		}

		tx, ty, ok := g.moveGoal(e)
		if !ok {
			continue
		}
		dx := tx - e.X
		dy := ty - e.Y
		d := math.Sqrt(dx*dx + dy*dy)
		if d < 1e-6 {
			continue
		}

		step := e.Speed * SpeedMultiplier(e) / TicksPerSecond
		if step > d {
			step = d
		}
		nx := e.X + dx/d*step
		ny := e.Y + dy/d*step

		// Hard tile legality: a blocked direct step means zero velocity
		// this tick. This is a constraint check, not route planning.
		if !PassableAt(nx, ny, e.Domain, e.CrossesRiver) {
			continue
		}
		cands[i].nx = nx
		cands[i].ny = ny
		cands[i].moved = true
	}

	// Pass 2: pairwise overlap tests, iterated to a fixed point. A flagged
	// mover reverts to its pre-tick position and presents that position to
	// later rounds, so a unit suppressed by one pair cannot be walked into
	// through its stale candidate. Pairs already overlapping at tick start
	// (spawn-adjacent units) are exempt while their candidates move apart;
	// a disjoint pair can never become overlapping.
	pos := func(c *candidate) (float64, float64) {
		if c.moved && !c.blocked {
			return c.nx, c.ny
		}
		return c.e.X, c.e.Y
	}
	for {
		changed := false
		for i := 0; i < len(cands); i++ {
			for j := i + 1; j < len(cands); j++ {
				a, b := &cands[i], &cands[j]
				if (!a.moved || a.blocked) && (!b.moved || b.blocked) {
					continue
				}
				if !collidable(a.e, b.e) {
					continue
				}
				sum := a.e.Radius + b.e.Radius
				ax, ay := pos(a)
				bx, by := pos(b)
				cd := dist(ax, ay, bx, by)
				if cd >= sum {
					continue
				}
				cur := dist(a.e.X, a.e.Y, b.e.X, b.e.Y)
				if cur < sum && cd >= cur {
					continue
				}
				if a.moved && !a.blocked {
					a.blocked = true
					changed = true
				}
				if b.moved && !b.blocked {
					b.blocked = true
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	// Pass 3: apply unsuppressed displacements.
	for i := range cands {
		c := &cands[i]
		if c.moved && !c.blocked {
			c.e.X = c.nx
			c.e.Y = c.ny
		}
	}
}

// collidable reports whether two entities occupy the same collision layer.
// Air units collide only with each other; ground troops collide with ground
// troops, buildings and towers. Zero-radius entities and projectiles
// collide with nothing.
func collidable(a, b *Entity) bool {
	if a.Dead || b.Dead {
		return false
	}
	if a.Radius <= 0 || b.Radius <= 0 {
		return false
	}
	if a.Kind == KindProjectile || b.Kind == KindProjectile {
		return false
	}
	if a.Domain == DomainAir || b.Domain == DomainAir {
		return a.Domain == DomainAir && b.Domain == DomainAir
	}
	return true
}

// moveGoal returns the point the entity walks toward this tick: its locked
// target when one is out of attack range, otherwise the lane-default
// advance point. Returns ok=false when the entity should hold position.
func (g *Game) moveGoal(e *Entity) (x, y float64, ok bool) {
	if t := g.store.Live(e.TargetID); t != nil && e.TargetLocked {
		if e.EdgeDistanceTo(t) <= e.Range {
			return 0, 0, false // in range, combat takes over
		}
		return t.X, t.Y, true
	}

	// Lane advance toward the opposing base. Ground units that cannot
	// cross the river head for their lane's bridge first.
	kx, ky := KingPosition(e.Side.Opponent())
	if e.Domain == DomainGround && !e.CrossesRiver {
		onOwnHalf := (e.Side == 0 && e.X < CenterX) || (e.Side == 1 && e.X >= CenterX)
		if onOwnHalf {
			bx, by := BridgeCenter(e.Y)
			// Past the bridge mouth the king is the goal again.
			if dist(e.X, e.Y, bx, by) > 0.5 {
				return bx, by, true
			}
		}
	}
	return kx, ky, true
}
