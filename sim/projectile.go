package sim

// projectileRadius is the collision radius of every projectile.
const projectileRadius = 0.1

// spawnProjectile creates a homing projectile carrying the attacker's
// damage payload toward its locked target.
func (g *Game) spawnProjectile(attacker, target *Entity) {
	p := &Entity{
		Side:         attacker.Side,
		Kind:         KindProjectile,
		Name:         attacker.Name + " shot",
		X:            attacker.X,
		Y:            attacker.Y,
		Radius:       projectileRadius,
		HP:           1,
		MaxHP:        1,
		Damage:       attacker.Damage,
		TowerPenalty: attacker.TowerPenalty,
		Splash:       attacker.Splash,
		ProjSpeed:    attacker.ProjSpeed,
		TargetID:     target.ID,
		OnHit:        attacker.OnHit,
	}
	if p.ProjSpeed <= 0 {
		p.ProjSpeed = 6.0
	}
	g.store.Add(p)
}

// stepProjectiles advances every live projectile one tick. Projectiles
// ignore tiles and the troop collision rules; they either home in on their
// target or disappear when the target reference goes stale.
func (g *Game) stepProjectiles() {
	for _, p := range g.store.Ordered() {
		if p.Dead || p.Kind != KindProjectile {
			continue
		}

		target := g.store.Live(p.TargetID)
		if target == nil {
			// Target gone: destroyed without effect, no retargeting.
			p.Dead = true
			continue
		}

		dx := target.X - p.X
		dy := target.Y - p.Y
		d := dist(p.X, p.Y, target.X, target.Y)
		step := p.ProjSpeed / TicksPerSecond
		if d > step {
			p.X += dx / d * step
			p.Y += dy / d * step
		} else {
			p.X = target.X
			p.Y = target.Y
		}

		if dist(p.X, p.Y, target.X, target.Y) <= p.Radius+target.Radius {
			g.resolveProjectile(p, target)
			p.Dead = true
		}
	}
}

// resolveProjectile applies the payload to the target plus splash damage to
// every other qualifying enemy inside the splash radius of the impact.
func (g *Game) resolveProjectile(p, target *Entity) {
	g.damageFromProjectile(p, target)

	if p.Splash <= 0 {
		return
	}
	ix, iy := target.X, target.Y
	for _, e := range g.store.Ordered() {
		if e.Dead || e.ID == target.ID || e.Side == p.Side || e.Kind == KindProjectile {
			continue
		}
		if dist(ix, iy, e.X, e.Y) > p.Splash+e.Radius {
			continue
		}
		g.damageFromProjectile(p, e)
	}
}

func (g *Game) damageFromProjectile(p, victim *Entity) {
	dmg := p.Damage
	if victim.Kind.IsStructure() {
		dmg *= p.TowerPenalty
	}
	if victim.TakeDamage(dmg) {
		g.handleDeath(victim)
		return
	}
	for _, spec := range p.OnHit {
		ApplyEffect(victim, spec)
	}
}
