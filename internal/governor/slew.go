// v0
// internal/governor/slew.go
package governor

// step moves the slewed level toward proposed. A change must persist for
// MinPersistTicks ticks and moves at most MaxStepPerTick per tick.
func (m *slewMemory) step(proposed int, t SlewTunables) int {
	if t.MinPersistTicks <= 0 && t.MaxStepPerTick <= 0 {
		m.current, m.persist = proposed, 0
		return proposed
	}
	if proposed == m.current {
		m.persist = 0
		return m.current
	}
	m.persist++
	if m.persist < t.MinPersistTicks {
		return m.current
	}
	delta := proposed - m.current
	if t.MaxStepPerTick > 0 {
		delta = clampInt(delta, -t.MaxStepPerTick, t.MaxStepPerTick)
	}
	m.current += delta
	m.persist = 0
	return m.current
}

// force pins the slewed level, used when the fan must stop immediately.
func (m *slewMemory) force(level int) {
	m.current, m.persist = level, 0
}

// limit caps the slewed level, e.g. after switching into quiet mode.
func (m *slewMemory) limit(cap int) int {
	m.current = clampInt(m.current, 0, cap)
	return m.current
}
