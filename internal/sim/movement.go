// Movement and AI — velocity-Verlet kinematics, flocking, steering,
// path-search heuristics.
package sim

// Movement holds per-agent kinematic columns.
type Movement struct {
	PosX     []float32 // x world position
	PosY     []float32 // y world position
	VelX     []float32 // x velocity component
	VelY     []float32 // y velocity component
	AccX     []float32 // x acceleration component
	AccY     []float32 // y acceleration component
	Heading  []float32 // facing angle in radians
	Speed    []float32 // current scalar speed
	MaxSpeed []float32 // speed cap
	HCost    []float32 // heuristic cost from last evaluation

	n int
}

// NewMovement allocates a container with count agents.
func NewMovement(count int) *Movement {
	if count < 0 {
		count = 0
	}
	return &Movement{
		PosX:     make([]float32, count),
		PosY:     make([]float32, count),
		VelX:     make([]float32, count),
		VelY:     make([]float32, count),
		AccX:     make([]float32, count),
		AccY:     make([]float32, count),
		Heading:  make([]float32, count),
		Speed:    make([]float32, count),
		MaxSpeed: make([]float32, count),
		HCost:    make([]float32, count),
		n:        count,
	}
}

// Count returns the number of mobile agents.
func (m *Movement) Count() int { return m.n }

// Integrate advances positions and velocities with velocity Verlet:
// pos += v*dt + 0.5*a*dt², v += a*dt.
func (m *Movement) Integrate(dt float32) {
	dt2Half := 0.5 * dt * dt
	for i := 0; i < m.n; i++ {
		m.PosX[i] += m.VelX[i]*dt + m.AccX[i]*dt2Half
		m.PosY[i] += m.VelY[i]*dt + m.AccY[i]*dt2Half
		m.VelX[i] += m.AccX[i] * dt
		m.VelY[i] += m.AccY[i] * dt
	}
}

// FlockSeparation accumulates inverse-distance repulsion from neighbours
// within radius into each agent's own acceleration. O(count²); reads all
// indices but writes only the acting index, so it parallelizes per agent.
func (m *Movement) FlockSeparation(radius, strength float32) {
	r2 := radius * radius
	for i := 0; i < m.n; i++ {
		var fx, fy float32
		for j := 0; j < m.n; j++ {
			if i == j {
				continue
			}
			dx := m.PosX[i] - m.PosX[j]
			dy := m.PosY[i] - m.PosY[j]
			d2 := dx*dx + dy*dy
			if d2 > r2 || d2 < 1e-6 {
				continue
			}
			invD := invSqrt32(d2)
			fx += dx * invD
			fy += dy * invD
		}
		m.AccX[i] += strength * fx
		m.AccY[i] += strength * fy
	}
}

// FlockAlignment steers each agent toward the average velocity of its
// neighbours within radius.
func (m *Movement) FlockAlignment(radius, strength float32) {
	r2 := radius * radius
	for i := 0; i < m.n; i++ {
		var avgVX, avgVY float32
		n := 0
		for j := 0; j < m.n; j++ {
			if i == j {
				continue
			}
			dx := m.PosX[i] - m.PosX[j]
			dy := m.PosY[i] - m.PosY[j]
			if dx*dx+dy*dy > r2 {
				continue
			}
			avgVX += m.VelX[j]
			avgVY += m.VelY[j]
			n++
		}
		if n > 0 {
			m.AccX[i] += strength * (avgVX/float32(n) - m.VelX[i])
			m.AccY[i] += strength * (avgVY/float32(n) - m.VelY[i])
		}
	}
}

// FlockCohesion steers each agent toward the centroid of its neighbours
// within radius.
func (m *Movement) FlockCohesion(radius, strength float32) {
	r2 := radius * radius
	for i := 0; i < m.n; i++ {
		var cx, cy float32
		n := 0
		for j := 0; j < m.n; j++ {
			if i == j {
				continue
			}
			dx := m.PosX[i] - m.PosX[j]
			dy := m.PosY[i] - m.PosY[j]
			if dx*dx+dy*dy > r2 {
				continue
			}
			cx += m.PosX[j]
			cy += m.PosY[j]
			n++
		}
		if n > 0 {
			m.AccX[i] += strength * (cx/float32(n) - m.PosX[i])
			m.AccY[i] += strength * (cy/float32(n) - m.PosY[i])
		}
	}
}

// Seek applies a unit-vector steering force toward (tx, ty) to one agent.
// Agents already at the target are left untouched.
func (m *Movement) Seek(unit int, tx, ty, strength float32) {
	if unit < 0 || unit >= m.n {
		return
	}
	dx := tx - m.PosX[unit]
	dy := ty - m.PosY[unit]
	d2 := dx*dx + dy*dy
	if d2 < 1e-6 {
		return
	}
	invD := invSqrt32(d2)
	m.AccX[unit] += strength * dx * invD
	m.AccY[unit] += strength * dy * invD
}

// Flee applies a unit-vector steering force away from (tx, ty).
func (m *Movement) Flee(unit int, tx, ty, strength float32) {
	m.Seek(unit, tx, ty, -strength)
}

// PathHeuristic stores the Euclidean distance from one agent to the goal in
// HCost, for use by an external A*-style planner.
func (m *Movement) PathHeuristic(unit int, gx, gy float32) {
	if unit < 0 || unit >= m.n {
		return
	}
	dx := gx - m.PosX[unit]
	dy := gy - m.PosY[unit]
	m.HCost[unit] = sqrt32(dx*dx + dy*dy)
}

// ClampSpeed rescales velocities exceeding each agent's cap and refreshes
// the scalar speed column.
func (m *Movement) ClampSpeed() {
	for i := 0; i < m.n; i++ {
		spd2 := m.VelX[i]*m.VelX[i] + m.VelY[i]*m.VelY[i]
		max2 := m.MaxSpeed[i] * m.MaxSpeed[i]
		if spd2 > max2 && spd2 > 1e-9 {
			scale := m.MaxSpeed[i] * invSqrt32(spd2)
			m.VelX[i] *= scale
			m.VelY[i] *= scale
		}
		m.Speed[i] = sqrt32(m.VelX[i]*m.VelX[i] + m.VelY[i]*m.VelY[i])
	}
}

// HeadingUpdate derives facing angles from velocity. Near-stationary agents
// keep their last heading.
func (m *Movement) HeadingUpdate() {
	for i := 0; i < m.n; i++ {
		if m.Speed[i] > 1e-6 {
			m.Heading[i] = atan232(m.VelY[i], m.VelX[i])
		}
	}
}

// ArrivalBrake scales one agent's speed down linearly within slowRadius of
// the target.
func (m *Movement) ArrivalBrake(unit int, tx, ty, slowRadius float32) {
	if unit < 0 || unit >= m.n {
		return
	}
	dx := tx - m.PosX[unit]
	dy := ty - m.PosY[unit]
	dist := sqrt32(dx*dx + dy*dy)
	if dist < slowRadius && dist > 1e-6 {
		factor := dist / slowRadius
		m.VelX[unit] *= factor
		m.VelY[unit] *= factor
		m.Speed[unit] *= factor
	}
}
