package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestMovement() *Movement {
	m := NewMovement(3)
	for i := 0; i < 3; i++ {
		m.MaxSpeed[i] = 10
	}
	return m
}

func TestMovement_Integrate_VelocityVerlet(t *testing.T) {
	m := newTestMovement()
	m.VelX[0] = 2
	m.AccX[0] = 1

	m.Integrate(1.0)

	assert.InDelta(t, 2.5, m.PosX[0], 1e-4) // v*dt + 0.5*a*dt²
	assert.InDelta(t, 3.0, m.VelX[0], 1e-4)
}

func TestMovement_FlockSeparation_PushesApart(t *testing.T) {
	m := newTestMovement()
	m.PosX[0] = 0
	m.PosX[1] = 1
	m.PosX[2] = 100 // far outside the radius

	m.FlockSeparation(5, 1)

	assert.Less(t, m.AccX[0], float32(0), "left agent pushed further left")
	assert.Greater(t, m.AccX[1], float32(0), "right agent pushed further right")
	assert.Equal(t, float32(0), m.AccX[2], "distant agent unaffected")
}

func TestMovement_FlockAlignment_MatchesNeighborVelocity(t *testing.T) {
	m := newTestMovement()
	m.PosX[1] = 1
	m.VelX[1] = 4
	m.PosX[2] = 100

	m.FlockAlignment(5, 1)

	assert.InDelta(t, 4, m.AccX[0], 1e-4, "steer toward neighbor average velocity")
}

func TestMovement_FlockCohesion_PullsTowardCentroid(t *testing.T) {
	m := newTestMovement()
	m.PosX[1] = 2
	m.PosX[2] = 100

	m.FlockCohesion(5, 1)

	assert.InDelta(t, 2, m.AccX[0], 1e-4, "steer toward neighbor centroid")
	assert.InDelta(t, -2, m.AccX[1], 1e-4)
}

func TestMovement_SeekAndFlee(t *testing.T) {
	m := newTestMovement()

	m.Seek(0, 10, 0, 2)
	assert.InDelta(t, 2, m.AccX[0], 0.01, "unit-vector force toward target")

	m.Flee(1, 10, 0, 2)
	assert.InDelta(t, -2, m.AccX[1], 0.01)

	m.Seek(m.Count(), 10, 0, 2) // no-op
}

func TestMovement_Seek_AtTargetIsNoop(t *testing.T) {
	m := newTestMovement()
	m.Seek(0, 0, 0, 5)
	assert.Equal(t, float32(0), m.AccX[0])
	assert.Equal(t, float32(0), m.AccY[0])
}

func TestMovement_PathHeuristic_EuclideanDistance(t *testing.T) {
	m := newTestMovement()
	m.PathHeuristic(0, 3, 4)
	assert.InDelta(t, 5, m.HCost[0], 1e-4)

	m.PathHeuristic(m.Count(), 3, 4) // no-op
}

func TestMovement_ClampSpeed_RescalesVelocity(t *testing.T) {
	m := newTestMovement()
	m.VelX[0] = 30
	m.VelY[0] = 40 // speed 50, cap 10

	m.ClampSpeed()

	assert.InDelta(t, 10, m.Speed[0], 0.05)
	assert.InDelta(t, 6, m.VelX[0], 0.05)
	assert.InDelta(t, 8, m.VelY[0], 0.05)
}

func TestMovement_HeadingUpdate_KeepsHeadingWhenStationary(t *testing.T) {
	m := newTestMovement()
	m.Heading[0] = 1.5
	m.ClampSpeed()
	m.HeadingUpdate()
	assert.Equal(t, float32(1.5), m.Heading[0])

	m.VelX[1] = 1
	m.VelY[1] = 1
	m.ClampSpeed()
	m.HeadingUpdate()
	assert.InDelta(t, 0.7854, m.Heading[1], 1e-3)
}

func TestMovement_ArrivalBrake_ScalesInsideSlowRadius(t *testing.T) {
	m := newTestMovement()
	m.PosX[0] = 5 // 5 units from target at origin
	m.VelX[0] = 4
	m.Speed[0] = 4

	m.ArrivalBrake(0, 0, 0, 10)

	assert.InDelta(t, 2, m.VelX[0], 1e-4, "half the slow radius halves the speed")
	assert.InDelta(t, 2, m.Speed[0], 1e-4)

	m.ArrivalBrake(m.Count(), 0, 0, 10) // no-op
}
