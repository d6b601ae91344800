package emit

import (
	"github.com/Borbofruto/Ruki/internal/ir"
	"github.com/Borbofruto/Ruki/internal/pose"
)

// URPose returns a target's pose as the controller expects it: metres and
// a rotation vector in radians. pose_matrix wins over pose; a pose with
// fewer than six values counts as absent.
func URPose(t *ir.Target) ([]float64, bool) {
	if t == nil {
		return nil, false
	}
	if m, ok := pose.FromRows(t.PoseMatrix); ok {
		tr := m.Translation()
		rv := pose.RotationVector(m.Rotation())
		return []float64{tr[0] / 1000, tr[1] / 1000, tr[2] / 1000, rv[0], rv[1], rv[2]}, true
	}
	if len(t.Pose) >= 6 {
		p := t.Pose
		return []float64{
			p[0] / 1000, p[1] / 1000, p[2] / 1000,
			pose.Deg2Rad(p[3]), pose.Deg2Rad(p[4]), pose.Deg2Rad(p[5]),
		}, true
	}
	return nil, false
}

func jointsRad(deg []float64) []float64 {
	out := make([]float64, len(deg))
	for i, d := range deg {
		out[i] = pose.Deg2Rad(d)
	}
	return out
}
