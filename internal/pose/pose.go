// Package pose converts between homogeneous transforms and the 6-tuple
// pose notation used by the IR and the controller formats.
//
// Units: the IR stores positions in millimetres and rotations in degrees.
// Every trigonometric routine in this package works in radians; degree
// conversion happens only in MatrixToXYZRPW and XYZRPWToMatrix.
package pose

import "math"

// epsilon bounds the identity and 180° branches of RotationVector.
const epsilon = 1e-10

// gimbalLimit is the |R20| threshold above which EulerRPW takes the
// gimbal-lock branch.
const gimbalLimit = 0.9999

// Matrix is a 4×4 homogeneous transform, row-major.
type Matrix [4][4]float64

// Rotation is a 3×3 rotation matrix, row-major.
type Rotation [3][3]float64

// XYZRPW is [x, y, z, rx, ry, rz]: position in mm and an axis-angle
// rotation vector in degrees.
type XYZRPW [6]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// FromRows builds a Matrix from a nested slice as stored in the IR
// pose_matrix field. It reports false unless rows is exactly 4×4.
func FromRows(rows [][]float64) (Matrix, bool) {
	var m Matrix
	if len(rows) != 4 {
		return m, false
	}
	for i, row := range rows {
		if len(row) != 4 {
			return m, false
		}
		copy(m[i][:], row)
	}
	return m, true
}

// Rows returns the matrix as a nested slice for JSON output.
func (m Matrix) Rows() [][]float64 {
	rows := make([][]float64, 4)
	for i := range m {
		rows[i] = []float64{m[i][0], m[i][1], m[i][2], m[i][3]}
	}
	return rows
}

// Rotation returns the upper-left 3×3 block.
func (m Matrix) Rotation() Rotation {
	var r Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j]
		}
	}
	return r
}

// Translation returns the fourth column of rows 0–2.
func (m Matrix) Translation() [3]float64 {
	return [3]float64{m[0][3], m[1][3], m[2][3]}
}

// Compose builds a transform from a rotation and a translation.
func Compose(r Rotation, t [3]float64) Matrix {
	m := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = r[i][j]
		}
		m[i][3] = t[i]
	}
	return m
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 { return d * math.Pi / 180.0 }

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 { return r * 180.0 / math.Pi }

// RotationVector returns the axis-angle vector (radians) of r.
//
// At exactly 180° the axis is recovered from the diagonal, and only the
// signs of ry and rz are disambiguated (from R01 and R02). Rotations whose
// axis needs a sign relationship between y and z alone are therefore
// returned with the wrong sign; existing archives depend on this output.
func RotationVector(r Rotation) [3]float64 {
	trace := r[0][0] + r[1][1] + r[2][2]
	cosA := math.Max(-1, math.Min(1, (trace-1)/2))
	angle := math.Acos(cosA)

	switch {
	case math.Abs(angle) < epsilon:
		return [3]float64{0, 0, 0}
	case math.Abs(angle-math.Pi) < epsilon:
		rx := math.Sqrt((r[0][0]+1)/2) * math.Pi
		ry := math.Sqrt((r[1][1]+1)/2) * math.Pi
		rz := math.Sqrt((r[2][2]+1)/2) * math.Pi
		if r[0][1] < 0 {
			ry = -ry
		}
		if r[0][2] < 0 {
			rz = -rz
		}
		return [3]float64{rx, ry, rz}
	default:
		k := angle / (2 * math.Sin(angle))
		return [3]float64{
			k * (r[2][1] - r[1][2]),
			k * (r[0][2] - r[2][0]),
			k * (r[1][0] - r[0][1]),
		}
	}
}

// FromVector rebuilds a rotation from an axis-angle vector (radians) with
// Rodrigues' formula. A zero-length vector yields the identity.
func FromVector(v [3]float64) Rotation {
	angle := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if angle < epsilon {
		return Rotation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
	kx, ky, kz := v[0]/angle, v[1]/angle, v[2]/angle
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	return Rotation{
		{kx*kx*t + c, kx*ky*t - kz*s, kx*kz*t + ky*s},
		{kx*ky*t + kz*s, ky*ky*t + c, ky*kz*t - kx*s},
		{kx*kz*t - ky*s, ky*kz*t + kx*s, kz*kz*t + c},
	}
}

// EulerRPW decomposes r into roll, pitch and yaw (radians) such that
// r = Rz(yaw)·Ry(pitch)·Rx(roll).
//
// When |R20| >= 0.9999 pitch is pinned to ±90°, yaw is zero and roll is
// taken from R01/R02 alone.
func EulerRPW(r Rotation) (roll, pitch, yaw float64) {
	if math.Abs(r[2][0]) < gimbalLimit {
		pitch = math.Asin(-r[2][0])
		cp := math.Cos(pitch)
		roll = math.Atan2(r[2][1]/cp, r[2][2]/cp)
		yaw = math.Atan2(r[1][0]/cp, r[0][0]/cp)
		return roll, pitch, yaw
	}
	if r[2][0] < 0 {
		return math.Atan2(r[0][1], r[0][2]), math.Pi / 2, 0
	}
	return math.Atan2(-r[0][1], -r[0][2]), -math.Pi / 2, 0
}

// MatrixToXYZRPW converts a transform to [x,y,z,rx,ry,rz] in mm/degrees.
func MatrixToXYZRPW(m Matrix) XYZRPW {
	t := m.Translation()
	v := RotationVector(m.Rotation())
	return XYZRPW{t[0], t[1], t[2], Rad2Deg(v[0]), Rad2Deg(v[1]), Rad2Deg(v[2])}
}

// XYZRPWToMatrix is the inverse of MatrixToXYZRPW.
func XYZRPWToMatrix(p XYZRPW) Matrix {
	r := FromVector([3]float64{Deg2Rad(p[3]), Deg2Rad(p[4]), Deg2Rad(p[5])})
	return Compose(r, [3]float64{p[0], p[1], p[2]})
}
