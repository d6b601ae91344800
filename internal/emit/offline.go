package emit

import (
	"fmt"
	"strings"

	"github.com/Borbofruto/Ruki/internal/catalog"
	"github.com/Borbofruto/Ruki/internal/script"
)

// Offline program defaults used when no model is given.
const (
	DefaultOfflineRobot = "UR20"
	DefaultOfflineFrame = DefaultOfflineRobot + " Base"
)

const offlineHeader = `# -*- coding: UTF-8 -*-
"""
Programa RoboDK gerado por Ruki-C v1.7
Arquivo origem: %s
"""

from robolink import *
from robodk import *
import math

# ============================================================
# CONFIGURAÇÕES DO ROBÔ (edite conforme necessário)
# ============================================================
RDK = Robolink()
robot = RDK.Item('%s', ITEM_TYPE_ROBOT)
robot.setPoseFrame(RDK.Item('%s', ITEM_TYPE_FRAME))
robot.setPoseTool(RDK.Item('Tool', ITEM_TYPE_TOOL))
robot.setSpeed(250)
robot.setSpeedJoints(60)

# ============================================================
# FUNÇÃO AUXILIAR (não precisa editar)
# ============================================================
def ur_pose_to_robodk(x, y, z, rx, ry, rz):
    """Converte pose UR (metros + rotation vector rad) para Pose RoboDK"""
    x_mm, y_mm, z_mm = x * 1000, y * 1000, z * 1000
    angle = math.sqrt(rx*rx + ry*ry + rz*rz)
    if angle < 1e-10:
        return KUKA_2_Pose([x_mm, y_mm, z_mm, 0, 0, 0])
    kx, ky, kz = rx/angle, ry/angle, rz/angle
    c, s = math.cos(angle), math.sin(angle)
    v = 1 - c
    R = [[kx*kx*v+c, kx*ky*v-kz*s, kx*kz*v+ky*s],
         [kx*ky*v+kz*s, ky*ky*v+c, ky*kz*v-kx*s],
         [kx*kz*v-ky*s, ky*kz*v+kx*s, kz*kz*v+c]]
    if abs(R[2][0]) < 0.9999:
        pitch = math.asin(-R[2][0])
        roll = math.atan2(R[2][1]/math.cos(pitch), R[2][2]/math.cos(pitch))
        yaw = math.atan2(R[1][0]/math.cos(pitch), R[0][0]/math.cos(pitch))
    else:
        yaw = 0
        if R[2][0] < 0:
            pitch = math.pi/2
            roll = math.atan2(R[0][1], R[0][2])
        else:
            pitch = -math.pi/2
            roll = math.atan2(-R[0][1], -R[0][2])
    return KUKA_2_Pose([x_mm, y_mm, z_mm, math.degrees(yaw), math.degrees(pitch), math.degrees(roll)])

# ============================================================
# PROGRAMA
# ============================================================
`

const offlineFooter = "\nprint(\"Programa concluído!\")\n"

// OfflineFileName returns the output file name for a script named base
// (without extension).
func OfflineFileName(base string) string {
	return strings.ReplaceAll(base, " ", "_") + "_RoboDK.py"
}

// Offline renders script commands as a RoboDK Python program. source is
// the input file name quoted in the header. A nil model selects the
// default robot and frame.
//
// MoveL prefers the scripted pose, converted at run time by the embedded
// ur_pose_to_robodk helper, and falls back to joints.
func Offline(source string, cmds []script.Command, model *catalog.Model) ([]byte, Summary) {
	robot, frame := DefaultOfflineRobot, DefaultOfflineFrame
	if model != nil {
		robot, frame = model.OfflineName, model.OfflineFrame
	}

	var b strings.Builder
	fmt.Fprintf(&b, offlineHeader, source, robot, frame)

	var sum Summary
	for _, c := range cmds {
		switch {
		case c.Kind == script.KindIO:
			v := 0
			if c.Value {
				v = 1
			}
			fmt.Fprintf(&b, "robot.setDO(%d, %d)\n", c.Index, v)
			sum.IOs++
		case c.Motion == script.MoveL && c.HasPose():
			fmt.Fprintf(&b, "robot.MoveL(ur_pose_to_robodk(%s))\n", joinFloats(c.Pose, 6, ", "))
			sum.Moves++
		case c.HasJoints():
			fmt.Fprintf(&b, "robot.%s([%s])\n", c.Motion, joinFloats(c.Joints, 4, ", "))
			sum.Moves++
		default:
			sum.Skipped++
		}
	}

	b.WriteString(offlineFooter)
	return []byte(b.String()), sum
}
