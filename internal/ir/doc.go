// Package ir provides the vendor-neutral intermediate representation of a
// robot program (the .ruki document).
//
// This package contains type definitions and the document codec only. All
// other internal packages import ir; ir imports nothing internal except
// pose. This keeps the IR the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Units are fixed (mm, degrees, seconds) and never inferred
//   - Every step carries full state snapshots before and after it
//   - A target always has joints or a pose, never neither
//   - All JSON tags use snake_case
package ir
