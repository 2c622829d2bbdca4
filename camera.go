package atrium

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraLens holds the projection parameters shared by the renderer and the
// picker. Both must go through the same lens so a ray built at the viewport
// center matches what is on screen.
type CameraLens struct {
	FovDeg float32
	Near   float32
	Far    float32
	Aspect float32
}

func DefaultCameraLens(aspect float32) CameraLens {
	return CameraLens{FovDeg: 70, Near: 0.1, Far: 100, Aspect: aspect}
}

func (l *CameraLens) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(l.FovDeg), l.Aspect, l.Near, l.Far)
}

// viewForward is the gaze direction for a yaw/pitch pair; yaw 0 pitch 0
// looks down -Z.
func viewForward(yaw, pitch float32) mgl32.Vec3 {
	cp := cosf(pitch)
	return mgl32.Vec3{
		sinf(yaw) * cp,
		sinf(pitch),
		-cosf(yaw) * cp,
	}
}

// walkForward and walkRight are the planar movement axes: pitch never
// leans walking off the floor plane.
func walkForward(yaw float32) mgl32.Vec3 {
	return mgl32.Vec3{sinf(yaw), 0, -cosf(yaw)}
}

func walkRight(yaw float32) mgl32.Vec3 {
	return mgl32.Vec3{cosf(yaw), 0, sinf(yaw)}
}

func sinf(v float32) float32 { return float32(math.Sin(float64(v))) }
func cosf(v float32) float32 { return float32(math.Cos(float64(v))) }
func absf(v float32) float32 { return float32(math.Abs(float64(v))) }
