// Package composite renders a finished run's era artifacts into a single
// page image. It is purely mechanical: the readiness gate lives in the
// scheduler, so by the time Compose runs every artifact is present.
package composite
