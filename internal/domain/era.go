package domain

// Direction selects which half of the timeline a run renders.
type Direction string

// Possible direction values
const (
	DirectionPast   Direction = "past"
	DirectionFuture Direction = "future"
)

// erasPast lists the six decade labels rendered when a run points toward
// the past, in presentation order.
var erasPast = []string{"1950s", "1960s", "1970s", "1980s", "1990s", "2000s"}

// erasFuture lists the six speculative era labels rendered when a run
// points toward the future, in presentation order.
var erasFuture = []string{
	"solarpunk-dawn",
	"chrome-age",
	"neon-meridian",
	"orbital-century",
	"synthetic-renaissance",
	"post-singularity",
}

// ParseDirection converts a raw string into a Direction.
// Returns ErrInvalidDirection for anything other than "past" or "future".
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionPast:
		return DirectionPast, nil
	case DirectionFuture:
		return DirectionFuture, nil
	default:
		return "", ErrInvalidDirection
	}
}

// IsValid reports whether the direction is one of the defined values.
func (d Direction) IsValid() bool {
	return d == DirectionPast || d == DirectionFuture
}

// ErasFor returns the fixed, ordered era set for the given direction.
// The returned slice is a copy; callers may not mutate the canonical sets.
func ErasFor(d Direction) ([]string, error) {
	var src []string
	switch d {
	case DirectionPast:
		src = erasPast
	case DirectionFuture:
		src = erasFuture
	default:
		return nil, ErrInvalidDirection
	}

	eras := make([]string, len(src))
	copy(eras, src)
	return eras, nil
}
