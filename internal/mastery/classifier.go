package mastery

// Classification of a word from a student's history
type Classification int

const (
	Unclassified Classification = iota
	Weak
	Strong
)

func (c Classification) String() string {
	switch c {
	case Weak:
		return "weak"
	case Strong:
		return "strong"
	default:
		return "unclassified"
	}
}

const (
	// MinAttempts is the fewest attempts needed before a word is classified
	MinAttempts = 3
	// WeakBelow is the accuracy under which a word is weak
	WeakBelow = 70.0
	// StrongAbove is the accuracy over which a word may be strong
	StrongAbove = 85.0
	// StrongLevel is the mastery level a strong word must have reached
	StrongLevel = 4
)

// Classify sorts a word into weak, strong or unclassified.
// The weak and strong bands cannot overlap since WeakBelow < StrongAbove.
func Classify(totalAttempts int, accuracy float64, masteryLevel int) Classification {
	if totalAttempts < MinAttempts {
		return Unclassified
	}
	if accuracy < WeakBelow {
		return Weak
	}
	if accuracy > StrongAbove && masteryLevel >= StrongLevel {
		return Strong
	}
	return Unclassified
}
