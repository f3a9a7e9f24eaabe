// Package stage tracks how long each phase of a clone/import run took.
package stage

type Stage int

const (
	Initial Stage = iota
	CompressingObjects
	Downloading
	ProcessingObjects
	Importing
)

// Reported lists the stages that appear in a duration report, in report order.
var Reported = []Stage{CompressingObjects, Downloading, ProcessingObjects, Importing}

func (s Stage) String() string {
	switch s {
	case Initial:
		return "Initial"
	case CompressingObjects:
		return "Compressing objects"
	case Downloading:
		return "Downloading"
	case ProcessingObjects:
		return "Processing objects"
	case Importing:
		return "Importing"
	default:
		return "Unknown"
	}
}

// Streaming reports whether lines of this stage carry a current/total progress fragment.
func (s Stage) Streaming() bool {
	return s == Downloading || s == Importing
}
