package exercise

// ClassDiagram is the only supported exercise type.
const ClassDiagram = "Class diagram"

// ExerciseTypes lists the supported UML diagram kinds.
var ExerciseTypes = []string{ClassDiagram}

// Difficulties lists the difficulty levels in increasing order.
var Difficulties = []string{"Easy", "Medium", "Hard"}

// Lengths lists the exercise lengths in increasing order.
var Lengths = []string{"Short", "Medium", "Long"}

// StudyGoal is a modeling misconception an exercise is designed to expose.
type StudyGoal struct {
	Code        string
	Name        string
	Description string
}

// seedStudyGoals is the misconception catalog for class diagrams.
var seedStudyGoals = []StudyGoal{
	{
		Code:        "ATR",
		Name:        "Attributes vs. classes",
		Description: "Models a concept with its own identity and behavior as a plain attribute, or promotes a simple value to a class",
	},
	{
		Code:        "HOL",
		Name:        "Aggregation (whole-part)",
		Description: "Confuses a shared whole-part relationship with a plain association or with composition",
	},
	{
		Code:        "COM",
		Name:        "Composition",
		Description: "Uses composition where parts can outlive or be shared by their whole, or misses it where lifetimes are bound",
	},
	{
		Code:        "LIS",
		Name:        "Collections as attributes",
		Description: "Stores related objects in a list-typed attribute instead of drawing an association with a multiplicity",
	},
	{
		Code:        "MUL",
		Name:        "Multiplicity",
		Description: "Places multiplicities on the wrong association end or picks bounds that contradict the domain text",
	},
	{
		Code:        "NAV",
		Name:        "Navigability",
		Description: "Draws association direction from data flow or call order rather than from which class needs to reach the other",
	},
	{
		Code:        "ENU",
		Name:        "Enumerations",
		Description: "Models a fixed set of values as subclasses or free strings instead of an enumeration",
	},
	{
		Code:        "OPR",
		Name:        "Operations placement",
		Description: "Assigns an operation to a class that lacks the data it needs, or models operations as associations",
	},
}

var studyGoals map[string]*StudyGoal

func init() {
	studyGoals = make(map[string]*StudyGoal, len(seedStudyGoals))
	for i := range seedStudyGoals {
		g := &seedStudyGoals[i]
		studyGoals[g.Code] = g
	}
}

// GetStudyGoal returns the study goal with the given code, or nil.
func GetStudyGoal(code string) *StudyGoal {
	return studyGoals[code]
}

// StudyGoals returns the catalog in its canonical order.
func StudyGoals() []StudyGoal {
	out := make([]StudyGoal, len(seedStudyGoals))
	copy(out, seedStudyGoals)
	return out
}

func isExerciseType(s string) bool {
	for _, t := range ExerciseTypes {
		if t == s {
			return true
		}
	}
	return false
}
