package domain

import "strings"

// SubjectGeneralKnowledge is shared across all junior classes; see ResolveBank.
const SubjectGeneralKnowledge = "General Knowledge"

// SharedBankClass is the pseudo-class under which the cross-class General
// Knowledge bank is stored.
const SharedBankClass = "shared"

var classes = []string{"JSS1", "JSS2", "JSS3", "SS1", "SS2", "SS3"}

var juniorSubjects = []string{"Maths", "English", SubjectGeneralKnowledge}

var seniorSubjects = []string{
	"Maths",
	"English",
	"Chemistry",
	"Physics",
	"Literature",
	"Government",
	"Financial Account",
	"Commerce",
	SubjectGeneralKnowledge,
}

// Classes lists the supported class levels in order.
func Classes() []string {
	out := make([]string, len(classes))
	copy(out, classes)
	return out
}

// IsJuniorClass reports whether the class is one of the JSS levels.
func IsJuniorClass(class string) bool {
	return strings.HasPrefix(class, "JSS")
}

// SubjectsFor lists the subjects offered for a class level.
func SubjectsFor(class string) []string {
	src := seniorSubjects
	if IsJuniorClass(class) {
		src = juniorSubjects
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// ResolveBank maps a quiz's class/subject to the question bank it draws from.
// General Knowledge under a junior class resolves to the shared cross-class bank.
func ResolveBank(class, subject string) (bankClass, bankSubject string) {
	if subject == SubjectGeneralKnowledge && IsJuniorClass(class) {
		return SharedBankClass, SubjectGeneralKnowledge
	}
	return class, subject
}
