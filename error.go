package mlpe

import "fmt"

// ErrorList collects independent failures, such as report and plot sink
// errors, without aborting the run that produced them.
type ErrorList []error

func (e ErrorList) Error() string {
	var str string
	for i, err := range e {
		if err != nil {
			str += fmt.Sprintf("  case %d: %s", i, err.Error())
		}
	}
	return str
}

// AllNil reports whether every collected error is nil.
func (e ErrorList) AllNil() bool {
	for _, err := range e {
		if err != nil {
			return false
		}
	}
	return true
}
