package exitcode

const (
	Success           = 0
	RuntimeFailure    = 1
	WrongArguments    = 1
	InvalidUsage      = 2
	InvalidConfig     = 3
	MissingDependency = 4
	Interrupted       = 130
)
