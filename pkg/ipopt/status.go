package ipopt

import "fmt"

// Status is Ipopt's ApplicationReturnStatus, stored verbatim.
type Status int32

const (
	StatusSolveSucceeded            Status = 0
	StatusSolvedToAcceptableLevel   Status = 1
	StatusInfeasibleProblemDetected Status = 2
	StatusSearchDirectionTooSmall   Status = 3
	StatusDivergingIterates         Status = 4
	StatusUserRequestedStop         Status = 5
	StatusFeasiblePointFound        Status = 6
	StatusMaximumIterationsExceeded Status = -1
	StatusRestorationFailed         Status = -2
	StatusErrorInStepComputation    Status = -3
	StatusMaximumCPUTimeExceeded    Status = -4
	StatusMaximumWallTimeExceeded   Status = -5
	StatusNotEnoughDegreesOfFreedom Status = -10
	StatusInvalidProblemDefinition  Status = -11
	StatusInvalidOption             Status = -12
	StatusInvalidNumberDetected     Status = -13
	StatusUnrecoverableException    Status = -100
	StatusNonIpoptExceptionThrown   Status = -101
	StatusInsufficientMemory        Status = -102
	StatusInternalError             Status = -199
)

var statusNames = map[Status]string{
	StatusSolveSucceeded:            "Solve_Succeeded",
	StatusSolvedToAcceptableLevel:   "Solved_To_Acceptable_Level",
	StatusInfeasibleProblemDetected: "Infeasible_Problem_Detected",
	StatusSearchDirectionTooSmall:   "Search_Direction_Becomes_Too_Small",
	StatusDivergingIterates:         "Diverging_Iterates",
	StatusUserRequestedStop:         "User_Requested_Stop",
	StatusFeasiblePointFound:        "Feasible_Point_Found",
	StatusMaximumIterationsExceeded: "Maximum_Iterations_Exceeded",
	StatusRestorationFailed:         "Restoration_Failed",
	StatusErrorInStepComputation:    "Error_In_Step_Computation",
	StatusMaximumCPUTimeExceeded:    "Maximum_CpuTime_Exceeded",
	StatusMaximumWallTimeExceeded:   "Maximum_WallTime_Exceeded",
	StatusNotEnoughDegreesOfFreedom: "Not_Enough_Degrees_Of_Freedom",
	StatusInvalidProblemDefinition:  "Invalid_Problem_Definition",
	StatusInvalidOption:             "Invalid_Option",
	StatusInvalidNumberDetected:     "Invalid_Number_Detected",
	StatusUnrecoverableException:    "Unrecoverable_Exception",
	StatusNonIpoptExceptionThrown:   "NonIpopt_Exception_Thrown",
	StatusInsufficientMemory:        "Insufficient_Memory",
	StatusInternalError:             "Internal_Error",
}

// String returns Ipopt's name for the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}

// Succeeded reports whether the solver terminated at a solution, either to
// the requested or to the acceptable tolerance.
func (s Status) Succeeded() bool {
	return s == StatusSolveSucceeded || s == StatusSolvedToAcceptableLevel
}
