package payroll

type BirthBracket string

const (
	BracketBeforeCutoff BirthBracket = "before_cutoff"
	BracketFromCutoff   BirthBracket = "from_cutoff"
)

type LeaveBaseSource string

const (
	LeaveBasePriorMonth   LeaveBaseSource = "prior_month"
	LeaveBaseCurrentMonth LeaveBaseSource = "current_month"
	LeaveBaseNone         LeaveBaseSource = "none"
)

const (
	NoticeLeaveBasePrior   = "paid_leave_base_prior_month"
	NoticeLeaveBaseCurrent = "paid_leave_base_current_month"
	NoticeNoQualifyingBase = "no_qualifying_month"
	NoticeBracketFromEGN   = "bracket_derived_from_egn"
)
