package payroll

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PayslipHeader identifies whose breakdown is printed.
type PayslipHeader struct {
	FullName   string
	EmployeeID string
}

type payslipLine struct {
	label  string
	amount float64
}

// RenderPayslip writes a one-page A4 PDF of the rounded breakdown to w.
func RenderPayslip(w io.Writer, head PayslipHeader, b Breakdown) error {
	r := b.Rounded()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %d", Transliterate(r.Month), r.EffectiveYear), false)
	pdf.SetAuthor("SalaryCalculator", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	if head.FullName != "" {
		pdf.Cell(0, 7, "Employee: "+Transliterate(head.FullName))
		pdf.Ln(6)
	}
	if head.EmployeeID != "" {
		pdf.Cell(0, 7, "Employee ID: "+Transliterate(head.EmployeeID))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s %d (%d working days, %d worked)", Transliterate(r.Month), r.EffectiveYear, r.TotalWorkingDays, r.DaysWorked))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Absences: vacation %d, sick %d (%d employer / %d NSSI), unauthorised %d, unpaid %d",
		r.DaysVacation, r.DaysSick, r.EmployerSickDays, r.StateSickDays, r.DaysAbsence, r.DaysUnpaid))
	pdf.Ln(10)

	section(pdf, "Earnings", []payslipLine{
		{"Base salary", r.GrossSalary},
		{"Seniority bonus", r.SeniorityAmount},
		{"Salary for days worked", r.BaseSalaryPart},
		{"Paid leave", r.VacationPart},
		{"Sick pay (employer)", r.SickPayEmployer},
		{"Sick pay (NSSI, informational)", r.SickPayNSSI},
		{"Total gross income", r.TotalGrossIncome},
		{"Insurance base", r.InsuranceBase},
	})
	section(pdf, "Employee contributions", []payslipLine{
		{"Pension", r.Employee.Pension},
		{"General illness and maternity", r.Employee.OZM},
		{"Unemployment", r.Employee.Unemployment},
		{"Supplementary pension (DZPO)", r.Employee.DZPO},
		{"Health insurance", r.Employee.Health},
		{"Health on unpaid leave", r.UnpaidHealthAmount},
		{"Total employee contributions", r.TotalInsuranceEmployee},
	})
	section(pdf, "Employer contributions", []payslipLine{
		{"Pension", r.Employer.Pension},
		{"General illness and maternity", r.Employer.OZM},
		{"Unemployment", r.Employer.Unemployment},
		{"Supplementary pension (DZPO)", r.Employer.DZPO},
		{"Work accident (TZPB)", r.WorkAccident},
		{"Health insurance", r.Employer.Health},
		{"Health on NSSI sick days", r.EmployerHealthOnStateSick},
		{"Total employer contributions", r.TotalInsuranceEmployer},
		{"Employer total cost", r.EmployerTotalCost},
	})
	section(pdf, "Tax and net pay", []payslipLine{
		{"Taxable income", r.TaxableIncome},
		{"Income tax", r.IncomeTax},
		{"Net salary", r.NetSalary},
	})

	if r.VacationBaseSource == LeaveBaseNone && r.DaysVacation > 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, "No qualifying month was found for the paid-leave base; paid leave is not valued.", "", "L", false)
	}

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string, lines []payslipLine) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range lines {
		pdf.CellFormat(120, 6, line.label, "B", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.2f BGN", line.amount), "B", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}
