package allocation

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"lms/internal/domain/apperr"
)

// WriteReport renders the current allocation ledger as a PDF.
func (s *Service) WriteReport(ctx context.Context, w io.Writer) error {
	listing, err := s.List(ctx)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Leave Allocation Report")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(70, 8, "Employee", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Taken", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Remaining", "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, a := range listing.Allocations {
		name := a.EmployeeID
		if a.Employee != nil {
			name = a.Employee.Name
		}
		pdf.CellFormat(70, 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", a.TotalLeaves), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", a.LeavesTaken), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", a.LeavesRemaining), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(listing.UnallocatedEmployees) > 0 {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 8, fmt.Sprintf("Employees without allocation (%d)", len(listing.UnallocatedEmployees)))
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, e := range listing.UnallocatedEmployees {
			pdf.Cell(0, 7, fmt.Sprintf("%s (%s)", e.Name, e.Email))
			pdf.Ln(6)
		}
	}

	if err := pdf.Output(w); err != nil {
		return apperr.Wrap(apperr.Internal, "error generating allocation report", err)
	}
	return nil
}
