package reportsvc

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"librarydesk/model"
)

type LoanSource interface {
	ListAll(ctx context.Context) ([]model.Loan, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Loan, error)
	ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error)
	ListOverdue(ctx context.Context) ([]model.Loan, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Loan, error)
}

type Service interface {
	AllLoans(ctx context.Context) ([]byte, error)
	LoansByUser(ctx context.Context, userID int64) ([]byte, error)
	LoansByBook(ctx context.Context, bookID int64) ([]byte, error)
	OverdueLoans(ctx context.Context) ([]byte, error)
	LoansBetween(ctx context.Context, from, to time.Time) ([]byte, error)
}

type service struct{ loans LoanSource }

func New(loans LoanSource) Service { return &service{loans: loans} }

func (s *service) AllLoans(ctx context.Context) ([]byte, error) {
	rows, err := s.loans.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return render("All loans", rows)
}

func (s *service) LoansByUser(ctx context.Context, userID int64) ([]byte, error) {
	rows, err := s.loans.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return render(fmt.Sprintf("Loans for user %d", userID), rows)
}

func (s *service) LoansByBook(ctx context.Context, bookID int64) ([]byte, error) {
	rows, err := s.loans.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return render(fmt.Sprintf("Loans for book %d", bookID), rows)
}

func (s *service) OverdueLoans(ctx context.Context) ([]byte, error) {
	rows, err := s.loans.ListOverdue(ctx)
	if err != nil {
		return nil, err
	}
	return render("Overdue loans", rows)
}

func (s *service) LoansBetween(ctx context.Context, from, to time.Time) ([]byte, error) {
	rows, err := s.loans.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Loans %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	return render(title, rows)
}

var headers = []string{"ID", "User", "Book", "Borrowed", "Due", "Returned", "Status", "Late"}
var widths = []float64{14, 18, 18, 26, 26, 26, 26, 14}

func render(title string, rows []model.Loan) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, l := range rows {
		ret := "-"
		if l.ReturnDate != nil {
			ret = l.ReturnDate.Format("2006-01-02")
		}
		late := "no"
		if l.ReturnedLate {
			late = "yes"
		}
		cells := []string{
			fmt.Sprintf("%d", l.ID),
			fmt.Sprintf("%d", l.UserID),
			fmt.Sprintf("%d", l.BookID),
			l.BorrowDate.Format("2006-01-02"),
			l.DueDate.Format("2006-01-02"),
			ret,
			string(l.Status),
			late,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(rows) == 0 {
		pdf.Ln(2)
		pdf.Cell(0, 8, "No records")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
