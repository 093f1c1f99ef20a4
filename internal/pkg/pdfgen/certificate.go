package pdfgen

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/mravi/bloodconnect/internal/app/models"
)

// CertificateData holds everything printed on a donation certificate
type CertificateData struct {
	CertificateNumber string
	DonorName         string
	BloodGroup        models.BloodGroup
	Units             int
	DonationDate      time.Time
	HospitalName      string
	IssuedAt          time.Time
}

// Generator renders donation certificates as PDF files
type Generator struct {
	outputDir string
}

// NewGenerator creates a Generator writing into outputDir, which is
// created if it does not exist.
func NewGenerator(outputDir string) (*Generator, error) {
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create certificate directory %s: %w", outputDir, err)
	}
	return &Generator{outputDir: outputDir}, nil
}

// FilePath returns the on-disk path for a certificate number
func (g *Generator) FilePath(certificateNumber string) string {
	return filepath.Join(g.outputDir, fmt.Sprintf("certificate-%s.pdf", certificateNumber))
}

// Generate renders the certificate and returns the path of the written file
func (g *Generator) Generate(data CertificateData) (string, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Blood Donation Certificate", false)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()

	// Outer and inner border
	pdf.SetDrawColor(183, 28, 28)
	pdf.SetLineWidth(1.2)
	pdf.Rect(8, 8, pageW-16, pageH-16, "D")
	pdf.SetLineWidth(0.4)
	pdf.Rect(12, 12, pageW-24, pageH-24, "D")

	pdf.SetY(28)
	pdf.SetFont("Helvetica", "B", 30)
	pdf.SetTextColor(183, 28, 28)
	pdf.CellFormat(0, 14, "Certificate of Appreciation", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 13)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 8, "Blood Donation", "", 1, "C", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, "This certificate is proudly presented to", "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 26)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(0, 14, data.DonorName, "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 13)
	pdf.SetTextColor(60, 60, 60)
	body := fmt.Sprintf(
		"in grateful recognition of the voluntary donation of %d unit(s) of %s blood at %s on %s.",
		data.Units, data.BloodGroup, data.HospitalName, data.DonationDate.Format("January 2, 2006"),
	)
	pdf.SetX(40)
	pdf.MultiCell(pageW-80, 7, body, "", "C", false)

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 12)
	pdf.CellFormat(0, 7, "Your generosity gives someone another chance at life.", "", 1, "C", false, 0, "")

	// Footer with certificate number and issue date
	pdf.SetY(pageH - 36)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetX(24)
	pdf.CellFormat(100, 6, fmt.Sprintf("Certificate No: %s", data.CertificateNumber), "", 0, "L", false, 0, "")
	pdf.SetX(pageW - 124)
	pdf.CellFormat(100, 6, fmt.Sprintf("Issued on: %s", data.IssuedAt.Format("January 2, 2006")), "", 1, "R", false, 0, "")

	pdf.SetY(pageH - 28)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(183, 28, 28)
	pdf.CellFormat(0, 6, "BloodConnect", "", 1, "C", false, 0, "")

	outPath := g.FilePath(data.CertificateNumber)
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return "", fmt.Errorf("failed to write certificate PDF: %w", err)
	}
	return outPath, nil
}
