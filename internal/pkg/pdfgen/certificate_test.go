package pdfgen

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mravi/bloodconnect/internal/app/models"
)

func TestGenerator_Generate(t *testing.T) {
	dir := t.TempDir()
	gen, err := NewGenerator(dir)
	require.NoError(t, err)

	data := CertificateData{
		CertificateNumber: "CERT-2026-0007",
		DonorName:         "Asha Rao",
		BloodGroup:        models.BloodGroupOPositive,
		Units:             2,
		DonationDate:      time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC),
		HospitalName:      "City Hospital",
		IssuedAt:          time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC),
	}

	path, err := gen.Generate(data)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "certificate-CERT-2026-0007.pdf"), path)
	assert.Equal(t, gen.FilePath(data.CertificateNumber), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// PDF files start with the %PDF magic
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(content) > 4 && string(content[:4]) == "%PDF")
}

func TestNewGenerator_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "certificates")

	_, err := NewGenerator(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
